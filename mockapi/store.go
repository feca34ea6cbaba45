// Package mockapi is an in-memory stand-in for the production backend. It
// serves the same HTTP/JSON surface the client speaks, which makes the e2e
// tests hermetic and gives developers an offline target on localhost:8000.
package mockapi

import (
	"sort"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"dimfdesk/models"
)

type userRec struct {
	ID           int
	Username     string
	Email        string
	PasswordHash string
}

type postRec struct {
	ID              int
	Name            string
	DateOfDeath     string
	Content         string
	CreatedBy       *int
	CreatorUsername string
}

// Store holds all mock state behind one mutex; request volume is test-sized.
type Store struct {
	mu            sync.Mutex
	users         map[string]*userRec
	posts         map[int]*postRec
	platforms     []models.Platform
	images        map[int]*models.Image
	postPlatforms map[int][]int
	postImages    map[int][]int
	nextUser      int
	nextPost      int
	nextImage     int
}

// NewStore returns a store seeded with the platform catalogue.
func NewStore() *Store {
	return &Store{
		users:  map[string]*userRec{},
		posts:  map[int]*postRec{},
		images: map[int]*models.Image{},
		platforms: []models.Platform{
			{PlatformID: 1, Name: "Facebook", APIAccessStatus: 1, PlatformURL: "https://facebook.com"},
			{PlatformID: 2, Name: "X", APIAccessStatus: 1, PlatformURL: "https://x.com"},
			{PlatformID: 3, Name: "Instagram", APIAccessStatus: 0, PlatformURL: "https://instagram.com"},
			{PlatformID: 4, Name: "LinkedIn", APIAccessStatus: 0, PlatformURL: "https://linkedin.com"},
		},
		postPlatforms: map[int][]int{},
		postImages:    map[int][]int{},
	}
}

// AddUser creates an account with a bcrypt-hashed password. Returns false when
// the username is taken.
func (s *Store) AddUser(username, email, password string) (models.User, bool) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return models.User{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[username]; exists {
		return models.User{}, false
	}
	s.nextUser++
	s.users[username] = &userRec{ID: s.nextUser, Username: username, Email: email, PasswordHash: string(hash)}
	return models.User{UserID: s.nextUser, Username: username, Email: email}, true
}

// Authenticate checks credentials and returns the account on success.
func (s *Store) Authenticate(username, password string) (models.User, bool) {
	s.mu.Lock()
	rec, ok := s.users[username]
	s.mu.Unlock()
	if !ok {
		return models.User{}, false
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)) != nil {
		return models.User{}, false
	}
	return models.User{UserID: rec.ID, Username: rec.Username, Email: rec.Email}, true
}

// Posts lists all posts ordered by ID.
func (s *Store) Posts() []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Post, 0, len(s.posts))
	for _, rec := range s.posts {
		out = append(out, models.Post{
			PostID:          rec.ID,
			Name:            rec.Name,
			DateOfDeath:     rec.DateOfDeath,
			Content:         rec.Content,
			CreatedBy:       rec.CreatedBy,
			CreatorUsername: rec.CreatorUsername,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PostID < out[j].PostID })
	return out
}

// CreatePost inserts a post and returns its new ID.
func (s *Store) CreatePost(p models.PostPayload) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPost++
	s.posts[s.nextPost] = &postRec{
		ID:              s.nextPost,
		Name:            p.Name,
		DateOfDeath:     p.DateOfDeath,
		Content:         p.Content,
		CreatedBy:       p.CreatedBy,
		CreatorUsername: p.CreatorUsername,
	}
	return s.nextPost
}

// UpdatePost rewrites a post's fields. Returns false when it does not exist.
func (s *Store) UpdatePost(id int, p models.PostPayload) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.posts[id]
	if !ok {
		return false
	}
	rec.Name = p.Name
	rec.DateOfDeath = p.DateOfDeath
	rec.Content = p.Content
	rec.CreatedBy = p.CreatedBy
	rec.CreatorUsername = p.CreatorUsername
	return true
}

// DeletePost removes a post and its associations.
func (s *Store) DeletePost(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return false
	}
	delete(s.posts, id)
	delete(s.postPlatforms, id)
	delete(s.postImages, id)
	return true
}

// HasPost reports post existence.
func (s *Store) HasPost(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.posts[id]
	return ok
}

// Platforms lists the read-only platform catalogue.
func (s *Store) Platforms() []models.Platform {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Platform(nil), s.platforms...)
}

func (s *Store) hasPlatformLocked(id int) bool {
	for _, p := range s.platforms {
		if p.PlatformID == id {
			return true
		}
	}
	return false
}

// PostPlatforms lists the platform IDs associated with a post.
func (s *Store) PostPlatforms(postID int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.postPlatforms[postID]...)
}

// SetPostPlatforms replaces a post's platform association wholesale.
func (s *Store) SetPostPlatforms(postID int, platformIDs []int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[postID]; !ok {
		return false
	}
	for _, id := range platformIDs {
		if !s.hasPlatformLocked(id) {
			return false
		}
	}
	s.postPlatforms[postID] = append([]int(nil), platformIDs...)
	return true
}

// AddImage registers an image and returns its ID.
func (s *Store) AddImage(url, source string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextImage++
	s.images[s.nextImage] = &models.Image{ImageID: s.nextImage, URL: url, Source: source}
	return s.nextImage
}

// LinkImage associates an image with a post, idempotently.
func (s *Store) LinkImage(postID, imageID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[postID]; !ok {
		return false
	}
	if _, ok := s.images[imageID]; !ok {
		return false
	}
	for _, id := range s.postImages[postID] {
		if id == imageID {
			return true
		}
	}
	s.postImages[postID] = append(s.postImages[postID], imageID)
	return true
}

// UnlinkImage removes an image association.
func (s *Store) UnlinkImage(postID, imageID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	links := s.postImages[postID]
	for i, id := range links {
		if id == imageID {
			s.postImages[postID] = append(links[:i], links[i+1:]...)
			return
		}
	}
}

// PostImages lists the images linked to a post.
func (s *Store) PostImages(postID int) []models.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Image, 0, len(s.postImages[postID]))
	for _, id := range s.postImages[postID] {
		if img, ok := s.images[id]; ok {
			out = append(out, *img)
		}
	}
	return out
}
