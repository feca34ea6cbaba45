package mockapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dimfdesk/models"
)

func (s *server) login(ctx *gin.Context) {
	var req models.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid request body"})
		return
	}
	user, ok := s.store.Authenticate(req.Username, req.Password)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid credentials"})
		return
	}
	token, err := generateToken(s.opts.JWTSecret, user.UserID, user.Username, 24*time.Hour)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"detail": "token generation failed"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"status": "Login successful",
		"token":  token,
		"user":   user,
	})
}

func (s *server) register(ctx *gin.Context) {
	var req models.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid request body"})
		return
	}
	if req.Username == "" || req.Password == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": "username and password are required"})
		return
	}
	user, ok := s.store.AddUser(req.Username, req.Email, req.Password)
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": "User with this username already exists"})
		return
	}
	token, err := generateToken(s.opts.JWTSecret, user.UserID, user.Username, 24*time.Hour)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"detail": "token generation failed"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"status": "Registration successful",
		"token":  token,
		"user":   user,
	})
}

func (s *server) listPosts(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, s.store.Posts())
}

func (s *server) createPost(ctx *gin.Context) {
	var req models.PostPayload
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid request body"})
		return
	}
	if req.Name == "" || req.DateOfDeath == "" {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "name and date_of_death are required"})
		return
	}
	id := s.store.CreatePost(req)
	if s.opts.EchoCreatedID {
		ctx.JSON(http.StatusOK, gin.H{"status": "Post created", "post_id": id})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "Post created"})
}

func (s *server) updatePost(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req models.PostPayload
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid request body"})
		return
	}
	if !s.store.UpdatePost(id, req) {
		ctx.JSON(http.StatusNotFound, gin.H{"detail": "post not found"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "Post updated"})
}

// deletePostOrUnlink serves both DELETE /posts/{id} and DELETE /posts/images/,
// which share a route because of the wildcard segment.
func (s *server) deletePostOrUnlink(ctx *gin.Context) {
	if ctx.Param("id") == "images" {
		var link models.ImageLink
		if err := ctx.ShouldBindJSON(&link); err != nil {
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid request body"})
			return
		}
		s.store.UnlinkImage(link.PostID, link.ImageID)
		ctx.JSON(http.StatusOK, gin.H{"status": "Image unlinked from post"})
		return
	}
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	if !s.store.DeletePost(id) {
		ctx.JSON(http.StatusNotFound, gin.H{"detail": "post not found"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "Post deleted"})
}

// linkImage serves POST /posts/images/ via the wildcard segment.
func (s *server) linkImage(ctx *gin.Context) {
	if ctx.Param("id") != "images" {
		ctx.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return
	}
	var link models.ImageLink
	if err := ctx.ShouldBindJSON(&link); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid request body"})
		return
	}
	if !s.store.LinkImage(link.PostID, link.ImageID) {
		ctx.JSON(http.StatusNotFound, gin.H{"detail": "post or image not found"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "Image linked to post"})
}

func (s *server) listPlatforms(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, s.store.Platforms())
}

func (s *server) getPostPlatforms(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	ids := s.store.PostPlatforms(id)
	refs := make([]models.PlatformRef, 0, len(ids))
	for _, pid := range ids {
		refs = append(refs, models.PlatformRef{PlatformID: pid})
	}
	ctx.JSON(http.StatusOK, refs)
}

func (s *server) setPostPlatforms(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var set models.PlatformSet
	if err := ctx.ShouldBindJSON(&set); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid request body"})
		return
	}
	if !s.store.SetPostPlatforms(id, set.PlatformIDs) {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": "unknown post or platform"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "Platforms updated"})
}

func (s *server) addImage(ctx *gin.Context) {
	var req models.AddImageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid request body"})
		return
	}
	if req.URL == "" {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "url is required"})
		return
	}
	id := s.store.AddImage(req.URL, req.Source)
	ctx.JSON(http.StatusOK, gin.H{"status": "Image added", "image_id": id})
}

func (s *server) getPostImages(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, s.store.PostImages(id))
}

func (s *server) contentSearch(ctx *gin.Context) {
	q := strings.TrimSpace(ctx.Query("q"))
	if q == "" {
		ctx.JSON(http.StatusNotFound, gin.H{"detail": "No results found."})
		return
	}
	summary := fmt.Sprintf(
		"[1] PAGE TITLE: Remembering %s PAGE SNIPPET: Friends and family gathered to honor their memory.\n"+
			"[2] PAGE TITLE: %s obituary PAGE SNIPPET: A life of service remembered by the community.\n",
		q, q)
	ctx.JSON(http.StatusOK, models.SearchResult{Q: q, Summary: summary})
}

func (s *server) imageSearch(ctx *gin.Context) {
	q := strings.TrimSpace(ctx.Query("q"))
	if q == "" {
		ctx.JSON(http.StatusNotFound, gin.H{"detail": "No image results found."})
		return
	}
	slug := url.QueryEscape(q)
	thumbnails := make([]string, 0, 5)
	for i := 1; i <= 5; i++ {
		thumbnails = append(thumbnails, fmt.Sprintf("https://images.example.com/thumbs/%s/%d.jpg", slug, i))
	}
	ctx.JSON(http.StatusOK, gin.H{"q": q, "thumbnails": thumbnails})
}

func (s *server) generate(ctx *gin.Context) {
	var req models.SearchResult
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid request body"})
		return
	}
	response := fmt.Sprintf(
		"We remember %s with gratitude and respect. "+
			"Their dedication touched everyone around them, and their memory endures. "+
			"May we honor their legacy of service. #Remembrance", req.Q)
	ctx.JSON(http.StatusOK, models.AIResponse{Response: response})
}

func (s *server) exportExcel(ctx *gin.Context) {
	data, err := buildWorkbook(s.store)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"detail": "Export failed: " + err.Error()})
		return
	}
	filename := fmt.Sprintf("dimf-posts_%s.xlsx", uuid.NewString())
	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func pathID(ctx *gin.Context) (int, bool) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"detail": "invalid id"})
		return 0, false
	}
	return id, true
}
