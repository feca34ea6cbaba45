package models

import "errors"

// Post is the server's record of a memorial post, field names as returned by
// the backend.
type Post struct {
	PostID          int    `json:"PostID"`
	Name            string `json:"Name"`
	DateOfDeath     string `json:"DateOfDeath"`
	Content         string `json:"Content"`
	CreatedBy       *int   `json:"CreatedBy,omitempty"`
	CreatorUsername string `json:"CreatorUsername,omitempty"`
}

// PostPayload is the request body for create and update.
type PostPayload struct {
	Name            string   `json:"name"`
	DateOfDeath     string   `json:"date_of_death"`
	Content         string   `json:"content"`
	CreatedBy       *int     `json:"created_by,omitempty"`
	CreatorUsername string   `json:"creator_username,omitempty"`
	Platforms       []int    `json:"platforms"`
	Images          []string `json:"images"`
}

// PostSaved is the create/update response. Deployed backend revisions disagree
// on the key for the inserted ID, so both are accepted.
type PostSaved struct {
	PostID int    `json:"PostID"`
	AltID  int    `json:"post_id"`
	Status string `json:"status"`
}

// ID returns the usable post ID from the response, or -1 when the server did
// not echo one.
func (r PostSaved) ID() int {
	if r.PostID > 0 {
		return r.PostID
	}
	if r.AltID > 0 {
		return r.AltID
	}
	return -1
}

// ErrDraftIncomplete is the client-side validation failure raised before any
// network request is issued.
var ErrDraftIncomplete = errors.New("name and date of death are required")

// Draft is the client-side editing state for one post. A PostID of -1 marks a
// post that has not been persisted yet.
type Draft struct {
	PostID      int
	Name        string
	DateOfDeath string
	Content     string
	PlatformIDs []int
	Attachments []Attachment

	// Cached inputs of the last content generation.
	LastQuery   string
	LastSummary string
}

// NewDraft returns an empty, unpersisted draft.
func NewDraft() *Draft {
	return &Draft{PostID: -1}
}

// Persisted reports whether the draft is backed by a server-side post.
func (d *Draft) Persisted() bool { return d.PostID > 0 }

// Validate enforces the pre-submit invariant: name and date of death must be
// non-empty before any save or generate request.
func (d *Draft) Validate() error {
	if d.Name == "" || d.DateOfDeath == "" {
		return ErrDraftIncomplete
	}
	return nil
}

// ImageURLs lists the attachment URLs in form order.
func (d *Draft) ImageURLs() []string {
	urls := make([]string, 0, len(d.Attachments))
	for _, a := range d.Attachments {
		urls = append(urls, a.URL)
	}
	return urls
}

// Payload builds the wire body for create/update from the draft.
func (d *Draft) Payload(createdBy int, creatorUsername string) PostPayload {
	p := PostPayload{
		Name:        d.Name,
		DateOfDeath: d.DateOfDeath,
		Content:     d.Content,
		Platforms:   append([]int(nil), d.PlatformIDs...),
		Images:      d.ImageURLs(),
	}
	if p.Platforms == nil {
		p.Platforms = []int{}
	}
	if createdBy > 0 {
		p.CreatedBy = &createdBy
		p.CreatorUsername = creatorUsername
	}
	return p
}
