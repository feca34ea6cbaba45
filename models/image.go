package models

import "github.com/google/uuid"

// Image is the server's record of an uploaded image.
type Image struct {
	ImageID int    `json:"ImageID"`
	URL     string `json:"URL"`
	Source  string `json:"Source,omitempty"`
}

// AddImageRequest registers an image by URL.
type AddImageRequest struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// AddImageResponse carries the server-assigned ID of a registered image.
type AddImageResponse struct {
	ImageID int    `json:"image_id"`
	Status  string `json:"status,omitempty"`
}

// ImageLink is the body for linking or unlinking an image and a post.
type ImageLink struct {
	PostID  int `json:"post_id"`
	ImageID int `json:"image_id"`
}

// ImageSearchResponse is the thumbnail list returned by the image search proxy.
type ImageSearchResponse struct {
	Q          string   `json:"q,omitempty"`
	Thumbnails []string `json:"thumbnails"`
}

// Attachment is an image in the authoring form. Until the server assigns an
// ImageID the attachment is identified by its provisional local key.
type Attachment struct {
	Key     string
	ImageID int
	URL     string
	Source  string
}

// NewAttachment creates an unregistered attachment for the given URL.
func NewAttachment(url, source string) Attachment {
	return Attachment{Key: uuid.NewString(), ImageID: -1, URL: url, Source: source}
}

// Registered reports whether the server has assigned an ID to this image.
func (a Attachment) Registered() bool { return a.ImageID > 0 }
