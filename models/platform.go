package models

// Platform is a social media platform a post can be distributed to. Read-only
// from the client's perspective.
type Platform struct {
	PlatformID      int    `json:"PlatformID"`
	Name            string `json:"Name"`
	APIAccessStatus int    `json:"APIAccessStatus"`
	PlatformURL     string `json:"PlatformURL,omitempty"`
	IconURL         string `json:"IconURL,omitempty"`
}

// HasAPIAccess reports whether the platform can be posted to directly.
func (p Platform) HasAPIAccess() bool { return p.APIAccessStatus != 0 }

// PlatformRef is one element of a post's platform association list.
type PlatformRef struct {
	PlatformID int `json:"PlatformID"`
}

// PlatformSet is the replace-semantics body for updating a post's platforms.
type PlatformSet struct {
	PlatformIDs []int `json:"platform_ids"`
}
