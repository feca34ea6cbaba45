package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"dimfdesk/models"
	"dimfdesk/remote"
	"dimfdesk/utils"
)

// GenerateResult carries generated obituary content together with the search
// inputs it was produced from, cached on the draft for regeneration.
type GenerateResult struct {
	Content string
	Query   string
	Summary string
}

// Posts handles the post collection: listing, loading, deleting and the
// search-then-generate content pipeline.
type Posts struct {
	api *remote.Client
	ui  remote.Dispatcher
	log *zap.SugaredLogger
}

func NewPosts(api *remote.Client, ui remote.Dispatcher) *Posts {
	return &Posts{api: api, ui: ui, log: utils.S()}
}

// List fetches all posts, newest data wins; the sidebar is always rebuilt from
// the server, never from local state.
func (p *Posts) List(ctx context.Context, done func([]models.Post, error)) {
	remote.Call(p.ui, func() ([]models.Post, error) {
		return p.fetchAll(ctx)
	}, done)
}

// LoadByName finds a post by its display name and hydrates its platform and
// image associations. Hydration is best effort: a failed sub-request yields an
// empty list rather than failing the load.
func (p *Posts) LoadByName(ctx context.Context, name string, done func(*models.Draft, error)) {
	remote.Call(p.ui, func() (*models.Draft, error) {
		posts, err := p.fetchAll(ctx)
		if err != nil {
			return nil, err
		}
		for _, post := range posts {
			if post.Name != name {
				continue
			}
			draft := &models.Draft{
				PostID:      post.PostID,
				Name:        post.Name,
				DateOfDeath: post.DateOfDeath,
				Content:     post.Content,
			}
			p.hydrate(ctx, draft)
			return draft, nil
		}
		return nil, fmt.Errorf("no post named %q", name)
	}, done)
}

// Delete removes a persisted post. Only valid once an ID > 0 exists.
func (p *Posts) Delete(ctx context.Context, postID int, done func(error)) {
	remote.Run(p.ui, func() error {
		if postID <= 0 {
			return fmt.Errorf("post has not been saved yet")
		}
		return p.api.Do(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d", postID), nil, nil)
	}, done)
}

// Generate runs the two-step content pipeline: aggregate web search results
// for "<name> <date>", then ask the AI endpoint for an obituary based on them.
// The validation failure is returned synchronously, before any network call.
func (p *Posts) Generate(ctx context.Context, draft *models.Draft, done func(GenerateResult, error)) error {
	if err := draft.Validate(); err != nil {
		return err
	}
	name, dod := draft.Name, draft.DateOfDeath
	remote.Call(p.ui, func() (GenerateResult, error) {
		query := name + " " + dod

		var search models.SearchResult
		path := "/google/search?q=" + url.QueryEscape(query)
		if err := p.api.Do(ctx, http.MethodGet, path, nil, &search); err != nil {
			return GenerateResult{}, err
		}

		var ai models.AIResponse
		if err := p.api.Do(ctx, http.MethodPost, "/ai/", search, &ai); err != nil {
			return GenerateResult{}, err
		}

		p.log.Infow("content generated", "name", name, "chars", len(ai.Response))
		return GenerateResult{
			Content: utils.Sanitize(ai.Response),
			Query:   search.Q,
			Summary: search.Summary,
		}, nil
	}, done)
	return nil
}

func (p *Posts) fetchAll(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := p.api.Do(ctx, http.MethodGet, "/posts/", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (p *Posts) hydrate(ctx context.Context, draft *models.Draft) {
	var refs []models.PlatformRef
	if err := p.api.Do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d/platforms/", draft.PostID), nil, &refs); err != nil {
		p.log.Warnw("loading platforms for post failed", "post_id", draft.PostID, "err", err)
	}
	for _, ref := range refs {
		draft.PlatformIDs = append(draft.PlatformIDs, ref.PlatformID)
	}

	var images []models.Image
	if err := p.api.Do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d/images/", draft.PostID), nil, &images); err != nil {
		p.log.Warnw("loading images for post failed", "post_id", draft.PostID, "err", err)
	}
	for _, img := range images {
		att := models.NewAttachment(img.URL, img.Source)
		att.ImageID = img.ImageID
		draft.Attachments = append(draft.Attachments, att)
	}
}
