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

// Images registers images, links them to posts and proxies image search.
type Images struct {
	api *remote.Client
	ui  remote.Dispatcher
	log *zap.SugaredLogger
}

func NewImages(api *remote.Client, ui remote.Dispatcher) *Images {
	return &Images{api: api, ui: ui, log: utils.S()}
}

// Add registers an image by URL and returns the server-assigned image ID.
func (i *Images) Add(ctx context.Context, imageURL, source string, done func(int, error)) {
	remote.Call(i.ui, func() (int, error) {
		return i.register(ctx, imageURL, source)
	}, done)
}

// Link associates a registered image with a post.
func (i *Images) Link(ctx context.Context, postID, imageID int, done func(error)) {
	remote.Run(i.ui, func() error {
		return i.link(ctx, postID, imageID)
	}, done)
}

// Unlink removes an image association from a post.
func (i *Images) Unlink(ctx context.Context, postID, imageID int, done func(error)) {
	remote.Run(i.ui, func() error {
		err := i.api.Do(ctx, http.MethodDelete, "/posts/images/", models.ImageLink{PostID: postID, ImageID: imageID}, nil)
		if err != nil {
			i.log.Warnw("image unlink failed", "post_id", postID, "image_id", imageID, "err", err)
		}
		return err
	}, done)
}

// ForPost lists the images linked to a post.
func (i *Images) ForPost(ctx context.Context, postID int, done func([]models.Image, error)) {
	remote.Call(i.ui, func() ([]models.Image, error) {
		return i.fetchForPost(ctx, postID)
	}, done)
}

// Search returns thumbnail URLs for a free-text query via the search proxy.
func (i *Images) Search(ctx context.Context, query string, done func([]string, error)) {
	remote.Call(i.ui, func() ([]string, error) {
		var resp models.ImageSearchResponse
		path := "/google/images/?q=" + url.QueryEscape(query)
		if err := i.api.Do(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return nil, err
		}
		return resp.Thumbnails, nil
	}, done)
}

func (i *Images) register(ctx context.Context, imageURL, source string) (int, error) {
	var resp models.AddImageResponse
	err := i.api.Do(ctx, http.MethodPost, "/images/", models.AddImageRequest{URL: imageURL, Source: source}, &resp)
	if err != nil {
		i.log.Warnw("image registration failed", "url", imageURL, "err", err)
		return -1, err
	}
	return resp.ImageID, nil
}

func (i *Images) link(ctx context.Context, postID, imageID int) error {
	err := i.api.Do(ctx, http.MethodPost, "/posts/images/", models.ImageLink{PostID: postID, ImageID: imageID}, nil)
	if err != nil {
		i.log.Warnw("image link failed", "post_id", postID, "image_id", imageID, "err", err)
	}
	return err
}

func (i *Images) fetchForPost(ctx context.Context, postID int) ([]models.Image, error) {
	var images []models.Image
	if err := i.api.Do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d/images/", postID), nil, &images); err != nil {
		return nil, err
	}
	return images, nil
}
