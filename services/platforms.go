package services

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"dimfdesk/models"
	"dimfdesk/remote"
	"dimfdesk/utils"
)

// Platforms reads the platform catalogue and manages post associations.
type Platforms struct {
	api *remote.Client
	ui  remote.Dispatcher
	log *zap.SugaredLogger
}

func NewPlatforms(api *remote.Client, ui remote.Dispatcher) *Platforms {
	return &Platforms{api: api, ui: ui, log: utils.S()}
}

// All lists every platform known to the server.
func (p *Platforms) All(ctx context.Context, done func([]models.Platform, error)) {
	remote.Call(p.ui, func() ([]models.Platform, error) {
		return p.fetchAll(ctx)
	}, done)
}

// ForPost lists the platform IDs currently associated with a post.
func (p *Platforms) ForPost(ctx context.Context, postID int, done func([]int, error)) {
	remote.Call(p.ui, func() ([]int, error) {
		return p.fetchForPost(ctx, postID)
	}, done)
}

// SetForPost replaces the post's platform association with exactly the given
// set. The server treats the list as the full desired state, so repeating the
// call with the same IDs is a no-op.
func (p *Platforms) SetForPost(ctx context.Context, postID int, platformIDs []int, done func(error)) {
	remote.Run(p.ui, func() error {
		return p.replaceForPost(ctx, postID, platformIDs)
	}, done)
}

func (p *Platforms) fetchAll(ctx context.Context) ([]models.Platform, error) {
	var platforms []models.Platform
	if err := p.api.Do(ctx, http.MethodGet, "/platforms/", nil, &platforms); err != nil {
		return nil, err
	}
	return platforms, nil
}

func (p *Platforms) fetchForPost(ctx context.Context, postID int) ([]int, error) {
	var refs []models.PlatformRef
	if err := p.api.Do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d/platforms/", postID), nil, &refs); err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.PlatformID)
	}
	return ids, nil
}

func (p *Platforms) replaceForPost(ctx context.Context, postID int, platformIDs []int) error {
	if platformIDs == nil {
		platformIDs = []int{}
	}
	body := models.PlatformSet{PlatformIDs: platformIDs}
	if err := p.api.Do(ctx, http.MethodPut, fmt.Sprintf("/posts/%d/platforms/", postID), body, nil); err != nil {
		p.log.Warnw("platform update failed", "post_id", postID, "err", err)
		return err
	}
	return nil
}
