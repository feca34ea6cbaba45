package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"dimfdesk/models"
	"dimfdesk/remote"
	"dimfdesk/session"
	"dimfdesk/utils"
)

// SaveOutcome is the single aggregated result of a save sequence.
//
// Saved is true whenever the primary create/update succeeded, even if
// dependent platform or image operations failed afterwards; those show up in
// Warnings instead. IDKnown is false in the rare case where the post was
// created but no usable ID could be determined, which leaves delete and image
// editing unavailable until the post is reloaded.
type SaveOutcome struct {
	Saved    bool
	PostID   int
	IDKnown  bool
	Message  string
	Warnings []string

	// State refreshed from the server after the sequence finished. The
	// client never assumes its local lists survived the save intact.
	PlatformIDs []int
	Images      []models.Image
	Posts       []models.Post
}

// PartialFailure reports whether the post was saved but at least one
// dependent operation failed.
func (o SaveOutcome) PartialFailure() bool {
	return o.Saved && len(o.Warnings) > 0
}

// Saver sequences the "Save Post" user action across the backend's separate
// endpoints: the post record itself, its platform association and one
// register+link pair per attached image. No server-side transaction spans
// these, so the sequencer owns the ordering and the aggregation.
type Saver struct {
	api  *remote.Client
	ui   remote.Dispatcher
	sess *session.Session
	log  *zap.SugaredLogger
}

func NewSaver(api *remote.Client, ui remote.Dispatcher, sess *session.Session) *Saver {
	return &Saver{api: api, ui: ui, sess: sess, log: utils.S()}
}

// Save validates the draft and starts the sequence. The validation failure is
// returned synchronously, before any network request; the outcome is
// delivered to done on the dispatcher, exactly once.
func (s *Saver) Save(ctx context.Context, draft *models.Draft, done func(SaveOutcome)) error {
	if err := draft.Validate(); err != nil {
		return err
	}

	// Snapshot the draft so concurrent form edits cannot race the sequence.
	req := saveRequest{
		postID:      draft.PostID,
		name:        draft.Name,
		payload:     draft.Payload(s.sess.UserID(), s.sess.Username()),
		platformIDs: append([]int(nil), draft.PlatformIDs...),
		attachments: append([]models.Attachment(nil), draft.Attachments...),
	}
	go s.run(ctx, req, done)
	return nil
}

type saveRequest struct {
	postID      int
	name        string
	payload     models.PostPayload
	platformIDs []int
	attachments []models.Attachment
}

func (s *Saver) run(ctx context.Context, req saveRequest, done func(SaveOutcome)) {
	deliver := func(out SaveOutcome) {
		s.ui.Invoke(func() { done(out) })
	}

	// Step 1: the primary save. Nothing else runs until this succeeds.
	isUpdate := req.postID > 0
	var saved models.PostSaved
	var err error
	if isUpdate {
		err = s.api.Do(ctx, http.MethodPut, fmt.Sprintf("/posts/%d/", req.postID), req.payload, &saved)
	} else {
		err = s.api.Do(ctx, http.MethodPost, "/posts/", req.payload, &saved)
	}
	if err != nil {
		s.log.Warnw("primary save failed", "name", req.name, "update", isUpdate, "err", err)
		deliver(SaveOutcome{PostID: req.postID, Message: err.Error()})
		return
	}

	// Step 2: resolve the post ID. Updates already know it; creates take it
	// from the response, falling back to re-querying the collection because
	// some backend revisions do not echo the inserted ID.
	postID := req.postID
	if postID <= 0 {
		postID = saved.ID()
	}
	if postID <= 0 {
		postID = s.recoverID(ctx, req.name)
	}
	if postID <= 0 {
		s.log.Warnw("saved post but could not determine its ID", "name", req.name)
		deliver(SaveOutcome{
			Saved:   true,
			PostID:  -1,
			Message: "Post saved, but its ID could not be determined. Reload the post list before deleting it or editing its images.",
		})
		return
	}

	// Steps 3 and 4: fan out the platform replace-set update and one
	// register+link pair per image. These run concurrently; the shared
	// progress counters are only touched inside the tracker's critical
	// section, and the completion decision is made there too, so it fires
	// exactly once no matter in which order the operations land.
	tracker := newCompletionTracker(1 + len(req.attachments))

	go func() {
		if err := s.setPlatforms(ctx, postID, req.platformIDs); err != nil {
			tracker.finish("platforms could not be updated: " + err.Error())
			return
		}
		tracker.finish("")
	}()

	for _, att := range req.attachments {
		att := att
		go func() {
			tracker.finish(s.attachImage(ctx, postID, att))
		}()
	}

	warnings := tracker.wait()

	out := SaveOutcome{
		Saved:    true,
		PostID:   postID,
		IDKnown:  true,
		Warnings: warnings,
	}
	switch {
	case len(warnings) > 0:
		out.Message = "Post saved, but some items could not be attached"
	case isUpdate:
		out.Message = "Post updated successfully"
	default:
		out.Message = "Post created successfully"
	}

	// Step 5: refresh dependent state from the server before reporting, so
	// the form and sidebar repopulate from what actually got stored.
	s.refresh(ctx, &out)

	s.log.Infow("save sequence finished", "post_id", postID, "warnings", len(warnings))
	deliver(out)
}

// recoverID is the best-effort fallback for create responses that omit the
// new ID: fetch the whole collection and take the highest ID among posts with
// a matching name. Returns -1 when that fails too.
func (s *Saver) recoverID(ctx context.Context, name string) int {
	var posts []models.Post
	if err := s.api.Do(ctx, http.MethodGet, "/posts/", nil, &posts); err != nil {
		return -1
	}
	best := -1
	for _, post := range posts {
		if post.Name == name && post.PostID > best {
			best = post.PostID
		}
	}
	return best
}

func (s *Saver) setPlatforms(ctx context.Context, postID int, platformIDs []int) error {
	if platformIDs == nil {
		platformIDs = []int{}
	}
	return s.api.Do(ctx, http.MethodPut, fmt.Sprintf("/posts/%d/platforms/", postID), models.PlatformSet{PlatformIDs: platformIDs}, nil)
}

// attachImage registers the image if the server has not assigned it an ID yet,
// then links it to the post. Returns a warning string, or "" on success.
func (s *Saver) attachImage(ctx context.Context, postID int, att models.Attachment) string {
	imageID := att.ImageID
	if imageID <= 0 {
		var resp models.AddImageResponse
		err := s.api.Do(ctx, http.MethodPost, "/images/", models.AddImageRequest{URL: att.URL, Source: att.Source}, &resp)
		if err != nil {
			return fmt.Sprintf("image %s could not be registered: %v", att.URL, err)
		}
		imageID = resp.ImageID
		if imageID <= 0 {
			return fmt.Sprintf("image %s was registered but the server returned no ID", att.URL)
		}
	}
	if err := s.api.Do(ctx, http.MethodPost, "/posts/images/", models.ImageLink{PostID: postID, ImageID: imageID}, nil); err != nil {
		return fmt.Sprintf("image %s could not be linked: %v", att.URL, err)
	}
	return ""
}

// refresh re-reads the post's associations and the post list. Best effort: a
// failed refresh leaves the corresponding field nil.
func (s *Saver) refresh(ctx context.Context, out *SaveOutcome) {
	var refs []models.PlatformRef
	if err := s.api.Do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d/platforms/", out.PostID), nil, &refs); err == nil {
		out.PlatformIDs = make([]int, 0, len(refs))
		for _, ref := range refs {
			out.PlatformIDs = append(out.PlatformIDs, ref.PlatformID)
		}
	}
	var images []models.Image
	if err := s.api.Do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d/images/", out.PostID), nil, &images); err == nil {
		out.Images = images
	}
	var posts []models.Post
	if err := s.api.Do(ctx, http.MethodGet, "/posts/", nil, &posts); err == nil {
		out.Posts = posts
	}
}

// completionTracker joins N concurrent sub-operations into one completion
// event. The processed counter, the warning list and the "is this the last
// one" check all live in the same critical section: two goroutines can never
// both see processed == total-1, and the done channel closes exactly once.
type completionTracker struct {
	mu        sync.Mutex
	processed int
	total     int
	warnings  []string
	done      chan struct{}
}

func newCompletionTracker(total int) *completionTracker {
	return &completionTracker{total: total, done: make(chan struct{})}
}

// finish records one sub-operation's result; warn is "" on success.
func (t *completionTracker) finish(warn string) {
	t.mu.Lock()
	if warn != "" {
		t.warnings = append(t.warnings, warn)
	}
	t.processed++
	last := t.processed == t.total
	t.mu.Unlock()
	if last {
		close(t.done)
	}
}

// wait blocks until every sub-operation has finished and returns the
// accumulated warnings.
func (t *completionTracker) wait() []string {
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.warnings
}
