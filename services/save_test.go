package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dimfdesk/models"
	"dimfdesk/remote"
	"dimfdesk/session"
)

// immediate runs closures inline. The sequencer delivers from its own
// goroutine, so inline execution still exercises the off-caller delivery path.
type immediate struct{}

func (immediate) Invoke(fn func()) { fn() }

func newTestSaver(t *testing.T, handler http.Handler) *Saver {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	sess := session.New()
	sess.Begin(1, "tester", "tester@example.com", "tok")
	api := remote.NewClient(srv.URL, time.Second, 5*time.Second, sess, nil)
	return NewSaver(api, immediate{}, sess)
}

func awaitOutcome(t *testing.T, ch <-chan SaveOutcome) SaveOutcome {
	t.Helper()
	select {
	case out := <-ch:
		return out
	case <-time.After(5 * time.Second):
		t.Fatal("save sequence never delivered an outcome")
		return SaveOutcome{}
	}
}

func TestSaveValidatesBeforeAnyRequest(t *testing.T) {
	var requests atomic.Int32
	saver := newTestSaver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))

	draft := models.NewDraft()
	draft.Name = "John Doe" // date missing

	err := saver.Save(context.Background(), draft, func(SaveOutcome) {
		t.Error("outcome delivered for an invalid draft")
	})
	if !errors.Is(err, models.ErrDraftIncomplete) {
		t.Fatalf("got %v", err)
	}
	if n := requests.Load(); n != 0 {
		t.Fatalf("%d requests issued before validation", n)
	}
}

func TestSaveStopsAfterPrimaryFailure(t *testing.T) {
	var followUps atomic.Int32
	saver := newTestSaver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/posts/" {
			http.Error(w, `{"detail":"name too long"}`, http.StatusUnprocessableEntity)
			return
		}
		followUps.Add(1)
		w.Write([]byte(`{}`))
	}))

	draft := models.NewDraft()
	draft.Name = "John Doe"
	draft.DateOfDeath = "2024-11-02"
	draft.PlatformIDs = []int{1, 2}
	draft.Attachments = []models.Attachment{models.NewAttachment("https://img/1.jpg", "web")}

	ch := make(chan SaveOutcome, 1)
	if err := saver.Save(context.Background(), draft, func(out SaveOutcome) { ch <- out }); err != nil {
		t.Fatalf("Save returned %v", err)
	}

	out := awaitOutcome(t, ch)
	if out.Saved {
		t.Fatal("outcome claims success after a failed create")
	}
	if out.Message != "name too long" {
		t.Fatalf("message %q", out.Message)
	}
	if n := followUps.Load(); n != 0 {
		t.Fatalf("%d dependent requests issued after primary failure", n)
	}
}

func TestSaveRecoversMissingID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/posts/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/posts/":
			// No ID in the response; the fallback must re-query.
			w.Write([]byte(`{"status":"Post created"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/posts/":
			json.NewEncoder(w).Encode([]models.Post{
				{PostID: 3, Name: "John Doe"},
				{PostID: 5, Name: "Someone Else"},
				{PostID: 7, Name: "John Doe"},
			})
		default:
			w.Write([]byte(`{"status":"ok"}`))
		}
	})
	saver := newTestSaver(t, mux)

	draft := models.NewDraft()
	draft.Name = "John Doe"
	draft.DateOfDeath = "2024-11-02"

	ch := make(chan SaveOutcome, 1)
	if err := saver.Save(context.Background(), draft, func(out SaveOutcome) { ch <- out }); err != nil {
		t.Fatalf("Save returned %v", err)
	}

	out := awaitOutcome(t, ch)
	if !out.Saved || !out.IDKnown {
		t.Fatalf("outcome %+v", out)
	}
	if out.PostID != 7 {
		t.Fatalf("recovered ID %d, want the highest matching ID 7", out.PostID)
	}
	if out.Message != "Post created successfully" {
		t.Fatalf("message %q", out.Message)
	}
}

func TestSaveReportsUnknownID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/posts/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			w.Write([]byte(`{"status":"Post created"}`))
		default:
			// Re-query finds nothing with the draft's name.
			json.NewEncoder(w).Encode([]models.Post{{PostID: 9, Name: "Someone Else"}})
		}
	})
	saver := newTestSaver(t, mux)

	draft := models.NewDraft()
	draft.Name = "John Doe"
	draft.DateOfDeath = "2024-11-02"

	ch := make(chan SaveOutcome, 1)
	if err := saver.Save(context.Background(), draft, func(out SaveOutcome) { ch <- out }); err != nil {
		t.Fatalf("Save returned %v", err)
	}

	out := awaitOutcome(t, ch)
	if !out.Saved {
		t.Fatal("the post was stored; the outcome must say so")
	}
	if out.IDKnown || out.PostID != -1 {
		t.Fatalf("outcome %+v claims a usable ID", out)
	}
	if !strings.Contains(out.Message, "could not be determined") {
		t.Fatalf("message %q", out.Message)
	}
}

func TestSavePartialFailureAggregatesWarnings(t *testing.T) {
	var deliveries atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/posts/4/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"Post updated","post_id":4}`))
	})
	mux.HandleFunc("/posts/4/platforms/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/posts/4/images/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/images/", func(w http.ResponseWriter, r *http.Request) {
		var req models.AddImageRequest
		json.NewDecoder(r.Body).Decode(&req)
		if strings.Contains(req.URL, "bad") {
			http.Error(w, `{"detail":"unreachable image"}`, http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"image_id":11,"status":"Image added"}`))
	})
	mux.HandleFunc("/posts/images/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"Image linked to post"}`))
	})
	mux.HandleFunc("/posts/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	saver := newTestSaver(t, mux)

	draft := models.NewDraft()
	draft.PostID = 4
	draft.Name = "John Doe"
	draft.DateOfDeath = "2024-11-02"
	draft.PlatformIDs = []int{1}
	draft.Attachments = []models.Attachment{
		models.NewAttachment("https://img/good-1.jpg", "web"),
		models.NewAttachment("https://img/bad-2.jpg", "web"),
		models.NewAttachment("https://img/good-3.jpg", "web"),
	}

	ch := make(chan SaveOutcome, 4)
	err := saver.Save(context.Background(), draft, func(out SaveOutcome) {
		deliveries.Add(1)
		ch <- out
	})
	if err != nil {
		t.Fatalf("Save returned %v", err)
	}

	out := awaitOutcome(t, ch)
	if !out.Saved || !out.PartialFailure() {
		t.Fatalf("outcome %+v, want a partial failure", out)
	}
	if len(out.Warnings) != 1 || !strings.Contains(out.Warnings[0], "bad-2.jpg") {
		t.Fatalf("warnings %v", out.Warnings)
	}
	if out.Message != "Post saved, but some items could not be attached" {
		t.Fatalf("message %q", out.Message)
	}

	time.Sleep(100 * time.Millisecond)
	if n := deliveries.Load(); n != 1 {
		t.Fatalf("outcome delivered %d times", n)
	}
}

func TestCompletionTrackerJoinsConcurrentFinishes(t *testing.T) {
	const total = 64
	tracker := newCompletionTracker(total)

	var wg sync.WaitGroup
	for i := 0; i < total; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%4 == 0 {
				tracker.finish(fmt.Sprintf("op %d failed", i))
				return
			}
			tracker.finish("")
		}()
	}

	warnings := tracker.wait()
	wg.Wait()
	if len(warnings) != total/4 {
		t.Fatalf("got %d warnings, want %d", len(warnings), total/4)
	}
}
