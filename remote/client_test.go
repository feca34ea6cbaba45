package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

func newTestClient(t *testing.T, handler http.HandlerFunc, token TokenSource) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second, 5*time.Second, token, nil)
}

func TestDoDecodesSuccessBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","post_id":12}`))
	}, nil)

	var out struct {
		Status string `json:"status"`
		PostID int    `json:"post_id"`
	}
	if err := c.Do(context.Background(), http.MethodGet, "/posts/", nil, &out); err != nil {
		t.Fatalf("Do returned %v", err)
	}
	if out.Status != "ok" || out.PostID != 12 {
		t.Fatalf("decoded %+v", out)
	}
}

func TestDoExtractsDetailFromHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Invalid credentials"}`, http.StatusUnauthorized)
	}, nil)

	err := c.Do(context.Background(), http.MethodPost, "/auth/login/", map[string]string{"username": "x"}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	re, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if re.Kind != KindHTTP || re.Status != http.StatusUnauthorized {
		t.Fatalf("got kind %v status %d", re.Kind, re.Status)
	}
	if re.Message != "Invalid credentials" {
		t.Fatalf("message %q, want the detail text alone", re.Message)
	}
}

func TestDoHTTPErrorWithoutDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}, nil)

	err := c.Do(context.Background(), http.MethodGet, "/posts/", nil, nil)
	if kind, ok := KindOf(err); !ok || kind != KindHTTP {
		t.Fatalf("got %v", err)
	}
	if err.Error() != "server returned status 500: boom" {
		t.Fatalf("message %q", err.Error())
	}
}

func TestDoNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second, time.Second, nil, nil)
	err := c.Do(context.Background(), http.MethodGet, "/posts/", nil, nil)
	if kind, ok := KindOf(err); !ok || kind != KindNetwork {
		t.Fatalf("got %v", err)
	}
}

func TestDoDecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}, nil)

	var out map[string]any
	err := c.Do(context.Background(), http.MethodGet, "/posts/", nil, &out)
	if kind, ok := KindOf(err); !ok || kind != KindDecode {
		t.Fatalf("got %v", err)
	}
}

func TestBearerHeader(t *testing.T) {
	var got string
	handler := func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}

	c := newTestClient(t, handler, staticToken("abc123"))
	if err := c.Do(context.Background(), http.MethodGet, "/posts/", nil, nil); err != nil {
		t.Fatalf("Do returned %v", err)
	}
	if got != "Bearer abc123" {
		t.Fatalf("Authorization header %q", got)
	}

	c = newTestClient(t, handler, staticToken(""))
	if err := c.Do(context.Background(), http.MethodGet, "/posts/", nil, nil); err != nil {
		t.Fatalf("Do returned %v", err)
	}
	if got != "" {
		t.Fatalf("unauthenticated request carried header %q", got)
	}
}

func TestKindNames(t *testing.T) {
	if KindNetwork.String() != "network_error" || KindHTTP.String() != "http_error" || KindDecode.String() != "decode_error" {
		t.Fatalf("kind names changed: %s %s %s", KindNetwork, KindHTTP, KindDecode)
	}
}
