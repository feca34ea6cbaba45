package models

import (
	"encoding/json"
	"testing"
)

func TestDraftValidate(t *testing.T) {
	d := NewDraft()
	if err := d.Validate(); err != ErrDraftIncomplete {
		t.Fatalf("empty draft: %v", err)
	}
	d.Name = "John Doe"
	if err := d.Validate(); err != ErrDraftIncomplete {
		t.Fatalf("date missing: %v", err)
	}
	d.DateOfDeath = "2024-11-02"
	if err := d.Validate(); err != nil {
		t.Fatalf("complete draft rejected: %v", err)
	}
	if d.Persisted() {
		t.Fatal("fresh draft claims to be persisted")
	}
}

func TestPostSavedIDAcceptsBothKeys(t *testing.T) {
	cases := []struct {
		body string
		want int
	}{
		{`{"PostID":5,"status":"Post created"}`, 5},
		{`{"status":"Post created","post_id":9}`, 9},
		{`{"status":"Post created"}`, -1},
	}
	for _, tc := range cases {
		var saved PostSaved
		if err := json.Unmarshal([]byte(tc.body), &saved); err != nil {
			t.Fatal(err)
		}
		if saved.ID() != tc.want {
			t.Fatalf("%s: ID %d, want %d", tc.body, saved.ID(), tc.want)
		}
	}
}

func TestPayloadWireFields(t *testing.T) {
	d := NewDraft()
	d.Name = "John Doe"
	d.DateOfDeath = "2024-11-02"
	d.Attachments = []Attachment{NewAttachment("https://img/a.jpg", "web")}

	raw, err := json.Marshal(d.Payload(3, "alice"))
	if err != nil {
		t.Fatal(err)
	}
	var wire map[string]any
	json.Unmarshal(raw, &wire)

	for _, key := range []string{"name", "date_of_death", "content", "created_by", "creator_username", "platforms", "images"} {
		if _, ok := wire[key]; !ok {
			t.Fatalf("wire field %q missing from %s", key, raw)
		}
	}
	if wire["created_by"].(float64) != 3 {
		t.Fatalf("created_by %v", wire["created_by"])
	}

	// Anonymous saves omit the creator entirely.
	raw, _ = json.Marshal(d.Payload(-1, ""))
	wire = map[string]any{}
	json.Unmarshal(raw, &wire)
	if _, ok := wire["created_by"]; ok {
		t.Fatal("created_by present without an authenticated user")
	}
}
