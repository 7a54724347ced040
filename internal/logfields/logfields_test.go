package logfields

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"BuildID", KeyBuildID, "b1", BuildID("b1")},
		{"Trigger", KeyTrigger, "webhook", Trigger("webhook")},
		{"Ref", KeyRef, "refs/heads/main", Ref("refs/heads/main")},
		{"Commit", KeyCommit, "abc123", Commit("abc123")},
		{"Stage", KeyStage, "render", Stage("render")},
		{"State", KeyState, "Rendering", State("Rendering")},
		{"FromState", KeyFromState, "Idle", FromState("Idle")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"Slug", KeySlug, "linker-issues", Slug("linker-issues")},
		{"Tag", KeyTag, "unreal", Tag("unreal")},
		{"CacheKey", KeyCacheKey, "deadbeef", CacheKey("deadbeef")},
		{"Publisher", KeyPublisher, "git", Publisher("git")},
		{"Method", KeyMethod, "POST", Method("POST")},
		{"RemoteAddr", KeyRemoteAddr, "1.2.3.4", RemoteAddr("1.2.3.4")},
		{"Event", KeyEvent, "push", Event("push")},
		{"URL", KeyURL, "http://example", URL("http://example")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if tc.attr.Value.String() != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %s", tc.name, tc.attrVal, tc.attr.Value.String())
		}
	}
}

func TestNumericAndErrorHelpers(t *testing.T) {
	if a := Count(3); a.Key != KeyCount || a.Value.Int64() != 3 {
		t.Fatalf("Count attr = %v", a)
	}
	if a := Duration(1500 * time.Microsecond); a.Key != KeyDurationMS || a.Value.Float64() != 1.5 {
		t.Fatalf("Duration attr = %v", a)
	}
	if a := Error(nil); a.Value.String() != "" {
		t.Fatalf("Error(nil) = %v", a)
	}
	if a := Error(errors.New("boom")); a.Key != KeyError || a.Value.String() != "boom" {
		t.Fatalf("Error attr = %v", a)
	}
}
