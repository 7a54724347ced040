// Package logfields holds the canonical slog attribute keys used across blogbuilder.
package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyTrigger    = "trigger"
	KeyRef        = "ref"
	KeyCommit     = "commit"
	KeyStage      = "stage"
	KeyState      = "state"
	KeyFromState  = "from_state"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeySlug       = "slug"
	KeyTag        = "tag"
	KeyCacheKey   = "cache_key"
	KeyPublisher  = "publisher"
	KeyCount      = "count"
	KeyMethod     = "method"
	KeyRemoteAddr = "remote_addr"
	KeyEvent      = "event"
	KeyURL        = "url"
	KeyStatus     = "status"
	KeyUserAgent  = "user_agent"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Trigger(t string) slog.Attr      { return slog.String(KeyTrigger, t) }
func Ref(r string) slog.Attr          { return slog.String(KeyRef, r) }
func Commit(c string) slog.Attr       { return slog.String(KeyCommit, c) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func State(s string) slog.Attr        { return slog.String(KeyState, s) }
func FromState(s string) slog.Attr    { return slog.String(KeyFromState, s) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func Tag(t string) slog.Attr          { return slog.String(KeyTag, t) }
func CacheKey(k string) slog.Attr     { return slog.String(KeyCacheKey, k) }
func Publisher(name string) slog.Attr { return slog.String(KeyPublisher, name) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func RemoteAddr(a string) slog.Attr   { return slog.String(KeyRemoteAddr, a) }
func Event(e string) slog.Attr        { return slog.String(KeyEvent, e) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func UserAgent(ua string) slog.Attr   { return slog.String(KeyUserAgent, ua) }

// Duration reports d in fractional milliseconds.
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
