package trigger

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // legacy X-Hub-Signature support
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"strings"
)

// githubPushEvent is the subset of the push payload shared by GitHub, Gitea
// and Forgejo.
type githubPushEvent struct {
	Ref        string `json:"ref"`
	Before     string `json:"before"`
	After      string `json:"after"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
	Pusher struct {
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"pusher"`
}

// ParseGitHubPush decodes a push webhook payload.
func ParseGitHubPush(payload []byte) (PushEvent, error) {
	var p githubPushEvent
	if err := json.Unmarshal(payload, &p); err != nil {
		return PushEvent{}, fmt.Errorf("decode push event: %w", err)
	}
	if p.Ref == "" {
		return PushEvent{}, fmt.Errorf("push event has no ref")
	}
	pusher := p.Pusher.Name
	if pusher == "" {
		pusher = p.Pusher.Username
	}
	return PushEvent{
		Ref:        p.Ref,
		Before:     p.Before,
		After:      p.After,
		Repository: p.Repository.FullName,
		Pusher:     pusher,
		Source:     SourceWebhook,
	}, nil
}

// ValidateSignature checks an X-Hub-Signature-256 (sha256=) or legacy
// X-Hub-Signature (sha1=) HMAC of payload.
func ValidateSignature(payload []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}

	var newHash func() hash.Hash
	var expected string
	switch {
	case strings.HasPrefix(signature, "sha256="):
		newHash, expected = sha256.New, strings.TrimPrefix(signature, "sha256=")
	case strings.HasPrefix(signature, "sha1="):
		newHash, expected = sha1.New, strings.TrimPrefix(signature, "sha1=")
	default:
		return false
	}

	mac := hmac.New(newHash, []byte(secret))
	mac.Write(payload)
	calc := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(calc))
}

// Sign returns the sha256= signature for payload, as a forge would send it.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
