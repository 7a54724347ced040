package publish

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

var (
	// ErrPublishAuth matches credential failures: missing, invalid or expired tokens.
	ErrPublishAuth = errors.New("publish authentication failed")
	// ErrPublishTransfer matches network and filesystem failures during transfer.
	ErrPublishTransfer = errors.New("publish transfer failed")
)

// AuthError reports that the destination rejected our credentials.
type AuthError struct {
	Publisher string
	Target    string
	Err       error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s publish to %s: authentication failed: %v", e.Publisher, e.Target, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Is(target error) bool { return target == ErrPublishAuth }

// TransferError reports a failure moving the artifact to the destination.
type TransferError struct {
	Publisher string
	Target    string
	Op        string
	Err       error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s publish to %s: %s: %v", e.Publisher, e.Target, e.Op, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

func (e *TransferError) Is(target error) bool { return target == ErrPublishTransfer }

// classifyGitError maps go-git push failures onto AuthError or TransferError.
func classifyGitError(target, op string, err error) error {
	if errors.Is(err, transport.ErrAuthenticationRequired) ||
		errors.Is(err, transport.ErrAuthorizationFailed) ||
		errors.Is(err, transport.ErrInvalidAuthMethod) {
		return &AuthError{Publisher: "git", Target: target, Err: err}
	}
	l := strings.ToLower(err.Error())
	switch {
	case strings.Contains(l, "authentication failed"),
		strings.Contains(l, "authentication required"),
		strings.Contains(l, "authorization failed"),
		strings.Contains(l, "invalid credentials"),
		strings.Contains(l, "bad credentials"):
		return &AuthError{Publisher: "git", Target: target, Err: err}
	}
	return &TransferError{Publisher: "git", Target: target, Op: op, Err: err}
}
