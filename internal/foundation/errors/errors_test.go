package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("builder sets category severity and context", func(t *testing.T) {
		err := ConfigError("invalid configuration").
			WithContext("file", "blogbuilder.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if file, ok := err.Context().Get("file"); !ok || file != "blogbuilder.yaml" {
			t.Errorf("expected context file=blogbuilder.yaml, got %v", file)
		}
		if err.Error() != "[config:fatal] invalid configuration" {
			t.Errorf("unexpected Error(): %s", err.Error())
		}
	})

	t.Run("detected through wrapping", func(t *testing.T) {
		inner := ContentError("title missing").Build()
		wrapped := fmt.Errorf("rendering: %w", inner)

		if !IsClassified(wrapped) {
			t.Error("expected wrapped error to be classified")
		}
		if !HasCategory(wrapped, CategoryContent) {
			t.Error("expected wrapped error to have content category")
		}
		if HasCategory(errors.New("plain"), CategoryContent) {
			t.Error("plain errors have no category")
		}
		if inner.CanRetry() {
			t.Error("content errors need user action, not retry")
		}
		if !PublishError("reset").Build().CanRetry() {
			t.Error("publish transfer errors are retryable")
		}
	})

	t.Run("cause is preserved", func(t *testing.T) {
		sentinel := errors.New("sentinel")
		err := WrapError(sentinel, CategoryPublish, "push failed").Build()
		if !errors.Is(err, sentinel) {
			t.Error("expected errors.Is to find the cause")
		}
		if err.Error() != "[publish:error] push failed: sentinel" {
			t.Errorf("unexpected Error(): %s", err.Error())
		}
	})

	t.Run("sentinels match by category and message", func(t *testing.T) {
		sentinel := NewError(CategoryNotFound, "build not found").Build()
		err := fmt.Errorf("lookup: %w", NewError(CategoryNotFound, "build not found").WithContext("id", "x").Build())
		if !errors.Is(err, sentinel) {
			t.Error("expected sentinel match")
		}
		if errors.Is(err, NewError(CategoryConfig, "build not found").Build()) {
			t.Error("different category must not match")
		}
	})
}

func TestWithContextDoesNotMutateOriginal(t *testing.T) {
	base := CacheError("restore failed").Build()
	derived := base.WithContext("key", "abc")

	if _, ok := base.Context().Get("key"); ok {
		t.Error("base error context was mutated")
	}
	if v, ok := derived.Context().Get("key"); !ok || v != "abc" {
		t.Errorf("derived context = %v", derived.Context())
	}
	if derived.Category() != CategoryCache || derived.Severity() != SeverityWarning {
		t.Errorf("derived lost classification: %v", derived)
	}
}

func TestHTTPErrorAdapter_StatusCodeFor(t *testing.T) {
	adapter := NewHTTPErrorAdapter(nil)
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{ValidationError("bad").Build(), http.StatusBadRequest},
		{AuthError("bad signature").Build(), http.StatusUnauthorized},
		{NewError(CategoryNotFound, "missing").Build(), http.StatusNotFound},
		{ContentError("bad doc").Build(), http.StatusUnprocessableEntity},
		{PublishError("push").Build(), http.StatusBadGateway},
		{DaemonError("queue full").Build(), http.StatusServiceUnavailable},
		{EventStoreError("locked").Build(), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := adapter.StatusCodeFor(tt.err); got != tt.want {
			t.Errorf("StatusCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
