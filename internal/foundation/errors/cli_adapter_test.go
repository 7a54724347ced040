package errors

import (
	"bytes"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: ExitSuccess,
		},
		{
			name:     "content error",
			err:      ContentError("title missing").Build(),
			expected: ExitBuildError,
		},
		{
			name:     "render error",
			err:      RenderError("template failed").Build(),
			expected: ExitBuildError,
		},
		{
			name:     "config error",
			err:      ConfigError("bad config").Build(),
			expected: ExitBuildError,
		},
		{
			name:     "publish transfer error",
			err:      PublishError("connection reset").Build(),
			expected: ExitPublishError,
		},
		{
			name:     "publish auth error",
			err:      AuthError("token expired").Build(),
			expected: ExitPublishError,
		},
		{
			name:     "wrapped publish error",
			err:      fmt.Errorf("build abc: %w", PublishError("push rejected").Build()),
			expected: ExitPublishError,
		},
		{
			name:     "unclassified error",
			err:      stdErrors.New("unknown error"),
			expected: ExitBuildError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.ExitCodeFor(tt.err)
			if got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, slog.Default())
	verbose := NewCLIErrorAdapter(true, slog.Default())

	contentErr := WrapError(stdErrors.New("2024-12-13-post.md: title is required"), CategoryContent, "malformed content").Build()
	if got := quiet.FormatError(contentErr); got != "malformed content: 2024-12-13-post.md: title is required" {
		t.Errorf("FormatError(content) = %q", got)
	}

	publishErr := PublishError("push failed").Build()
	if got := quiet.FormatError(publishErr); got != "publish: push failed" {
		t.Errorf("FormatError(publish) = %q", got)
	}
	if got := verbose.FormatError(publishErr); got != publishErr.Error() {
		t.Errorf("verbose FormatError = %q, want %q", got, publishErr.Error())
	}

	if got := quiet.FormatError(stdErrors.New("boom")); got != "Error: boom" {
		t.Errorf("FormatError(plain) = %q", got)
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var out bytes.Buffer
	var code int
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	adapter.out = &out
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(AuthError("token rejected").Build())

	if code != ExitPublishError {
		t.Errorf("exit code = %d, want %d", code, ExitPublishError)
	}
	if out.String() != "auth: token rejected\n" {
		t.Errorf("output = %q", out.String())
	}
}
