package errors

import "net/http"

// ErrorCategory is the broad class of a failure. It decides the CLI exit
// code and the HTTP status an error is reported with.
type ErrorCategory string

const (
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryAuth       ErrorCategory = "auth"
	CategoryNotFound   ErrorCategory = "not_found"

	// CategoryContent covers authoring errors in the article store:
	// malformed front matter, unterminated code fences, duplicate slugs.
	CategoryContent ErrorCategory = "content"
	CategoryRender  ErrorCategory = "render"

	// CategoryPublish covers failures moving the site to its destination.
	CategoryPublish    ErrorCategory = "publish"
	CategoryNetwork    ErrorCategory = "network"
	CategoryCache      ErrorCategory = "cache"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryEventStore ErrorCategory = "eventstore"

	CategoryRuntime  ErrorCategory = "runtime"
	CategoryDaemon   ErrorCategory = "daemon"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // stops the build
	SeverityError   ErrorSeverity = "error"   // fails the current operation
	SeverityWarning ErrorSeverity = "warning" // build continues degraded
	SeverityInfo    ErrorSeverity = "info"
)

// RetryStrategy tells callers whether repeating the operation can help.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"
	RetryBackoff    RetryStrategy = "backoff"
	RetryUserAction RetryStrategy = "user" // needs a new push or a fixed token
)

// ErrorContext holds structured details attached to an error.
type ErrorContext map[string]any

// Get retrieves a context value.
func (c ErrorContext) Get(key string) (any, bool) {
	v, ok := c[key]
	return v, ok
}

type categoryTraits struct {
	exitCode   int
	httpStatus int
}

// traits maps categories onto process exit codes and HTTP statuses. Only
// publish-side failures exit with ExitPublishError; everything else that
// stops a build exits with ExitBuildError.
var traits = map[ErrorCategory]categoryTraits{
	CategoryConfig:     {ExitBuildError, http.StatusBadRequest},
	CategoryValidation: {ExitBuildError, http.StatusBadRequest},
	CategoryAuth:       {ExitPublishError, http.StatusUnauthorized},
	CategoryNotFound:   {ExitBuildError, http.StatusNotFound},
	CategoryContent:    {ExitBuildError, http.StatusUnprocessableEntity},
	CategoryRender:     {ExitBuildError, http.StatusUnprocessableEntity},
	CategoryPublish:    {ExitPublishError, http.StatusBadGateway},
	CategoryNetwork:    {ExitBuildError, http.StatusBadGateway},
	CategoryRuntime:    {ExitBuildError, http.StatusServiceUnavailable},
	CategoryDaemon:     {ExitBuildError, http.StatusServiceUnavailable},
}

func traitsOf(c ErrorCategory) categoryTraits {
	if t, ok := traits[c]; ok {
		return t
	}
	return categoryTraits{ExitBuildError, http.StatusInternalServerError}
}
