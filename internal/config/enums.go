package config

import (
	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/foundation/normalization"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// CacheBackend selects where rendered bodies are cached between builds.
type CacheBackend string

const (
	CacheBackendNone CacheBackend = "none"
	CacheBackendFS   CacheBackend = "fs"
	CacheBackendNATS CacheBackend = "nats"
)

// PublishTarget selects the publisher implementation.
type PublishTarget string

const (
	PublishTargetDir  PublishTarget = "dir"
	PublishTargetGit  PublishTarget = "git"
	PublishTargetNone PublishTarget = "none"
)

// RetryBackoffMode enumerates supported backoff strategies for retries.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

var (
	logLevelNormalizer = normalization.NewNormalizer("logging.level", map[string]LogLevel{
		"debug":   LogLevelDebug,
		"info":    LogLevelInfo,
		"warn":    LogLevelWarn,
		"warning": LogLevelWarn,
		"error":   LogLevelError,
	}, LogLevelInfo)

	logFormatNormalizer = normalization.NewNormalizer("logging.format", map[string]LogFormat{
		"json": LogFormatJSON,
		"text": LogFormatText,
	}, LogFormatText)

	cacheBackendNormalizer = normalization.NewNormalizer("cache.backend", map[string]CacheBackend{
		"none":       CacheBackendNone,
		"off":        CacheBackendNone,
		"fs":         CacheBackendFS,
		"filesystem": CacheBackendFS,
		"nats":       CacheBackendNATS,
	}, CacheBackendFS)

	publishTargetNormalizer = normalization.NewNormalizer("publish.target", map[string]PublishTarget{
		"dir":       PublishTargetDir,
		"directory": PublishTargetDir,
		"git":       PublishTargetGit,
		"none":      PublishTargetNone,
	}, PublishTargetDir)

	retryModeNormalizer = normalization.NewNormalizer("cache.retry.mode", map[string]RetryBackoffMode{
		"fixed":       RetryBackoffFixed,
		"linear":      RetryBackoffLinear,
		"exponential": RetryBackoffExponential,
	}, RetryBackoffExponential)
)

// NormalizeLogLevel maps user input onto a LogLevel, defaulting to info.
func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.Normalize(raw)
}

// NormalizeLogFormat maps user input onto a LogFormat, defaulting to text.
func NormalizeLogFormat(raw string) LogFormat {
	return logFormatNormalizer.Normalize(raw)
}

// normalize case-folds enumerations, rejecting unknown values.
func (c *Config) normalize() error {
	var err error
	if c.Logging.Level, err = logLevelNormalizer.Parse(string(c.Logging.Level)); err != nil {
		return errors.ValidationError(err.Error()).Build()
	}
	if c.Logging.Format, err = logFormatNormalizer.Parse(string(c.Logging.Format)); err != nil {
		return errors.ValidationError(err.Error()).Build()
	}
	if c.Cache.Backend, err = cacheBackendNormalizer.Parse(string(c.Cache.Backend)); err != nil {
		return errors.ValidationError(err.Error()).Build()
	}
	if c.Publish.Target, err = publishTargetNormalizer.Parse(string(c.Publish.Target)); err != nil {
		return errors.ValidationError(err.Error()).Build()
	}
	if c.Cache.Retry.Mode, err = retryModeNormalizer.Parse(string(c.Cache.Retry.Mode)); err != nil {
		return errors.ValidationError(err.Error()).Build()
	}
	return nil
}
