// Package errors provides the classified error primitives used across blogbuilder.
//
// A ClassifiedError carries a category (config, content, render, publish, ...),
// a severity and a retry strategy. Domain packages return their own typed errors
// (content.MetadataError, publish.AuthError, ...); the build pipeline wraps them
// into classified errors so the CLI and HTTP adapters can choose exit codes and
// status codes without knowing the domain types.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryPublish, "push to pages branch failed").
//		Fatal().
//		WithContext("remote", url).
//		Build()
package errors
