package eventstore

import (
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

// ErrBuildNotFound is returned by Summary for a build id with no events.
var ErrBuildNotFound = ferrors.NewError(ferrors.CategoryNotFound, "build not found").Build()

// storeError classifies a SQLite failure during op ("open", "append", "query").
func storeError(op string, err error) *ferrors.ErrorBuilder {
	return ferrors.WrapError(err, ferrors.CategoryEventStore, "build history "+op+" failed").
		WithContext("op", op)
}
