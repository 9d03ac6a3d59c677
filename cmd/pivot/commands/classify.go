package commands

import (
	"errors"

	"git.home.luguber.info/inful/pivot/internal/changes"
	ferrors "git.home.luguber.info/inful/pivot/internal/foundation/errors"
	"git.home.luguber.info/inful/pivot/internal/pipeline"
	"git.home.luguber.info/inful/pivot/internal/state"
)

// Classify maps domain errors onto classified errors so the CLI adapter picks
// the right exit code. Already classified errors pass through.
func Classify(err error) error {
	if err == nil || ferrors.IsClassified(err) {
		return err
	}

	var diverged *changes.HistoryDivergedError
	if errors.As(err, &diverged) {
		return ferrors.WrapError(err, ferrors.CategoryHistory, "recorded commit is no longer reachable; run 'pivot reset' to start over").
			WithContext("repository", diverged.Repository).
			WithContext("cursor", diverged.Cursor).
			UserAction().
			Build()
	}

	var corrupt *state.CorruptError
	if errors.As(err, &corrupt) {
		return ferrors.WrapError(err, ferrors.CategoryState, "state file is corrupt").
			WithContext("path", corrupt.Path).
			Fatal().
			Build()
	}

	if errors.Is(err, pipeline.ErrNoHead) {
		return ferrors.WrapError(err, ferrors.CategoryGit, "repository checkout has no commits").Build()
	}

	var ioErr *state.IOError
	if errors.As(err, &ioErr) {
		return ferrors.WrapError(err, ferrors.CategoryState, "state file could not be written").
			WithContext("path", ioErr.Path).
			Build()
	}
	return err
}
