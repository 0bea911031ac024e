package pipeline

import (
	"errors"
	"fmt"

	"github.com/agentic-research/stackgen/internal/content"
	"github.com/agentic-research/stackgen/internal/merge"
	"github.com/agentic-research/stackgen/internal/vfs"
)

// Kind classifies a generation failure.
type Kind string

const (
	KindConfigurationInvalid Kind = "ConfigurationInvalid"
	KindTemplateMissing      Kind = "TemplateMissing"
	KindMergeConflict        Kind = "MergeConflict"
	KindPathCollision        Kind = "PathCollision"
	KindInternal             Kind = "Internal"
)

// GenerationError is the single typed error a failed generation returns.
type GenerationError struct {
	Kind Kind
	Step string
	Path string
	Err  error
}

func (e *GenerationError) Error() string {
	msg := string(e.Kind)
	if e.Step != "" {
		msg += " in step " + e.Step
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// KindOf maps err onto the error taxonomy.
func KindOf(err error) Kind {
	var ge *GenerationError
	switch {
	case errors.As(err, &ge):
		return ge.Kind
	case errors.Is(err, content.ErrTemplateNotFound):
		return KindTemplateMissing
	case errors.Is(err, merge.ErrConflict):
		return KindMergeConflict
	case errors.Is(err, vfs.ErrPathCollision):
		return KindPathCollision
	}
	return KindInternal
}

func wrap(step, p string, err error) error {
	if err == nil {
		return nil
	}
	var ge *GenerationError
	if errors.As(err, &ge) {
		if ge.Step == "" {
			ge.Step = step
		}
		return ge
	}
	return &GenerationError{Kind: KindOf(err), Step: step, Path: p, Err: err}
}
