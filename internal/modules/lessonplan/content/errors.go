package content

import (
	"errors"
	"fmt"
)

// ErrContentGeneration marks a failed content-generation step. It is fatal to
// the request: without structured content there is nothing to render.
var ErrContentGeneration = errors.New("content generation failed")

const (
	StagePrompt  = "prompt"
	StageRequest = "request"
	StageDecode  = "decode"
)

type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("content generation failed at %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool { return target == ErrContentGeneration }
