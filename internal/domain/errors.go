package domain

import "errors"

var (
	// ErrNotFound signals a missing upstream resource.
	ErrNotFound = errors.New("not found")
	// ErrCorpusNotFound signals an unknown corpus name.
	ErrCorpusNotFound = errors.New("corpus not found")
	// ErrPlayNotFound signals an unknown play name or id.
	ErrPlayNotFound = errors.New("play not found")
	// ErrBadRequest signals that the upstream rejected the request parameters.
	ErrBadRequest = errors.New("bad request")
	// ErrUpstream signals an upstream failure (transport error or unexpected status).
	ErrUpstream = errors.New("upstream error")
	// ErrInvalidFormat signals an unsupported download format.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrInvalidParameterCombination signals mutually exclusive parameters supplied together.
	ErrInvalidParameterCombination = errors.New("invalid parameter combination")
	// ErrAmbiguousName signals a title or name shared by several plays.
	ErrAmbiguousName = errors.New("ambiguous name")
	// ErrIndexNotBuilt signals a lookup before the play index was refreshed.
	ErrIndexNotBuilt = errors.New("play index not built")
)
