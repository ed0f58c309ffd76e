package dracor

import (
	"github.com/kailas-cloud/dracor/internal/domain"
	"github.com/kailas-cloud/dracor/internal/domain/filter"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound                    = domain.ErrNotFound
	ErrCorpusNotFound              = domain.ErrCorpusNotFound
	ErrPlayNotFound                = domain.ErrPlayNotFound
	ErrBadRequest                  = domain.ErrBadRequest
	ErrUpstream                    = domain.ErrUpstream
	ErrInvalidFormat               = domain.ErrInvalidFormat
	ErrInvalidParameterCombination = domain.ErrInvalidParameterCombination
	ErrAmbiguousName               = domain.ErrAmbiguousName
	ErrIndexNotBuilt               = domain.ErrIndexNotBuilt

	// ErrConfiguration matches every rejected filter condition:
	// malformed names, unknown operators and unknown fields.
	ErrConfiguration      = filter.ErrConfiguration
	ErrMalformedCondition = filter.ErrMalformedCondition
	ErrUnknownOperator    = filter.ErrUnknownOperator
	ErrUnknownField       = filter.ErrUnknownField
)

// ConfigError names the condition and field a filter rejected.
type ConfigError = filter.ConfigError
