// Package errs defines the error taxonomy shared by the parser, store and
// engine packages. Callers discriminate with errors.Is on the sentinels and
// errors.As on the typed errors.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation      = errors.New("invalid term")
	ErrMissingIndex    = errors.New("index not available")
	ErrUnknownDocument = errors.New("unknown document")
	ErrInvalidCorpus   = errors.New("invalid corpus")
)

// ValidationError reports a term argument that did not normalise to exactly
// one token.
type ValidationError struct {
	Term   string
	Tokens []string
}

func (e *ValidationError) Error() string {
	if len(e.Tokens) == 0 {
		return fmt.Sprintf("%s: %q produces no tokens", ErrValidation, e.Term)
	}
	return fmt.Sprintf("%s: %q produces %d tokens (%s), expected exactly one",
		ErrValidation, e.Term, len(e.Tokens), strings.Join(e.Tokens, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type MissingReason int

const (
	// ReasonNotLoaded: the engine was queried before a successful load.
	ReasonNotLoaded MissingReason = iota
	// ReasonAbsent: no snapshot, or only part of one, exists in storage.
	ReasonAbsent
	// ReasonCorrupt: a snapshot exists but could not be decoded or its
	// artifacts belong to different builds.
	ReasonCorrupt
)

func (r MissingReason) String() string {
	switch r {
	case ReasonNotLoaded:
		return "not loaded"
	case ReasonAbsent:
		return "absent"
	case ReasonCorrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

// MissingIndexError is returned whenever no usable index is available. Err
// keeps the storage-level cause for logs; Error stays user facing.
type MissingIndexError struct {
	Reason   MissingReason
	Artifact string
	Err      error
}

func (e *MissingIndexError) Error() string {
	var sb strings.Builder
	sb.WriteString(ErrMissingIndex.Error())
	sb.WriteString(" (")
	sb.WriteString(e.Reason.String())
	if e.Artifact != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Artifact)
	}
	sb.WriteString("); run the build command first")
	return sb.String()
}

func (e *MissingIndexError) Is(target error) bool {
	return target == ErrMissingIndex
}

func (e *MissingIndexError) Unwrap() error {
	return e.Err
}

func Absent(artifact string, err error) *MissingIndexError {
	return &MissingIndexError{Reason: ReasonAbsent, Artifact: artifact, Err: err}
}

func Corrupt(artifact string, err error) *MissingIndexError {
	return &MissingIndexError{Reason: ReasonCorrupt, Artifact: artifact, Err: err}
}

func NotLoaded() *MissingIndexError {
	return &MissingIndexError{Reason: ReasonNotLoaded}
}

// MissingReasonOf returns the reason carried by err, if any.
func MissingReasonOf(err error) (MissingReason, bool) {
	var missing *MissingIndexError
	if errors.As(err, &missing) {
		return missing.Reason, true
	}
	return 0, false
}
