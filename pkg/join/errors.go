package join

import "errors"

// Sentinel error kinds the core signals, per spec.md §7. None of these
// wrap a panic or exception: every failing operation returns one of
// these (optionally wrapped with fmt.Errorf for context) as a plain Go
// error value.
var (
	// ErrInvalidDataset: rectangle not proper, non-finite coordinate,
	// index out of range, size overflows u32.
	ErrInvalidDataset = errors.New("join: invalid dataset")

	// ErrConfigMismatch: dim != 2, t does not fit in u32, contradictory
	// flags.
	ErrConfigMismatch = errors.New("join: configuration mismatch")

	// ErrJoinTooLarge: u64 overflow while summing per-event weights in
	// Count. Theoretical — requires |J| > 2^64.
	ErrJoinTooLarge = errors.New("join: |J| overflows u64")

	// ErrEnumCapExceeded: Framework I materialization would exceed
	// enum_cap.
	ErrEnumCapExceeded = errors.New("join: enumeration would exceed cap")

	// ErrEmptyQuery: an internal sub-sampler was asked for k > 0 draws
	// from an empty set. Indicates a weight-vs-active-set inconsistency
	// and is fatal — it must never happen if pass-1 weights agree with
	// pass-2 active sets.
	ErrEmptyQuery = errors.New("join: sampler asked to draw from an empty set")

	// ErrBadWeight: alias build received negative/NaN/Inf input.
	ErrBadWeight = errors.New("join: bad weight")

	// ErrInternal: a broken invariant (e.g. a sub-sampler produced a
	// vector of the wrong length). Aborts the run.
	ErrInternal = errors.New("join: internal invariant violation")
)
