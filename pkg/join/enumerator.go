package join

// SliceEnumerator adapts an already-materialized pair slice to the
// JoinEnumerator contract. Every engine's Enumerate runs its deterministic
// walk once, eagerly, and hands the result to NewSliceEnumerator — the
// laziness JoinEnumerator's interface allows is a caller-side property
// (nothing stops an engine from streaming instead), not one any driver
// in this module currently needs.
type SliceEnumerator struct {
	pairs []Pair
	pos   int
	stats JoinStats
}

// NewSliceEnumerator wraps pairs (in the order an engine's deterministic
// walk produced them) and the JoinStats snapshot gathered while doing so.
func NewSliceEnumerator(pairs []Pair, stats JoinStats) *SliceEnumerator {
	return &SliceEnumerator{pairs: pairs, stats: stats}
}

// Next returns the next pair, or (Pair{}, false) once exhausted.
func (e *SliceEnumerator) Next() (Pair, bool) {
	if e.pos >= len(e.pairs) {
		return Pair{}, false
	}

	p := e.pairs[e.pos]
	e.pos++

	return p, true
}

// Stats returns the JoinStats snapshot captured when the enumerator was
// built.
func (e *SliceEnumerator) Stats() JoinStats {
	return e.stats
}
