package join

import "github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/geo"

// Seed derivation labels, per spec.md §4.1's phase contract. rng_count
// and rng_sample are derived once per run from cfg.Seed; rng_plan (used
// only inside Sample, to build the slot plan) and the per-event labels
// are derived again from rng_sample's own seed so that Sample's
// sub-streams never depend on Count having run first.
const (
	SeedLabelCount    uint64 = 1
	SeedLabelSample   uint64 = 2
	SeedLabelPlan     uint64 = 3
	SeedLabelEventA   uint64 = 4
	SeedLabelEventB   uint64 = 5

	// SeedLabelPrefetch seeds Framework III's pass-1 speculative partner
	// draws, one sub-stream per event, independent of rng_sample so that
	// prefetching never perturbs Framework II's (or budget=0 Framework
	// III's) rng_sample consumption order.
	SeedLabelPrefetch uint64 = 6
)

// JoinEnumerator yields join pairs one at a time in a fixed,
// implementation-determined order (spec.md §4.7's Enumerate contract).
// Next returns false once exhausted; Stats returns the counters of the
// walk that produced the stream, fixed when the enumerator was built.
type JoinEnumerator interface {
	Next() (Pair, bool)
	Stats() JoinStats
}

// Runner is the uniform protocol every framework driver implements
// (spec component C11). A run calls Reset, Build, Count, and Sample in
// that order; Enumerate is optional and, when called, returns a stream
// positioned at the first pair. Failures in any step abort the run and
// surface the error verbatim — no partial SampleSet is ever returned.
type Runner interface {
	// Reset releases any per-run state (event list, weights, slot plan)
	// so Build can be called again from a clean state.
	Reset()

	// Build constructs the sweep substrate for dataset under cfg. Build
	// cannot fail on an already-validated dataset.
	Build(dataset geo.Dataset, cfg Config) error

	// Count performs pass 1 and returns the exact |J|. No engine in this
	// module derives an rng_count stream (SeedLabelCount): Framework I's
	// and II's Count draw no randomness, and Framework III's prefetch
	// draws use per-event SeedLabelPrefetch streams of cfg.Seed.
	Count(cfg Config) (CountResult, error)

	// Sample performs the remaining pass(es) needed to draw cfg.T
	// uniform samples from J with replacement. Sample must be called
	// after a successful Count on the same built state. Implementations
	// derive their own rng_sample sub-stream from cfg.Seed (rng_sample =
	// derive(seed, 2)), and further per-event sub-streams from it.
	Sample(cfg Config) (SampleSet, error)

	// Enumerate returns a deterministic, order-fixed stream over every
	// pair in J. Optional to call; when unused it has no effect on
	// Count/Sample.
	Enumerate(cfg Config) (JoinEnumerator, error)
}
