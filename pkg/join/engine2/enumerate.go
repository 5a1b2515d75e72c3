package engine2

import (
	"fmt"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/activeindex"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/join"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/observability"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/sweep"
)

// Enumerate walks the same sweep as Count, reporting every Pattern-A
// partner then every Pattern-B partner for each Start event (spec.md
// §4.7's "Enumerate" contract). It does not require Count or Sample to
// have run first — it runs its own report walk and neither reads nor
// writes the pass-1 weights — but it does require Build.
func (e *Engine) Enumerate(cfg join.Config) (join.JoinEnumerator, error) {
	if !e.built {
		return nil, fmt.Errorf("%w: Enumerate called before Build", join.ErrInternal)
	}

	var pairs []join.Pair

	var stats join.JoinStats

	err := observability.Record(e.Recorder, "run_enumerate", func() error {
		var walkErr error

		stats, walkErr = sweep.Walk(e.ctx, func(info sweep.StartInfo, partners []activeindex.Handle) error {
			for _, partner := range partners {
				pairs = append(pairs, e.makePair(info, partner))
			}

			return nil
		})

		return walkErr
	})
	if err != nil {
		return nil, err
	}

	e.stats = stats

	return join.NewSliceEnumerator(pairs, stats), nil
}
