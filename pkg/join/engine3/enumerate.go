package engine3

import (
	"fmt"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/activeindex"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/join"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/observability"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/sweep"
)

// Enumerate walks the sweep once, reporting every Pattern-A then
// Pattern-B partner per Start event. Caching and prefetching are a
// Count/Sample-only optimization; Enumerate never consults them.
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
