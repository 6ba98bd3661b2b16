package sim

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Comparison holds one Result per policy, indexed in AllPolicies order.
// ID distinguishes reports of repeated comparisons.
type Comparison struct {
	ID      string    `json:"id"`
	Results []*Result `json:"results"`
}

// Best returns the policy with the lowest average waiting time.
// Earlier policies in AllPolicies win ties.
func (c *Comparison) Best() Policy {
	var best *Result
	for _, r := range c.Results {
		if best == nil || r.Metrics.AvgWaitingTime < best.Metrics.AvgWaitingTime {
			best = r
		}
	}
	if best == nil {
		return ""
	}
	return best.Policy
}

// CompareAll runs every policy over the same specs concurrently. Each run
// works on its own copy of the specs, so the runs share nothing.
// params.Trace is ignored; a trace records a single run.
func CompareAll(ctx context.Context, specs []ProcessSpec, params Params) (*Comparison, error) {
	params.Trace = nil
	results := make([]*Result, len(AllPolicies))

	g, gCtx := errgroup.WithContext(ctx)
	for i, policy := range AllPolicies {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			res, err := Run(policy, specs, params)
			if err != nil {
				return fmt.Errorf("%s: %w", policy, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := &Comparison{ID: uuid.NewString(), Results: results}
	logrus.Infof("Comparison %s: %d policies over %d processes; best average waiting: %s",
		c.ID, len(results), len(specs), c.Best())
	return c, nil
}
