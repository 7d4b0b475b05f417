package experiment

import (
	"context"
	"runtime"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/oscsim/internal/config"
)

type SweepOptions struct {
	// Workers bounds concurrent runs; <= 0 means GOMAXPROCS.
	Workers  int
	Logger   log.Logger
	Registry *Registry
}

// SweepResult is one run of a sweep. A failed run leaves Result nil and sets
// Err; it does not stop the others.
type SweepResult struct {
	Value  float64
	Result *Result
	Err    error
}

// Sweep runs base once per value with param set to that value. Results come
// back in the order of values. Only cancellation of ctx or an unknown param
// name fails the sweep as a whole.
func Sweep(ctx context.Context, base *config.Config, param string, values []float64, opts SweepOptions) ([]SweepResult, error) {
	if err := base.Clone().Set(param, 0); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	logger = log.With(logger, "component", "sweep", "model", base.Model, "param", param)

	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]SweepResult, len(values))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, v := range values {
		i, v := i, v
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = runOne(gctx, base, param, v, reg, log.With(logger, "value", v))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func runOne(ctx context.Context, base *config.Config, param string, v float64, reg *Registry, logger log.Logger) SweepResult {
	res := SweepResult{Value: v}

	cfg := base.Clone()
	if err := cfg.Set(param, v); err != nil {
		res.Err = err
		return res
	}

	exp, err := New(cfg, reg)
	if err == nil {
		res.Result, err = exp.Run(ctx)
	}
	if err != nil {
		res.Err = err
		level.Warn(logger).Log("msg", "run failed", "err", err)
		return res
	}

	level.Debug(logger).Log("msg", "run done", "samples", res.Result.Trajectory.Len(), "drift", res.Result.Series.Drift())
	return res
}
