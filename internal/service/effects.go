package service

import (
	"context"

	"mentorhub-backend/internal/logger"
)

// effect is one best-effort post-commit step. The transactional core
// collects effects and the runner executes them after commit, isolating
// every failure so one broken external call never aborts the rest.
type effect struct {
	name string
	args []any
	run  func(ctx context.Context) error
}

func runEffects(ctx context.Context, effects []effect) {
	for _, e := range effects {
		if err := e.run(ctx); err != nil {
			logger.EffectFailed(e.name, err, e.args...)
		}
	}
}
