package session

import (
	"fmt"

	"github.com/chazu/joinery/pkg/config"
	"github.com/chazu/joinery/pkg/engine"
	"github.com/chazu/joinery/pkg/join"
	"github.com/chazu/joinery/pkg/kernel"
	"github.com/chazu/joinery/pkg/recompute"
	"go.uber.org/zap"
)

// EngineOptions derives the evaluation options from cfg.
func EngineOptions(cfg config.Config) (engine.Options, error) {
	policy, err := join.ParseDegeneratePolicy(cfg.Join.Degenerate)
	if err != nil {
		return engine.Options{}, fmt.Errorf("session: %w", err)
	}
	return engine.Options{
		RefineDefault: cfg.Join.RefineModel,
		Degenerate:    policy,
		Timeout:       cfg.Engine.Timeout,
	}, nil
}

// FromConfig builds a session on k configured by cfg.
func FromConfig(cfg config.Config, k kernel.Kernel, log *zap.Logger, opts ...Option) (*Session, error) {
	eopts, err := EngineOptions(cfg)
	if err != nil {
		return nil, err
	}
	rc := recompute.New(k, recompute.WithLogger(log))
	return New(engine.NewEngine(eopts), rc, append([]Option{WithLogger(log)}, opts...)...), nil
}
