package main

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/reef/config"
	"github.com/pthm-cable/reef/game"
	"github.com/pthm-cable/reef/morphology"
)

// FitnessEvaluator runs headless reefs and scores their final cover.
type FitnessEvaluator struct {
	params      *ParamVector
	ticks       int
	seeds       []int64
	baseConfig  *config.Config
	lib         *morphology.Library
	targetCover float64

	mu        sync.Mutex
	lastCover float64 // mean final cover from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator. The template library is built
// once and shared by every run.
func NewFitnessEvaluator(params *ParamVector, ticks int, seeds []int64, baseCfg *config.Config, targetCover float64) (*FitnessEvaluator, error) {
	lib, err := morphology.Build(baseCfg.World.Size, morphology.Params{
		StemHeight: baseCfg.Morphology.StemHeight,
		StemRadius: baseCfg.Morphology.StemRadius,
	})
	if err != nil {
		return nil, fmt.Errorf("building templates: %w", err)
	}
	return &FitnessEvaluator{
		params:      params,
		ticks:       ticks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		lib:         lib,
		targetCover: targetCover,
	}, nil
}

// LastCover returns the mean final cover from the most recent evaluation.
func (fe *FitnessEvaluator) LastCover() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastCover
}

// Evaluate computes fitness for a parameter vector (lower = better): the
// squared error between mean final cover across seeds and the target.
// A run that fails scores as zero cover.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	covers := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			cover, err := fe.runSimulation(x, s)
			if err != nil {
				return
			}
			covers[idx] = cover
		}(i, seed)
	}
	wg.Wait()

	mean := stat.Mean(covers, nil)
	fe.mu.Lock()
	fe.lastCover = mean
	fe.mu.Unlock()

	d := mean - fe.targetCover
	return d * d
}

// configFor returns a copy of the base config with x and seed applied.
func (fe *FitnessEvaluator) configFor(x []float64, seed int64) *config.Config {
	cfg := *fe.baseConfig
	fe.params.ApplyToConfig(&cfg, x)
	cfg.World.Seed = seed
	cfg.Debug.CheckInvariants = false
	return &cfg
}

// runSimulation runs one seed to the tick limit and returns its final cover.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) (float64, error) {
	cfg := fe.configFor(x, seed)
	if err := cfg.Refresh(); err != nil {
		return 0, err
	}
	sim, err := game.New(cfg, fe.lib, game.Options{})
	if err != nil {
		return 0, err
	}
	for sim.CurrentTick() < fe.ticks {
		if _, err := sim.Step(); err != nil {
			return 0, err
		}
	}
	return sim.Metrics().TotalCover, nil
}
