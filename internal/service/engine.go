// Package service provides the engine operations and the live sessions
// built on them, with timing recorded for every call.
package service

import (
	"time"

	"github.com/raphaelgruber/ordermatters/internal/dataset"
	"github.com/raphaelgruber/ordermatters/internal/editor"
	"github.com/raphaelgruber/ordermatters/internal/metrics"
	"github.com/raphaelgruber/ordermatters/internal/models"
	"github.com/raphaelgruber/ordermatters/internal/segment"
	"github.com/raphaelgruber/ordermatters/internal/strategy"
	"github.com/raphaelgruber/ordermatters/internal/tau"
)

// Engine exposes the stateless operations over a loaded dataset.
type Engine struct {
	data    *dataset.Dataset
	metrics *metrics.Collector
}

// NewEngine creates an engine. collector may be nil.
func NewEngine(data *dataset.Dataset, collector *metrics.Collector) *Engine {
	return &Engine{data: data, metrics: collector}
}

// Dataset returns the reference data.
func (e *Engine) Dataset() *dataset.Dataset {
	return e.data
}

// Metrics returns the collector, which may be nil.
func (e *Engine) Metrics() *metrics.Collector {
	return e.metrics
}

func (e *Engine) record(op string, start time.Time) {
	if e.metrics != nil {
		e.metrics.RecordTiming(op, time.Since(start))
	}
}

// Correlation scores a sequence of identities.
func (e *Engine) Correlation(sequence []int) tau.Result {
	defer e.record(metrics.OpCorrelation, time.Now())
	return tau.Compute(sequence)
}

// Rank applies s to entities, or to the dataset's strategy entities when
// entities is nil.
func (e *Engine) Rank(entities []models.Entity, s strategy.Strategy) strategy.Result {
	defer e.record(metrics.OpStrategy, time.Now())
	if entities == nil {
		entities = e.data.StrategyEntities
	}
	return strategy.Apply(entities, s)
}

// RankAll applies every strategy to the dataset's strategy entities.
func (e *Engine) RankAll() []strategy.Result {
	defer e.record(metrics.OpStrategy, time.Now())
	return strategy.ApplyAll(e.data.StrategyEntities)
}

// Mutate applies ops in order and returns the final sequence and its score.
func (e *Engine) Mutate(sequence []int, ops []editor.Op) ([]int, tau.Result) {
	defer e.record(metrics.OpMutation, time.Now())
	next := sequence
	for _, op := range ops {
		next = editor.Mutate(next, op, nil)
	}
	if next == nil {
		next = []int{}
	}
	return next, tau.Compute(next)
}

// Segment splits items according to cfg.
func (e *Engine) Segment(cfg segment.Config) segment.Result {
	defer e.record(metrics.OpSegment, time.Now())
	return cfg.Apply()
}
