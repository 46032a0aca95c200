package verification

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/civicwatch/hazard-service/internal/domain"
)

// Layer is one scoring collaborator (geofence, weather, text, image,
// reporter credibility). Implementations live outside this core; each call
// returns a normalized score in [0,1] and a status.
type Layer interface {
	Name() string
	Evaluate(ctx context.Context, report *domain.Report) (domain.LayerResult, error)
}

// LayerFunc adapts a function to the Layer interface.
type LayerFunc struct {
	LayerName string
	Fn        func(ctx context.Context, report *domain.Report) (domain.LayerResult, error)
}

func (l LayerFunc) Name() string { return l.LayerName }

func (l LayerFunc) Evaluate(ctx context.Context, report *domain.Report) (domain.LayerResult, error) {
	return l.Fn(ctx, report)
}

// Collector runs every layer with a bounded timeout and fails closed: a
// layer that errors or times out is recorded as skipped, never as zero.
type Collector struct {
	layers  []Layer
	timeout time.Duration
	logger  *zap.Logger
}

// NewCollector builds a collector over the given layers.
func NewCollector(layers []Layer, timeout time.Duration, logger *zap.Logger) *Collector {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Collector{layers: layers, timeout: timeout, logger: logger}
}

// Collect evaluates all layers concurrently and returns their results in
// declaration order.
func (c *Collector) Collect(ctx context.Context, report *domain.Report) []domain.LayerResult {
	results := make([]domain.LayerResult, len(c.layers))

	var wg sync.WaitGroup
	for i, layer := range c.layers {
		wg.Add(1)
		go func(i int, layer Layer) {
			defer wg.Done()
			results[i] = c.evaluate(ctx, layer, report)
		}(i, layer)
	}
	wg.Wait()

	return results
}

func (c *Collector) evaluate(ctx context.Context, layer Layer, report *domain.Report) domain.LayerResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type outcome struct {
		result domain.LayerResult
		err    error
	}
	ch := make(chan outcome, 1)
	go func() {
		result, err := layer.Evaluate(ctx, report)
		ch <- outcome{result: result, err: err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			c.logger.Warn("scoring layer unavailable, treating as skipped",
				zap.String("layer", layer.Name()),
				zap.String("report_id", report.ID),
				zap.Error(out.err))
			return skipped(layer.Name())
		}
		out.result.Name = layer.Name()
		if out.result.Status == "" {
			out.result.Status = domain.LayerStatusPass
		}
		return out.result
	case <-ctx.Done():
		c.logger.Warn("scoring layer timed out, treating as skipped",
			zap.String("layer", layer.Name()),
			zap.String("report_id", report.ID))
		return skipped(layer.Name())
	}
}

func skipped(name string) domain.LayerResult {
	return domain.LayerResult{Name: name, Score: 0, Status: domain.LayerStatusSkipped}
}
