package renderbridge

import (
	"context"
	"time"

	"github.com/joeycumines/go-microbatch"
	"github.com/joeycumines/logiface"
)

// FrameSample is one frame's profiling record.
type FrameSample struct {
	// Frame is the frame sequence number.
	Frame uint64
	// Duration is the wall time spent producing the frame.
	Duration time.Duration
	// Animated is the size of the active set when advancement began.
	Animated int
	// Finished is the number of finished-animation events flushed.
	Finished int
}

// ProfilerConfig models optional configuration, for NewFrameProfiler.
type ProfilerConfig struct {
	// BatchSize restricts the number of samples per flush, if positive.
	// Defaults to 60 (one batch per second at the nominal frame rate).
	BatchSize int
	// FlushInterval bounds the delay before an incomplete batch is
	// flushed, if positive. Defaults to time.Second.
	FlushInterval time.Duration
}

// FrameProfiler accumulates per-frame timing samples and flushes them in
// small batches as structured log output, so profiling a long-running
// render loop does not emit one log entry per frame.
type FrameProfiler struct {
	logger  *logiface.Logger[logiface.Event]
	batcher *microbatch.Batcher[FrameSample]
}

// NewFrameProfiler creates a profiler writing batched samples through
// logger. The provided config may be nil.
func NewFrameProfiler(logger *logiface.Logger[logiface.Event], config *ProfilerConfig) *FrameProfiler {
	batchSize := 60
	flushInterval := time.Second
	if config != nil {
		if config.BatchSize > 0 {
			batchSize = config.BatchSize
		}
		if config.FlushInterval > 0 {
			flushInterval = config.FlushInterval
		}
	}

	p := &FrameProfiler{logger: logger}
	p.batcher = microbatch.NewBatcher(&microbatch.BatcherConfig{
		MaxSize:       batchSize,
		FlushInterval: flushInterval,
	}, p.flush)
	return p
}

// Record submits one sample. Samples are flushed in submission order.
// Safe to call from the rendering goroutine each frame; a sample recorded
// after Shutdown is dropped.
func (p *FrameProfiler) Record(sample FrameSample) {
	_, _ = p.batcher.Submit(context.Background(), sample)
}

// flush is the batch processor: it logs an aggregate entry per batch, and
// each sample at debug level.
func (p *FrameProfiler) flush(_ context.Context, samples []FrameSample) error {
	if len(samples) == 0 {
		return nil
	}

	var total time.Duration
	var finished int
	for _, s := range samples {
		total += s.Duration
		finished += s.Finished
	}

	p.logger.Info().
		Uint64(`first_frame`, samples[0].Frame).
		Uint64(`last_frame`, samples[len(samples)-1].Frame).
		Int(`frames`, len(samples)).
		Dur(`avg_duration`, total/time.Duration(len(samples))).
		Int(`finished`, finished).
		Log(`frame profile`)

	for _, s := range samples {
		p.logger.Debug().
			Uint64(`frame`, s.Frame).
			Dur(`duration`, s.Duration).
			Int(`animated`, s.Animated).
			Int(`finished`, s.Finished).
			Log(`frame sample`)
	}

	return nil
}

// Shutdown flushes any pending samples and stops the profiler. An error is
// returned if ctx expires first, forcing a close.
func (p *FrameProfiler) Shutdown(ctx context.Context) error {
	return p.batcher.Shutdown(ctx)
}

// Close immediately stops the profiler, discarding unflushed samples.
func (p *FrameProfiler) Close() error {
	return p.batcher.Close()
}
