package renderbridge

import (
	"time"

	"github.com/joeycumines/logiface"
)

// looperOptions holds configuration options for Looper creation.
type looperOptions struct {
	logger  *logiface.Logger[logiface.Event]
	onError func(error)
}

// --- Looper Options ---

// LooperOption configures a Looper instance.
type LooperOption interface {
	applyLooper(*looperOptions) error
}

// looperOptionImpl implements LooperOption.
type looperOptionImpl struct {
	applyLooperFunc func(*looperOptions) error
}

func (l *looperOptionImpl) applyLooper(opts *looperOptions) error {
	return l.applyLooperFunc(opts)
}

// WithLooperLogger sets the structured logger used by the Looper. A nil
// logger disables logging (logiface loggers are nil-safe).
func WithLooperLogger(logger *logiface.Logger[logiface.Event]) LooperOption {
	return &looperOptionImpl{func(opts *looperOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithLooperErrorHandler sets the handler invoked, on the loop goroutine,
// for errors surfaced by units of work: rendering errors delivered across
// the thread boundary, and panics recovered from handlers.
//
// When unset, errors are logged at error level instead.
func WithLooperErrorHandler(fn func(error)) LooperOption {
	return &looperOptionImpl{func(opts *looperOptions) error {
		opts.onError = fn
		return nil
	}}
}

// resolveLooperOptions applies LooperOption instances to looperOptions.
func resolveLooperOptions(opts []LooperOption) (*looperOptions, error) {
	cfg := &looperOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue // Skip nil options gracefully
		}
		if err := opt.applyLooper(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// rootNodeOptions holds configuration options for RootNode creation.
type rootNodeOptions struct {
	logger        *logiface.Logger[logiface.Event]
	errorLogRates map[time.Duration]int
}

// --- RootNode Options ---

// RootNodeOption configures a RootNode instance.
type RootNodeOption interface {
	applyRootNode(*rootNodeOptions) error
}

// rootNodeOptionImpl implements RootNodeOption.
type rootNodeOptionImpl struct {
	applyRootNodeFunc func(*rootNodeOptions) error
}

func (r *rootNodeOptionImpl) applyRootNode(opts *rootNodeOptions) error {
	return r.applyRootNodeFunc(opts)
}

// WithRootNodeLogger sets the structured logger used by the RootNode.
func WithRootNodeLogger(logger *logiface.Logger[logiface.Event]) RootNodeOption {
	return &rootNodeOptionImpl{func(opts *rootNodeOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithErrorLogRates configures category-based rate limiting for logging of
// repeated identical rendering errors. Delivery of the errors themselves is
// never rate limited; only the log output is.
//
// The default allows 1 log entry per distinct message per second. Pass an
// empty (non-nil) map to disable limiting.
func WithErrorLogRates(rates map[time.Duration]int) RootNodeOption {
	return &rootNodeOptionImpl{func(opts *rootNodeOptions) error {
		opts.errorLogRates = rates
		return nil
	}}
}

// resolveRootNodeOptions applies RootNodeOption instances to rootNodeOptions.
func resolveRootNodeOptions(opts []RootNodeOption) (*rootNodeOptions, error) {
	cfg := &rootNodeOptions{
		errorLogRates: map[time.Duration]int{time.Second: 1},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyRootNode(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// proxyOptions holds configuration options for RenderProxy creation.
type proxyOptions struct {
	logger        *logiface.Logger[logiface.Event]
	profiler      *FrameProfiler
	driver        AnimationDriver
	prepare       func(*TreeInfo)
	frameInterval time.Duration
}

// --- RenderProxy Options ---

// ProxyOption configures a RenderProxy instance.
type ProxyOption interface {
	applyProxy(*proxyOptions) error
}

// proxyOptionImpl implements ProxyOption.
type proxyOptionImpl struct {
	applyProxyFunc func(*proxyOptions) error
}

func (p *proxyOptionImpl) applyProxy(opts *proxyOptions) error {
	return p.applyProxyFunc(opts)
}

// WithProxyLogger sets the structured logger used by the RenderProxy.
func WithProxyLogger(logger *logiface.Logger[logiface.Event]) ProxyOption {
	return &proxyOptionImpl{func(opts *proxyOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithFrameInterval sets the nominal frame interval used by the frame
// clock. The interval is consumed configuration: it paces frame time
// advancement, it is not computed by this module. Defaults to 1s/60.
func WithFrameInterval(d time.Duration) ProxyOption {
	return &proxyOptionImpl{func(opts *proxyOptions) error {
		opts.frameInterval = d
		return nil
	}}
}

// WithAnimationDriver sets the per-frame animation advancement algorithm.
// Defaults to sequential in-order advancement of each active node's
// animators.
func WithAnimationDriver(driver AnimationDriver) ProxyOption {
	return &proxyOptionImpl{func(opts *proxyOptions) error {
		opts.driver = driver
		return nil
	}}
}

// WithTreePreparer sets the tree preparation pass run each frame, between
// frame start and animation advancement, with the anchor installed as the
// traversal's error handler. This is the hook for the external rendering
// pipeline; the default is a no-op.
func WithTreePreparer(prepare func(*TreeInfo)) ProxyOption {
	return &proxyOptionImpl{func(opts *proxyOptions) error {
		opts.prepare = prepare
		return nil
	}}
}

// WithFrameProfiler attaches a FrameProfiler; each SyncAndDrawFrame records
// one sample. The profiler is flushed and closed by Destroy.
func WithFrameProfiler(p *FrameProfiler) ProxyOption {
	return &proxyOptionImpl{func(opts *proxyOptions) error {
		opts.profiler = p
		return nil
	}}
}

// resolveProxyOptions applies ProxyOption instances to proxyOptions.
func resolveProxyOptions(opts []ProxyOption) (*proxyOptions, error) {
	cfg := &proxyOptions{
		frameInterval: time.Second / 60,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyProxy(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
