// Package config holds the runtime options recognized by the execution
// backend: optimizer level, engine tiering policy, diagnostic dumps, the
// inspector port, and the arena's guard-page policy.
package config

// OptimizationLevel is the optimizer pass level a query is configured with.
// It is only recorded in Options: the module builder runs no optimizer, and
// Build emits the same module at every level.
type OptimizationLevel int

const (
	OptNone OptimizationLevel = iota
	OptBasic
	OptAggressive
)

// Options holds every flag named in the external interface: optimizer level,
// engine tiering, compilation cache, dump toggles, the inspector's CDT port,
// and the guard-page policy. Defaults are conservative.
type Options struct {
	WasmOptimizationLevel OptimizationLevel
	WasmAdaptive          bool
	WasmCompilationCache  bool
	WasmDump              bool
	AsmDump               bool
	CDTPort               uint16
	TrapGuardPages        bool

	// MemoryLimitPages bounds how far the arena may grow. Zero means
	// unbounded (up to Wasm's own 4 GiB address ceiling).
	MemoryLimitPages uint32

	// Quiet suppresses the "<n> rows" trailer a print-sink query would
	// otherwise emit.
	Quiet bool
}

// Option mutates an Options value during construction.
type Option func(*Options)

// New builds Options with backend defaults, then applies opts in order.
func New(opts ...Option) Options {
	o := Options{
		WasmOptimizationLevel: OptBasic,
		WasmCompilationCache:  true,
		TrapGuardPages:        true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func WithOptimizationLevel(level OptimizationLevel) Option {
	return func(o *Options) { o.WasmOptimizationLevel = level }
}

func WithAdaptive(enabled bool) Option {
	return func(o *Options) { o.WasmAdaptive = enabled }
}

func WithCompilationCache(enabled bool) Option {
	return func(o *Options) { o.WasmCompilationCache = enabled }
}

func WithWasmDump(enabled bool) Option {
	return func(o *Options) { o.WasmDump = enabled }
}

func WithAsmDump(enabled bool) Option {
	return func(o *Options) { o.AsmDump = enabled }
}

func WithCDTPort(port uint16) Option {
	return func(o *Options) { o.CDTPort = port }
}

func WithGuardPages(enabled bool) Option {
	return func(o *Options) { o.TrapGuardPages = enabled }
}

func WithMemoryLimitPages(pages uint32) Option {
	return func(o *Options) { o.MemoryLimitPages = pages }
}

func WithQuiet(quiet bool) Option {
	return func(o *Options) { o.Quiet = quiet }
}

// InspectorEnabled reports whether the CDT port activates the inspector.
// Per the driver's flag policy, ports below 1024 are reserved and never
// activate the debug channel.
func (o Options) InspectorEnabled() bool {
	return o.CDTPort >= 1024
}

// EffectiveGuardPages applies the driver's flag policy: guard pages default
// on but are forced off when the inspector is attached, since the debugger
// needs a plain, uninterrupted memory layout to single-step through.
func (o Options) EffectiveGuardPages() bool {
	if o.InspectorEnabled() {
		return false
	}
	return o.TrapGuardPages
}

// EffectiveBoundsChecks reports whether the engine must keep bounds and
// stack checks enabled. They are never disabled while the inspector is
// attached, regardless of WasmAdaptive/optimization settings.
func (o Options) EffectiveBoundsChecks() bool {
	return o.InspectorEnabled()
}
