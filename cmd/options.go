package cmd

// Options holds the shared command-line options for the civica CLI.
type Options struct {
	Format    string // Output format (table, json); empty falls back to config
	District  string // District scope for analytics commands
	From      string // Window start: a date (2025-06-01) or a relative duration (30d)
	To        string // Window end: same forms as From
	Verbosity int
	TUI       *bool // nil = auto-detect, true = force TUI, false = disable TUI

	// Profiling options
	CPUProfile string // Write CPU profile to file
	MemProfile string // Write memory profile to file
	Trace      string // Write execution trace to file
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates a new Options with defaults and applies any provided options.
func NewOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithFormat sets the output format (table, json).
func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithDistrict scopes analytics commands to one district.
func WithDistrict(district string) Option {
	return func(o *Options) {
		o.District = district
	}
}

// WithWindow sets the window start bound (e.g., "30d", "2025-06-01").
func WithWindow(from string) Option {
	return func(o *Options) {
		o.From = from
	}
}

// WithVerbosity sets the log verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}

// WithTUI forces the TUI on or off; nil auto-detects.
func WithTUI(tui *bool) Option {
	return func(o *Options) {
		o.TUI = tui
	}
}
