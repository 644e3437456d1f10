package ingest

// Options controls one Client.Import run.
type Options struct {
	// Truncate empties the staging table inside the import transaction
	// before any row is written.
	Truncate bool

	// Name labels the feed in logs and results, usually its file name.
	Name string
}

// Apply applies the given options.
func (o *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Defaults returns the default import options.
func Defaults() *Options {
	return &Options{}
}

// Option is a function that configures import Options.
type Option func(*Options)

// WithTruncate configures truncation of the staging table.
func WithTruncate(truncate bool) Option {
	return func(o *Options) {
		o.Truncate = truncate
	}
}

// WithName labels the feed.
func WithName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}
