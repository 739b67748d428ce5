package dedupe

const defaultMaxSize = 50000

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize bounds the number of tracked ids; zero or negative disables
// eviction.
func WithMaxSize(size int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = size
	}
}
