package repcat

// Option is a functional option for configuring a run.
type Option func(*runConfig)

type runConfig struct {
	repeatEach  int
	repeatAll   int
	workers     int
	memoryLimit int64 // 0 means unbounded
	checksum    ChecksumAlgorithmID
	progress    func(n int64)
}

func defaultRunConfig() *runConfig {
	return &runConfig{
		repeatEach: 1,
		repeatAll:  1,
		workers:    0, // 0 resolves to runtime.NumCPU() at engine start
	}
}

// WithRepeatEach sets how many times each source is repeated before the
// next source starts. Default 1.
func WithRepeatEach(n int) Option {
	return func(c *runConfig) {
		c.repeatEach = n
	}
}

// WithRepeatAll sets how many times the whole sequence of sources is
// repeated. Default 1.
func WithRepeatAll(n int) Option {
	return func(c *runConfig) {
		c.repeatAll = n
	}
}

// WithWorkers sets the number of parallel write workers.
// Values < 1 select the available parallelism.
func WithWorkers(n int) Option {
	return func(c *runConfig) {
		c.workers = n
	}
}

// WithMemoryLimit bounds the engine's transient buffer memory to limit
// bytes. Zero (the default) means unbounded: a single buffer sized to the
// largest source per pool slot. A limit smaller than one memory page is
// rejected before any I/O starts.
func WithMemoryLimit(limit int64) Option {
	return func(c *runConfig) {
		c.memoryLimit = limit
	}
}

// WithChecksum selects the digest algorithm used for source checksums and
// output verification. Default ChecksumXXHash.
func WithChecksum(algo ChecksumAlgorithmID) Option {
	return func(c *runConfig) {
		c.checksum = algo
	}
}

// WithProgress installs a callback invoked by workers after each completed
// write with the number of bytes written. The callback runs concurrently
// from multiple goroutines and must be safe for that; it is observational
// only and never gates correctness.
func WithProgress(fn func(n int64)) Option {
	return func(c *runConfig) {
		c.progress = fn
	}
}
