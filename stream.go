package repcat

import (
	"context"
	"fmt"
	"io"
	"os"

	reperrors "repcat/errors"
)

// streamCopyBufferSize is the reusable copy buffer for the sequential path.
const streamCopyBufferSize = 1 << 20

// Stream writes the repeated concatenation sequentially to w. This is the
// path for unbounded sinks such as stdout, where positioned writes are not
// possible: one goroutine, one reusable buffer, strict output order. It
// returns the number of bytes written.
func Stream(ctx context.Context, w io.Writer, inputs []string, opts ...Option) (int64, error) {
	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.repeatEach < 1 || cfg.repeatAll < 1 {
		return 0, reperrors.ErrZeroRepeat
	}
	if len(inputs) == 0 {
		return 0, reperrors.ErrNoSources
	}

	buf := make([]byte, streamCopyBufferSize)
	var written int64

	for pass := 0; pass < cfg.repeatAll; pass++ {
		for _, path := range inputs {
			n, err := streamSource(ctx, w, path, cfg, buf)
			written += n
			if err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// streamSource copies one source repeatEach times, rewinding between
// repetitions instead of re-reading the file from scratch.
func streamSource(ctx context.Context, w io.Writer, path string, cfg *runConfig, buf []byte) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open source %s: %w", path, err)
	}
	defer f.Close()

	if fi, err := f.Stat(); err == nil {
		fadviseSequential(int(f.Fd()), 0, fi.Size())
	}

	var written int64
	for rep := 0; rep < cfg.repeatEach; rep++ {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		if rep > 0 {
			if _, err := f.Seek(0, io.SeekStart); err != nil {
				return written, fmt.Errorf("rewind source %s: %w", path, err)
			}
		}
		n, err := io.CopyBuffer(w, f, buf)
		written += n
		if err != nil {
			return written, fmt.Errorf("copy source %s: %w", path, err)
		}
		if cfg.progress != nil && n > 0 {
			cfg.progress(n)
		}
	}
	return written, nil
}
