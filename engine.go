package repcat

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	reperrors "repcat/errors"
)

// taskChanMultiplier is the multiplier for the write task channel capacity.
const taskChanMultiplier = 2

// writeTask is one positioned write: data is the filled prefix of buffer
// buf and must be treated as read-only until the task completes.
type writeTask struct {
	off  int64
	buf  int
	data []byte
}

// Result describes a completed run.
type Result struct {
	// Output is the path of the produced file.
	Output string
	// Bytes is the number of bytes written, always equal to the planned
	// total output size.
	Bytes int64
	// Checksum is the digest algorithm used for source digests.
	Checksum ChecksumAlgorithmID

	plan    *Plan
	digests []uint64
}

// Plan returns the layout the run was scheduled against.
func (r *Result) Plan() *Plan { return r.plan }

// SourceDigest returns the digest of source src's content, computed while
// the producer read it.
func (r *Result) SourceDigest(src int) uint64 { return r.digests[src] }

// Concat concatenates the inputs into output, repeating each input and the
// whole sequence according to the options, writing through a fixed pool of
// parallel workers while keeping transient memory under the configured
// limit. The output file's size is set to the planned total before any
// write happens; on error its contents are undefined and the caller must
// discard it.
func Concat(ctx context.Context, output string, inputs []string, opts ...Option) (*Result, error) {
	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.repeatEach < 1 || cfg.repeatAll < 1 {
		return nil, reperrors.ErrZeroRepeat
	}
	if _, err := newChecksum(cfg.checksum); err != nil {
		return nil, err
	}

	sizes, err := SourceSizes(inputs)
	if err != nil {
		return nil, err
	}

	plan, err := PlanLayout(sizes, cfg.repeatEach, cfg.repeatAll)
	if err != nil {
		return nil, err
	}

	bufSize, numBufs, err := poolGeometry(plan, cfg.memoryLimit)
	if err != nil {
		return nil, err
	}

	workers := cfg.workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	e := &engine{
		cfg:     cfg,
		plan:    plan,
		pool:    newBufferPool(bufSize, numBufs),
		bufSize: bufSize,
		output:  output,
		inputs:  inputs,
		workers: workers,
		digests: make([]uint64, len(inputs)),
	}
	if err := e.run(ctx); err != nil {
		return nil, err
	}
	return &Result{
		Output:   output,
		Bytes:    plan.Size(),
		Checksum: cfg.checksum,
		plan:     plan,
		digests:  e.digests,
	}, nil
}

type engine struct {
	cfg     *runConfig
	plan    *Plan
	pool    *bufferPool
	bufSize int64
	output  string
	inputs  []string
	workers int

	tasks     chan writeTask
	scheduled int64
	digests   []uint64
}

// run pre-allocates the output, starts the worker pool, and drives the
// producer loop. It returns only after every in-flight write has completed
// or failed.
func (e *engine) run(ctx context.Context) error {
	// The advisory lock guards against two invocations interleaving
	// positioned writes into the same output. Taken before the truncate
	// below so a losing invocation sees the error, not a clobbered file.
	// The touch keeps a missing output from being created with the lock
	// library's restrictive default mode.
	f, err := os.OpenFile(e.output, os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	lock := flock.New(e.output)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock output: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", reperrors.ErrOutputLocked, e.output)
	}
	defer func() { _ = lock.Unlock() }()

	if err := e.preallocate(); err != nil {
		return err
	}

	e.tasks = make(chan writeTask, e.workers*taskChanMultiplier)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < e.workers; i++ {
		g.Go(e.runWorker(gctx))
	}

	produceErr := e.produce(gctx)
	close(e.tasks)

	// Wait drains every outstanding buffer reference: workers only exit
	// once the task channel is empty.
	if err := g.Wait(); err != nil {
		return err
	}
	return produceErr
}

// preallocate creates the output at its final size. This is a separate,
// sequential step that completes before any worker opens its own handle.
func (e *engine) preallocate() error {
	out, err := os.Create(e.output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := fallocateFile(out, e.plan.Size()); err != nil {
		primaryErr := fmt.Errorf("allocate %d bytes: %w", e.plan.Size(), err)
		out.Close()
		return primaryErr
	}
	return out.Close()
}

// produce is the single controlling loop: one iteration per freed buffer.
// Within one source, chunks are read and scheduled strictly in file order;
// all replicas of a chunk are enqueued before the next chunk is read.
func (e *engine) produce(ctx context.Context) error {
	each := e.plan.RepeatEach()
	all := e.plan.RepeatAll()
	reps := int32(each * all)

	for src := range e.inputs {
		size := e.plan.SourceSize(src)
		digest, err := newChecksum(e.cfg.checksum)
		if err != nil {
			return err
		}
		if size == 0 {
			// No chunks, no destinations. The digest still records the
			// empty content so Verify treats the source uniformly.
			e.digests[src] = digest.Sum64()
			continue
		}

		f, err := os.Open(e.inputs[src])
		if err != nil {
			return fmt.Errorf("open source %s: %w", e.inputs[src], err)
		}
		fadviseSequential(int(f.Fd()), 0, size)

		var foff int64
		for foff < size {
			var id int
			select {
			case id = <-e.pool.free:
			case <-ctx.Done():
				f.Close()
				return ctx.Err()
			}

			want := e.bufSize
			if rest := size - foff; rest < want {
				want = rest
			}
			chunk := e.pool.buf(id)[:want]
			if _, err := io.ReadFull(f, chunk); err != nil {
				f.Close()
				if err == io.EOF || err == io.ErrUnexpectedEOF {
					return fmt.Errorf("%w: %s shrank below %d bytes", reperrors.ErrSizeChanged, e.inputs[src], size)
				}
				return fmt.Errorf("read source %s: %w", e.inputs[src], err)
			}

			// Hash before publishing: once the first task is enqueued the
			// chunk is shared read-only with the workers.
			digest.Write(chunk)

			e.pool.retain(id, reps)
			for pass := 0; pass < all; pass++ {
				for rep := 0; rep < each; rep++ {
					task := writeTask{
						off:  e.plan.Offset(pass, src, rep, foff),
						buf:  id,
						data: chunk,
					}
					select {
					case e.tasks <- task:
					case <-ctx.Done():
						f.Close()
						return ctx.Err()
					}
				}
			}

			foff += want
			e.scheduled += want * int64(reps)
		}

		if err := f.Close(); err != nil {
			return fmt.Errorf("close source %s: %w", e.inputs[src], err)
		}
		e.digests[src] = digest.Sum64()
	}

	if e.scheduled != e.plan.Size() {
		return fmt.Errorf("%w: scheduled %d of %d bytes", reperrors.ErrSizeChanged, e.scheduled, e.plan.Size())
	}
	return nil
}

// runWorker returns the loop for one write worker. Each worker owns a
// separate output handle and performs independent positioned writes; the
// plan guarantees no two tasks ever cover overlapping ranges.
func (e *engine) runWorker(ctx context.Context) func() error {
	return func() error {
		out, err := os.OpenFile(e.output, os.O_WRONLY, 0)
		if err != nil {
			return fmt.Errorf("open output: %w", err)
		}
		defer out.Close()

		for task := range e.tasks {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if _, err := out.WriteAt(task.data, task.off); err != nil {
				return fmt.Errorf("write %d bytes at offset %d: %w", len(task.data), task.off, err)
			}

			if e.pool.release(task.buf) {
				// Never blocks: the channel has one slot per buffer and
				// each index is in flight at most once.
				e.pool.free <- task.buf
			}

			if e.cfg.progress != nil {
				e.cfg.progress(int64(len(task.data)))
			}
		}
		return nil
	}
}
