package repcat

import (
	"os"
	"sync/atomic"

	reperrors "repcat/errors"
)

// bufferPool owns all transient chunk memory for one run: a fixed arena of
// equally sized buffers identified by small-integer index, each carrying a
// count of write tasks still reading its content. Buffer indexes, never
// pointers, travel through the channels.
//
// Refcount protocol: the producer sets the count to the exact number of
// replications before publishing any task for the buffer; each completed
// task decrements it once; the worker that drops it to zero returns the
// index to the free channel. The producer therefore only ever receives
// buffers with no outstanding references, so premature reuse is not
// representable rather than checked at runtime.
type bufferPool struct {
	bufs [][]byte
	refs []atomic.Int32
	free chan int
}

// poolGeometry decides buffer size and count from the plan and the memory
// limit. With no limit (or one that covers the whole output) each source
// fits a buffer whole: one read per source, one refcount per source. With
// a limit the buffers are page-sized and the arena is trimmed to stay
// under the limit.
func poolGeometry(plan *Plan, limit int64) (bufSize int64, numBufs int, err error) {
	page := int64(os.Getpagesize())
	if limit != 0 && limit < page {
		return 0, 0, reperrors.ErrMemoryLimitTooSmall
	}
	if limit == 0 || limit >= plan.Size() {
		bufSize = 1
		for src := 0; src < plan.NumSources(); src++ {
			if sz := plan.SourceSize(src); sz > bufSize {
				bufSize = sz
			}
		}
		return bufSize, plan.NumSources(), nil
	}

	bufSize = page
	budget := plan.Size()
	if limit < budget {
		budget = limit
	}
	numBufs = int(budget / bufSize)
	if numBufs < 1 {
		numBufs = 1
	}
	return bufSize, numBufs, nil
}

// newBufferPool allocates the arena upfront and marks every buffer free.
// No per-chunk allocation happens after this point.
func newBufferPool(bufSize int64, numBufs int) *bufferPool {
	p := &bufferPool{
		bufs: make([][]byte, numBufs),
		refs: make([]atomic.Int32, numBufs),
		free: make(chan int, numBufs),
	}
	for i := range p.bufs {
		p.bufs[i] = make([]byte, bufSize)
		p.free <- i
	}
	return p
}

// buf returns the backing storage of buffer id.
func (p *bufferPool) buf(id int) []byte { return p.bufs[id] }

// retain sets buffer id's reference count to n. Called by the producer,
// which holds exclusive access to the buffer, before the first task for
// the refilled content is published.
func (p *bufferPool) retain(id int, n int32) {
	p.refs[id].Store(n)
}

// release drops one reference from buffer id and reports whether it was
// the last. The caller that receives true owns returning the buffer to
// the free channel.
func (p *bufferPool) release(id int) bool {
	return p.refs[id].Add(-1) == 0
}

// outstanding returns buffer id's current reference count. Test hook.
func (p *bufferPool) outstanding(id int) int32 {
	return p.refs[id].Load()
}
