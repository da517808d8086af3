package repcat

import (
	"errors"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"

	reperrors "repcat/errors"
)

// Verify re-reads the output file and checks it against the plan: the size
// must equal the planned total, and every replicated region must hash to
// the digest of its source. Regions are visited in offset order, so the
// check is one sequential pass over the file.
func (r *Result) Verify() error {
	f, err := os.Open(r.Output)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		primaryErr := fmt.Errorf("stat output: %w", err)
		return errors.Join(primaryErr, f.Close())
	}
	if fi.Size() != r.plan.Size() {
		primaryErr := fmt.Errorf("%w: have %d bytes, planned %d", reperrors.ErrVerifySize, fi.Size(), r.plan.Size())
		return errors.Join(primaryErr, f.Close())
	}
	if r.plan.Size() == 0 {
		return f.Close()
	}

	fadviseSequential(int(f.Fd()), 0, fi.Size())

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		primaryErr := fmt.Errorf("mmap output: %w", err)
		return errors.Join(primaryErr, f.Close())
	}

	verifyErr := r.verifyRegions([]byte(mm))
	return errors.Join(verifyErr, mm.Unmap(), f.Close())
}

// verifyRegions walks every (pass, source, repetition) region. The natural
// iteration order is exactly offset order, with no gaps between regions.
func (r *Result) verifyRegions(data []byte) error {
	for pass := 0; pass < r.plan.RepeatAll(); pass++ {
		for src := 0; src < r.plan.NumSources(); src++ {
			size := r.plan.SourceSize(src)
			if size == 0 {
				continue
			}
			for rep := 0; rep < r.plan.RepeatEach(); rep++ {
				off := r.plan.Offset(pass, src, rep, 0)
				sum, err := sumRegion(r.Checksum, data[off:off+size])
				if err != nil {
					return err
				}
				if sum != r.digests[src] {
					return fmt.Errorf("%w: pass %d, source %d, repetition %d at offset %d",
						reperrors.ErrVerifyFailed, pass, src, rep, off)
				}
			}
		}
	}
	return nil
}
