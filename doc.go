// Package repcat concatenates ordered input files into a single output,
// optionally repeating each file and the whole sequence, with bounded RAM
// usage and a parallel write path.
//
// The layout of the output is fully known before the first byte is written:
// a planning pass computes the total size and an offset formula for every
// (pass, source, repetition) combination. The output file is pre-allocated
// to that size, then a single producer streams chunks from the sources into
// a fixed pool of reference-counted buffers while a pool of workers performs
// independent positioned writes. No two writes ever overlap, so write
// completion order does not matter.
//
// # Basic Usage
//
// Writing to a file through the parallel engine:
//
//	res, err := repcat.Concat(ctx, "out.bin", files,
//	    repcat.WithRepeatEach(2),
//	    repcat.WithRepeatAll(3),
//	    repcat.WithMemoryLimit(64<<20),
//	    repcat.WithWorkers(8))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := res.Verify(); err != nil {
//	    log.Fatal(err)
//	}
//
// Streaming sequentially to an unbounded sink such as stdout:
//
//	n, err := repcat.Stream(ctx, os.Stdout, files, repcat.WithRepeatEach(2))
//
// # Package Structure
//
//   - Public API: engine.go (Concat, Result), stream.go (Stream), verify.go
//   - Layout planning: plan.go (PlanLayout, Plan.Offset)
//   - Buffer pool: pool.go (fixed arena, refcounted reuse)
//   - Configuration: options.go (Option, With* functions)
//   - Checksums: checksum.go (ChecksumAlgorithmID, dispatch)
//   - Platform: fallocate_*.go, fadvise_*.go (OS-specific optimizations)
package repcat
