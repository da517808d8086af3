package repcat

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	randv2 "math/rand"
	"os"
	"path/filepath"
	"testing"
)

const (
	testSeed1 = uint64(0x9e3779b97f4a7c15)
	testSeed2 = uint64(0xbf58476d1ce4e5b9)
)

// newTestRNG returns a deterministic RNG seeded from the test name, so each
// test gets a distinct but reproducible stream.
func newTestRNG(t testing.TB) *randv2.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return randv2.New(randv2.NewSource(int64((testSeed1 ^ s1) ^ (testSeed2 ^ s2))))
}

// randomBytes returns n pseudo-random bytes from rng.
func randomBytes(rng *randv2.Rand, n int) []byte {
	buf := make([]byte, n)
	for i := 0; i+8 <= n; i += 8 {
		binary.LittleEndian.PutUint64(buf[i:], rng.Uint64())
	}
	if tail := n % 8; tail > 0 {
		v := rng.Uint64()
		for j := 0; j < tail; j++ {
			buf[n-tail+j] = byte(v >> (j * 8))
		}
	}
	return buf
}

// writeSources materializes one file per content slice under dir and
// returns the paths in order.
func writeSources(t testing.TB, dir string, contents [][]byte) []string {
	t.Helper()
	paths := make([]string, len(contents))
	for i, data := range contents {
		paths[i] = filepath.Join(dir, fmt.Sprintf("src%d", i))
		if err := os.WriteFile(paths[i], data, 0o644); err != nil {
			t.Fatalf("write source %d: %v", i, err)
		}
	}
	return paths
}

// expectedOutput reconstructs the output by direct concatenation and
// repetition, the reference the engine is checked against.
func expectedOutput(contents [][]byte, repeatEach, repeatAll int) []byte {
	var out bytes.Buffer
	for pass := 0; pass < repeatAll; pass++ {
		for _, data := range contents {
			for rep := 0; rep < repeatEach; rep++ {
				out.Write(data)
			}
		}
	}
	return out.Bytes()
}
