package repcat

import (
	"hash"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"

	reperrors "repcat/errors"
)

// ChecksumAlgorithmID identifies the hash used for source digests and
// output verification.
type ChecksumAlgorithmID uint16

const (
	// ChecksumXXHash uses xxHash64. Default.
	ChecksumXXHash ChecksumAlgorithmID = 0

	// ChecksumXXH3 uses XXH3-64.
	ChecksumXXH3 ChecksumAlgorithmID = 1

	// ChecksumMurmur3 uses Murmur3-64.
	ChecksumMurmur3 ChecksumAlgorithmID = 2
)

// String returns the algorithm name.
func (a ChecksumAlgorithmID) String() string {
	switch a {
	case ChecksumXXHash:
		return "xxhash"
	case ChecksumXXH3:
		return "xxh3"
	case ChecksumMurmur3:
		return "murmur3"
	default:
		return "unknown"
	}
}

// ParseChecksumAlgorithm maps an algorithm name to its ID.
func ParseChecksumAlgorithm(name string) (ChecksumAlgorithmID, error) {
	switch name {
	case "", "xxhash":
		return ChecksumXXHash, nil
	case "xxh3":
		return ChecksumXXH3, nil
	case "murmur3":
		return ChecksumMurmur3, nil
	default:
		return 0, reperrors.ErrUnknownChecksum
	}
}

// newChecksum returns a fresh streaming hasher for the algorithm.
// The producer feeds each chunk through one of these as it reads, so
// digests cost no extra pass over the sources.
func newChecksum(algo ChecksumAlgorithmID) (hash.Hash64, error) {
	switch algo {
	case ChecksumXXHash:
		return xxhash.New(), nil
	case ChecksumXXH3:
		return xxh3.New(), nil
	case ChecksumMurmur3:
		return murmur3.New64(), nil
	default:
		return nil, reperrors.ErrUnknownChecksum
	}
}

// sumRegion hashes a byte region with the algorithm. Used by Verify where
// the whole region is already in memory via mmap.
func sumRegion(algo ChecksumAlgorithmID, data []byte) (uint64, error) {
	switch algo {
	case ChecksumXXHash:
		return xxhash.Sum64(data), nil
	case ChecksumXXH3:
		return xxh3.Hash(data), nil
	case ChecksumMurmur3:
		return murmur3.Sum64(data), nil
	default:
		return 0, reperrors.ErrUnknownChecksum
	}
}
