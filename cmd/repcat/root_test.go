package main

import (
	"errors"
	"strings"
	"testing"

	reperrors "repcat/errors"
	"repcat/internal/config"
)

func TestCollectInputs(t *testing.T) {
	stdin := strings.NewReader("from-stdin-1\n\nfrom-stdin-2\n")

	inputs, err := collectInputs([]string{"a", "b"}, true, stdin)
	if err != nil {
		t.Fatalf("collectInputs: %v", err)
	}
	want := []string{"a", "b", "from-stdin-1", "from-stdin-2"}
	if len(inputs) != len(want) {
		t.Fatalf("inputs = %v, want %v", inputs, want)
	}
	for i := range want {
		if inputs[i] != want[i] {
			t.Fatalf("inputs[%d] = %q, want %q (positional paths come first)", i, inputs[i], want[i])
		}
	}
}

func TestCollectInputsWithoutStdinList(t *testing.T) {
	stdin := strings.NewReader("ignored\n")
	inputs, err := collectInputs([]string{"only"}, false, stdin)
	if err != nil {
		t.Fatalf("collectInputs: %v", err)
	}
	if len(inputs) != 1 || inputs[0] != "only" {
		t.Fatalf("inputs = %v, want [only]", inputs)
	}
}

func TestBuildOptionsPrecedence(t *testing.T) {
	cfg := config.Default()
	cfg.Workers = 2
	cfg.MaxMem = "1MiB"
	cfg.Checksum = "murmur3"

	// Flags left at their defaults fall back to the config file values;
	// explicit flags win.
	flags := rootFlags{repeatEach: 2, repeatAll: 1, maxMem: "2MiB", checksum: "xxh3"}
	opts, total, err := buildOptions(cfg, flags, []int64{3, 5})
	if err != nil {
		t.Fatalf("buildOptions: %v", err)
	}
	if total != 16 {
		t.Fatalf("total = %d, want 16", total)
	}
	if len(opts) != 5 {
		t.Fatalf("len(opts) = %d, want 5", len(opts))
	}
}

func TestBuildOptionsErrors(t *testing.T) {
	cfg := config.Default()

	flags := rootFlags{repeatEach: 1, repeatAll: 1, maxMem: "a lot"}
	if _, _, err := buildOptions(cfg, flags, []int64{1}); err == nil {
		t.Fatal("expected error for unparsable max-mem")
	}

	flags = rootFlags{repeatEach: 1, repeatAll: 1, checksum: "sha256"}
	if _, _, err := buildOptions(cfg, flags, []int64{1}); !errors.Is(err, reperrors.ErrUnknownChecksum) {
		t.Fatalf("error = %v, want ErrUnknownChecksum", err)
	}

	flags = rootFlags{repeatEach: 0, repeatAll: 1}
	if _, _, err := buildOptions(cfg, flags, []int64{1}); !errors.Is(err, reperrors.ErrZeroRepeat) {
		t.Fatalf("error = %v, want ErrZeroRepeat", err)
	}
}
