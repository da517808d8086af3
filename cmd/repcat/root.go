package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"repcat"
	"repcat/internal/config"
	"repcat/internal/logging"
)

type rootFlags struct {
	repeatEach int
	repeatAll  int
	output     string
	maxMem     string
	workers    int
	stdinList  bool
	verify     bool
	checksum   string
	configPath string
	quiet      bool
}

func newRootCommand() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:           "repcat [flags] FILE...",
		Short:         "Concatenate files with repetition, in parallel, under a memory limit",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, flags)
		},
	}

	cmd.Flags().IntVarP(&flags.repeatEach, "repeat-each", "r", 1, "number of times to repeat each input file")
	cmd.Flags().IntVar(&flags.repeatAll, "repeat-all", 1, "number of times to repeat all input files")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default: stream to stdout)")
	cmd.Flags().StringVarP(&flags.maxMem, "max-mem", "m", "", "limit maximum memory usage, e.g. 64MiB (default: unbounded)")
	cmd.Flags().IntVarP(&flags.workers, "workers", "n", 0, "number of parallel write workers (default: available parallelism)")
	cmd.Flags().BoolVarP(&flags.stdinList, "stdin-list", "i", false, "append input files read from stdin, one path per line")
	cmd.Flags().BoolVar(&flags.verify, "verify", false, "re-read the output and verify region checksums")
	cmd.Flags().StringVar(&flags.checksum, "checksum", "", "checksum algorithm: xxhash, xxh3 or murmur3")
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "configuration file path")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "suppress the progress bar")

	return cmd
}

func run(cmd *cobra.Command, args []string, flags rootFlags) error {
	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return err
	}
	logging.Setup(os.Stderr, logging.Config{Format: cfg.Log.Format, Level: cfg.Log.Level})
	log := logging.Component("repcat")

	inputs, err := collectInputs(args, flags.stdinList, cmd.InOrStdin())
	if err != nil {
		return err
	}

	// All directly given paths must exist before any work starts.
	sizes, err := repcat.SourceSizes(inputs)
	if err != nil {
		return err
	}

	opts, total, err := buildOptions(cfg, flags, sizes)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if showProgress(flags) {
		bar = progressbar.DefaultBytes(total, "writing")
		opts = append(opts, repcat.WithProgress(func(n int64) {
			_ = bar.Add64(n)
		}))
	}

	start := time.Now()

	if flags.output == "" {
		n, err := repcat.Stream(cmd.Context(), os.Stdout, inputs, opts...)
		if bar != nil {
			_ = bar.Finish()
		}
		if err != nil {
			return err
		}
		log.Debug("stream complete", "bytes", n, "duration", time.Since(start))
		return nil
	}

	res, err := repcat.Concat(cmd.Context(), flags.output, inputs, opts...)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}
	log.Info("wrote output",
		"path", res.Output,
		"bytes", res.Bytes,
		"size", humanize.IBytes(uint64(res.Bytes)),
		"duration", time.Since(start))

	if flags.verify {
		if err := res.Verify(); err != nil {
			return err
		}
		log.Info("verified output", "path", res.Output, "checksum", res.Checksum.String())
	}
	return nil
}

// loadConfig reads the explicit config file, or the per-user default when
// none is given.
func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadDefault()
}

// collectInputs appends stdin-supplied paths after the positional ones,
// one path per line.
func collectInputs(args []string, stdinList bool, stdin io.Reader) ([]string, error) {
	inputs := append([]string(nil), args...)
	if !stdinList {
		return inputs, nil
	}
	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			inputs = append(inputs, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input list from stdin: %w", err)
	}
	return inputs, nil
}

// buildOptions resolves flags over config-file values and returns the
// engine options plus the planned total size (for the progress bar).
func buildOptions(cfg config.Config, flags rootFlags, sizes []int64) ([]repcat.Option, int64, error) {
	workers := flags.workers
	if workers == 0 {
		workers = cfg.Workers
	}

	var maxMem int64
	if flags.maxMem != "" {
		n, err := humanize.ParseBytes(flags.maxMem)
		if err != nil {
			return nil, 0, fmt.Errorf("parse max-mem %q: %w", flags.maxMem, err)
		}
		maxMem = int64(n)
	} else {
		m, err := cfg.MaxMemBytes()
		if err != nil {
			return nil, 0, err
		}
		maxMem = m
	}

	checksumName := flags.checksum
	if checksumName == "" {
		checksumName = cfg.Checksum
	}
	algo, err := repcat.ParseChecksumAlgorithm(checksumName)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %q", err, checksumName)
	}

	plan, err := repcat.PlanLayout(sizes, flags.repeatEach, flags.repeatAll)
	if err != nil {
		return nil, 0, err
	}

	opts := []repcat.Option{
		repcat.WithRepeatEach(flags.repeatEach),
		repcat.WithRepeatAll(flags.repeatAll),
		repcat.WithWorkers(workers),
		repcat.WithMemoryLimit(maxMem),
		repcat.WithChecksum(algo),
	}
	return opts, plan.Size(), nil
}

// showProgress reports whether the progress bar should render: only on an
// interactive terminal, and never when suppressed.
func showProgress(flags rootFlags) bool {
	return !flags.quiet && isatty.IsTerminal(os.Stderr.Fd())
}
