package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/mnistseq"
	"github.com/gogpu/mnistseq/internal/config"
	"github.com/gogpu/mnistseq/internal/logging"
	"github.com/gogpu/mnistseq/internal/metrics"
)

// Independent PCG streams for sampling and splitting, so that changing the
// split fractions does not change which glyphs are drawn.
const (
	streamGenerate = 1
	streamSplit    = 2
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the synthetic dataset",
	Long: `Loads the MNIST IDX files, composites a balanced set of digit sequences,
shuffles and splits it, and writes train/test/valid arrays to an .npz archive.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log, err := newLogger(cmd, cfg)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return runGenerate(ctx, cfg, cmd.OutOrStdout(), log)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	f := generateCmd.Flags()
	f.StringP("config", "c", "", "YAML configuration file")
	f.StringArray("set", nil, "Override a setting, e.g. --set canvas.scale=0.4 (repeatable)")
	f.String("images", "", "MNIST images IDX file (overrides corpus.images)")
	f.String("labels", "", "MNIST labels IDX file (overrides corpus.labels)")
	f.StringP("output", "o", "", "Output .npz path (overrides output.path)")
	f.Int("samples", 0, "Total number of samples (overrides sampling.samples)")
	f.Uint64("seed", 0, "Random seed (overrides sampling.seed)")
	f.Int("workers", 0, "Compositing goroutines (overrides sampling.workers)")
	f.String("preview", "", "Write a PNG contact sheet of shuffled samples")
	f.String("metrics-file", "", "Write Prometheus metrics in textfile format")
}

// flagKeys maps command-line flags to the config keys they override.
var flagKeys = map[string]string{
	"images":       "corpus.images",
	"labels":       "corpus.labels",
	"output":       "output.path",
	"samples":      "sampling.samples",
	"seed":         "sampling.seed",
	"workers":      "sampling.workers",
	"preview":      "output.preview",
	"metrics-file": "output.metrics",
	"log-level":    "log.level",
	"log-format":   "log.format",
}

// loadConfig merges the config file, --set overrides and explicit flags,
// in that order of increasing precedence.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	overrides, _ := cmd.Flags().GetStringArray("set")

	for name, key := range flagKeys {
		fl := cmd.Flags().Lookup(name)
		if fl == nil || !fl.Changed {
			continue
		}
		overrides = append(overrides, key+"="+fl.Value.String())
	}
	return config.Load(path, overrides)
}

func newLogger(cmd *cobra.Command, cfg config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(cmd.ErrOrStderr(), level, cfg.Log.Format)
}

func runGenerate(ctx context.Context, cfg config.Config, out io.Writer, log *slog.Logger) error {
	mnistseq.SetLogger(log)
	defer mnistseq.SetLogger(nil)

	canvas, err := cfg.CanvasOptions()
	if err != nil {
		return err
	}
	run := metrics.New()

	corpus, err := mnistseq.LoadCorpus(cfg.Corpus.Images, cfg.Corpus.Labels)
	if err != nil {
		return err
	}

	start := time.Now()
	ds, err := mnistseq.Generate(ctx, corpus, mnistseq.GenerateOptions{
		Canvas:     canvas,
		TargetSize: cfg.Sampling.Samples,
		Rand:       rand.New(rand.NewPCG(cfg.Sampling.Seed, streamGenerate)),
		Workers:    cfg.Sampling.Workers,
		Hooks:      run.Hooks(),
	})
	if err != nil {
		return err
	}

	splitRand := rand.New(rand.NewPCG(cfg.Sampling.Seed, streamSplit))
	shuffled, err := mnistseq.Shuffle(ds, splitRand)
	if err != nil {
		return err
	}
	splits, err := mnistseq.Split(shuffled, splitRand, cfg.SplitOptions())
	if err != nil {
		return err
	}
	run.ObserveSplits(splits)

	if err := mnistseq.SaveSplits(cfg.Output.Path, splits); err != nil {
		return err
	}
	if cfg.Output.Preview != "" {
		if err := writePreview(shuffled, cfg.Output.Preview, 3, 8); err != nil {
			return err
		}
		log.Info("preview written", "path", cfg.Output.Preview)
	}

	run.MarkSuccess(time.Now())
	if cfg.Output.Metrics != "" {
		if err := run.WriteTextfile(cfg.Output.Metrics); err != nil {
			return err
		}
	}

	p := message.NewPrinter(language.English)
	p.Fprintf(out, "Generated %d samples (%d per length, %s) in %v\n",
		ds.N, ds.N/canvas.MaxDigits, lengthRange(canvas.MaxDigits), time.Since(start).Round(time.Millisecond))
	p.Fprintf(out, "Train %d, test %d, valid %d -> %s\n",
		splits.Train.N, splits.Test.N, splits.Valid.N, cfg.Output.Path)
	return nil
}

func lengthRange(maxDigits int) string {
	if maxDigits == 1 {
		return "1 digit"
	}
	return "1-" + strconv.Itoa(maxDigits) + " digits"
}

func writePreview(ds *mnistseq.Dataset, path string, rows, cols int) error {
	sheet, err := mnistseq.ContactSheet(ds, mnistseq.ContactSheetOptions{
		Rows: rows, Cols: cols, Gap: 2, Background: 128,
	})
	if err != nil {
		return err
	}
	if err := sheet.SavePNG(path); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	return nil
}
