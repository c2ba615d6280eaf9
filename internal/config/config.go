// Package config loads the settings of a dataset generation run.
//
// Settings come from three layers, later layers winning: built-in defaults,
// an optional YAML file, and "section.key=value" overrides from the command
// line. The merged tree is decoded with mapstructure so that overrides given
// as strings are converted to the field types.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/mnistseq"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid")

// Config is the full set of run settings.
type Config struct {
	Corpus   Corpus   `yaml:"corpus" mapstructure:"corpus"`
	Canvas   Canvas   `yaml:"canvas" mapstructure:"canvas"`
	Sampling Sampling `yaml:"sampling" mapstructure:"sampling"`
	Split    Split    `yaml:"split" mapstructure:"split"`
	Output   Output   `yaml:"output" mapstructure:"output"`
	Log      Log      `yaml:"log" mapstructure:"log"`
}

// Corpus locates the source IDX files.
type Corpus struct {
	Images string `yaml:"images" mapstructure:"images"`
	Labels string `yaml:"labels" mapstructure:"labels"`
}

// Canvas mirrors mnistseq.CanvasOptions.
type Canvas struct {
	Height        int     `yaml:"height" mapstructure:"height"`
	Width         int     `yaml:"width" mapstructure:"width"`
	MaxDigits     int     `yaml:"max_digits" mapstructure:"max_digits"`
	Scale         float64 `yaml:"scale" mapstructure:"scale"`
	Interpolation string  `yaml:"interpolation" mapstructure:"interpolation"`
}

// Sampling controls dataset size and randomness.
type Sampling struct {
	Samples int    `yaml:"samples" mapstructure:"samples"`
	Seed    uint64 `yaml:"seed" mapstructure:"seed"`
	Workers int    `yaml:"workers" mapstructure:"workers"`
}

// Split sizes the held-out partitions.
type Split struct {
	Test  float64 `yaml:"test" mapstructure:"test"`
	Valid float64 `yaml:"valid" mapstructure:"valid"`
}

// Output names the files a run writes. Empty paths are skipped.
type Output struct {
	Path    string `yaml:"path" mapstructure:"path"`
	Preview string `yaml:"preview" mapstructure:"preview"`
	Metrics string `yaml:"metrics" mapstructure:"metrics"`
}

// Log selects the CLI log handler.
type Log struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Default returns the settings that reproduce the reference dataset:
// 50,000 64×64 canvases with up to five 12×12 digits.
func Default() Config {
	c := mnistseq.DefaultCanvasOptions()
	s := mnistseq.DefaultSplitOptions()
	return Config{
		Corpus: Corpus{
			Images: "train-images-idx3-ubyte.gz",
			Labels: "train-labels-idx1-ubyte.gz",
		},
		Canvas: Canvas{
			Height:        c.Height,
			Width:         c.Width,
			MaxDigits:     c.MaxDigits,
			Scale:         c.GlyphScale,
			Interpolation: c.Interpolation.String(),
		},
		Sampling: Sampling{Samples: 50000, Seed: 1},
		Split:    Split{Test: s.TestFraction, Valid: s.ValidFraction},
		Output:   Output{Path: "MNIST_synthetic.npz"},
		Log:      Log{Level: "info", Format: "text"},
	}
}

// Load merges the YAML file at path (if path is non-empty) and the
// "section.key=value" overrides onto Default, then validates the result.
func Load(path string, overrides []string) (Config, error) {
	tree := map[string]any{}
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	for _, o := range overrides {
		if err := applyOverride(tree, o); err != nil {
			return Config{}, err
		}
	}

	cfg := Default()
	if err := decode(tree, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(tree map[string]any, out *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := dec.Decode(tree); err != nil {
		return fmt.Errorf("config: decode: %w", err)
	}
	return nil
}

// applyOverride sets a dotted key in tree, creating sections as needed.
func applyOverride(tree map[string]any, kv string) error {
	key, value, ok := strings.Cut(kv, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("config: override %q is not key=value", kv)
	}

	parts := strings.Split(key, ".")
	node := tree
	for _, p := range parts[:len(parts)-1] {
		child, ok := node[p].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[p] = child
		}
		node = child
	}
	node[parts[len(parts)-1]] = strings.TrimSpace(value)
	return nil
}

// Validate checks the settings that the library would otherwise reject
// only after the corpus has been loaded.
func (c Config) Validate() error {
	if _, err := c.CanvasOptions(); err != nil {
		return fmt.Errorf("%w: canvas: %w", ErrInvalid, err)
	}
	if c.Sampling.Samples <= 0 || c.Sampling.Samples%c.Canvas.MaxDigits != 0 {
		return fmt.Errorf("%w: sampling.samples %d must be a positive multiple of canvas.max_digits %d",
			ErrInvalid, c.Sampling.Samples, c.Canvas.MaxDigits)
	}
	if err := c.SplitOptions().Validate(); err != nil {
		return fmt.Errorf("%w: split: %w", ErrInvalid, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

// CanvasOptions converts the canvas section.
func (c Config) CanvasOptions() (mnistseq.CanvasOptions, error) {
	mode, err := mnistseq.ParseInterpolation(c.Canvas.Interpolation)
	if err != nil {
		return mnistseq.CanvasOptions{}, err
	}
	opts := mnistseq.CanvasOptions{
		Height:        c.Canvas.Height,
		Width:         c.Canvas.Width,
		MaxDigits:     c.Canvas.MaxDigits,
		GlyphScale:    c.Canvas.Scale,
		Interpolation: mode,
	}
	return opts, opts.Validate()
}

// SplitOptions converts the split section.
func (c Config) SplitOptions() mnistseq.SplitOptions {
	return mnistseq.SplitOptions{TestFraction: c.Split.Test, ValidFraction: c.Split.Valid}
}
