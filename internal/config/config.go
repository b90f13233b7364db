// Package config holds the validated configuration of a sorting session.
// Values come from an optional YAML file overlaid by command-line flags; the
// merged result is validated exactly once, before the session starts, so the
// pipeline itself never sees an invalid configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mhaussmann/textsort/internal/classify"
)

// ErrInvalidConfig wraps every validation failure so callers can
// distinguish configuration errors from runtime errors.
var ErrInvalidConfig = errors.New("invalid configuration")

// SortConfig describes one sorting run.
type SortConfig struct {
	// InputDir is the folder whose images are classified. Required.
	InputDir string `yaml:"input_dir"`

	// OutputDir receives images classified as containing text. Required.
	OutputDir string `yaml:"output_dir"`

	// NoTextDir, when set, receives images classified as containing no
	// text. When empty those images stay where they are.
	NoTextDir string `yaml:"no_text_dir"`

	// Threshold is the minimum recognized-character count for an image to
	// count as containing text. Zero classifies everything as text.
	Threshold int `yaml:"threshold"`

	// CountMode selects which characters count: nonspace (default), all,
	// or letters.
	CountMode string `yaml:"count_mode"`

	// DensityThreshold, when > 0, switches to the density policy:
	// non-space characters per pixel compared against this value.
	// Threshold is ignored in that case.
	DensityThreshold float64 `yaml:"density_threshold"`

	// Languages are the Tesseract language codes. Empty means deu+eng.
	Languages []string `yaml:"languages"`

	// Binarize thresholds images to black/white before OCR.
	Binarize bool `yaml:"binarize"`

	// Recursive extends the snapshot to subfolders of InputDir.
	Recursive bool `yaml:"recursive"`

	// Preview emits a progress event per file as processing starts.
	Preview bool `yaml:"preview"`

	// DryRun classifies and reports without moving any file.
	DryRun bool `yaml:"dry_run"`

	// DetectBlank skips OCR for near-uniform images and classifies them
	// as containing no text.
	DetectBlank bool `yaml:"detect_blank"`

	// DetectDuplicates reuses the verdict of a perceptually identical,
	// already-classified image instead of re-running OCR.
	DetectDuplicates bool `yaml:"detect_duplicates"`

	// LogPath is the session log file, truncated at every run start.
	// Empty disables the file log.
	LogPath string `yaml:"log_path"`

	// HistoryPath is the sqlite session journal. Empty disables it.
	HistoryPath string `yaml:"history_path"`
}

// Default returns the configuration a run starts from before file and flag
// overlays.
func Default() SortConfig {
	return SortConfig{
		Threshold:        10,
		CountMode:        string(classify.CountNonSpace),
		DetectBlank:      true,
		DetectDuplicates: false,
		LogPath:          "textsort.log",
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (SortConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration once, before a session starts. All
// failures wrap ErrInvalidConfig.
func (c *SortConfig) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("%w: input folder is required", ErrInvalidConfig)
	}
	if err := requireDir(c.InputDir, "input folder"); err != nil {
		return err
	}

	if !c.DryRun {
		if c.OutputDir == "" {
			return fmt.Errorf("%w: output folder is required", ErrInvalidConfig)
		}
		if err := requireDir(c.OutputDir, "output folder"); err != nil {
			return err
		}
		if sameDir(c.InputDir, c.OutputDir) {
			return fmt.Errorf("%w: output folder must differ from input folder", ErrInvalidConfig)
		}
		if c.NoTextDir != "" {
			if err := requireDir(c.NoTextDir, "no-text folder"); err != nil {
				return err
			}
			if sameDir(c.InputDir, c.NoTextDir) {
				return fmt.Errorf("%w: no-text folder must differ from input folder", ErrInvalidConfig)
			}
		}
	}

	if c.Threshold < 0 {
		return fmt.Errorf("%w: threshold must be >= 0, got %d", ErrInvalidConfig, c.Threshold)
	}
	if c.DensityThreshold < 0 {
		return fmt.Errorf("%w: density threshold must be >= 0, got %g", ErrInvalidConfig, c.DensityThreshold)
	}
	if _, err := classify.ParseCountMode(c.CountMode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Classifier builds the classifier described by the configuration.
// Validate must have succeeded before calling this.
func (c *SortConfig) Classifier() classify.Classifier {
	mode, _ := classify.ParseCountMode(c.CountMode)
	return classify.Classifier{Threshold: c.Threshold, Mode: mode}
}

func requireDir(path, label string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s does not exist: %s", ErrInvalidConfig, label, path)
		}
		return fmt.Errorf("%w: cannot access %s %s: %v", ErrInvalidConfig, label, path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory: %s", ErrInvalidConfig, label, path)
	}
	return nil
}

func sameDir(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
