package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// validConfig returns a config pointing at freshly created temp folders.
func validConfig(t *testing.T) SortConfig {
	t.Helper()
	cfg := Default()
	cfg.InputDir = t.TempDir()
	cfg.OutputDir = t.TempDir()
	return cfg
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig(t)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone")

	tests := []struct {
		name   string
		mutate func(*SortConfig)
	}{
		{"empty input", func(c *SortConfig) { c.InputDir = "" }},
		{"missing input", func(c *SortConfig) { c.InputDir = missing }},
		{"empty output", func(c *SortConfig) { c.OutputDir = "" }},
		{"missing output", func(c *SortConfig) { c.OutputDir = missing }},
		{"output equals input", func(c *SortConfig) { c.OutputDir = c.InputDir }},
		{"no-text equals input", func(c *SortConfig) { c.NoTextDir = c.InputDir }},
		{"missing no-text dir", func(c *SortConfig) { c.NoTextDir = missing }},
		{"negative threshold", func(c *SortConfig) { c.Threshold = -1 }},
		{"negative density", func(c *SortConfig) { c.DensityThreshold = -0.5 }},
		{"bad count mode", func(c *SortConfig) { c.CountMode = "vowels" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate should have failed")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestValidate_InputAsFile(t *testing.T) {
	cfg := validConfig(t)
	file := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg.InputDir = file

	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("file as input folder: got %v, want ErrInvalidConfig", err)
	}
}

func TestValidate_DryRunSkipsOutputChecks(t *testing.T) {
	cfg := Default()
	cfg.InputDir = t.TempDir()
	cfg.DryRun = true
	// No output folder at all: fine for a dry run.

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "textsort.yml")
	body := `
input_dir: /photos/inbox
output_dir: /photos/text
threshold: 25
count_mode: letters
languages: [deu, eng]
detect_duplicates: true
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.InputDir != "/photos/inbox" || cfg.OutputDir != "/photos/text" {
		t.Errorf("folders not loaded: %+v", cfg)
	}
	if cfg.Threshold != 25 {
		t.Errorf("Threshold = %d, want 25", cfg.Threshold)
	}
	if cfg.CountMode != "letters" {
		t.Errorf("CountMode = %q, want letters", cfg.CountMode)
	}
	if len(cfg.Languages) != 2 {
		t.Errorf("Languages = %v, want [deu eng]", cfg.Languages)
	}
	if !cfg.DetectDuplicates {
		t.Error("DetectDuplicates should be true")
	}
	// Defaults survive where the file is silent.
	if !cfg.DetectBlank {
		t.Error("DetectBlank default should survive the overlay")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yml")
	if err := os.WriteFile(path, []byte("input_dir: [unbalanced"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load of broken YAML should fail")
	}
}

func TestClassifierFromConfig(t *testing.T) {
	cfg := Default()
	cfg.Threshold = 7
	cfg.CountMode = "all"

	c := cfg.Classifier()
	if c.Threshold != 7 {
		t.Errorf("Threshold = %d, want 7", c.Threshold)
	}
	if got := c.CharCount("a b"); got != 3 {
		t.Errorf("CharCount under mode all = %d, want 3", got)
	}
}
