package config

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	src := `
listen: 127.0.0.1:9000
limits:
  max_length: 100
  precision: 128
sample:
  size: 10
`
	cfg, err := Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != "127.0.0.1:9000" {
		t.Errorf("wrong listen address %q", cfg.Listen)
	}
	if cfg.Limits.MaxLength != 100 || cfg.Limits.Precision != 128 {
		t.Errorf("wrong limits %+v", cfg.Limits)
	}
	d := Default()
	if cfg.Limits.MaxDepth != d.Limits.MaxDepth {
		t.Errorf("unset max_depth should be the default %d, got %d", d.Limits.MaxDepth, cfg.Limits.MaxDepth)
	}
	if cfg.Sample.Size != 10 || cfg.Sample.Seed != d.Sample.Seed || cfg.Sample.Mean != d.Sample.Mean {
		t.Errorf("wrong sample %+v", cfg.Sample)
	}
	if cfg.Confidence.Level != 0.95 {
		t.Errorf("wrong confidence level %g", cfg.Confidence.Level)
	}
	if len(cfg.Options()) != 3 {
		t.Errorf("wrong number of evaluator options")
	}
}

func TestDefaultValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
	d, err := Default().Shutdown()
	if err != nil || d != 5*time.Second {
		t.Errorf("default shutdown timeout is %v, %v", d, err)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		msg  string
	}{
		{"yaml", "listen: [", "config"},
		{"listen", `listen: ""`, "listen"},
		{"body", "max_body: 0", "max_body"},
		{"length", "limits: {max_length: -1}", "max_length"},
		{"depth", "limits: {max_depth: -1}", "max_depth"},
		{"prec", "limits: {precision: 1000000}", "precision"},
		{"size", "sample: {size: 0}", "sample.size"},
		{"stddev", "sample: {stddev: -1}", "stddev"},
		{"stddevinf", "sample: {stddev: .inf}", "config"},
		{"meannan", "sample: {mean: .nan}", "config"},
		{"meaninf", "sample: {mean: -.inf}", "config"},
		{"level", "confidence: {level: 1}", "confidence.level"},
		{"shutdown", "shutdown_timeout: soon", "shutdown_timeout"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse([]byte(c.src))
			if err == nil {
				t.Fatal("no error")
			}
			if !strings.Contains(err.Error(), c.msg) {
				t.Errorf("error %q does not mention %q", err, c.msg)
			}
		})
	}
}

func TestValidateNonFinite(t *testing.T) {
	cases := []struct {
		name string
		set  func(*Config)
		msg  string
	}{
		{"mean-nan", func(c *Config) { c.Sample.Mean = math.NaN() }, "sample.mean"},
		{"mean-inf", func(c *Config) { c.Sample.Mean = math.Inf(-1) }, "sample.mean"},
		{"stddev-inf", func(c *Config) { c.Sample.StdDev = math.Inf(1) }, "sample.stddev"},
		{"stddev-nan", func(c *Config) { c.Sample.StdDev = math.NaN() }, "sample.stddev"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := Default()
			c.set(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), c.msg) {
				t.Errorf("want error mentioning %s, got %v", c.msg, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "statshub.yml")
	if _, err := Load(path, false); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: want ErrNotExist, got %v", err)
	}
	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("missing file with missingOK: %v", err)
	}
	if cfg.Listen != Default().Listen {
		t.Errorf("missing file should give defaults, got %+v", cfg)
	}
	if err := os.WriteFile(path, []byte("listen: :1234\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(path, false)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != ":1234" {
		t.Errorf("wrong listen address %q", cfg.Listen)
	}
	if err := os.WriteFile(path, []byte("sample: {size: -3}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, true); err == nil || !strings.Contains(err.Error(), path) {
		t.Errorf("invalid file: want error naming %s, got %v", path, err)
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "statshub.yml")
	if err := os.WriteFile(path, []byte("listen: :1000\n"), 0644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Config, err error) {
			if err == nil {
				got <- cfg
			}
		})
	}()

	// Give the watcher time to start before changing the file. Keep writing
	// until a reload arrives in case the first write raced the watch.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case cfg := <-got:
			// A reload can see the file truncated before the write.
			if cfg.Listen != ":2000" {
				continue
			}
			cancel()
			if err := <-done; err != nil {
				t.Errorf("watch returned %v", err)
			}
			return
		case <-tick.C:
			if err := os.WriteFile(path, []byte("listen: :2000\n"), 0644); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("no reload after writing the config file")
		}
	}
}

func TestExampleFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "statshub.yml"), false)
	if err != nil {
		t.Fatal(err)
	}
	if d := Default(); *cfg != *d {
		t.Errorf("example file differs from defaults:\nfile     %+v\ndefaults %+v", cfg, d)
	}
}
