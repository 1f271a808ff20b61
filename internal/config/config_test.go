package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func baseArgs() []string {
	return []string{
		"-u", "test-user",
		"-k", "test-key",
		"-l", "us",
		"-p", "some-id,some-other-id",
		"-f", "2020-5-1",
		"-t", "2020-10-1",
		"-o", "test-path",
	}
}

func TestLoad_FromFlags(t *testing.T) {
	cfg, err := Load(append(baseArgs(), "-T", "-K"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.API.User != "test-user" || cfg.API.Key != "test-key" || cfg.API.Region != "us" {
		t.Errorf("unexpected api config: %+v", cfg.API)
	}
	if cfg.Output.Directory != "test-path" {
		t.Errorf("output = %q", cfg.Output.Directory)
	}
	if len(cfg.Websites) != 2 || cfg.Websites[0] != "some-id" || cfg.Websites[1] != "some-other-id" {
		t.Errorf("websites = %v", cfg.Websites)
	}
	if !cfg.Report.IncludeTotalRow || cfg.Report.RemoveEmptyRows || cfg.Report.ConvertMsToMin || !cfg.Report.KeepMostSeenMaps {
		t.Errorf("unexpected report flags: %+v", cfg.Report)
	}
	if !cfg.Report.From.Equal(time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("from = %v", cfg.Report.From)
	}
	if !cfg.Report.To.Equal(time.Date(2020, 10, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("to = %v", cfg.Report.To)
	}
	if cfg.Report.BucketDays != defaultBucketDays || cfg.Report.MaxBuckets != defaultMaxBuckets {
		t.Errorf("bucket defaults = %d/%d", cfg.Report.BucketDays, cfg.Report.MaxBuckets)
	}
	if cfg.Source.Kind != SourceAPI || cfg.Fetch.Concurrency != defaultConcurrency || cfg.Fetch.PageSize != defaultPageSize {
		t.Errorf("unexpected source/fetch defaults: %+v %+v", cfg.Source, cfg.Fetch)
	}
	if cfg.Log.Level != defaultLogLevel {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoad_DefaultDateRange(t *testing.T) {
	cfg, err := Load([]string{"-u", "u", "-k", "k", "-p", "w"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := int(cfg.Report.To.Sub(cfg.Report.From).Hours() / 24); got != defaultLookbackDays {
		t.Errorf("default range spans %d days, want %d", got, defaultLookbackDays)
	}
	if cfg.API.Region != defaultRegion || cfg.Output.Directory != defaultOutputDirectory {
		t.Errorf("region/output defaults = %q/%q", cfg.API.Region, cfg.Output.Directory)
	}
}

func TestLoad_DebugRaisesLogLevel(t *testing.T) {
	cfg, err := Load(append(baseArgs(), "-D"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("MFREPORT_API_KEY", "env-key")
	t.Setenv("MFREPORT_REPORT_CONVERTMSTOMIN", "true")

	args := []string{"-u", "u", "-p", "w", "-f", "2020-5-1", "-t", "2020-10-1"}
	cfg, err := Load(args)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.Key != "env-key" {
		t.Errorf("key = %q, want env-key", cfg.API.Key)
	}
	if !cfg.Report.ConvertMsToMin {
		t.Error("expected ConvertMsToMin from environment")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mfreport.yaml")
	content := `
api:
  user: file-user
  key: file-key
  region: eu
websites: [" site-a ", "site-b", "site-a", ""]
report:
  from: "2020-05-01"
  to: "2020-10-01"
  removeEmptyRows: true
source:
  kind: KAFKA
  kafka:
    brokers: ["localhost:9092"]
    topic: recordings
fetch:
  timeout: 5s
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load([]string{"-c", path, "-u", "flag-user"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.User != "flag-user" {
		t.Errorf("flags should override the file, user = %q", cfg.API.User)
	}
	if cfg.API.Key != "file-key" {
		t.Errorf("key = %q", cfg.API.Key)
	}
	if len(cfg.Websites) != 2 || cfg.Websites[0] != "site-a" || cfg.Websites[1] != "site-b" {
		t.Errorf("websites not normalized: %v", cfg.Websites)
	}
	if !cfg.Report.RemoveEmptyRows {
		t.Error("expected removeEmptyRows from file")
	}
	if cfg.Source.Kind != SourceKafka || cfg.Source.Kafka.Topic != "recordings" {
		t.Errorf("source = %+v", cfg.Source)
	}
	if cfg.Source.Kafka.IdleTimeout != defaultKafkaIdleTimeout {
		t.Errorf("idle timeout = %v", cfg.Source.Kafka.IdleTimeout)
	}
	if cfg.Fetch.Timeout != 5*time.Second {
		t.Errorf("timeout = %v", cfg.Fetch.Timeout)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent.yaml")
	_, err := Load(append(baseArgs(), "-c", path))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
	if !errors.Is(err, ErrConfigFileMissing) && !errors.Is(err, ErrReadingConfigFile) {
		t.Fatalf("error = %v", err)
	}
}

func TestLoad_Help(t *testing.T) {
	if _, err := Load([]string{"--help"}); !errors.Is(err, pflag.ErrHelp) {
		t.Fatalf("error = %v, want pflag.ErrHelp", err)
	}
	if usage := Usage(); usage == "" {
		t.Fatal("usage text is empty")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"range shorter than a row", []string{"-u", "u", "-k", "k", "-p", "w", "-f", "2020-5-1", "-t", "2020-5-4"}, ErrDateRangeTooShort},
		{"inverted range", []string{"-u", "u", "-k", "k", "-p", "w", "-f", "2020-10-1", "-t", "2020-5-1"}, ErrDateRangeInverted},
		{"bad date", []string{"-u", "u", "-k", "k", "-p", "w", "-f", "yesterday"}, ErrInvalidDate},
		{"missing user", []string{"-k", "k", "-p", "w"}, ErrEmptyUser},
		{"missing key", []string{"-u", "u", "-p", "w"}, ErrEmptyKey},
		{"empty output", []string{"-u", "u", "-k", "k", "-p", "w", "-o", ""}, ErrEmptyOutput},
		{"empty region", []string{"-u", "u", "-k", "k", "-p", "w", "-l", ""}, ErrEmptyRegion},
		{"no websites", []string{"-u", "u", "-k", "k"}, ErrNoWebsites},
		{"unknown source", []string{"-u", "u", "-k", "k", "-p", "w", "--source", "ftp"}, ErrUnknownSource},
		{"kafka without brokers", []string{"-u", "u", "-k", "k", "-p", "w", "--source", "kafka"}, ErrEmptyKafkaBrokers},
		{"zero concurrency", []string{"-u", "u", "-k", "k", "-p", "w", "--concurrency", "0"}, ErrInvalidConcurrency},
		{"unknown flag", []string{"--nope"}, ErrParsingFlags},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoad_KafkaNeedsNoCredentials(t *testing.T) {
	t.Setenv("MFREPORT_SOURCE_KAFKA_BROKERS", "localhost:9092,localhost:9093")
	t.Setenv("MFREPORT_SOURCE_KAFKA_TOPIC", "recordings")

	cfg, err := Load([]string{"-p", "w", "--source", "kafka", "-f", "2020-5-1", "-t", "2020-10-1"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source.Kind != SourceKafka || cfg.Source.Kafka.Topic != "recordings" || len(cfg.Source.Kafka.Brokers) != 2 {
		t.Errorf("source = %+v", cfg.Source)
	}
}
