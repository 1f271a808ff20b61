package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sanspareilsmyn/mfreport/internal/date"
)

const (
	defaultRegion           = "eu"
	defaultOutputDirectory  = "."
	defaultLookbackDays     = 30
	defaultBucketDays       = 6
	defaultMaxBuckets       = 55
	defaultSourceKind       = SourceAPI
	defaultConcurrency      = 8
	defaultTimeout          = 60 * time.Second
	defaultPageSize         = 10000
	defaultKafkaIdleTimeout = 5 * time.Second
	defaultLogLevel         = "info"
	defaultLogFormat        = "console"
	defaultLogFileEnabled   = false
	defaultLogDirectory     = "log"
	defaultLogFilename      = "mfreport.log"
	defaultLogMaxSizeMB     = 100
	defaultLogMaxBackups    = 3
	defaultLogMaxAgeDays    = 7
	defaultLogCompress      = false

	// Environment variable prefix
	envPrefix = "MFREPORT"

	SourceAPI   = "api"
	SourceKafka = "kafka"
)

type Config struct {
	API      APIConfig     `mapstructure:"api"`
	Websites []string      `mapstructure:"websites"`
	Report   ReportConfig  `mapstructure:"report"`
	Output   OutputConfig  `mapstructure:"output"`
	Source   SourceConfig  `mapstructure:"source"`
	Fetch    FetchConfig   `mapstructure:"fetch"`
	Metrics  MetricsConfig `mapstructure:"metrics"`
	Log      LogConfig     `mapstructure:"log"`
}

type APIConfig struct {
	User   string `mapstructure:"user"`
	Key    string `mapstructure:"key"`
	Region string `mapstructure:"region"` // "eu" or "us"
}

// ReportConfig shapes every report of a run. FromDate/ToDate hold the raw
// input; From/To are filled in by validation.
type ReportConfig struct {
	FromDate         string `mapstructure:"from"`
	ToDate           string `mapstructure:"to"`
	BucketDays       int    `mapstructure:"bucketDays"`
	MaxBuckets       int    `mapstructure:"maxBuckets"`
	IncludeTotalRow  bool   `mapstructure:"includeTotalRow"`
	RemoveEmptyRows  bool   `mapstructure:"removeEmptyRows"`
	ConvertMsToMin   bool   `mapstructure:"convertMsToMin"`
	KeepMostSeenMaps bool   `mapstructure:"keepMostSeenMaps"`

	From time.Time `mapstructure:"-"`
	To   time.Time `mapstructure:"-"`
}

type OutputConfig struct {
	Directory string `mapstructure:"directory"`
}

type SourceConfig struct {
	Kind  string      `mapstructure:"kind"` // "api" or "kafka"
	Kafka KafkaConfig `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Brokers     []string      `mapstructure:"brokers"`
	Topic       string        `mapstructure:"topic"`
	Partition   int           `mapstructure:"partition"`
	IdleTimeout time.Duration `mapstructure:"idleTimeout"` // stop reading after this long without a message
}

type FetchConfig struct {
	Concurrency int           `mapstructure:"concurrency"` // concurrent page requests per website
	Timeout     time.Duration `mapstructure:"timeout"`     // per HTTP request
	PageSize    int           `mapstructure:"pageSize"`
}

type MetricsConfig struct {
	TextfilePath string `mapstructure:"textfile"` // node_exporter textfile collector target, empty disables
}

type LogConfig struct {
	Level              string `mapstructure:"level"`
	Format             string `mapstructure:"format"`
	FileLoggingEnabled bool   `mapstructure:"fileLoggingEnabled"`
	Directory          string `mapstructure:"directory"`
	Filename           string `mapstructure:"filename"`
	MaxSize            int    `mapstructure:"maxSize"`    // Max size in MB
	MaxBackups         int    `mapstructure:"maxBackups"` // Max backup files
	MaxAge             int    `mapstructure:"maxAge"`     // Max days to retain
	Compress           bool   `mapstructure:"compress"`   // Compress rotated files?
}

// flag name -> viper key
var flagBindings = map[string]string{
	"user":             "api.user",
	"key":              "api.key",
	"location":         "api.region",
	"projects":         "websites",
	"from":             "report.from",
	"to":               "report.to",
	"output":           "output.directory",
	"total-row":        "report.includeTotalRow",
	"remove-empty":     "report.removeEmptyRows",
	"convert-minutes":  "report.convertMsToMin",
	"keep-maps":        "report.keepMostSeenMaps",
	"bucket-days":      "report.bucketDays",
	"max-buckets":      "report.maxBuckets",
	"source":           "source.kind",
	"concurrency":      "fetch.concurrency",
	"timeout":          "fetch.timeout",
	"metrics-textfile": "metrics.textfile",
	"debug":            "debug",
}

// Load parses args, layers flags over environment over the optional config
// file over defaults, and validates the result. It returns pflag.ErrHelp when
// --help was requested.
func Load(args []string) (*Config, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrParsingFlags, err)
	}
	configPath, _ := fs.GetString("config")

	v := viper.New()
	configureViper(v, configPath)

	// Set default values before reading config source .yaml
	setDefaults(v, date.Today())

	if configPath != "" {
		if err := readConfigFile(v); err != nil {
			return nil, err
		}
	}

	for name, key := range flagBindings {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParsingFlags, err)
		}
	}

	// Unmarshal the configuration
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshallingConfig, err)
	}
	if v.GetBool("debug") {
		cfg.Log.Level = "debug"
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Usage is the --help text.
func Usage() string {
	var b strings.Builder
	b.WriteString("$ mfreport -u USER -k KEY -l LOCATION -p PROJECTS -f FROMDATE -t TODATE -o OUTPUT [ ...FLAGS ]\n\n")
	b.WriteString("Generate a CSV report per Mouseflow website from its recordings.\n\n")
	b.WriteString(newFlagSet().FlagUsages())
	return b.String()
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("mfreport", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	fs.StringP("config", "c", "", "Path to an optional configuration file")
	fs.StringP("user", "u", "", "mouseflow user email")
	fs.StringP("key", "k", "", "mouseflow api key")
	fs.StringP("location", "l", defaultRegion, "mouseflow server location (eu or us)")
	fs.StringSliceP("projects", "p", nil, "comma-separated mouseflow website ids")
	fs.StringP("from", "f", "", "ISO 8601 start date (default 30 days ago)")
	fs.StringP("to", "t", "", "ISO 8601 end date (default today)")
	fs.StringP("output", "o", defaultOutputDirectory, "path to output directory")
	fs.BoolP("total-row", "T", false, "generate a total row for accumulative data")
	fs.BoolP("remove-empty", "R", false, "remove all empty rows")
	fs.BoolP("convert-minutes", "C", false, "convert millisecond time measures to minutes")
	fs.BoolP("keep-maps", "K", false, "keep all entries in most seen maps")
	fs.BoolP("debug", "D", false, "output debug information")
	fs.Int("bucket-days", defaultBucketDays, "days added to a row's start to get its end")
	fs.Int("max-buckets", defaultMaxBuckets, "maximum number of full-width rows")
	fs.String("source", defaultSourceKind, "recording source: api or kafka")
	fs.Int("concurrency", defaultConcurrency, "concurrent page requests per website")
	fs.Duration("timeout", defaultTimeout, "timeout per API request")
	fs.String("metrics-textfile", "", "write Prometheus metrics to this file when done")
	return fs
}

// configureViper sets up viper instance for file and environment variables.
func configureViper(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults applies default configuration values using Viper.
func setDefaults(v *viper.Viper, today time.Time) {
	v.SetDefault("api.user", "")
	v.SetDefault("api.key", "")
	v.SetDefault("api.region", defaultRegion)
	v.SetDefault("websites", []string{})
	v.SetDefault("report.from", date.Format(date.AddDays(today, -defaultLookbackDays)))
	v.SetDefault("report.to", date.Format(today))
	v.SetDefault("report.bucketDays", defaultBucketDays)
	v.SetDefault("report.maxBuckets", defaultMaxBuckets)
	v.SetDefault("report.includeTotalRow", false)
	v.SetDefault("report.removeEmptyRows", false)
	v.SetDefault("report.convertMsToMin", false)
	v.SetDefault("report.keepMostSeenMaps", false)
	v.SetDefault("output.directory", defaultOutputDirectory)
	v.SetDefault("source.kind", defaultSourceKind)
	v.SetDefault("source.kafka.brokers", []string{})
	v.SetDefault("source.kafka.topic", "")
	v.SetDefault("source.kafka.partition", 0)
	v.SetDefault("source.kafka.idleTimeout", defaultKafkaIdleTimeout)
	v.SetDefault("fetch.concurrency", defaultConcurrency)
	v.SetDefault("fetch.timeout", defaultTimeout)
	v.SetDefault("fetch.pageSize", defaultPageSize)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)
	v.SetDefault("log.fileLoggingEnabled", defaultLogFileEnabled)
	v.SetDefault("log.directory", defaultLogDirectory)
	v.SetDefault("log.filename", defaultLogFilename)
	v.SetDefault("log.maxSize", defaultLogMaxSizeMB)
	v.SetDefault("log.maxBackups", defaultLogMaxBackups)
	v.SetDefault("log.maxAge", defaultLogMaxAgeDays)
	v.SetDefault("log.compress", defaultLogCompress)
}

// readConfigFile attempts to read the configuration file specified in viper.
func readConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return ErrConfigFileMissing
		}
		return fmt.Errorf("%w: %w", ErrReadingConfigFile, err)
	}
	return nil
}

// normalizeWebsites trims ids and drops blanks and duplicates, keeping order.
func normalizeWebsites(ids []string) []string {
	trimmed := lo.Map(ids, func(id string, _ int) string {
		return strings.TrimSpace(id)
	})
	return lo.Uniq(lo.Compact(trimmed))
}

func validateConfig(cfg *Config) error {
	from, errFrom := date.Parse(cfg.Report.FromDate)
	to, errTo := date.Parse(cfg.Report.ToDate)
	if err := errors.Join(errFrom, errTo); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDate, err)
	}
	if cfg.Report.BucketDays < 0 {
		return ErrInvalidBucketDays
	}
	if from.After(to) {
		return ErrDateRangeInverted
	}
	if date.DaysBetween(from, to) < cfg.Report.BucketDays {
		return ErrDateRangeTooShort
	}
	cfg.Report.From, cfg.Report.To = from, to

	// Credentials only matter when recordings come from the API.
	cfg.Source.Kind = strings.ToLower(cfg.Source.Kind)
	isAPI := cfg.Source.Kind == SourceAPI
	if isAPI && cfg.API.User == "" {
		return ErrEmptyUser
	}
	if cfg.Output.Directory == "" {
		return ErrEmptyOutput
	}
	if isAPI && cfg.API.Region == "" {
		return ErrEmptyRegion
	}
	if isAPI && cfg.API.Key == "" {
		return ErrEmptyKey
	}

	cfg.Websites = normalizeWebsites(cfg.Websites)
	if len(cfg.Websites) == 0 {
		return ErrNoWebsites
	}
	if cfg.Fetch.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	switch cfg.Source.Kind {
	case SourceAPI:
	case SourceKafka:
		if len(cfg.Source.Kafka.Brokers) == 0 {
			return ErrEmptyKafkaBrokers
		}
		if cfg.Source.Kafka.Topic == "" {
			return ErrEmptyKafkaTopic
		}
	default:
		return ErrUnknownSource
	}
	return nil
}
