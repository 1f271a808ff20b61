package config

import "errors"

var (
	ErrParsingFlags        = errors.New("failed to parse command line flags")
	ErrReadingConfigFile   = errors.New("failed to read config file")
	ErrUnmarshallingConfig = errors.New("failed to unmarshal config")
	ErrConfigFileMissing   = errors.New("config file not found")
	ErrInvalidDate         = errors.New("from and to must be ISO 8601 dates")
	ErrDateRangeTooShort   = errors.New("difference between from and to date is less than the row increment")
	ErrDateRangeInverted   = errors.New("from date is after to date")
	ErrEmptyUser           = errors.New("username is not specified, use 'mfreport --help'")
	ErrEmptyOutput         = errors.New("output path is not specified, use 'mfreport --help'")
	ErrEmptyRegion         = errors.New("location is not specified, use 'mfreport --help'")
	ErrEmptyKey            = errors.New("key is not specified, use 'mfreport --help'")
	ErrNoWebsites          = errors.New("no website ids specified, use 'mfreport --help'")
	ErrInvalidBucketDays   = errors.New("report bucketDays must not be negative")
	ErrInvalidConcurrency  = errors.New("fetch concurrency must be positive")
	ErrUnknownSource       = errors.New("source kind must be either 'api' or 'kafka'")
	ErrEmptyKafkaBrokers   = errors.New("kafka brokers list cannot be empty")
	ErrEmptyKafkaTopic     = errors.New("kafka topic cannot be empty")
)
