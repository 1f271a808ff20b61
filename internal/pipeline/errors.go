package pipeline

import "errors"

var (
	ErrInvalidKafkaConfig   = errors.New("invalid Kafka configuration provided")
	ErrKafkaFetchFailed     = errors.New("failed to fetch messages from Kafka")
	ErrSourceCreationFailed = errors.New("failed to create recording source")
	ErrCountFailed          = errors.New("failed to get recording count")
	ErrPagesFailed          = errors.New("failed to fetch some recording pages")
	ErrReportFailed         = errors.New("report failed")
	ErrIncompleteReport     = errors.New("report written from incomplete data")
	ErrWritingReport        = errors.New("failed to write report file")
	ErrWritingMetrics       = errors.New("failed to write metrics textfile")
	ErrReportsFailed        = errors.New("one or more reports did not complete")
)
