package report

import "errors"

var (
	ErrEmptySchema          = errors.New("schema has no columns")
	ErrInvalidColumn        = errors.New("invalid column")
	ErrDuplicateColumn      = errors.New("duplicate column key")
	ErrMultipleCountColumns = errors.New("schema has more than one count column")
	ErrMissingCountColumn   = errors.New("schema has no count column")
	ErrAverageBeforeCount   = errors.New("average column precedes the count column")
	ErrUnknownAverageSource = errors.New("average column references an unknown numeric column")
	ErrUnknownAction        = errors.New("unknown column action")
	ErrUnknownDefaultKind   = errors.New("unknown column default kind")

	ErrMalformedRecording   = errors.New("recording is missing or mistypes a field the schema needs")
	ErrUnparseableTimestamp = errors.New("recording created timestamp is not a date")
	ErrNoMatchingRow        = errors.New("recording falls outside every row")
)
