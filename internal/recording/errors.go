package recording

import "errors"

var (
	ErrJSONUnmarshalFailed = errors.New("failed to unmarshal recording JSON")
	ErrMissingField        = errors.New("recording field missing")
	ErrFieldType           = errors.New("recording field has unexpected type")
)
