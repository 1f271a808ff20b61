package recording

import (
	"encoding/json"
	"fmt"
	"slices"
)

// pageEnvelope keeps records raw so one bad record cannot fail the page.
type pageEnvelope struct {
	Count      int               `json:"count"`
	Recordings []json.RawMessage `json:"recordings"`
}

// ParsePage parses a recordings response body.
// It returns ErrJSONUnmarshalFailed (wrapping the original error) only if the
// envelope itself is broken. Records are decoded one by one with Parse; a
// record that is not a JSON object is kept with Err set so callers can count it.
func ParsePage(data []byte) (Page, error) {
	var env pageEnvelope

	err := json.Unmarshal(data, &env)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %w", ErrJSONUnmarshalFailed, err)
	}

	page := Page{Count: env.Count, Recordings: make([]Recording, 0, len(env.Recordings))}
	for i, raw := range env.Recordings {
		rec, err := Parse(raw)
		if err != nil {
			rec = Recording{ID: fmt.Sprintf("#%d", i), decodeErr: err}
		}
		page.Recordings = append(page.Recordings, rec)
	}
	return page, nil
}

// Parse parses a single recording object, as carried by replayed Kafka messages.
// Fields of the wrong JSON type are left unset and reported by Lookup as
// KindInvalid; only input that is not a JSON object is an error.
func Parse(data []byte) (Recording, error) {
	var rec Recording
	if err := json.Unmarshal(data, &rec); err == nil {
		return rec, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Recording{}, fmt.Errorf("%w: %w", ErrJSONUnmarshalFailed, err)
	}

	rec = Recording{}
	decoders := map[string]func(json.RawMessage) error{
		"id":             decodeInto(&rec.ID),
		"created":        decodeInto(&rec.Created),
		"duration":       decodeInto(&rec.Duration),
		"engagementTime": decodeInto(&rec.EngagementTime),
		"pages":          decodeInto(&rec.Pages),
		"country":        decodeInto(&rec.Country),
		"browser":        decodeInto(&rec.Browser),
		"device":         decodeInto(&rec.Device),
		"os":             decodeInto(&rec.OS),
		"referrerType":   decodeInto(&rec.ReferrerType),
		"entryPage":      decodeInto(&rec.EntryPage),
		"tags":           decodeInto(&rec.Tags),
		"variables":      decodeInto(&rec.Variables),
	}
	for key, raw := range fields {
		decode, ok := decoders[key]
		if !ok {
			continue
		}
		if err := decode(raw); err != nil {
			rec.mistyped = append(rec.mistyped, key)
		}
	}
	slices.Sort(rec.mistyped)
	return rec, nil
}

// decodeInto assigns dst only when raw decodes cleanly into its type.
func decodeInto[T any](dst *T) func(json.RawMessage) error {
	return func(raw json.RawMessage) error {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		*dst = v
		return nil
	}
}
