package recording

import (
	"fmt"
	"slices"
	"strings"
)

// Recording is one session as returned by the recordings endpoint.
// Pointer fields distinguish a missing key from a zero value.
type Recording struct {
	ID             string   `json:"id"`
	Created        string   `json:"created"`
	Duration       *float64 `json:"duration"`
	EngagementTime *float64 `json:"engagementTime"`
	Pages          *float64 `json:"pages"`
	Country        *string  `json:"country"`
	Browser        *string  `json:"browser"`
	Device         *string  `json:"device"`
	OS             *string  `json:"os"`
	ReferrerType   *string  `json:"referrerType"`
	EntryPage      *string  `json:"entryPage"`
	Tags           []string `json:"tags"`
	Variables      []string `json:"variables"`

	// mistyped lists the known keys whose JSON value had the wrong type.
	mistyped []string
	// decodeErr is set when the record was not a JSON object at all.
	decodeErr error
}

// Page is the envelope of a recordings response. The count-only request
// carries Count; paged requests carry Recordings.
type Page struct {
	Count      int         `json:"count"`
	Recordings []Recording `json:"recordings"`
}

// Kind tags the variant held by a Value.
type Kind int

const (
	KindMissing Kind = iota
	KindNumber
	KindText
	KindList
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindList:
		return "list"
	case KindInvalid:
		return "invalid"
	default:
		return "missing"
	}
}

// Value is a field looked up by its JSON key.
type Value struct {
	Kind   Kind
	Number float64
	Text   string
	List   []string
}

// Lookup returns the field stored under the JSON key. Unknown keys and
// absent fields yield a KindMissing value, mistyped ones a KindInvalid value.
// A null list is an empty list.
func (r Recording) Lookup(key string) Value {
	if slices.Contains(r.mistyped, key) {
		return Value{Kind: KindInvalid}
	}
	switch key {
	case "duration":
		return number(r.Duration)
	case "engagementTime":
		return number(r.EngagementTime)
	case "pages":
		return number(r.Pages)
	case "country":
		return text(r.Country)
	case "browser":
		return text(r.Browser)
	case "device":
		return text(r.Device)
	case "os":
		return text(r.OS)
	case "referrerType":
		return text(r.ReferrerType)
	case "entryPage":
		return text(r.EntryPage)
	case "tags":
		return Value{Kind: KindList, List: r.Tags}
	case "variables":
		return Value{Kind: KindList, List: r.Variables}
	case "created":
		if r.Created == "" {
			return Value{}
		}
		return Value{Kind: KindText, Text: r.Created}
	default:
		return Value{}
	}
}

// Err reports why the record could not be decoded at all, nil for any JSON object.
func (r Recording) Err() error {
	return r.decodeErr
}

// Mistyped returns the known keys whose value had the wrong JSON type.
func (r Recording) Mistyped() []string {
	return slices.Clone(r.mistyped)
}

// Number returns the numeric field under key.
func (r Recording) Number(key string) (float64, error) {
	v := r.Lookup(key)
	if err := expect(key, v, KindNumber); err != nil {
		return 0, err
	}
	return v.Number, nil
}

// Text returns the string field under key.
func (r Recording) Text(key string) (string, error) {
	v := r.Lookup(key)
	if err := expect(key, v, KindText); err != nil {
		return "", err
	}
	return v.Text, nil
}

// List returns the string-list field under key.
func (r Recording) List(key string) ([]string, error) {
	v := r.Lookup(key)
	if err := expect(key, v, KindList); err != nil {
		return nil, err
	}
	return v.List, nil
}

// Snippet is a short description of the recording for log lines.
func (r Recording) Snippet(maxLength int) string {
	s := fmt.Sprintf("id=%s created=%s", r.ID, r.Created)
	if maxLength <= 0 {
		return "..."
	}
	if len(s) > maxLength {
		return strings.TrimSpace(s[:maxLength]) + "..."
	}
	return s
}

func expect(key string, v Value, want Kind) error {
	if v.Kind == KindMissing {
		return fmt.Errorf("%w: %q", ErrMissingField, key)
	}
	if v.Kind != want {
		return fmt.Errorf("%w: %q is %s, want %s", ErrFieldType, key, v.Kind, want)
	}
	return nil
}

func number(p *float64) Value {
	if p == nil {
		return Value{}
	}
	return Value{Kind: KindNumber, Number: *p}
}

func text(p *string) Value {
	if p == nil {
		return Value{}
	}
	return Value{Kind: KindText, Text: *p}
}
