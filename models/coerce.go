package models

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/viniciuslks7/API-Starwars/swapi"
)

// ErrInvalidPayload is returned when an upstream object cannot be decoded
// or lacks a required field.
var ErrInvalidPayload = errors.New("models: invalid payload")

// text is an upstream scalar. The API sends almost everything as strings
// but occasionally as numbers or null; text accepts all three.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*t = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := sonic.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(s)
	default:
		*t = text(b)
	}
	return nil
}

// or returns the trimmed value, or def when empty.
func (t text) or(def string) string {
	if s := strings.TrimSpace(string(t)); s != "" {
		return s
	}
	return def
}

// unknownValues are placeholders the API uses for missing data.
var unknownValues = map[string]struct{}{
	"":           {},
	"unknown":    {},
	"n/a":        {},
	"none":       {},
	"indefinite": {},
}

// clean strips thousands separators and reports false for placeholder values.
func clean(t text) (string, bool) {
	s := strings.TrimSpace(string(t))
	if _, ok := unknownValues[strings.ToLower(s)]; ok {
		return "", false
	}
	return strings.ReplaceAll(s, ",", ""), true
}

// parseInt accepts "1,200", "172" and float text such as "2.5" (truncated).
func parseInt(t text) *int {
	v := parseInt64(t)
	if v == nil || *v > math.MaxInt32 || *v < math.MinInt32 {
		return nil
	}
	n := int(*v)
	return &n
}

func parseInt64(t text) *int64 {
	s, ok := clean(t)
	if !ok {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return nil
	}
	n := int64(f)
	return &n
}

func parseFloat(t text) *float64 {
	s, ok := clean(t)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// parseFirstInt reads the first whitespace-separated token, as in "10 MGLT".
func parseFirstInt(t text) *int {
	s, ok := clean(t)
	if !ok {
		return nil
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	return parseInt(text(fields[0]))
}

// parseSpeed strips a "km" unit suffix, as in "1000km".
func parseSpeed(t text) *int {
	s := strings.ReplaceAll(strings.ToLower(string(t)), "km", "")
	return parseInt(text(s))
}

// idFrom derives an identifier from a related resource URL.
func idFrom(url string) *int {
	if url == "" {
		return nil
	}
	id, err := swapi.ParseID(url)
	if err != nil {
		return nil
	}
	return &id
}

func parseTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	return &ts
}

// Date is a calendar date encoded as "2006-01-02".
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// ParseDate parses "2006-01-02". It returns nil for anything else.
func ParseDate(s string) *Date {
	d, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &Date{Time: d}
}

func (d Date) String() string { return d.Format(dateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := sonic.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed := ParseDate(s)
	if parsed == nil {
		return fmt.Errorf("models: invalid date %q", s)
	}
	*d = *parsed
	return nil
}

// decode unmarshals an item payload and checks the required name field.
func decode(item swapi.Item, dst any, required func() string) error {
	if err := sonic.Unmarshal(item.Raw, dst); err != nil {
		return fmt.Errorf("%w: item %d: %v", ErrInvalidPayload, item.ID, err)
	}
	if strings.TrimSpace(required()) == "" {
		return fmt.Errorf("%w: item %d: missing name", ErrInvalidPayload, item.ID)
	}
	return nil
}
