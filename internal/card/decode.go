package card

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNotObject is returned when a corpus record is not a JSON object
var ErrNotObject = errors.New("card is not a JSON object")

// Decode reads one corpus record. Optional fields of the wrong JSON type are
// coerced when the intent is clear (a ";"-separated string for a list, "true"
// for a bool, a numeric string for an index) and dropped otherwise. Each
// coercion or drop is reported in notes. Only a record that is not an object
// fails.
func Decode(data []byte) (Card, []string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return Card{}, nil, ErrNotObject
	}

	d := &fieldDecoder{fields: fields}
	c := Card{
		ID:           d.text("id"),
		Interactive:  d.boolean("interactive"),
		Language:     d.text("language"),
		City:         d.text("city"),
		Icon:         d.text("icon"),
		Title:        d.text("title"),
		Text:         d.text("text"),
		Question:     d.text("question"),
		Options:      d.list("options"),
		CorrectIndex: d.index("correct_index"),
		Reality:      d.text("reality"),
		Explanation:  d.text("explanation"),
		Routes:       d.list("routes"),
		Persons:      d.list("persons"),
		Tags:         d.list("tags"),
	}
	if raw, ok := d.raw("location"); ok {
		loc, notes := decodeLocation(raw)
		c.Location = loc
		for _, n := range notes {
			d.notef("location.%s", n)
		}
	}
	return c, d.notes, nil
}

// UnmarshalJSON decodes a card leniently, see Decode
func (c *Card) UnmarshalJSON(data []byte) error {
	decoded, _, err := Decode(data)
	if err != nil {
		return err
	}
	*c = decoded
	return nil
}

type fieldDecoder struct {
	fields map[string]json.RawMessage
	notes  []string
}

func (d *fieldDecoder) notef(format string, args ...any) {
	d.notes = append(d.notes, fmt.Sprintf(format, args...))
}

// raw returns the field unless it is absent or null
func (d *fieldDecoder) raw(key string) (json.RawMessage, bool) {
	return present(d.fields[key])
}

func present(raw json.RawMessage) (json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, false
	}
	return raw, true
}

func (d *fieldDecoder) text(key string) string {
	raw, ok := d.raw(key)
	if !ok {
		return ""
	}
	s, exact, ok := scalarText(raw)
	if !ok {
		d.notef("%s: expected text, ignored", key)
		return ""
	}
	if !exact {
		d.notef("%s: expected text, converted %s", key, raw)
	}
	return s
}

// scalarText reads a string, or the literal of a number or bool
func scalarText(raw json.RawMessage) (s string, exact, ok bool) {
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true, true
	}
	switch raw[0] {
	case '{', '[':
		return "", false, false
	}
	return string(raw), false, true
}

func (d *fieldDecoder) boolean(key string) bool {
	raw, ok := d.raw(key)
	if !ok {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		d.notef("%s: expected a bool, read %q", key, s)
		return strings.EqualFold(strings.TrimSpace(s), "true")
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		d.notef("%s: expected a bool, read %v", key, n)
		return n != 0
	}
	d.notef("%s: expected a bool, ignored", key)
	return false
}

func (d *fieldDecoder) list(key string) []string {
	raw, ok := d.raw(key)
	if !ok {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		result := make([]string, 0, len(items))
		for i, item := range items {
			item, ok := present(item)
			if !ok {
				continue
			}
			s, exact, ok := scalarText(item)
			if !ok {
				d.notef("%s[%d]: expected text, ignored", key, i)
				continue
			}
			if !exact {
				d.notef("%s[%d]: expected text, converted %s", key, i, item)
			}
			result = append(result, s)
		}
		return result
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		d.notef("%s: expected a list, split text on ';'", key)
		return splitItems(s)
	}
	d.notef("%s: expected a list, ignored", key)
	return nil
}

func splitItems(s string) []string {
	result := []string{}
	for _, item := range strings.Split(s, ";") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}

func (d *fieldDecoder) index(key string) *int {
	raw, ok := d.raw(key)
	if !ok {
		return nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n != math.Trunc(n) {
			d.notef("%s: %v is not a whole number, ignored", key, n)
			return nil
		}
		return IntPtr(int(n))
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			d.notef("%s: expected a number, read %q", key, s)
			return IntPtr(v)
		}
	}
	d.notef("%s: expected a number, ignored", key)
	return nil
}

// number reads a JSON number or a numeric string
func number(raw json.RawMessage) (float64, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return v, true
		}
	}
	return 0, false
}
