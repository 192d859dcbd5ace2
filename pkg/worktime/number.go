package worktime

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/matzehuels/worktime/pkg/errors"
)

// Numbers selects how summary numbers are encoded.
type Numbers string

const (
	// NumbersText encodes numbers as display strings such as "1:05".
	NumbersText Numbers = "text"
	// NumbersValues encodes numbers as raw JSON numbers (seconds or ratios).
	NumbersValues Numbers = "values"
)

// ParseNumbers validates a numbers query value. Empty means NumbersText.
func ParseNumbers(s string) (Numbers, error) {
	switch Numbers(s) {
	case "", NumbersText:
		return NumbersText, nil
	case NumbersValues:
		return NumbersValues, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "numbers must be %q or %q, got %q", NumbersValues, NumbersText, s)
}

// Number is a summary value that carries both its raw value and its display
// text. It marshals to one of the two depending on the Numbers mode it was
// created with. A Number without a value marshals to null in values mode.
type Number struct {
	Value float64
	Text  string
	Valid bool
	text  bool
}

func newNumber(value float64, text string, mode Numbers) Number {
	return Number{Value: value, Text: text, Valid: true, text: mode != NumbersValues}
}

func nullNumber(text string, mode Numbers) Number {
	return Number{Text: text, text: mode != NumbersValues}
}

// String returns the form the Number marshals to.
func (n Number) String() string {
	if n.text {
		return n.Text
	}
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	if n.text {
		return json.Marshal(n.Text)
	}
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// UnmarshalJSON implements json.Unmarshaler. Strings populate Text, numbers
// populate Value.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = Number{}
		return nil
	case len(data) > 0 && data[0] == '"':
		*n = Number{text: true}
		return json.Unmarshal(data, &n.Text)
	}
	*n = Number{Valid: true}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Text = strconv.FormatFloat(n.Value, 'f', -1, 64)
	return nil
}
