package ai

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"unicode"
)

// FlexInt decodes integers the model may emit as numbers, numeric strings
// ("30", "30 minutes") or null. Unparseable values decode to zero.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}

	var number float64
	if err := json.Unmarshal(data, &number); err == nil {
		*f = FlexInt(number)
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	digits := strings.TrimSpace(text)
	end := strings.IndexFunc(digits, func(r rune) bool { return !unicode.IsDigit(r) })
	if end >= 0 {
		digits = digits[:end]
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		*f = 0
		return nil
	}
	*f = FlexInt(n)
	return nil
}

// FlexString decodes strings the model may emit as numbers or null.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*f = FlexString(text)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return err
	}
	*f = FlexString(number.String())
	return nil
}

// FlexStrings decodes a list the model may emit as an array, a single
// string, or null.
type FlexStrings []string

func (f *FlexStrings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = nil
		return nil
	}

	var list []FlexString
	if err := json.Unmarshal(data, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, v := range list {
			out = append(out, string(v))
		}
		*f = out
		return nil
	}

	var single FlexString
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*f = []string{string(single)}
	return nil
}
