package ai

import (
	"encoding/json"
	"strings"
)

// ExtractJSON returns the first balanced, valid JSON value in text that opens
// with the given delimiter ('{' or '['). Delimiters inside string literals are
// ignored, so prose or code fences around the payload do not matter.
func ExtractJSON(text string, open byte) (string, bool) {
	candidates := JSONCandidates(text, open)
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[0], true
}

// JSONCandidates returns every balanced, valid JSON value in text opening with
// the given delimiter, in order of appearance. Nested values are skipped once
// their enclosing value has been accepted.
func JSONCandidates(text string, open byte) []string {
	var closer byte
	switch open {
	case '{':
		closer = '}'
	case '[':
		closer = ']'
	default:
		return nil
	}

	var candidates []string
	for offset := 0; offset < len(text); {
		start := strings.IndexByte(text[offset:], open)
		if start < 0 {
			break
		}
		start += offset

		if end, ok := matchClosing(text, start, open, closer); ok {
			candidate := text[start : end+1]
			if json.Valid([]byte(candidate)) {
				candidates = append(candidates, candidate)
				offset = end + 1
				continue
			}
		}
		offset = start + 1
	}

	return candidates
}

func matchClosing(text string, start int, open, closer byte) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}

	return 0, false
}
