package oracle

import (
	"encoding/json"
	"errors"
)

// ErrNoJSON reports a reply with no parseable JSON object anywhere in it.
var ErrNoJSON = errors.New("no JSON object found in reply")

// ExtractJSON pulls the first valid JSON object out of a model reply.
// Models asked for bare JSON still wrap it in code fences or prose often
// enough that a plain Unmarshal would reject half the answers, so this
// scans for balanced braces, skipping brace characters inside strings,
// and keeps probing until a candidate actually parses.
func ExtractJSON(s string) ([]byte, error) {
	for start := 0; start < len(s); start++ {
		if s[start] != '{' {
			continue
		}

		end, ok := matchObject(s, start)
		if !ok {
			continue
		}

		candidate := []byte(s[start : end+1])
		if json.Valid(candidate) {
			return candidate, nil
		}
	}
	return nil, ErrNoJSON
}

// matchObject finds the index of the brace closing the object opened at
// start. String literals and escapes are honored so braces inside
// values don't unbalance the scan.
func matchObject(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
