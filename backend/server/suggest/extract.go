package suggest

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var (
	errEmptyResponse = errors.New("empty response")
	errNoObject      = errors.New("no JSON object found in response")
)

var codeBlockRe = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*\\n(.*?)\\n?\\s*```")

// extractEnvelope recovers the first JSON object embedded in a model answer. It accepts
// the object bare, inside a fenced code block, or surrounded by prose, and tolerates the
// JavaScript-style literal the instruction template itself uses (bare keys, single
// quotes, trailing commas).
func extractEnvelope(text string) (map[string]any, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errEmptyResponse
	}

	candidates := []string{text}
	if m := codeBlockRe.FindStringSubmatch(text); len(m) >= 2 {
		candidates = append([]string{strings.TrimSpace(m[1])}, candidates...)
	}

	var lastErr error
	for _, c := range candidates {
		obj := extractObject(c)
		if obj == "" {
			obj = c
		}
		for _, attempt := range []string{obj, relax(obj)} {
			out, err := decodeObject(attempt)
			if err == nil {
				return out, nil
			}
			lastErr = err
		}
	}
	if lastErr == nil {
		lastErr = errNoObject
	}
	return nil, lastErr
}

func decodeObject(s string) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errNoObject
	}
	return out, nil
}

// extractObject returns the first balanced {...} in text, skipping braces inside
// double-quoted strings.
func extractObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// relax rewrites a JavaScript object literal into JSON: bare keys are quoted,
// single-quoted strings become double-quoted and trailing commas are dropped.
func relax(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 16)
	rs := []rune(s)
	lastSig := rune(0)

	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case r == '"':
			j := i + 1
			for ; j < len(rs); j++ {
				if rs[j] == '\\' {
					j++
					continue
				}
				if rs[j] == '"' {
					break
				}
			}
			if j >= len(rs) {
				j = len(rs) - 1
			}
			sb.WriteString(string(rs[i : j+1]))
			i = j
			lastSig = '"'
		case r == '\'':
			sb.WriteRune('"')
			j := i + 1
			for ; j < len(rs) && rs[j] != '\''; j++ {
				switch {
				case rs[j] == '\\' && j+1 < len(rs) && rs[j+1] == '\'':
					sb.WriteRune('\'')
					j++
				case rs[j] == '\\' && j+1 < len(rs):
					sb.WriteRune('\\')
					sb.WriteRune(rs[j+1])
					j++
				case rs[j] == '"':
					sb.WriteString(`\"`)
				default:
					sb.WriteRune(rs[j])
				}
			}
			sb.WriteRune('"')
			i = j
			lastSig = '"'
		case r == ',':
			k := i + 1
			for k < len(rs) && unicode.IsSpace(rs[k]) {
				k++
			}
			if k < len(rs) && (rs[k] == '}' || rs[k] == ']') {
				continue
			}
			sb.WriteRune(r)
			lastSig = r
		case (lastSig == '{' || lastSig == ',') && isIdentStart(r):
			j := i
			for j < len(rs) && isIdentPart(rs[j]) {
				j++
			}
			ident := string(rs[i:j])
			k := j
			for k < len(rs) && unicode.IsSpace(rs[k]) {
				k++
			}
			if k < len(rs) && rs[k] == ':' {
				sb.WriteString(`"` + ident + `"`)
			} else {
				sb.WriteString(ident)
			}
			i = j - 1
			lastSig = 'a'
		default:
			sb.WriteRune(r)
			if !unicode.IsSpace(r) {
				lastSig = r
			}
		}
	}
	return sb.String()
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
