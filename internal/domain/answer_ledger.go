package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// AnswerLedger maps question ids to the guess submitted for them.
// Entries keep their first insertion position, and the text form is the
// layout stored by earlier deployments: {"12": "3", "7": "True"}.
type AnswerLedger struct {
	keys   []string
	values map[string]string
}

func NewAnswerLedger() *AnswerLedger {
	return &AnswerLedger{values: make(map[string]string)}
}

// ParseAnswerLedger decodes the stored text; an empty string is an empty ledger.
func ParseAnswerLedger(s string) (*AnswerLedger, error) {
	l := NewAnswerLedger()
	if strings.TrimSpace(s) == "" {
		return l, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return nil, err
	}
	return l, nil
}

// Set upserts the guess for a question.
func (l *AnswerLedger) Set(questionID int64, guess string) {
	l.set(strconv.FormatInt(questionID, 10), guess)
}

func (l *AnswerLedger) set(key, guess string) {
	if l.values == nil {
		l.values = make(map[string]string)
	}
	if _, exists := l.values[key]; !exists {
		l.keys = append(l.keys, key)
	}
	l.values[key] = guess
}

// Get returns the guess recorded for a question.
func (l *AnswerLedger) Get(questionID int64) (string, bool) {
	if l == nil {
		return "", false
	}
	v, ok := l.values[strconv.FormatInt(questionID, 10)]
	return v, ok
}

func (l *AnswerLedger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.keys)
}

// Map returns a copy keyed by question id. Keys that are not integers are left out.
func (l *AnswerLedger) Map() map[int64]string {
	out := make(map[int64]string, l.Len())
	if l == nil {
		return out
	}
	for _, k := range l.keys {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		out[id] = l.values[k]
	}
	return out
}

func (l *AnswerLedger) String() string {
	text, _ := l.MarshalText()
	return string(text)
}

// MarshalText implements encoding.TextMarshaler.
func (l *AnswerLedger) MarshalText() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if l != nil {
		for i, k := range l.keys {
			if i > 0 {
				buf.WriteString(", ")
			}
			writeASCIIString(&buf, k)
			buf.WriteString(": ")
			writeASCIIString(&buf, l.values[k])
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Scalar values that are
// not strings are kept as their literal text, booleans as True/False.
func (l *AnswerLedger) UnmarshalText(text []byte) error {
	l.keys = nil
	l.values = make(map[string]string)

	dec := json.NewDecoder(bytes.NewReader(text))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode answer ledger: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("decode answer ledger: expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode answer ledger key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("decode answer ledger: unexpected key %v", keyTok)
		}

		valTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode answer ledger value for %q: %w", key, err)
		}
		switch v := valTok.(type) {
		case string:
			l.set(key, v)
		case json.Number:
			l.set(key, v.String())
		case bool:
			if v {
				l.set(key, GuessTrue)
			} else {
				l.set(key, GuessFalse)
			}
		case nil:
			l.set(key, "")
		default:
			return fmt.Errorf("decode answer ledger: value for %q is not a scalar", key)
		}
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode answer ledger: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("decode answer ledger: trailing data")
	}
	return nil
}

// writeASCIIString quotes s with every non-ASCII rune escaped as \uXXXX.
func writeASCIIString(buf *bytes.Buffer, s string) {
	const hex = "0123456789abcdef"
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		default:
			if r >= 0x20 && r < 0x80 {
				buf.WriteRune(r)
				continue
			}
			if r == utf8.RuneError {
				r = 0xfffd
			}
			if r > 0xffff {
				r -= 0x10000
				writeUnicodeEscape(buf, hex, 0xd800+(r>>10))
				writeUnicodeEscape(buf, hex, 0xdc00+(r&0x3ff))
				continue
			}
			writeUnicodeEscape(buf, hex, r)
		}
	}
	buf.WriteByte('"')
}

func writeUnicodeEscape(buf *bytes.Buffer, hex string, r rune) {
	buf.WriteString(`\u`)
	buf.WriteByte(hex[(r>>12)&0xf])
	buf.WriteByte(hex[(r>>8)&0xf])
	buf.WriteByte(hex[(r>>4)&0xf])
	buf.WriteByte(hex[r&0xf])
}
