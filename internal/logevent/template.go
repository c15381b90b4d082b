package logevent

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/message"
)

// Token is one piece of a parsed message template: either literal text or a
// property reference.
type Token struct {
	// Text is the literal text, or the raw "{...}" source of a property token.
	Text string

	// IsProperty reports whether the token references a property.
	IsProperty bool

	// Name is the referenced property name.
	Name string

	// Format is the optional format after ':'.
	Format string

	// Hint is '@' (structure), '$' (stringify) or 0.
	Hint byte
}

// Parse splits a message template into tokens. Malformed property tokens are
// kept as literal text, so parsing never fails.
func Parse(tmpl string) []Token {
	var tokens []Token
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, Token{Text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(tmpl); {
		c := tmpl[i]
		switch {
		case c == '{' && i+1 < len(tmpl) && tmpl[i+1] == '{':
			lit.WriteByte('{')
			i += 2
		case c == '}' && i+1 < len(tmpl) && tmpl[i+1] == '}':
			lit.WriteByte('}')
			i += 2
		case c == '{':
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				lit.WriteString(tmpl[i:])
				i = len(tmpl)
				continue
			}
			raw := tmpl[i : i+end+2]
			tok, ok := parseProperty(raw)
			if !ok {
				lit.WriteString(raw)
			} else {
				flush()
				tokens = append(tokens, tok)
			}
			i += end + 2
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()
	return tokens
}

// parseProperty parses the raw "{...}" text of a property token.
func parseProperty(raw string) (Token, bool) {
	body := raw[1 : len(raw)-1]
	tok := Token{Text: raw, IsProperty: true}

	if body != "" && (body[0] == '@' || body[0] == '$') {
		tok.Hint = body[0]
		body = body[1:]
	}
	if idx := strings.IndexByte(body, ':'); idx >= 0 {
		tok.Format = body[idx+1:]
		body = body[:idx]
	}
	if !validPropertyName(body) {
		return Token{}, false
	}
	tok.Name = body
	return tok, true
}

func validPropertyName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

// Render substitutes properties into tmpl. Tokens whose property is missing
// render as their raw source text.
func Render(tmpl string, props map[string]any, p *message.Printer) string {
	var b strings.Builder
	for _, tok := range Parse(tmpl) {
		if !tok.IsProperty {
			b.WriteString(tok.Text)
			continue
		}
		v, ok := props[tok.Name]
		if !ok {
			b.WriteString(tok.Text)
			continue
		}
		b.WriteString(FormatValue(v, tok.Format, tok.Hint, p))
	}
	return b.String()
}

// FormatValue renders a single property value the way it appears inside a
// rendered message.
func FormatValue(v any, format string, hint byte, p *message.Printer) string {
	switch hint {
	case '@':
		data, err := json.Marshal(v)
		if err != nil {
			return p.Sprint(v)
		}
		return string(data)
	case '$':
		return p.Sprint(v)
	}

	if strings.HasPrefix(format, "%") {
		return p.Sprintf(format, v)
	}

	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		if format == "l" {
			return val
		}
		return `"` + strings.ReplaceAll(val, `"`, `\"`) + `"`
	case time.Time:
		if format != "" {
			return val.Format(format)
		}
		return val.Format(time.RFC3339Nano)
	case error:
		return val.Error()
	case fmt.Stringer:
		return val.String()
	default:
		return p.Sprint(v)
	}
}
