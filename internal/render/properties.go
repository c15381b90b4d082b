package render

import (
	"encoding/xml"
	"sort"
	"strings"
	"unicode"

	"github.com/roach88/auditsink/internal/columns"
)

// PropertiesXML renders event properties in the Properties column format:
//
//	<properties><property key='UserId'>42</property></properties>
//
// Maps become <dictionary><item key='k'>v</item></dictionary> and slices
// <sequence><item>v</item></sequence>. Keys are written in sorted order.
// Element names are passed through ElementName, so the result is always
// well-formed.
func PropertiesXML(props map[string]any, opts columns.PropertiesOptions, exclude map[string]bool) string {
	root := ElementName(opts.RootElementName)
	property := ElementName(opts.PropertyElementName)

	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(root)
	b.WriteByte('>')

	for _, key := range sortedKeys(props) {
		if opts.ExcludeAdditionalProperties && exclude[key] {
			continue
		}
		value := props[key]
		if opts.OmitElementIfEmpty && isEmptyValue(value) {
			continue
		}
		if opts.UsePropertyKeyAsElementName {
			name := ElementName(key)
			b.WriteByte('<')
			b.WriteString(name)
			b.WriteByte('>')
			writeXMLValue(&b, value)
			b.WriteString("</")
			b.WriteString(name)
			b.WriteByte('>')
			continue
		}
		b.WriteByte('<')
		b.WriteString(property)
		b.WriteString(" key='")
		writeEscaped(&b, key)
		b.WriteString("'>")
		writeXMLValue(&b, value)
		b.WriteString("</")
		b.WriteString(property)
		b.WriteByte('>')
	}

	b.WriteString("</")
	b.WriteString(root)
	b.WriteByte('>')
	return b.String()
}

// ElementName turns s into a valid XML element name. Characters not allowed
// in a name become '_', and a name that cannot start with its first
// character is prefixed with '_'.
func ElementName(s string) string {
	if s == "" {
		return "_"
	}
	var b strings.Builder
	b.Grow(len(s) + 1)
	for i, r := range s {
		if i == 0 && !isNameStart(r) {
			b.WriteByte('_')
		}
		if isNameStart(r) || isNameChar(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func isNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNameChar(r rune) bool {
	return r == '-' || r == '.' || unicode.IsDigit(r)
}

func writeXMLValue(b *strings.Builder, v any) {
	switch val := v.(type) {
	case map[string]any:
		b.WriteString("<dictionary>")
		for _, k := range sortedKeys(val) {
			b.WriteString("<item key='")
			writeEscaped(b, k)
			b.WriteString("'>")
			writeXMLValue(b, val[k])
			b.WriteString("</item>")
		}
		b.WriteString("</dictionary>")
	case []any:
		b.WriteString("<sequence>")
		for _, elem := range val {
			b.WriteString("<item>")
			writeXMLValue(b, elem)
			b.WriteString("</item>")
		}
		b.WriteString("</sequence>")
	default:
		writeEscaped(b, scalarText(val))
	}
}

func writeEscaped(b *strings.Builder, s string) {
	// EscapeText only fails when the writer does; strings.Builder never does.
	_ = xml.EscapeText(b, []byte(s))
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case map[string]any:
		return len(val) == 0
	case []any:
		return len(val) == 0
	}
	return false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
