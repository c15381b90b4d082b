package render

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/auditsink/internal/columns"
)

var defaultProps = columns.PropertiesOptions{RootElementName: "properties", PropertyElementName: "property"}

func TestPropertiesXML_Basic(t *testing.T) {
	got := PropertiesXML(map[string]any{"UserId": 42, "Name": "a<b"}, defaultProps, nil)
	assert.Equal(t,
		"<properties><property key='Name'>a&lt;b</property><property key='UserId'>42</property></properties>",
		got)
}

func TestPropertiesXML_Empty(t *testing.T) {
	assert.Equal(t, "<properties></properties>", PropertiesXML(nil, defaultProps, nil))
}

func TestPropertiesXML_Nested(t *testing.T) {
	got := PropertiesXML(map[string]any{
		"Tags": []any{"x", 1},
		"Meta": map[string]any{"k": true},
	}, defaultProps, nil)
	assert.Equal(t,
		"<properties>"+
			"<property key='Meta'><dictionary><item key='k'>true</item></dictionary></property>"+
			"<property key='Tags'><sequence><item>x</item><item>1</item></sequence></property>"+
			"</properties>",
		got)
}

func TestPropertiesXML_Options(t *testing.T) {
	opts := columns.PropertiesOptions{
		RootElementName:             "props",
		PropertyElementName:         "p",
		OmitElementIfEmpty:          true,
		ExcludeAdditionalProperties: true,
	}
	got := PropertiesXML(map[string]any{
		"Empty":  "",
		"UserId": 1,
		"Keep":   "y",
	}, opts, map[string]bool{"UserId": true})
	assert.Equal(t, "<props><p key='Keep'>y</p></props>", got)
}

func TestPropertiesXML_KeyAsElementName(t *testing.T) {
	opts := defaultProps
	opts.UsePropertyKeyAsElementName = true
	got := PropertiesXML(map[string]any{"Host": "db1"}, opts, nil)
	assert.Equal(t, "<properties><Host>db1</Host></properties>", got)
}

// elementNames parses doc and returns the start element names in order.
func elementNames(t *testing.T, doc string) []string {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(doc))
	var names []string
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return names
		}
		require.NoError(t, err, doc)
		if se, ok := tok.(xml.StartElement); ok {
			names = append(names, se.Name.Local)
		}
	}
}

func TestPropertiesXML_KeyAsElementNameWellFormed(t *testing.T) {
	opts := defaultProps
	opts.UsePropertyKeyAsElementName = true
	got := PropertiesXML(map[string]any{
		"User Name": "ann",
		"a<b":       "x",
		"1st":       "y",
		"":          "z",
		"a&b/>":     "w",
	}, opts, nil)

	assert.Equal(t, []string{"properties", "_", "_1st", "User_Name", "a_b__", "a_b"}, elementNames(t, got))
	assert.Contains(t, got, "<User_Name>ann</User_Name>")
}

func TestPropertiesXML_ConfiguredNamesWellFormed(t *testing.T) {
	opts := columns.PropertiesOptions{RootElementName: "log props", PropertyElementName: "p<"}
	got := PropertiesXML(map[string]any{"k": 1}, opts, nil)
	assert.Equal(t, "<log_props><p_ key='k'>1</p_></log_props>", got)
	elementNames(t, got)
}

func TestElementName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Host", "Host"},
		{"trace.id", "trace.id"},
		{"-x", "_-x"},
		{"9", "_9"},
		{"Größe", "Größe"},
		{"a:b", "a_b"},
		{"", "_"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ElementName(tt.in), tt.in)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 0))
	assert.Equal(t, "hello", Truncate("hello", 5))
	assert.Equal(t, "he...", Truncate("hello world", 5))
	assert.Equal(t, "hé", Truncate("héllo", 2))
}
