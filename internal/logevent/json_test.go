package logevent

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoder_DecodesLines(t *testing.T) {
	input := `{"timestamp":"2024-01-02T03:04:05Z","level":"Warning","messageTemplate":"Disk {Pct} full","properties":{"Pct":91,"Ratio":0.91,"Host":"db1"}}

{"messageTemplate":"second","exception":"boom","traceId":"t1","spanId":"s1"}
`
	dec := NewDecoder(strings.NewReader(input))
	fixed := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	dec.now = func() time.Time { return fixed }

	first, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, dec.Line())
	assert.Equal(t, LevelWarning, first.Level)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), first.Timestamp)
	assert.Equal(t, int64(91), first.Properties["Pct"])
	assert.Equal(t, 0.91, first.Properties["Ratio"])
	assert.Equal(t, "db1", first.Properties["Host"])

	second, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, 3, dec.Line())
	assert.Equal(t, LevelInformation, second.Level)
	assert.Equal(t, fixed, second.Timestamp)
	assert.Equal(t, "boom", second.ExceptionText())
	assert.Equal(t, "t1", second.TraceID)
	assert.Equal(t, "s1", second.SpanID)

	_, err = dec.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoder_RejectsUnknownFields(t *testing.T) {
	dec := NewDecoder(strings.NewReader(`{"messageTemplate":"x","severity":"high"}`))
	_, err := dec.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestDecoder_RejectsBadLevel(t *testing.T) {
	dec := NewDecoder(strings.NewReader(`{"level":"loud"}`))
	_, err := dec.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown level")
}

func TestDecoder_NestedNumbers(t *testing.T) {
	dec := NewDecoder(strings.NewReader(`{"properties":{"Items":[1,2.5],"Meta":{"n":3}}}`))
	evt, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), 2.5}, evt.Properties["Items"])
	assert.Equal(t, map[string]any{"n": int64(3)}, evt.Properties["Meta"])
}
