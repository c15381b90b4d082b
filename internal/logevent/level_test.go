package logevent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"Verbose":     LevelVerbose,
		"debug":       LevelDebug,
		"INFORMATION": LevelInformation,
		"inf":         LevelInformation,
		"WRN":         LevelWarning,
		" Error ":     LevelError,
		"ftl":         LevelFatal,
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			got, err := ParseLevel(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseLevel_Unknown(t *testing.T) {
	_, err := ParseLevel("loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "Warning", LevelWarning.String())
	assert.Equal(t, "Level(42)", Level(42).String())
}

func TestLevel_TextRoundTrip(t *testing.T) {
	data, err := LevelFatal.MarshalText()
	require.NoError(t, err)

	var l Level
	require.NoError(t, l.UnmarshalText(data))
	assert.Equal(t, LevelFatal, l)

	_, err = Level(-1).MarshalText()
	assert.Error(t, err)
}
