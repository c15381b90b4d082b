package logevent

import (
	"fmt"
	"strings"
)

// Level is the severity of a log event.
type Level int

const (
	LevelVerbose Level = iota
	LevelDebug
	LevelInformation
	LevelWarning
	LevelError
	LevelFatal
)

var levelNames = [...]string{
	LevelVerbose:     "Verbose",
	LevelDebug:       "Debug",
	LevelInformation: "Information",
	LevelWarning:     "Warning",
	LevelError:       "Error",
	LevelFatal:       "Fatal",
}

var levelShortNames = [...]string{
	LevelVerbose:     "VRB",
	LevelDebug:       "DBG",
	LevelInformation: "INF",
	LevelWarning:     "WRN",
	LevelError:       "ERR",
	LevelFatal:       "FTL",
}

// String returns the full level name, e.g. "Information".
func (l Level) String() string {
	if l.Valid() {
		return levelNames[l]
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool {
	return l >= LevelVerbose && l <= LevelFatal
}

// ParseLevel parses a level name. Matching is case-insensitive and accepts
// both the full names and the three-letter short forms.
func ParseLevel(s string) (Level, error) {
	s = strings.TrimSpace(s)
	for i := range levelNames {
		if strings.EqualFold(s, levelNames[i]) || strings.EqualFold(s, levelShortNames[i]) {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("unknown level %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid level %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
