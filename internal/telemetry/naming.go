package telemetry

import (
	"fmt"
	"strings"
)

var sessionCodes = map[string]string{
	"Practice 1":        "FP1",
	"Practice 2":        "FP2",
	"Practice 3":        "FP3",
	"Qualifying":        "Q",
	"Sprint Qualifying": "SQ",
	"Sprint Shootout":   "SQ",
	"Sprint":            "S",
	"Race":              "R",
}

// SessionCode maps a session name to its short code. Unknown names are
// returned without spaces.
func SessionCode(name string) string {
	if code, ok := sessionCodes[name]; ok {
		return code
	}
	return strings.ReplaceAll(name, " ", "")
}

// SaveName builds the output base name for an event:
// {EventName}{Year}_{SessionCode}_{suffix}, spaces removed from the event name.
func SaveName(ev Event, suffix string) string {
	return fmt.Sprintf("%s%d_%s_%s", strings.ReplaceAll(ev.Name, " ", ""), ev.Year, SessionCode(ev.Session), suffix)
}
