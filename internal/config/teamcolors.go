package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

//go:embed team_colors.json
var builtinTeamColors []byte

// TeamColors maps a team name to a hex colour.
type TeamColors struct {
	colors   map[string]string
	fallback string
}

// NewTeamColors returns a table with the given colours and fallback.
func NewTeamColors(colors map[string]string, fallback string) TeamColors {
	if colors == nil {
		colors = map[string]string{}
	}
	if fallback == "" {
		fallback = DefaultColor
	}
	return TeamColors{colors: colors, fallback: fallback}
}

// Lookup returns the colour of a team, or the fallback colour.
func (t TeamColors) Lookup(team string) string {
	if c, ok := t.colors[team]; ok && c != "" {
		return c
	}
	if t.fallback == "" {
		return DefaultColor
	}
	return t.fallback
}

// Len returns the number of teams with a colour.
func (t TeamColors) Len() int {
	return len(t.colors)
}

// BuiltinTeamColors returns the table shipped with the binary.
func BuiltinTeamColors(fallback string) TeamColors {
	var m map[string]string
	if err := json.Unmarshal(builtinTeamColors, &m); err != nil {
		panic(fmt.Sprintf("config: embedded team colours: %v", err))
	}
	return NewTeamColors(m, fallback)
}

// LoadTeamColors reads a JSON object of team name to colour. An empty path
// selects the built-in table. A missing or unreadable file is logged and
// yields an empty table so every team falls back to the default colour.
func LoadTeamColors(path, fallback string, log *zap.Logger) TeamColors {
	if log == nil {
		log = zap.NewNop()
	}
	if path == "" {
		return BuiltinTeamColors(fallback)
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		log.Warn("could not load team colours", zap.String("path", path), zap.Error(err))
		return NewTeamColors(nil, fallback)
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		log.Warn("could not parse team colours", zap.String("path", path), zap.Error(err))
		return NewTeamColors(nil, fallback)
	}
	return NewTeamColors(m, fallback)
}
