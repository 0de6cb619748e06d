package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	ErrLevelNotFound = errors.New("level not found")
	ErrBadLevel      = errors.New("malformed level")
)

const levelExt = ".txt"

// defaultLevel is used when a room is created without naming a level
const defaultLevel = `NAME Twin Worlds
WORLD 4000 3000
PLANET 1000 1500 0 500
PLANET 3000 1500 0 400
TANK 90 0 Red 0
TANK 270 1 Blue 0
TANK 180 0 Yellow 1
TANK 0 1 Orange 1
`

// LevelPlanet is one PLANET line
type LevelPlanet struct {
	X, Y      float64
	Mass      float64 // 0 derives mass from the terrain
	Radius    float64
	Algorithm TerrainAlgorithm
}

// LevelTank is one TANK line. Non-AI entries are seats for joining players.
type LevelTank struct {
	Longitude float64
	PlanetIdx int
	Color     string
	IsAI      bool
}

// Level is a parsed level file
type Level struct {
	Name    string
	Width   float64
	Height  float64
	Planets []LevelPlanet
	Tanks   []LevelTank
}

// ParseLevel reads the line format:
//
//	NAME words...
//	WORLD width height
//	PLANET x y mass radius [algorithm]
//	TANK longitude planetIdx color isAi
//
// Blank lines and unknown keywords are skipped.
func ParseLevel(r io.Reader) (*Level, error) {
	lvl := &Level{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		f := strings.Fields(sc.Text())
		if len(f) == 0 {
			continue
		}
		var err error
		switch f[0] {
		case "NAME":
			lvl.Name = strings.Join(f[1:], " ")
		case "WORLD":
			err = parseFloats(f[1:], 2, &lvl.Width, &lvl.Height)
		case "PLANET":
			var p LevelPlanet
			if err = parseFloats(f[1:], 4, &p.X, &p.Y, &p.Mass, &p.Radius); err == nil {
				p.Algorithm = TerrainPlanetaryNoise
				if len(f) > 5 {
					p.Algorithm = TerrainAlgorithm(f[5])
				}
				lvl.Planets = append(lvl.Planets, p)
			}
		case "TANK":
			var t LevelTank
			t, err = parseTank(f[1:])
			if err == nil {
				lvl.Tanks = append(lvl.Tanks, t)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %v", line, ErrBadLevel, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading level: %w", err)
	}
	return lvl, nil
}

func parseFloats(fields []string, n int, out ...*float64) error {
	if len(fields) < n {
		return fmt.Errorf("want %d numbers, got %d", n, len(fields))
	}
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return err
		}
		*out[i] = v
	}
	return nil
}

func parseTank(f []string) (LevelTank, error) {
	var t LevelTank
	if len(f) < 4 {
		return t, fmt.Errorf("want 4 fields, got %d", len(f))
	}
	var err error
	if t.Longitude, err = strconv.ParseFloat(f[0], 64); err != nil {
		return t, err
	}
	if t.PlanetIdx, err = strconv.Atoi(f[1]); err != nil {
		return t, err
	}
	t.Color = f[2]
	ai, err := strconv.Atoi(f[3])
	if err != nil {
		return t, err
	}
	t.IsAI = ai != 0
	return t, nil
}

// DefaultLevel returns the built-in level
func DefaultLevel() *Level {
	lvl, err := ParseLevel(strings.NewReader(defaultLevel))
	if err != nil {
		panic(err)
	}
	return lvl
}

// LoadLevel reads name from dir. An empty name returns the built-in level.
func LoadLevel(dir, name string) (*Level, error) {
	if name == "" {
		return DefaultLevel(), nil
	}
	name = filepath.Base(name)
	if !strings.HasSuffix(name, levelExt) {
		name += levelExt
	}
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrLevelNotFound)
		}
		return nil, err
	}
	defer f.Close()

	lvl, err := ParseLevel(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if lvl.Name == "" {
		lvl.Name = strings.TrimSuffix(name, levelExt)
	}
	return lvl, nil
}

// ListLevels returns the level names found in dir
func ListLevels(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+levelExt))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), levelExt))
	}
	return names, nil
}

// Build creates a world with the level's planets and AI tanks. Player seats
// are returned for the caller to fill as people join.
func (l *Level) Build(cfg WorldConfig) (*World, []LevelTank, error) {
	if len(l.Planets) == 0 {
		return nil, nil, ErrNoPlanets
	}
	if l.Width > 0 && l.Height > 0 {
		cfg.Width, cfg.Height = l.Width, l.Height
	}
	w := NewWorld(cfg)
	w.Name = l.Name
	for _, p := range l.Planets {
		if _, err := w.AddPlanet(Vector2{p.X, p.Y}, p.Radius, p.Mass, p.Algorithm); err != nil {
			return nil, nil, err
		}
	}

	var seats []LevelTank
	ai := 0
	for _, t := range l.Tanks {
		if !t.IsAI {
			seats = append(seats, t)
			continue
		}
		tank, err := w.AddTank(fmt.Sprintf("ai-%d", ai), w.planetForSlot(t.PlanetIdx), t.Longitude, t.Color, false)
		if err != nil {
			return nil, nil, err
		}
		ai++
		tank.Name = fmt.Sprintf("AI %d", ai)
	}
	return w, seats, nil
}

// planetForSlot maps a level planet index to an id; out of range picks at random
func (w *World) planetForSlot(idx int) string {
	if idx < 0 || idx >= len(w.planets) {
		return ""
	}
	return w.planets[idx].ID
}
