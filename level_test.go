package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleLevel = `NAME Two Moons
WORLD 3000 2000

PLANET 1000 1000 0 400
PLANET 2200 1000 250000 300 Circular
COMMENT ignored line
TANK 90 0 Red 0
TANK 270 1 Blue 1
`

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel(strings.NewReader(sampleLevel))
	if err != nil {
		t.Fatalf("ParseLevel: %v", err)
	}
	if lvl.Name != "Two Moons" {
		t.Errorf("name = %q", lvl.Name)
	}
	if lvl.Width != 3000 || lvl.Height != 2000 {
		t.Errorf("size = %vx%v", lvl.Width, lvl.Height)
	}
	if len(lvl.Planets) != 2 || len(lvl.Tanks) != 2 {
		t.Fatalf("got %d planets, %d tanks", len(lvl.Planets), len(lvl.Tanks))
	}
	if lvl.Planets[0].Algorithm != TerrainPlanetaryNoise {
		t.Errorf("default algorithm = %q", lvl.Planets[0].Algorithm)
	}
	if p := lvl.Planets[1]; p.Algorithm != TerrainCircular || p.Mass != 250000 || p.Radius != 300 {
		t.Errorf("second planet = %+v", p)
	}
	if tk := lvl.Tanks[1]; !tk.IsAI || tk.PlanetIdx != 1 || tk.Color != "Blue" || tk.Longitude != 270 {
		t.Errorf("second tank = %+v", tk)
	}
}

func TestParseLevelMalformed(t *testing.T) {
	cases := []string{
		"WORLD 3000",
		"PLANET 1 2 three 4",
		"TANK 90 0 Red",
		"TANK 90 zero Red 0",
	}
	for _, c := range cases {
		_, err := ParseLevel(strings.NewReader("NAME x\n" + c + "\n"))
		if !errors.Is(err, ErrBadLevel) {
			t.Errorf("%q: err = %v, want ErrBadLevel", c, err)
			continue
		}
		if !strings.Contains(err.Error(), "line 2") {
			t.Errorf("%q: error %q should name the line", c, err)
		}
	}
}

func TestLoadLevelDefault(t *testing.T) {
	lvl, err := LoadLevel(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	if lvl.Name != "Twin Worlds" || len(lvl.Planets) != 2 || len(lvl.Tanks) != 4 {
		t.Errorf("default level = %+v", lvl)
	}
}

func TestLoadLevelFromDir(t *testing.T) {
	lvl, err := LoadLevel("levels", "duel")
	if err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}
	if lvl.Name != "Duel" {
		t.Errorf("name = %q, want Duel", lvl.Name)
	}
}

func TestLoadLevelNameFallsBackToFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bare.txt"), []byte("PLANET 0 0 0 300\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	lvl, err := LoadLevel(dir, "bare.txt")
	if err != nil {
		t.Fatal(err)
	}
	if lvl.Name != "bare" {
		t.Errorf("name = %q, want bare", lvl.Name)
	}
}

func TestLoadLevelMissing(t *testing.T) {
	_, err := LoadLevel(t.TempDir(), "nowhere")
	if !errors.Is(err, ErrLevelNotFound) {
		t.Errorf("err = %v, want ErrLevelNotFound", err)
	}
	// paths are flattened to the level directory
	_, err = LoadLevel("levels", "../go.mod")
	if !errors.Is(err, ErrLevelNotFound) {
		t.Errorf("err = %v, want ErrLevelNotFound", err)
	}
}

func TestListLevels(t *testing.T) {
	names, err := ListLevels("levels")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{"duel": true, "triad": true, "spiral": true}
	if len(names) != len(want) {
		t.Fatalf("levels = %v", names)
	}
	for _, n := range names {
		if !want[n] {
			t.Errorf("unexpected level %q", n)
		}
	}
}

func TestBuildDefaultLevel(t *testing.T) {
	w, seats, err := DefaultLevel().Build(WorldConfig{Seed: 3})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(w.Planets()) != 2 {
		t.Errorf("planets = %d", len(w.Planets()))
	}
	if len(seats) != 2 || seats[0].Color != "Red" || seats[1].Color != "Blue" {
		t.Errorf("seats = %+v", seats)
	}
	tanks := w.Tanks()
	if len(tanks) != 2 {
		t.Fatalf("AI tanks = %d, want 2", len(tanks))
	}
	if tanks[0].Name != "AI 1" || tanks[1].Name != "AI 2" || tanks[0].IsPlayer {
		t.Errorf("AI tanks = %s, %s", tanks[0].Name, tanks[1].Name)
	}
	if tanks[1].PlanetID != w.Planets()[1].ID {
		t.Errorf("second AI on %s, want %s", tanks[1].PlanetID, w.Planets()[1].ID)
	}
	if cfg := w.Config(); cfg.Width != 4000 || cfg.Height != 3000 {
		t.Errorf("world size = %vx%v", cfg.Width, cfg.Height)
	}
	if w.Name != "Twin Worlds" || w.Started() {
		t.Errorf("world %q started=%v", w.Name, w.Started())
	}
}

func TestBuildErrors(t *testing.T) {
	if _, _, err := (&Level{}).Build(WorldConfig{}); !errors.Is(err, ErrNoPlanets) {
		t.Errorf("empty level: err = %v", err)
	}
	lvl := &Level{Planets: []LevelPlanet{{Radius: 300, Algorithm: "Voronoi"}}}
	if _, _, err := lvl.Build(WorldConfig{}); !errors.Is(err, ErrUnknownTerrainAlgorithm) {
		t.Errorf("bad algorithm: err = %v", err)
	}
}

func TestBuildSpiralLevel(t *testing.T) {
	lvl, err := LoadLevel("levels", "spiral")
	if err != nil {
		t.Fatal(err)
	}
	w, _, err := lvl.Build(WorldConfig{Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	if p := w.Planets()[0]; p.Algorithm != TerrainSpiral || p.Mass != 400000 {
		t.Errorf("planet = %s mass %v", p.Algorithm, p.Mass)
	}
}
