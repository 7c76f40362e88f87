// Package config loads run settings from a YAML file, an optional .env
// file and the process environment, in that order, and converts them into
// the options of the campus core.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"TimetableSim/internal/campus"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid settings")

type TimetableSettings struct {
	StartMap            int       `yaml:"nrofStartMap"`
	StartOfDay          float64   `yaml:"startOfDay"`
	EndOfDay            float64   `yaml:"endOfDay"`
	Activities          int       `yaml:"defActivities"`
	ActivityDur         float64   `yaml:"defActivityDur"`
	Pause               float64   `yaml:"pauseBetweenActivities"`
	SpawnProbability    string    `yaml:"spawnProbability"`
	ActivityProbability string    `yaml:"activityProbability"`
	Verbose             bool      `yaml:"verbose"`
	RoomMapping         string    `yaml:"roomMapping"`
	MapFiles            []string  `yaml:"mapFiles"`
	MapOffset           []float64 `yaml:"mapOffset"`
	RngSeed             int64     `yaml:"rngSeed"`
	MaxRoomDraws        int       `yaml:"maxRoomDraws"`
	WalkSpeed           string    `yaml:"walkSpeed"`
}

type GroupSettings struct {
	ID        string `yaml:"groupID"`
	NrofHosts int    `yaml:"nrofHosts"`
}

type ScenarioSettings struct {
	Name           string          `yaml:"name"`
	EndTime        float64         `yaml:"endTime"`        // total run length in steps
	UpdateInterval float64         `yaml:"updateInterval"` // simulated seconds per step
	Groups         []GroupSettings `yaml:"groups"`
}

type LogSettings struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type ServerSettings struct {
	Addr           string   `yaml:"addr"`
	StepsPerSecond float64  `yaml:"stepsPerSecond"`
	PushRateHz     float64  `yaml:"pushRateHz"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type StoreSettings struct {
	Path string `yaml:"path"`
}

type Settings struct {
	Timetable TimetableSettings `yaml:"timetable"`
	Scenario  ScenarioSettings  `yaml:"scenario"`
	Log       LogSettings       `yaml:"log"`
	Server    ServerSettings    `yaml:"server"`
	Store     StoreSettings     `yaml:"store"`
}

func DefaultSettings() Settings {
	return Settings{
		Timetable: TimetableSettings{
			StartMap:            1,
			StartOfDay:          campus.DefaultStartOfDay,
			EndOfDay:            campus.DefaultEndOfDay,
			Activities:          campus.DefaultActivities,
			ActivityDur:         campus.DefaultActivityHours,
			Pause:               campus.DefaultPauseHours,
			SpawnProbability:    "25,25,25,25",
			ActivityProbability: "25,25,25,25",
			RoomMapping:         "data/rooms.txt",
			MapFiles:            []string{"data/entrances.wkt", "data/campus.wkt"},
			MaxRoomDraws:        campus.DefaultMaxRoomDraws,
			WalkSpeed:           fmt.Sprintf("%g,%g", campus.DefaultWalkSpeedMin, campus.DefaultWalkSpeedMax),
		},
		Scenario: ScenarioSettings{
			Name:           "campus",
			EndTime:        28800,
			UpdateInterval: campus.DefaultStepSeconds,
			Groups:         []GroupSettings{{ID: "s", NrofHosts: 40}},
		},
		Log: LogSettings{Level: "info"},
		Server: ServerSettings{
			Addr:           ":8080",
			StepsPerSecond: 20,
			PushRateHz:     10,
			AllowedOrigins: []string{"*"},
		},
	}
}

// Hosts sums the host counts of all groups.
func (s Settings) Hosts() int {
	total := 0
	for _, g := range s.Scenario.Groups {
		total += g.NrofHosts
	}
	return total
}

// Load reads path on top of the defaults. A missing file keeps the
// defaults. envFile, when present, is loaded into the environment before
// TIMETABLE_* variables are applied.
func Load(path, envFile string) (Settings, error) {
	settings := DefaultSettings()
	if path != "" {
		cleanPath := filepath.Clean(path)
		data, err := os.ReadFile(cleanPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &settings); err != nil {
				return settings, fmt.Errorf("parse settings %q: %w", cleanPath, err)
			}
		case !os.IsNotExist(err):
			return settings, fmt.Errorf("read settings %q: %w", cleanPath, err)
		}
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return settings, fmt.Errorf("load env file %q: %w", envFile, err)
		}
	}
	if err := applyEnv(&settings); err != nil {
		return settings, err
	}
	return Sanitize(settings), nil
}

// Sanitize fills zero values that have a sensible default.
func Sanitize(s Settings) Settings {
	def := DefaultSettings()
	if s.Timetable.MaxRoomDraws <= 0 {
		s.Timetable.MaxRoomDraws = def.Timetable.MaxRoomDraws
	}
	if strings.TrimSpace(s.Timetable.SpawnProbability) == "" {
		s.Timetable.SpawnProbability = def.Timetable.SpawnProbability
	}
	if strings.TrimSpace(s.Timetable.ActivityProbability) == "" {
		s.Timetable.ActivityProbability = def.Timetable.ActivityProbability
	}
	if strings.TrimSpace(s.Timetable.WalkSpeed) == "" {
		s.Timetable.WalkSpeed = def.Timetable.WalkSpeed
	}
	if s.Scenario.UpdateInterval <= 0 {
		s.Scenario.UpdateInterval = def.Scenario.UpdateInterval
	}
	if s.Log.Level == "" {
		s.Log.Level = def.Log.Level
	}
	if s.Server.Addr == "" {
		s.Server.Addr = def.Server.Addr
	}
	if s.Server.StepsPerSecond <= 0 {
		s.Server.StepsPerSecond = def.Server.StepsPerSecond
	}
	if s.Server.PushRateHz <= 0 {
		s.Server.PushRateHz = def.Server.PushRateHz
	}
	return s
}

// Options validates the settings and converts them for the campus core.
func (s Settings) Options() (campus.Options, error) {
	t := s.Timetable
	bands, err := ParseCsvInts(t.SpawnProbability, campus.SpawnBandCount)
	if err != nil {
		return campus.Options{}, fmt.Errorf("%w: spawnProbability: %v", ErrInvalidConfig, err)
	}
	sum := 0
	for _, b := range bands {
		if b < 0 {
			return campus.Options{}, fmt.Errorf("%w: spawnProbability has negative band %d", ErrInvalidConfig, b)
		}
		sum += b
	}
	if sum != 100 {
		return campus.Options{}, fmt.Errorf("%w: spawnProbability sums to %d, want 100", ErrInvalidConfig, sum)
	}
	weights, err := ParseCsvFloats(t.ActivityProbability, campus.ActivityWeightCount)
	if err != nil {
		return campus.Options{}, fmt.Errorf("%w: activityProbability: %v", ErrInvalidConfig, err)
	}
	speed, err := ParseCsvFloats(t.WalkSpeed, 2)
	if err != nil {
		return campus.Options{}, fmt.Errorf("%w: walkSpeed: %v", ErrInvalidConfig, err)
	}
	if speed[0] <= 0 || speed[1] < speed[0] {
		return campus.Options{}, fmt.Errorf("%w: walkSpeed %v must be positive and ordered", ErrInvalidConfig, speed)
	}
	if t.Activities < 0 {
		return campus.Options{}, fmt.Errorf("%w: defActivities is negative", ErrInvalidConfig)
	}
	var origin campus.Coord
	switch len(t.MapOffset) {
	case 0:
	case 2:
		origin = campus.Coord{X: t.MapOffset[0], Y: t.MapOffset[1]}
	default:
		return campus.Options{}, fmt.Errorf("%w: mapOffset needs 2 values, got %d", ErrInvalidConfig, len(t.MapOffset))
	}

	timing := campus.Timing{
		StartOfDay:    t.StartOfDay,
		EndOfDay:      t.EndOfDay,
		ActivityHours: t.ActivityDur,
		PauseHours:    t.Pause,
		RunSteps:      s.Scenario.EndTime,
	}
	if err := timing.Validate(); err != nil {
		return campus.Options{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := timing.ValidatePlan(t.Activities); err != nil {
		return campus.Options{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return campus.Options{
		Timing:          timing,
		StartTag:        t.StartMap,
		Activities:      t.Activities,
		SpawnBands:      bands,
		ActivityWeights: weights,
		Hosts:           s.Hosts(),
		MaxAttempts:     t.MaxRoomDraws,
		Seed:            t.RngSeed,
		WalkSpeedMin:    speed[0],
		WalkSpeedMax:    speed[1],
		Origin:          origin,
	}, nil
}

// ParseCsvInts parses exactly n comma separated integers.
func ParseCsvInts(s string, n int) ([]int, error) {
	parts := splitCsv(s)
	if len(parts) != n {
		return nil, fmt.Errorf("want %d values, got %d in %q", n, len(parts), s)
	}
	out := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("value %q is not an integer", p)
		}
		out[i] = v
	}
	return out, nil
}

// ParseCsvFloats parses exactly n comma separated numbers.
func ParseCsvFloats(s string, n int) ([]float64, error) {
	parts := splitCsv(s)
	if len(parts) != n {
		return nil, fmt.Errorf("want %d values, got %d in %q", n, len(parts), s)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("value %q is not a number", p)
		}
		out[i] = v
	}
	return out, nil
}

func splitCsv(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
