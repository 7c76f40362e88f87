package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const envPrefix = "TIMETABLE_"

func applyEnv(s *Settings) error {
	t := &s.Timetable
	if err := envInt("NROF_START_MAP", &t.StartMap); err != nil {
		return err
	}
	if err := envFloat("START_OF_DAY", &t.StartOfDay); err != nil {
		return err
	}
	if err := envFloat("END_OF_DAY", &t.EndOfDay); err != nil {
		return err
	}
	if err := envInt("DEF_ACTIVITIES", &t.Activities); err != nil {
		return err
	}
	if err := envFloat("DEF_ACTIVITY_DUR", &t.ActivityDur); err != nil {
		return err
	}
	if err := envFloat("PAUSE_BETWEEN_ACTIVITIES", &t.Pause); err != nil {
		return err
	}
	envString("SPAWN_PROBABILITY", &t.SpawnProbability)
	envString("ACTIVITY_PROBABILITY", &t.ActivityProbability)
	if err := envBool("VERBOSE", &t.Verbose); err != nil {
		return err
	}
	envString("ROOM_MAPPING", &t.RoomMapping)
	if v, ok := lookup("MAP_FILES"); ok {
		t.MapFiles = splitCsv(v)
	}
	if err := envInt64("RNG_SEED", &t.RngSeed); err != nil {
		return err
	}
	if err := envFloat("END_TIME", &s.Scenario.EndTime); err != nil {
		return err
	}
	envString("LOG_LEVEL", &s.Log.Level)
	envString("ADDR", &s.Server.Addr)
	envString("DB_PATH", &s.Store.Path)
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func envString(key string, dst *string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s%s=%q is not an integer", ErrInvalidConfig, envPrefix, key, v)
	}
	*dst = n
	return nil
}

func envInt64(key string, dst *int64) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s%s=%q is not an integer", ErrInvalidConfig, envPrefix, key, v)
	}
	*dst = n
	return nil
}

func envFloat(key string, dst *float64) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%w: %s%s=%q is not a number", ErrInvalidConfig, envPrefix, key, v)
	}
	*dst = f
	return nil
}

func envBool(key string, dst *bool) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%w: %s%s=%q is not a boolean", ErrInvalidConfig, envPrefix, key, v)
	}
	*dst = b
	return nil
}
