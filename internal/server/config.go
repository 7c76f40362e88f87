package server

import "TimetableSim/internal/config"

type AppConfig struct {
	Addr           string
	StepsPerSecond float64 // simulation pace; 0 runs unpaced
	PushRateHz     float64 // frames pushed to each websocket client
	AllowedOrigins []string
	ClientRateHz   float64 // inbound websocket messages per client
	ClientBurst    int
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		Addr:           ":8080",
		StepsPerSecond: 20,
		PushRateHz:     10,
		AllowedOrigins: []string{"*"},
		ClientRateHz:   5,
		ClientBurst:    10,
	}
}

// AppConfigFromSettings maps the server section of the run settings.
func AppConfigFromSettings(s config.ServerSettings) AppConfig {
	cfg := DefaultAppConfig()
	if s.Addr != "" {
		cfg.Addr = s.Addr
	}
	if s.StepsPerSecond > 0 {
		cfg.StepsPerSecond = s.StepsPerSecond
	}
	if s.PushRateHz > 0 {
		cfg.PushRateHz = s.PushRateHz
	}
	if len(s.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = append([]string(nil), s.AllowedOrigins...)
	}
	return cfg
}

func sanitizeAppConfig(cfg AppConfig) AppConfig {
	def := DefaultAppConfig()
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.PushRateHz <= 0 {
		cfg.PushRateHz = def.PushRateHz
	}
	if cfg.ClientRateHz <= 0 {
		cfg.ClientRateHz = def.ClientRateHz
	}
	if cfg.ClientBurst <= 0 {
		cfg.ClientBurst = def.ClientBurst
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = def.AllowedOrigins
	}
	return cfg
}
