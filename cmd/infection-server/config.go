package main

import (
	"flag"
	"log"
	"os"
	"strconv"
)

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Addr         string
	LogLevel     string
	MaxRuns      int
	TicksPerStep int
}

// configResolver defines how to resolve a single configuration value.
type configResolver struct {
	flagName    string
	envVarName  string
	defaultVal  string
	description string
	setter      func(*ServerConfig, string)
}

// loadServerConfig loads server configuration from CLI flags and
// environment variables; flags win over the environment, which wins over
// the default. Adding an option means adding a resolver.
func loadServerConfig() ServerConfig {
	cfg := ServerConfig{}

	resolvers := []configResolver{
		{
			flagName:    "addr",
			envVarName:  "INFECTION_ADDR",
			defaultVal:  ":8080",
			description: "HTTP listen address (e.g. :8080, 0.0.0.0:8080)",
			setter:      func(c *ServerConfig, v string) { c.Addr = v },
		},
		{
			flagName:    "log-level",
			envVarName:  "INFECTION_LOG_LEVEL",
			defaultVal:  "info",
			description: "Log level: debug, info, warn, error",
			setter:      func(c *ServerConfig, v string) { c.LogLevel = v },
		},
		{
			flagName:    "max-runs",
			envVarName:  "INFECTION_MAX_RUNS",
			defaultVal:  "16",
			description: "Maximum number of concurrent simulation runs",
			setter: func(c *ServerConfig, v string) {
				if val, err := strconv.Atoi(v); err == nil && val > 0 {
					c.MaxRuns = val
				} else {
					log.Printf("Invalid value for max-runs: %s, using default 16", v)
					c.MaxRuns = 16
				}
			},
		},
		{
			flagName:    "ticks-per-step",
			envVarName:  "INFECTION_TICKS_PER_STEP",
			defaultVal:  "20",
			description: "Simulated minutes advanced per step when a scenario does not say",
			setter: func(c *ServerConfig, v string) {
				if val, err := strconv.Atoi(v); err == nil && val > 0 {
					c.TicksPerStep = val
				} else {
					log.Printf("Invalid value for ticks-per-step: %s, using default 20", v)
					c.TicksPerStep = 20
				}
			},
		},
	}

	flagValues := make(map[string]*string, len(resolvers))
	for _, r := range resolvers {
		flagValues[r.flagName] = flag.String(r.flagName, "", r.description)
	}
	flag.Parse()

	for _, r := range resolvers {
		value := *flagValues[r.flagName]
		if value == "" {
			value = os.Getenv(r.envVarName)
		}
		if value == "" {
			value = r.defaultVal
		}
		r.setter(&cfg, value)
	}

	return cfg
}
