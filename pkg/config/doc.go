// Package config loads configuration structs from the process environment.
//
// Values are read with github.com/caarlos0/env/v11 using `env` and
// `envDefault` struct tags. Before the first load the package reads a `.env`
// file from the working directory through github.com/joho/godotenv, if one
// exists; variables already present in the environment win.
//
// Load caches the parsed value per configuration type, so every caller in the
// process sees the same settings:
//
//	var cfg signal.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Parse skips the cache and is meant for tests and for callers that want to
// re-read the environment.
package config
