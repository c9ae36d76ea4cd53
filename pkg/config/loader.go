package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// cached is one parsed configuration type.
type cached struct {
	once  sync.Once
	value any
	err   error
}

var (
	mu      sync.Mutex
	entries = make(map[reflect.Type]*cached)

	dotenvOnce sync.Once
)

// Load parses the environment into v once per type T and caches the result.
// Later calls for the same type copy the cached value into v, including a
// cached parse error.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	typ := reflect.TypeFor[T]()

	mu.Lock()
	e, ok := entries[typ]
	if !ok {
		e = &cached{}
		entries[typ] = e
	}
	mu.Unlock()

	e.once.Do(func() {
		var fresh T
		if err := Parse(&fresh); err != nil {
			e.err = err
			return
		}
		e.value = fresh
	})

	if e.err != nil {
		return e.err
	}
	*v = e.value.(T)
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// Parse reads the environment into v without touching the cache.
func Parse[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	dotenvOnce.Do(func() {
		// A missing .env file is the common case.
		_ = godotenv.Load()
	})
	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// Reset drops every cached configuration. Intended for tests.
func Reset() {
	mu.Lock()
	clear(entries)
	mu.Unlock()
}
