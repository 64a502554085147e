// Package library holds the built-in catalogue of jazz standards
package library

import (
	_ "embed"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"

	"github.com/james-see/jazzshed/pkg/harmony"
)

//go:embed tunes.yaml
var builtinTunes []byte

// ErrTuneNotFound is returned when no tune has the requested ID
var ErrTuneNotFound = errors.New("tune not found")

// Library is an in-memory, concurrency-safe set of tunes. Tunes are read-only
// apart from their mastery rating.
type Library struct {
	mu    sync.RWMutex
	tunes []*harmony.Tune
	byID  map[string]*harmony.Tune
}

// Load parses the embedded catalogue
func Load() (*Library, error) {
	return Parse(builtinTunes)
}

// Parse builds a library from YAML. Every tune is validated; a bad tune
// fails the whole load.
func Parse(data []byte) (*Library, error) {
	var raw []rawTune
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse tunes: %w", err)
	}

	v := newValidator()
	lib := &Library{byID: make(map[string]*harmony.Tune, len(raw))}
	for i, r := range raw {
		t := r.tune()
		if err := v.Struct(t); err != nil {
			return nil, fmt.Errorf("invalid tune #%d (%s): %w", i+1, r.ID, err)
		}
		if _, dup := lib.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate tune id %q", t.ID)
		}
		lib.tunes = append(lib.tunes, t)
		lib.byID[t.ID] = t
	}
	return lib, nil
}

// newValidator reports field errors by their YAML name
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Len returns the number of tunes
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.tunes)
}

// List returns tunes in catalogue order. An empty category returns all.
func (l *Library) List(category harmony.Category) []harmony.Tune {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []harmony.Tune
	for _, t := range l.tunes {
		if category == "" || t.Category == category {
			out = append(out, *t)
		}
	}
	return out
}

// Get looks up a tune by ID
func (l *Library) Get(id string) (harmony.Tune, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	t, ok := l.byID[id]
	if !ok {
		return harmony.Tune{}, fmt.Errorf("%w: %s", ErrTuneNotFound, id)
	}
	return *t, nil
}

// SetMastery updates the rating for a tune. Concurrent writers are resolved
// last-write-wins.
func (l *Library) SetMastery(id string, m harmony.Mastery) (harmony.Tune, error) {
	if !m.Valid() {
		return harmony.Tune{}, fmt.Errorf("invalid mastery level %q", m)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	t, ok := l.byID[id]
	if !ok {
		return harmony.Tune{}, fmt.Errorf("%w: %s", ErrTuneNotFound, id)
	}
	t.Mastery = m
	return *t, nil
}

// Categories lists the categories in use, in first-seen order
func (l *Library) Categories() []harmony.Category {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []harmony.Category
	for _, t := range l.tunes {
		if t.Category != "" && !slices.Contains(out, t.Category) {
			out = append(out, t.Category)
		}
	}
	return out
}
