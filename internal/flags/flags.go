// Package flags provides a small feature-flag evaluator: named boolean
// switches with optional percentage-based rollout. Flags are evaluated once
// at composition time to select between interchangeable implementations;
// business logic never branches on them per call.
package flags

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Parsing errors.
var (
	ErrMalformedFlag  = errors.New("flag must be in name:percent form")
	ErrInvalidPercent = errors.New("flag percent must be between 0 and 100")
	ErrDuplicateFlag  = errors.New("flag defined more than once")
	ErrEmptyFlagName  = errors.New("flag name cannot be empty")
)

// Flag is a named switch rolled out to a percentage of rollout keys.
// Percent 100 means enabled for everyone, 0 means disabled.
type Flag struct {
	Name    string
	Percent int
}

// Evaluator answers whether a flag is enabled for a given rollout key.
type Evaluator struct {
	flags map[string]Flag
}

// New creates an evaluator over the given flags.
func New(flagList []Flag) *Evaluator {
	flags := make(map[string]Flag, len(flagList))
	for _, f := range flagList {
		flags[f.Name] = f
	}

	return &Evaluator{flags: flags}
}

// Parse reads a flag specification of the form
// "name:percent,name:percent,...". A bare "name" means percent 100.
func Parse(spec string) ([]Flag, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}

	seen := make(map[string]bool)
	var flagList []Flag

	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name := entry
		percent := 100

		if idx := strings.IndexByte(entry, ':'); idx >= 0 {
			name = strings.TrimSpace(entry[:idx])
			rawPercent := strings.TrimSpace(entry[idx+1:])

			p, err := strconv.Atoi(rawPercent)
			if err != nil {
				return nil, fmt.Errorf("parsing flag %q: %w", entry, ErrMalformedFlag)
			}
			if p < 0 || p > 100 {
				return nil, fmt.Errorf("parsing flag %q: %w", entry, ErrInvalidPercent)
			}
			percent = p
		}

		if name == "" {
			return nil, ErrEmptyFlagName
		}
		if seen[name] {
			return nil, fmt.Errorf("parsing flag %q: %w", name, ErrDuplicateFlag)
		}
		seen[name] = true

		flagList = append(flagList, Flag{Name: name, Percent: percent})
	}

	return flagList, nil
}

// Enabled reports whether the named flag is on for the given rollout key.
// Unknown flags are off. Evaluation is deterministic: the same (flag, key)
// pair always lands in the same rollout bucket.
func (e *Evaluator) Enabled(name, key string) bool {
	f, ok := e.flags[name]
	if !ok {
		return false
	}

	switch f.Percent {
	case 0:
		return false
	case 100:
		return true
	}

	return bucket(f.Name, key) < f.Percent
}

// Defined reports whether the named flag exists at all.
func (e *Evaluator) Defined(name string) bool {
	_, ok := e.flags[name]
	return ok
}

// bucket maps a (flag, key) pair onto [0, 100) using FNV-1a so that rollout
// membership is stable across restarts for the same key.
func bucket(name, key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(key))

	return int(h.Sum32() % 100)
}
