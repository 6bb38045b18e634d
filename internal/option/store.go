package option

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"rig/internal/container"
	"rig/internal/errs"
)

// Reader is the read-only view of a Store handed to bundles and modules.
type Reader interface {
	Get(key Key) any
	Bool(key Key) bool
	Int(key Key) int
	String(key Key) string
	Strings(key Key) []string
	Duration(key Key) time.Duration
	Stage(key Key) container.Stage
	IsSet(key Key) bool
}

// Store keeps the option values of one bootstrap run.
type Store struct {
	mu     sync.Mutex
	values map[string]any
	used   map[string]bool
	frozen bool
}

// NewStore returns an empty store; every key reads as its default.
func NewStore() *Store {
	return &Store{
		values: make(map[string]any),
		used:   make(map[string]bool),
	}
}

// Set records an explicit value for key.
func (s *Store) Set(key Key, value any) error {
	if !isDeclared(key) {
		return errs.Precondition("set option", "option %s is not declared", key.ID())
	}
	if !key.Type.accepts(value) {
		return errs.Precondition("set option", "option %s expects %s, got %T", key.ID(), key.Type, value)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return errs.State("set option "+key.ID(), "options are frozen")
	}
	if v, ok := value.([]string); ok {
		value = append([]string(nil), v...)
	}
	s.values[key.ID()] = value
	return nil
}

// SetString parses raw according to the key type and stores the result.
func (s *Store) SetString(key Key, raw string) error {
	v, err := parse(key, raw)
	if err != nil {
		return err
	}
	return s.Set(key, v)
}

// MapStrings applies "group.name" → raw value pairs, in sorted id order.
func (s *Store) MapStrings(values map[string]string) error {
	ids := make([]string, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		key, ok := Lookup(id)
		if !ok {
			return errs.Precondition("map options", "option %s is not declared", id)
		}
		if err := s.SetString(key, values[id]); err != nil {
			return err
		}
	}
	return nil
}

// EnvName returns the environment variable consulted for key by MapEnv,
// e.g. RIG_OPT_RIG_SEARCHCOMMANDS for prefix "RIG_OPT_".
func EnvName(prefix string, key Key) string {
	return prefix + strings.ToUpper(key.Group+"_"+key.Name)
}

// MapEnv sets every declared key that has a non-empty variable in the process
// environment. It returns the keys that were set.
func (s *Store) MapEnv(prefix string) ([]Key, error) {
	var applied []Key
	for _, key := range Declared() {
		raw, ok := os.LookupEnv(EnvName(prefix, key))
		if !ok || raw == "" {
			continue
		}
		if err := s.SetString(key, raw); err != nil {
			return applied, err
		}
		applied = append(applied, key)
	}
	return applied, nil
}

// Get returns the value for key, falling back to the default, and marks the
// key as used.
func (s *Store) Get(key Key) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.used[key.ID()] = true
	if v, ok := s.values[key.ID()]; ok {
		return v
	}
	return key.Default
}

func (s *Store) Bool(key Key) bool {
	v, _ := s.Get(key).(bool)
	return v
}

func (s *Store) Int(key Key) int {
	v, _ := s.Get(key).(int)
	return v
}

func (s *Store) String(key Key) string {
	v, _ := s.Get(key).(string)
	return v
}

func (s *Store) Strings(key Key) []string {
	v, _ := s.Get(key).([]string)
	return append([]string(nil), v...)
}

func (s *Store) Duration(key Key) time.Duration {
	v, _ := s.Get(key).(time.Duration)
	return v
}

func (s *Store) Stage(key Key) container.Stage {
	v, _ := s.Get(key).(container.Stage)
	return v
}

// IsSet reports whether key has an explicit value.
func (s *Store) IsSet(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[key.ID()]
	return ok
}

// IsUsed reports whether key was read at least once.
func (s *Store) IsUsed(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.used[key.ID()]
}

// Freeze rejects further writes.
func (s *Store) Freeze() {
	s.mu.Lock()
	s.frozen = true
	s.mu.Unlock()
}

// Frozen reports whether Freeze was called.
func (s *Store) Frozen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frozen
}

// Summary describes the state of one declared option for reporting.
type Summary struct {
	Key   Key
	Value any
	Set   bool
	Used  bool
}

// Summaries lists every declared key with its effective value. It does not
// mark keys as used.
func (s *Store) Summaries() []Summary {
	keys := Declared()
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Summary, 0, len(keys))
	for _, k := range keys {
		v, set := s.values[k.ID()]
		if !set {
			v = k.Default
		}
		out = append(out, Summary{Key: k, Value: v, Set: set, Used: s.used[k.ID()]})
	}
	return out
}

var _ Reader = (*Store)(nil)

func parse(key Key, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	fail := func(err error) error {
		return errs.Precondition("parse option", "option %s: cannot parse %q as %s: %v", key.ID(), raw, key.Type, err)
	}

	switch key.Type {
	case Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fail(err)
		}
		return v, nil
	case Int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fail(err)
		}
		return v, nil
	case String:
		return raw, nil
	case Strings:
		if raw == "" {
			return []string{}, nil
		}
		parts := strings.Split(raw, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	case Duration:
		v, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fail(err)
		}
		return v, nil
	case Stage:
		v, err := container.ParseStage(raw)
		if err != nil {
			return nil, fail(err)
		}
		return v, nil
	default:
		return nil, fail(fmt.Errorf("unsupported type"))
	}
}
