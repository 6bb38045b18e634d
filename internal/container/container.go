package container

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"rig/internal/module"
	"rig/pkg/logging"
)

// Container gives access to the instances built from the run's modules.
type Container interface {
	GetInstance(key module.Key) (any, error)
	InjectMembers(target any) error
}

// Factory creates the container from the final module list.
type Factory interface {
	Create(stage Stage, modules []module.Module) (Container, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(stage Stage, modules []module.Module) (Container, error)

func (f FactoryFunc) Create(stage Stage, modules []module.Module) (Container, error) {
	return f(stage, modules)
}

// DefaultFactory builds the reflective container.
type DefaultFactory struct {
	// PermitDuplicates keeps the first binding of a key instead of failing.
	PermitDuplicates bool
}

// NewFactory returns a DefaultFactory that rejects duplicate bindings.
func NewFactory() *DefaultFactory {
	return &DefaultFactory{}
}

// Create implements Factory.
func (f *DefaultFactory) Create(stage Stage, modules []module.Module) (Container, error) {
	b := module.NewBinder()
	if f.PermitDuplicates {
		b.PermitDuplicates()
	}
	b.Install(modules...)
	if err := b.Err(); err != nil {
		return nil, err
	}

	c := &injector{
		stage: stage,
		slots: make(map[module.Key]*slot),
	}
	self := module.KeyOf[Container]()
	c.slots[self] = &slot{binding: module.Binding{Key: self, Instance: c}, resolved: true, value: c}

	for _, binding := range b.Bindings() {
		if binding.Key == self {
			return nil, fmt.Errorf("%s is reserved", self)
		}
		c.slots[binding.Key] = &slot{binding: binding}
		c.order = append(c.order, binding.Key)
	}

	if stage == Production {
		for _, key := range c.order {
			if _, err := c.get(key); err != nil {
				return nil, fmt.Errorf("eager singleton %s: %w", key, err)
			}
		}
	}
	logging.Debug("Bootstrap", "Container created in %s stage with %d bindings", stage, len(c.order))
	return c, nil
}

type slot struct {
	binding   module.Binding
	value     any
	resolved  bool
	resolving bool
}

type injector struct {
	mu    sync.Mutex
	stage Stage
	slots map[module.Key]*slot
	order []module.Key
}

// resolver exposes the unlocked lookup to providers running inside get.
type resolver struct{ c *injector }

func (r resolver) GetInstance(key module.Key) (any, error) { return r.c.get(key) }

// NotBoundError reports a key without binding.
type NotBoundError struct {
	Key module.Key
}

func (e *NotBoundError) Error() string {
	return fmt.Sprintf("no binding for %s", e.Key)
}

func (c *injector) GetInstance(key module.Key) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.get(key)
}

func (c *injector) InjectMembers(target any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inject(target)
}

func (c *injector) get(key module.Key) (any, error) {
	s, ok := c.slots[key]
	if !ok {
		return nil, &NotBoundError{Key: key}
	}
	if s.resolved {
		return s.value, nil
	}
	if s.resolving {
		return nil, fmt.Errorf("dependency cycle while building %s", key)
	}
	s.resolving = true
	defer func() { s.resolving = false }()

	value := s.binding.Instance
	if s.binding.Provider != nil {
		v, err := s.binding.Provider(resolver{c})
		if err != nil {
			return nil, fmt.Errorf("provider for %s: %w", key, err)
		}
		if v == nil || !reflect.TypeOf(v).AssignableTo(key.Type) {
			return nil, fmt.Errorf("provider for %s returned %T", key, v)
		}
		value = v
	}
	if injectable(value) {
		if err := c.inject(value); err != nil {
			return nil, fmt.Errorf("inject %s: %w", key, err)
		}
	}

	s.value = value
	s.resolved = true
	return value, nil
}

func injectable(v any) bool {
	t := reflect.TypeOf(v)
	return t != nil && t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct
}

func (c *injector) inject(target any) error {
	if !injectable(target) || reflect.ValueOf(target).IsNil() {
		return fmt.Errorf("inject members: %T is not a pointer to a struct", target)
	}
	v := reflect.ValueOf(target).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag, ok := field.Tag.Lookup("inject")
		if !ok {
			continue
		}
		if !field.IsExported() {
			return fmt.Errorf("%s.%s: inject tag on unexported field", t, field.Name)
		}
		name, optional := parseTag(tag)
		key := module.Key{Type: field.Type, Name: name}

		value, err := c.get(key)
		if err != nil {
			if _, missing := err.(*NotBoundError); missing && optional {
				continue
			}
			return fmt.Errorf("%s.%s: %w", t, field.Name, err)
		}
		v.Field(i).Set(reflect.ValueOf(value))
	}
	return nil
}

func parseTag(tag string) (name string, optional bool) {
	parts := strings.Split(tag, ",")
	name = strings.TrimSpace(parts[0])
	for _, p := range parts[1:] {
		if strings.TrimSpace(p) == "optional" {
			optional = true
		}
	}
	return name, optional
}
