package container

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rig/internal/module"
)

type Store interface{ Name() string }

type memStore struct{ name string }

func (m *memStore) Name() string { return m.name }

type handler struct {
	Store     Store     `inject:""`
	Region    string    `inject:"region"`
	Missing   int       `inject:",optional"`
	Container Container `inject:""`
	untouched string
}

func bindings(fn func(b *module.Binder)) []module.Module {
	return []module.Module{module.Func(func(b *module.Binder) error {
		fn(b)
		return nil
	})}
}

func TestInstanceAndProviderBindings(t *testing.T) {
	calls := 0
	c, err := NewFactory().Create(Development, bindings(func(b *module.Binder) {
		b.Bind(module.KeyOf[string]("region"), "eu-west")
		b.BindProvider(module.KeyOf[Store](), func(in module.Injector) (any, error) {
			calls++
			region, err := in.GetInstance(module.KeyOf[string]("region"))
			if err != nil {
				return nil, err
			}
			return &memStore{name: region.(string)}, nil
		})
	}))
	require.NoError(t, err)
	assert.Equal(t, 0, calls, "development stage builds lazily")

	first, err := c.GetInstance(module.KeyOf[Store]())
	require.NoError(t, err)
	second, err := c.GetInstance(module.KeyOf[Store]())
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, "eu-west", first.(Store).Name())
	assert.Equal(t, 1, calls)
}

func TestProductionStageIsEager(t *testing.T) {
	calls := 0
	_, err := NewFactory().Create(Production, bindings(func(b *module.Binder) {
		b.BindProvider(module.KeyOf[Store](), func(module.Injector) (any, error) {
			calls++
			return &memStore{}, nil
		})
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestEagerFailureFailsCreation(t *testing.T) {
	_, err := NewFactory().Create(Production, bindings(func(b *module.Binder) {
		b.BindProvider(module.KeyOf[Store](), func(module.Injector) (any, error) {
			return nil, errors.New("disk full")
		})
	}))
	assert.ErrorContains(t, err, "disk full")
}

func TestToolStageBuildsNothing(t *testing.T) {
	_, err := NewFactory().Create(Tool, bindings(func(b *module.Binder) {
		b.BindProvider(module.KeyOf[Store](), func(module.Injector) (any, error) {
			return nil, errors.New("must not be called")
		})
	}))
	assert.NoError(t, err)
}

func TestInjectMembers(t *testing.T) {
	store := &memStore{name: "primary"}
	c, err := NewFactory().Create(Production, bindings(func(b *module.Binder) {
		b.Bind(module.KeyOf[Store](), store)
		b.Bind(module.KeyOf[string]("region"), "us-east")
	}))
	require.NoError(t, err)

	h := &handler{untouched: "kept"}
	require.NoError(t, c.InjectMembers(h))
	assert.Same(t, store, h.Store)
	assert.Equal(t, "us-east", h.Region)
	assert.Equal(t, 0, h.Missing)
	assert.Same(t, c, h.Container)
	assert.Equal(t, "kept", h.untouched)
}

func TestInjectMembersMissingBinding(t *testing.T) {
	c, err := NewFactory().Create(Production, nil)
	require.NoError(t, err)

	err = c.InjectMembers(&handler{})
	var notBound *NotBoundError
	require.ErrorAs(t, err, &notBound)
	assert.Equal(t, module.KeyOf[Store](), notBound.Key)

	assert.Error(t, c.InjectMembers(handler{}))
}

func TestProviderCycle(t *testing.T) {
	_, err := NewFactory().Create(Production, bindings(func(b *module.Binder) {
		b.BindProvider(module.KeyOf[string]("a"), func(in module.Injector) (any, error) {
			return in.GetInstance(module.KeyOf[string]("b"))
		})
		b.BindProvider(module.KeyOf[string]("b"), func(in module.Injector) (any, error) {
			return in.GetInstance(module.KeyOf[string]("a"))
		})
	}))
	assert.ErrorContains(t, err, "dependency cycle")
}

func TestDuplicateBindings(t *testing.T) {
	mods := append(
		bindings(func(b *module.Binder) { b.Bind(module.KeyOf[string](), "one") }),
		bindings(func(b *module.Binder) { b.Bind(module.KeyOf[string](), "two") })...,
	)

	_, err := NewFactory().Create(Production, mods)
	assert.ErrorContains(t, err, "already bound")

	c, err := (&DefaultFactory{PermitDuplicates: true}).Create(Production, mods)
	require.NoError(t, err)
	v, err := c.GetInstance(module.KeyOf[string]())
	require.NoError(t, err)
	assert.Equal(t, "one", v)
}

func TestParseStage(t *testing.T) {
	tests := []struct {
		in      string
		want    Stage
		wantErr bool
	}{
		{in: "production", want: Production},
		{in: "DEV", want: Development},
		{in: "tool", want: Tool},
		{in: "", want: Production},
		{in: "staging", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStage(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) Stage {
	t.Helper()
	st, err := ParseStage(s)
	require.NoError(t, err)
	return st
}
