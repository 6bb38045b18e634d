package registry

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rig/internal/errs"
)

type moduleA struct{ name string }
type moduleB struct{}
type installerA struct{}
type extensionA struct{}
type extensionB struct{}
type bundleA struct{}

func TestRegisterIsIdempotentPerType(t *testing.T) {
	r := New()

	first, err := r.Register(KindModule, &moduleA{name: "first"}, Application)
	require.NoError(t, err)
	second, err := r.Register(KindModule, &moduleA{name: "second"}, FromBundle(&bundleA{}))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "first", first.Instance.(*moduleA).name)
	assert.Equal(t, Application, first.RegisteredBy)
	assert.Equal(t, []Source{Application, FromBundle(&bundleA{})}, first.Sources)
	assert.Len(t, r.Resolve(KindModule), 1)
}

func TestPointerAndValueAreDistinctTypes(t *testing.T) {
	r := New()
	_, err := r.Register(KindExtension, extensionA{}, Application)
	require.NoError(t, err)
	_, err = r.Register(KindExtension, &extensionA{}, Application)
	require.NoError(t, err)

	assert.Len(t, r.Resolve(KindExtension), 2)
}

func TestSameTypeDifferentKinds(t *testing.T) {
	r := New()
	_, err := r.Register(KindExtension, &extensionA{}, Application)
	require.NoError(t, err)
	_, err = r.Register(KindInstaller, &extensionA{}, Application)
	require.NoError(t, err)

	assert.Len(t, r.Items(), 2)
}

func TestRegisterNil(t *testing.T) {
	_, err := New().Register(KindModule, nil, Application)
	require.Error(t, err)
	assert.True(t, errs.IsPrecondition(err))
}

func TestResolveKeepsRegistrationOrder(t *testing.T) {
	r := New()
	for _, v := range []any{&extensionB{}, &installerA{}, &extensionA{}} {
		kind := KindExtension
		if _, ok := v.(*installerA); ok {
			kind = KindInstaller
		}
		_, err := r.Register(kind, v, Application)
		require.NoError(t, err)
	}

	got := r.Resolve(KindExtension)
	require.Len(t, got, 2)
	assert.Equal(t, reflect.TypeOf(&extensionB{}), got[0].Type)
	assert.Equal(t, reflect.TypeOf(&extensionA{}), got[1].Type)
	assert.Less(t, got[0].Order, got[1].Order)
}

func TestDisableRetroactiveAndForward(t *testing.T) {
	tests := []struct {
		name          string
		disableBefore bool
	}{
		{name: "predicate before registration", disableBefore: true},
		{name: "predicate after registration", disableBefore: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			disable := func() {
				require.NoError(t, r.DisableTypes(KindExtension, Application, &extensionA{}))
			}
			if tt.disableBefore {
				disable()
			}
			_, err := r.Register(KindExtension, &extensionA{}, Application)
			require.NoError(t, err)
			_, err = r.Register(KindExtension, &extensionB{}, Application)
			require.NoError(t, err)
			if !tt.disableBefore {
				disable()
			}

			info, ok := r.Get(KindExtension, reflect.TypeOf(&extensionA{}))
			require.True(t, ok)
			assert.True(t, info.Disabled)
			assert.Equal(t, []Source{Application}, info.DisabledBy)

			resolved := r.Resolve(KindExtension)
			require.Len(t, resolved, 1)
			assert.Equal(t, reflect.TypeOf(&extensionB{}), resolved[0].Type)
			assert.Len(t, r.All(KindExtension), 2)
		})
	}
}

func TestDisableByReflectType(t *testing.T) {
	r := New()
	_, err := r.Register(KindModule, &moduleB{}, Application)
	require.NoError(t, err)
	require.NoError(t, r.DisableTypes(KindModule, Application, reflect.TypeOf(&moduleB{})))
	assert.Empty(t, r.Resolve(KindModule))
}

func TestDisableTypesRequiresValues(t *testing.T) {
	err := New().DisableTypes(KindModule, Application)
	require.Error(t, err)
	assert.True(t, errs.IsPrecondition(err))
}

func TestDisabledStaysDisabledOnReRegistration(t *testing.T) {
	r := New()
	require.NoError(t, r.DisableTypes(KindBundle, Application, &bundleA{}))
	first, err := r.Register(KindBundle, &bundleA{}, Lookup)
	require.NoError(t, err)
	again, err := r.Register(KindBundle, &bundleA{}, Application)
	require.NoError(t, err)

	assert.Same(t, first, again)
	assert.True(t, again.Disabled)
}

func TestOverrideShadowedByNormalModule(t *testing.T) {
	tests := []struct {
		name          string
		overrideFirst bool
	}{
		{name: "override registered first", overrideFirst: true},
		{name: "normal registered first", overrideFirst: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			normal := func() {
				_, err := r.Register(KindModule, &moduleA{}, Application)
				require.NoError(t, err)
			}
			override := func() {
				_, err := r.RegisterOverride(&moduleA{}, Application)
				require.NoError(t, err)
			}
			if tt.overrideFirst {
				override()
				normal()
			} else {
				normal()
				override()
			}
			_, err := r.RegisterOverride(&moduleB{}, Application)
			require.NoError(t, err)

			overrides := r.ResolveOverrides()
			require.Len(t, overrides, 1)
			assert.Equal(t, reflect.TypeOf(&moduleB{}), overrides[0].Type)

			ignored, ok := r.GetOverride(reflect.TypeOf(&moduleA{}))
			require.True(t, ok)
			assert.True(t, ignored.Ignored)
			assert.Len(t, r.Resolve(KindModule), 1)
		})
	}
}

func TestDisabledNormalModuleStillShadowsOverride(t *testing.T) {
	r := New()
	typ := reflect.TypeOf(&moduleA{})
	_, err := r.Register(KindModule, &moduleA{}, Application)
	require.NoError(t, err)
	require.NoError(t, r.Disable(func(i *Info) bool {
		return i.Type == typ && !i.Overriding
	}, Application))

	override, err := r.RegisterOverride(&moduleA{}, Application)
	require.NoError(t, err)

	assert.True(t, override.Ignored)
	assert.False(t, override.Disabled)
	assert.Empty(t, r.ResolveOverrides())
	assert.Empty(t, r.Resolve(KindModule))
}

func TestFrozenRegistry(t *testing.T) {
	r := New()
	r.Freeze()
	assert.True(t, r.Frozen())

	_, err := r.Register(KindModule, &moduleA{}, Application)
	assert.True(t, errs.IsState(err))
	_, err = r.RegisterOverride(&moduleA{}, Application)
	assert.True(t, errs.IsState(err))
	err = r.Disable(func(*Info) bool { return true }, Application)
	assert.True(t, errs.IsState(err))
}

func TestSourceString(t *testing.T) {
	assert.Equal(t, "application", Application.String())
	assert.Equal(t, "scan", ClasspathScan.String())
	assert.Equal(t, "bundle(*registry.bundleA)", FromBundle(&bundleA{}).String())
	assert.Empty(t, New().DisableSources())
}
