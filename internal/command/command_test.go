package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rig/internal/container"
	"rig/internal/module"
)

type migrate struct{}

func (migrate) Name() string                        { return "migrate" }
func (migrate) Description() string                 { return "apply migrations" }
func (migrate) Run(context.Context, []string) error { return nil }

type otherMigrate struct{ migrate }

type check struct {
	InEnvironment
	DSN string `inject:"dsn"`
}

func (*check) Name() string                        { return "check" }
func (*check) Description() string                 { return "check configuration" }
func (*check) Run(context.Context, []string) error { return nil }

func TestSet(t *testing.T) {
	s := NewSet()
	require.NoError(t, s.Add(migrate{}))
	require.NoError(t, s.Add(migrate{}))
	assert.Error(t, s.Add(otherMigrate{}))
	require.NoError(t, s.Add(&check{}))

	assert.Len(t, s.All(), 2)
	assert.Equal(t, []string{"check", "migrate"}, s.Names())
	_, ok := s.Get("migrate")
	assert.True(t, ok)
}

func TestDiscover(t *testing.T) {
	got := Discover([]any{"not a command", migrate{}, 42, &check{}})
	require.Len(t, got, 2)
	assert.Equal(t, "migrate", got[0].Name())
}

func TestInjectEnvironmentCommands(t *testing.T) {
	c, err := container.NewFactory().Create(container.Production, []module.Module{
		module.Func(func(b *module.Binder) error {
			b.Bind(module.KeyOf[string]("dsn"), "postgres://localhost")
			return nil
		}),
	})
	require.NoError(t, err)

	chk := &check{}
	require.NoError(t, InjectEnvironmentCommands(c, []Command{migrate{}, chk}))
	assert.Equal(t, "postgres://localhost", chk.DSN)
}
