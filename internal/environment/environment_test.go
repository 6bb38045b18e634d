package environment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	events []string
}

type managedFunc struct {
	name    string
	rec     *recorder
	failOn  string
	stopErr error
}

func (m *managedFunc) Start(context.Context) error {
	if m.failOn == "start" {
		return errors.New("cannot start " + m.name)
	}
	m.rec.events = append(m.rec.events, "start "+m.name)
	return nil
}

func (m *managedFunc) Stop(context.Context) error {
	m.rec.events = append(m.rec.events, "stop "+m.name)
	return m.stopErr
}

type check struct {
	name string
	err  error
}

func (c check) Name() string                { return c.name }
func (c check) Check(context.Context) error { return c.err }

type task struct {
	name string
	got  map[string]string
}

func (t *task) Name() string { return t.name }
func (t *task) Execute(_ context.Context, params map[string]string) error {
	t.got = params
	return nil
}

func TestStartStopOrder(t *testing.T) {
	rec := &recorder{}
	env := New("test")
	env.Manage(&managedFunc{name: "db", rec: rec})
	env.Manage(&managedFunc{name: "http", rec: rec})

	require.NoError(t, env.Start(context.Background()))
	assert.True(t, env.Running())
	assert.Error(t, env.Start(context.Background()))
	require.NoError(t, env.Stop(context.Background()))
	assert.False(t, env.Running())

	assert.Equal(t, []string{"start db", "start http", "stop http", "stop db"}, rec.events)
	assert.NoError(t, env.Stop(context.Background()))
}

func TestStartRollsBack(t *testing.T) {
	rec := &recorder{}
	env := New("test")
	env.Manage(&managedFunc{name: "db", rec: rec})
	env.Manage(&managedFunc{name: "cache", rec: rec})
	env.Manage(&managedFunc{name: "http", rec: rec, failOn: "start"})

	err := env.Start(context.Background())
	assert.ErrorContains(t, err, "cannot start http")
	assert.False(t, env.Running())
	assert.Equal(t, []string{"start db", "start cache", "stop cache", "stop db"}, rec.events)
}

func TestStopJoinsErrors(t *testing.T) {
	rec := &recorder{}
	env := New("test")
	env.Manage(&managedFunc{name: "a", rec: rec, stopErr: errors.New("a failed")})
	env.Manage(&managedFunc{name: "b", rec: rec, stopErr: errors.New("b failed")})
	require.NoError(t, env.Start(context.Background()))

	err := env.Stop(context.Background())
	assert.ErrorContains(t, err, "a failed")
	assert.ErrorContains(t, err, "b failed")
	assert.Equal(t, []string{"start a", "start b", "stop b", "stop a"}, rec.events)
}

func TestHealthChecks(t *testing.T) {
	env := New("test")
	require.NoError(t, env.RegisterHealthCheck(check{name: "db"}))
	require.NoError(t, env.RegisterHealthCheck(check{name: "queue", err: errors.New("lagging")}))
	assert.Error(t, env.RegisterHealthCheck(check{name: "db"}))
	assert.Error(t, env.RegisterHealthCheck(check{}))

	assert.Equal(t, []string{"db", "queue"}, env.HealthCheckNames())
	failures := env.CheckHealth(context.Background())
	require.Len(t, failures, 1)
	assert.EqualError(t, failures["queue"], "lagging")

	env.AllowDuplicateHealthChecks()
	require.NoError(t, env.RegisterHealthCheck(check{name: "db", err: errors.New("down")}))
	assert.Len(t, env.CheckHealth(context.Background()), 2)
	assert.Equal(t, []string{"db", "queue"}, env.HealthCheckNames())
}

func TestTasks(t *testing.T) {
	env := New("test")
	tk := &task{name: "reindex"}
	require.NoError(t, env.RegisterTask(tk))
	assert.Error(t, env.RegisterTask(&task{name: "reindex"}))

	require.NoError(t, env.RunTask(context.Background(), "reindex", map[string]string{"full": "true"}))
	assert.Equal(t, "true", tk.got["full"])
	assert.Error(t, env.RunTask(context.Background(), "missing", nil))
	assert.Equal(t, []string{"reindex"}, env.TaskNames())
}
