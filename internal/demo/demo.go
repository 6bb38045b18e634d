// Package demo is a small greeting service used by the rig command to show
// a complete bootstrap. Its extensions and commands are published in the
// scan catalog under Package; its bundle is published as "demo".
package demo

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"rig/internal/bundle"
	"rig/internal/command"
	"rig/internal/environment"
	"rig/internal/module"
	"rig/internal/option"
	"rig/internal/scan"
	"rig/pkg/logging"
)

// Package is the scan path of the demo values.
const Package = "rig/internal/demo"

var (
	Greeting     = option.Declare("demo", "Greeting", option.String, "hello")
	TickInterval = option.Declare("demo", "TickInterval", option.Duration, 30*time.Second)
)

func init() {
	scan.Register(Package,
		&Ticker{},
		&GreeterHealth{},
		&PurgeTask{},
		&GreetCommand{},
	)
	bundle.RegisterNamed("demo", func() bundle.Bundle { return &Bundle{} }, false)
}

// Greeter produces greetings.
type Greeter struct {
	Greeting string
}

func (g *Greeter) Greet(name string) string {
	if name == "" {
		name = "world"
	}
	return fmt.Sprintf("%s, %s", g.Greeting, name)
}

// Module binds the Greeter. It reads the greeting from the options.
type Module struct {
	options option.Reader
}

func (m *Module) SetOptions(options option.Reader) { m.options = options }

func (m *Module) Configure(b *module.Binder) error {
	greeting := Greeting.Default.(string)
	if m.options != nil {
		greeting = m.options.String(Greeting)
	}
	b.Bind(module.KeyOf[*Greeter](), &Greeter{Greeting: greeting})
	return nil
}

// Bundle registers the demo module.
type Bundle struct{}

func (*Bundle) Initialize(b *bundle.Bootstrap) error {
	b.Modules(&Module{})
	return nil
}

// Ticker logs a greeting periodically while the application runs.
type Ticker struct {
	Greeter *Greeter      `inject:""`
	Options option.Reader `inject:""`

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func (t *Ticker) Start(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		return fmt.Errorf("ticker already started")
	}
	interval := TickInterval.Default.(time.Duration)
	if t.Options != nil {
		interval = t.Options.Duration(TickInterval)
	}
	if interval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", interval)
	}
	t.stop, t.done = make(chan struct{}), make(chan struct{})
	go t.loop(interval, t.stop, t.done)
	return nil
}

func (t *Ticker) loop(interval time.Duration, stop, done chan struct{}) {
	defer close(done)
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-tick.C:
			logging.Info("Demo", "%s", t.Greeter.Greet(""))
		case <-stop:
			return
		}
	}
}

func (t *Ticker) Stop(ctx context.Context) error {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.stop, t.done = nil, nil
	t.mu.Unlock()
	if stop == nil {
		return nil
	}
	close(stop)
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GreeterHealth reports whether a greeting is configured.
type GreeterHealth struct {
	Greeter *Greeter `inject:""`
}

func (*GreeterHealth) Name() string { return "greeter" }

func (h *GreeterHealth) Check(context.Context) error {
	if h.Greeter == nil || strings.TrimSpace(h.Greeter.Greeting) == "" {
		return fmt.Errorf("no greeting configured")
	}
	return nil
}

// PurgeTask is an administrative task that accepts a "name" parameter.
type PurgeTask struct {
	Greeter *Greeter `inject:""`
}

func (*PurgeTask) Name() string { return "purge" }

func (p *PurgeTask) Execute(_ context.Context, params map[string]string) error {
	logging.Info("Demo", "Purging greetings for %s", p.Greeter.Greet(params["name"]))
	return nil
}

// GreetCommand prints a greeting. It runs inside the environment, so the
// greeter is injected once the container exists.
type GreetCommand struct {
	command.InEnvironment

	Greeter *Greeter                 `inject:""`
	Env     *environment.Environment `inject:",optional"`

	Out io.Writer
}

func (*GreetCommand) Name() string        { return "greet" }
func (*GreetCommand) Description() string { return "print a greeting" }

// SetOutput redirects the greeting, which goes to stdout by default.
func (c *GreetCommand) SetOutput(w io.Writer) { c.Out = w }

func (c *GreetCommand) Run(_ context.Context, args []string) error {
	if c.Greeter == nil {
		return fmt.Errorf("greet: greeter not injected")
	}
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	_, err := fmt.Fprintln(out, c.Greeter.Greet(strings.Join(args, " ")))
	return err
}
