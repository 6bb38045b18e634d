package app

import (
	"fmt"
	"sync"
)

// Hook configures a builder before it is built. Hooks run with their
// registrations attributed to the hook scope.
type Hook interface {
	Configure(b *Builder)
}

// HookFunc adapts a function to Hook.
type HookFunc func(b *Builder)

func (f HookFunc) Configure(b *Builder) { f(b) }

var (
	hooksMu sync.Mutex
	hooks   []Hook
)

// RegisterHook adds a process-wide hook applied to every builder at Build.
func RegisterHook(h Hook) {
	if h == nil {
		return
	}
	hooksMu.Lock()
	defer hooksMu.Unlock()
	hooks = append(hooks, h)
}

// ResetHooks removes all process-wide hooks.
func ResetHooks() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	hooks = nil
}

func registeredHooks() []Hook {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	return append([]Hook(nil), hooks...)
}

func hookName(h Hook) string {
	return fmt.Sprintf("%T", h)
}
