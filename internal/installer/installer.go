package installer

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"rig/internal/container"
	"rig/internal/environment"
	"rig/internal/errs"
	"rig/internal/option"
	"rig/pkg/logging"
)

// Target is what installers activate extensions into.
type Target struct {
	Container   container.Container
	Environment *environment.Environment
	Options     option.Reader
}

// Installer recognizes and activates one family of extensions.
type Installer interface {
	Matches(ext any) bool
	Install(t Target, extensions []any) error
}

// Ordered values are sorted by Order, lowest first.
type Ordered interface {
	Order() int
}

func orderOf(v any) int {
	if o, ok := v.(Ordered); ok {
		return o.Order()
	}
	return 0
}

// Sort returns installers sorted by order, stable.
func Sort(installers []Installer) []Installer {
	out := append([]Installer(nil), installers...)
	sort.SliceStable(out, func(i, j int) bool {
		return orderOf(out[i]) < orderOf(out[j])
	})
	return out
}

// Recognizes reports whether any installer matches v.
func Recognizes(installers []Installer, v any) bool {
	for _, in := range installers {
		if in.Matches(v) {
			return true
		}
	}
	return false
}

// Step is one installer with the extensions it claimed.
type Step struct {
	Installer  Installer
	Extensions []any
}

// Plan is the result of matching.
type Plan struct {
	steps []Step
}

// Match assigns every extension to the first matching installer.
func Match(installers []Installer, extensions []any) (*Plan, error) {
	sorted := Sort(installers)
	steps := make([]Step, len(sorted))
	for i, in := range sorted {
		steps[i].Installer = in
	}

	var unmatched []error
	for _, ext := range extensions {
		claimed := false
		for i := range steps {
			if steps[i].Installer.Matches(ext) {
				steps[i].Extensions = append(steps[i].Extensions, ext)
				claimed = true
				break
			}
		}
		if !claimed {
			unmatched = append(unmatched, &errs.ResolutionError{
				ItemType: fmt.Sprintf("%T", ext),
				Reason:   "no installer recognizes this extension",
			})
		}
	}
	if len(unmatched) > 0 {
		return nil, errors.Join(unmatched...)
	}

	for i := range steps {
		exts := steps[i].Extensions
		sort.SliceStable(exts, func(a, b int) bool {
			return orderOf(exts[a]) < orderOf(exts[b])
		})
		logging.Debug("Installers", "%T claimed %d extensions", steps[i].Installer, len(exts))
	}
	return &Plan{steps: steps}, nil
}

// Steps returns the installers in activation order with their extensions.
func (p *Plan) Steps() []Step {
	out := make([]Step, len(p.steps))
	for i, s := range p.steps {
		out[i] = Step{Installer: s.Installer, Extensions: append([]any(nil), s.Extensions...)}
	}
	return out
}

// InstallerFor returns the installer that claimed ext.
func (p *Plan) InstallerFor(ext any) (Installer, bool) {
	for _, s := range p.steps {
		for _, e := range s.Extensions {
			if sameValue(e, ext) {
				return s.Installer, true
			}
		}
	}
	return nil, false
}

func sameValue(a, b any) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return false
}

// Activate injects members into every struct-pointer extension and then
// calls each installer that claimed extensions, in order.
func (p *Plan) Activate(t Target) error {
	for _, s := range p.steps {
		for _, ext := range s.Extensions {
			if !isStructPointer(ext) {
				continue
			}
			if err := t.Container.InjectMembers(ext); err != nil {
				return fmt.Errorf("inject extension %T: %w", ext, err)
			}
		}
	}
	for _, s := range p.steps {
		if len(s.Extensions) == 0 {
			continue
		}
		if err := s.Installer.Install(t, append([]any(nil), s.Extensions...)); err != nil {
			return fmt.Errorf("installer %T: %w", s.Installer, err)
		}
		logging.Debug("Installers", "%T installed %d extensions", s.Installer, len(s.Extensions))
	}
	return nil
}

func isStructPointer(v any) bool {
	t := reflect.TypeOf(v)
	return t != nil && t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct && !reflect.ValueOf(v).IsNil()
}
