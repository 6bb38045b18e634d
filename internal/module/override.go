package module

import "fmt"

type overrideModule struct {
	root      []Module
	overrides []Module
}

// Override combines root and overrides into a single module. Keys bound on
// both sides take the override binding at the root binding's position;
// override-only keys are appended in override order. Each side follows the
// duplicate policy of the binder the combined module is installed into.
func Override(root []Module, overrides []Module) Module {
	return &overrideModule{
		root:      append([]Module(nil), root...),
		overrides: append([]Module(nil), overrides...),
	}
}

func (m *overrideModule) Configure(b *Binder) error {
	rootBindings, err := b.elements(m.root)
	if err != nil {
		return fmt.Errorf("root modules: %w", err)
	}
	overrideBindings, err := b.elements(m.overrides)
	if err != nil {
		return fmt.Errorf("overriding modules: %w", err)
	}

	byKey := make(map[Key]Binding, len(overrideBindings))
	for _, ob := range overrideBindings {
		byKey[ob.Key] = ob
	}

	used := make(map[Key]bool, len(overrideBindings))
	for _, rb := range rootBindings {
		if ob, ok := byKey[rb.Key]; ok {
			used[rb.Key] = true
			b.add(ob)
			continue
		}
		b.add(rb)
	}
	for _, ob := range overrideBindings {
		if !used[ob.Key] {
			b.add(ob)
		}
	}
	return nil
}
