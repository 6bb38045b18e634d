package dependency

import (
	"rig/internal/registry"
)

// SourceID returns the node id for a registration source.
func SourceID(s registry.Source) NodeID {
	if s.Scope == registry.ScopeBundle && s.Bundle != nil {
		return NodeID("bundle:" + s.Bundle.String())
	}
	return NodeID(s.Scope.String())
}

// ItemID returns the node id for a registered item.
func ItemID(info *registry.Info) NodeID {
	prefix := info.Kind.String()
	if info.Overriding {
		prefix = "override"
	}
	return NodeID(prefix + ":" + info.Type.String())
}

func nodeKind(info *registry.Info) NodeKind {
	switch info.Kind {
	case registry.KindBundle:
		return KindBundle
	case registry.KindModule:
		if info.Overriding {
			return KindOverridingModule
		}
		return KindModule
	case registry.KindInstaller:
		return KindInstaller
	case registry.KindExtension:
		return KindExtension
	default:
		return KindCommand
	}
}

func nodeState(info *registry.Info) NodeState {
	switch {
	case info.Ignored:
		return StateIgnored
	case info.Disabled:
		return StateDisabled
	default:
		return StateEnabled
	}
}

// FromRegistry builds the "who registered what" graph of reg. Scope nodes
// come first in the order their scope first appears, followed by items in
// registration order.
func FromRegistry(reg *registry.Registry) *Graph {
	g := New()
	items := reg.Items()

	for _, info := range items {
		src := info.RegisteredBy
		if src.Scope == registry.ScopeBundle {
			continue
		}
		if g.Get(SourceID(src)) == nil {
			g.AddNode(Node{ID: SourceID(src), FriendlyName: src.String(), Kind: KindScope})
		}
	}
	for _, info := range items {
		g.AddNode(Node{
			ID:           ItemID(info),
			FriendlyName: info.Type.String(),
			Kind:         nodeKind(info),
			DependsOn:    []NodeID{SourceID(info.RegisteredBy)},
			State:        nodeState(info),
			Info:         info,
		})
	}
	return g
}
