package report

import (
	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/jedib0t/go-pretty/v6/text"

	"rig/internal/dependency"
)

// Tree renders the registration graph, one branch per scope.
func (r *Reporter) Tree(g *dependency.Graph) {
	if g.Len() == 0 {
		r.formatEmptyMessage("No items registered")
		return
	}
	l := list.NewWriter()
	l.SetOutputMirror(r.out)
	l.SetStyle(list.StyleConnectedRounded)

	for _, root := range g.Roots() {
		depth := 0
		g.Walk(root, func(d int, n *dependency.Node) {
			for ; depth < d; depth++ {
				l.Indent()
			}
			for ; depth > d; depth-- {
				l.UnIndent()
			}
			l.AppendItem(r.nodeLabel(n))
		})
		for ; depth > 0; depth-- {
			l.UnIndent()
		}
	}
	l.Render()
}

func (r *Reporter) nodeLabel(n *dependency.Node) string {
	label := string(n.ID)
	switch n.State {
	case dependency.StateDisabled:
		return r.paint(text.FgRed, "-"+label+" (disabled)")
	case dependency.StateIgnored:
		return r.paint(text.FgYellow, label+" (ignored)")
	}
	if n.Kind == dependency.KindScope {
		return r.paint(text.FgHiCyan, label)
	}
	return label
}
