package report

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"rig/internal/installer"
	"rig/internal/option"
	"rig/internal/registry"
	"rig/internal/stat"
)

// createTable creates a new table with standard styling.
func (r *Reporter) createTable(headers ...string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleRounded)

	row := make(table.Row, len(headers))
	for i, h := range headers {
		row[i] = r.paint(text.FgHiCyan, h)
	}
	t.AppendHeader(row)
	return t
}

func (r *Reporter) formatEmptyMessage(message string) {
	fmt.Fprintf(r.out, "%s\n", r.paint(text.FgYellow, message))
}

// Stats renders timers and counters.
func (r *Reporter) Stats(s *stat.Stats) {
	entries := s.Snapshot()
	if len(entries) == 0 {
		r.formatEmptyMessage("No statistics recorded")
		return
	}
	t := r.createTable("STAT", "VALUE")
	for _, e := range entries {
		value := fmt.Sprint(e.Count)
		if e.IsTimer {
			value = e.Duration.String()
		}
		t.AppendRow(table.Row{string(e.Name), value})
	}
	t.Render()
}

// Options renders every declared option with its effective value.
func (r *Reporter) Options(store *option.Store) {
	t := r.createTable("OPTION", "TYPE", "VALUE", "SET", "USED")
	for _, s := range store.Summaries() {
		t.AppendRow(table.Row{s.Key.ID(), s.Key.Type.String(), formatValue(s.Value), yesNo(s.Set), yesNo(s.Used)})
	}
	t.Render()
}

// Items renders every registered item in registration order.
func (r *Reporter) Items(reg *registry.Registry) {
	items := reg.Items()
	if len(items) == 0 {
		r.formatEmptyMessage("No items registered")
		return
	}
	t := r.createTable("KIND", "TYPE", "REGISTERED BY", "STATE", "ALSO FROM")
	for _, info := range items {
		kind := info.Kind.String()
		if info.Overriding {
			kind = "module (override)"
		}
		t.AppendRow(table.Row{kind, info.Type.String(), info.RegisteredBy.String(), r.state(info), otherSources(info)})
	}
	t.Render()
}

// Installers renders each installer with the extensions it claimed.
func (r *Reporter) Installers(plan *installer.Plan) {
	t := r.createTable("INSTALLER", "EXTENSIONS")
	for _, step := range plan.Steps() {
		names := make([]string, len(step.Extensions))
		for i, ext := range step.Extensions {
			names[i] = reflect.TypeOf(ext).String()
		}
		exts := strings.Join(names, "\n")
		if exts == "" {
			exts = "-"
		}
		t.AppendRow(table.Row{reflect.TypeOf(step.Installer).String(), exts})
	}
	t.Render()
}

func (r *Reporter) state(info *registry.Info) string {
	switch {
	case info.Ignored:
		return r.paint(text.FgYellow, "ignored")
	case info.Disabled:
		by := make([]string, len(info.DisabledBy))
		for i, s := range info.DisabledBy {
			by[i] = s.String()
		}
		return r.paint(text.FgRed, "disabled by "+strings.Join(by, ", "))
	default:
		return r.paint(text.FgGreen, "enabled")
	}
}

func otherSources(info *registry.Info) string {
	if len(info.Sources) <= 1 {
		return ""
	}
	rest := make([]string, 0, len(info.Sources)-1)
	for _, s := range info.Sources[1:] {
		rest = append(rest, s.String())
	}
	return strings.Join(rest, ", ")
}

func formatValue(v any) string {
	if s, ok := v.([]string); ok {
		return "[" + strings.Join(s, ", ") + "]"
	}
	return fmt.Sprint(v)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
