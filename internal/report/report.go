// Package report renders diagnostic output about a bootstrap run: timings,
// options, registered items, installer assignments and the registration
// tree.
//
// Tables and the tree are rendered with go-pretty for terminals; the same
// data is available as a Summary for JSON and YAML output.
package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/text"

	"rig/internal/dependency"
	"rig/internal/installer"
	"rig/internal/option"
	"rig/internal/registry"
	"rig/internal/stat"
)

// OutputFormat represents the desired output format.
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// ParseFormat validates a format name. An empty name selects tables.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON, FormatYAML:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unsupported output format %q (table, json, yaml)", s)
	}
}

// Options configures rendering.
type Options struct {
	Format OutputFormat
	Color  bool
}

// Input is everything a full diagnostic report covers. Nil fields are
// skipped.
type Input struct {
	Registry *registry.Registry
	Options  *option.Store
	Stats    *stat.Stats
	Plan     *installer.Plan
}

// Reporter writes reports to one writer.
type Reporter struct {
	out  io.Writer
	opts Options
}

func New(out io.Writer, opts Options) *Reporter {
	if opts.Format == "" {
		opts.Format = FormatTable
	}
	return &Reporter{out: out, opts: opts}
}

func (r *Reporter) paint(c text.Color, s string) string {
	if !r.opts.Color {
		return s
	}
	return c.Sprint(s)
}

func (r *Reporter) heading(title string) {
	fmt.Fprintf(r.out, "\n%s\n", r.paint(text.FgHiBlue, title))
}

// Diagnostics writes every section available in in.
func (r *Reporter) Diagnostics(in Input) error {
	if r.opts.Format != FormatTable {
		return r.Summary(BuildSummary(in))
	}

	if in.Stats != nil {
		r.heading("Startup statistics")
		r.Stats(in.Stats)
	}
	if in.Options != nil {
		r.heading("Options")
		r.Options(in.Options)
	}
	if in.Registry != nil {
		r.heading("Registered items")
		r.Items(in.Registry)
	}
	if in.Plan != nil {
		r.heading("Installers")
		r.Installers(in.Plan)
	}
	if in.Registry != nil {
		r.heading("Registration tree")
		r.Tree(dependency.FromRegistry(in.Registry))
	}
	return nil
}
