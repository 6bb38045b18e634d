package report

import (
	"encoding/json"
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

// Summary is the serializable form of a diagnostic report.
type Summary struct {
	Items      []ItemSummary      `json:"items,omitempty" yaml:"items,omitempty"`
	Options    []OptionSummary    `json:"options,omitempty" yaml:"options,omitempty"`
	Stats      []StatSummary      `json:"stats,omitempty" yaml:"stats,omitempty"`
	Installers []InstallerSummary `json:"installers,omitempty" yaml:"installers,omitempty"`
}

type ItemSummary struct {
	Kind         string   `json:"kind" yaml:"kind"`
	Type         string   `json:"type" yaml:"type"`
	RegisteredBy string   `json:"registeredBy" yaml:"registeredBy"`
	Overriding   bool     `json:"overriding,omitempty" yaml:"overriding,omitempty"`
	Disabled     bool     `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Ignored      bool     `json:"ignored,omitempty" yaml:"ignored,omitempty"`
	DisabledBy   []string `json:"disabledBy,omitempty" yaml:"disabledBy,omitempty"`
}

type OptionSummary struct {
	Key   string `json:"key" yaml:"key"`
	Type  string `json:"type" yaml:"type"`
	Value string `json:"value" yaml:"value"`
	Set   bool   `json:"set" yaml:"set"`
	Used  bool   `json:"used" yaml:"used"`
}

type StatSummary struct {
	Name     string `json:"name" yaml:"name"`
	Duration string `json:"duration,omitempty" yaml:"duration,omitempty"`
	Count    int    `json:"count,omitempty" yaml:"count,omitempty"`
}

type InstallerSummary struct {
	Installer  string   `json:"installer" yaml:"installer"`
	Extensions []string `json:"extensions" yaml:"extensions"`
}

// BuildSummary collects the serializable report data.
func BuildSummary(in Input) Summary {
	var s Summary
	if in.Registry != nil {
		for _, info := range in.Registry.Items() {
			item := ItemSummary{
				Kind:         info.Kind.String(),
				Type:         info.Type.String(),
				RegisteredBy: info.RegisteredBy.String(),
				Overriding:   info.Overriding,
				Disabled:     info.Disabled,
				Ignored:      info.Ignored,
			}
			for _, src := range info.DisabledBy {
				item.DisabledBy = append(item.DisabledBy, src.String())
			}
			s.Items = append(s.Items, item)
		}
	}
	if in.Options != nil {
		for _, o := range in.Options.Summaries() {
			s.Options = append(s.Options, OptionSummary{
				Key:   o.Key.ID(),
				Type:  o.Key.Type.String(),
				Value: formatValue(o.Value),
				Set:   o.Set,
				Used:  o.Used,
			})
		}
	}
	if in.Stats != nil {
		for _, e := range in.Stats.Snapshot() {
			st := StatSummary{Name: string(e.Name), Count: e.Count}
			if e.IsTimer {
				st.Duration = e.Duration.String()
			}
			s.Stats = append(s.Stats, st)
		}
	}
	if in.Plan != nil {
		for _, step := range in.Plan.Steps() {
			is := InstallerSummary{Installer: reflect.TypeOf(step.Installer).String(), Extensions: []string{}}
			for _, ext := range step.Extensions {
				is.Extensions = append(is.Extensions, reflect.TypeOf(ext).String())
			}
			s.Installers = append(s.Installers, is)
		}
	}
	return s
}

// Summary writes s in the configured format. The table format falls back to
// YAML, which reads best in a terminal.
func (r *Reporter) Summary(s Summary) error {
	switch r.opts.Format {
	case FormatJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
}
