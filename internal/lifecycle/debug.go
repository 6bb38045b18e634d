package lifecycle

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

const bannerTemplate = `{{ repeat 72 "─" }}
{{ .Phase | upper }}{{ with .Run }}  [run {{ trunc 8 . }}]{{ end }}
{{- range .Lines }}
    {{ . }}
{{- end }}
`

var banner = template.Must(template.New("banner").Funcs(sprig.TxtFuncMap()).Parse(bannerTemplate))

// DebugListener writes a banner for every phase. With Detailed set the
// banner lists the payload contents.
type DebugListener struct {
	Out      io.Writer
	Detailed bool

	mu sync.Mutex
}

func NewDebugListener(out io.Writer, detailed bool) *DebugListener {
	return &DebugListener{Out: out, Detailed: detailed}
}

type bannerData struct {
	Phase string
	Run   string
	Lines []string
}

func (d *DebugListener) OnEvent(ev Event) error {
	data := bannerData{Phase: ev.Phase().String(), Run: ev.Run()}
	if d.Detailed {
		data.Lines = describe(ev)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return banner.Execute(d.Out, data)
}

func describe(ev Event) []string {
	switch e := ev.(type) {
	case ConfiguredEvent:
		return []string{
			fmt.Sprintf("hooks: %d", len(e.Hooks)),
			fmt.Sprintf("listeners: %d", e.Listeners),
		}
	case InitializationEvent:
		return []string{fmt.Sprintf("commands: %v", e.Commands)}
	case BundlesResolvedEvent:
		return []string{
			"bundles: " + typeList(e.Bundles),
			"disabled: " + typeList(e.Disabled),
			"from lookup: " + typeList(e.Lookup),
		}
	case InjectionReadyEvent:
		return []string{
			"modules: " + typeList(e.Modules),
			"overriding: " + typeList(e.OverridingModules),
			"installers: " + typeList(e.Installers),
			"extensions: " + typeList(e.Extensions),
		}
	case ContainerCreatedEvent:
		return []string{fmt.Sprintf("created in %s", e.Elapsed)}
	case ExtensionsInstalledEvent:
		lines := make([]string, 0, len(e.Installed))
		for _, in := range e.Installed {
			lines = append(lines, fmt.Sprintf("%s: %s", in.Installer, typeList(in.Extensions)))
		}
		return lines
	case ApplicationRunningEvent:
		return []string{fmt.Sprintf("started in %s", e.Elapsed)}
	case ShutdownCompleteEvent:
		if e.Err != nil {
			return []string{"error: " + e.Err.Error()}
		}
	}
	return nil
}

func typeList(types []reflect.Type) string {
	if len(types) == 0 {
		return "-"
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}
