package pdgraph

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig"
)

const dotTemplate = `
{{- define "patch" -}}
{{- $prefix := .Prefix -}}
{{- range $i, $o := .Patch.Objects }}
{{- $label := printf "%s %v" $o.Type $o.Args | trim | quote }}
{{- if $o.Patch }}
  subgraph {{ printf "cluster_%s%d" $prefix $i | quote }} {
  label={{ $label }};
  {{ printf "%s%d" $prefix $i }} [label={{ $label }}, shape=component];
{{- template "patch" (dict "Patch" $o.Patch "Prefix" (printf "%s%d_" $prefix $i)) }}
  }
{{- else }}
  {{ printf "%s%d" $prefix $i }} [label={{ $label }}];
{{- end }}
{{- end }}
{{- range .Patch.Connections }}
  {{ printf "%s%d" $prefix .Source }} -> {{ printf "%s%d" $prefix .Sink }} [taillabel="{{ .Outlet }}", headlabel="{{ .Inlet }}"];
{{- end }}
{{- end -}}
digraph {{ .Name | quote }} {
  node [shape=box];
{{- template "patch" (dict "Patch" .Patch "Prefix" "n") }}
}
`

var dotTmpl = template.Must(template.New("dot").Funcs(sprig.TxtFuncMap()).Parse(dotTemplate))

// Dot renders the patch as a Graphviz digraph. Inline subpatches become
// clusters, which also contain a node standing for the subpatch object
// itself, so that the connections of the enclosing patch have an endpoint.
// Edges are labelled with their outlet and inlet indices.
func (p *Patch) Dot(name string) (string, error) {
	var buf bytes.Buffer
	if err := dotTmpl.Execute(&buf, map[string]any{"Name": name, "Patch": p}); err != nil {
		return "", fmt.Errorf("could not render dot graph: %w", err)
	}
	return buf.String(), nil
}
