package drawer

import (
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/netsec-pipeline/pkg/pipeline/measure"
)

// DOTDrawer renders the pipeline graph in the graphviz DOT language.
type DOTDrawer struct {
	graph   graph.Graph[string, string]
	labels  map[string]string
	fills   map[string]string
	colours map[string]string
}

// NewDOTDrawer creates a new DOT drawer.
func NewDOTDrawer() *DOTDrawer {
	return &DOTDrawer{
		graph:   graph.New(graph.StringHash, graph.Directed(), graph.Acyclic()),
		labels:  make(map[string]string),
		fills:   make(map[string]string),
		colours: make(map[string]string),
	}
}

// AddStage adds a stage to the pipeline graph.
func (d *DOTDrawer) AddStage(name string) error {
	err := d.graph.AddVertex(name, graph.VertexAttribute("shape", "box"))
	if err != nil {
		return errors.Wrapf(err, "unable to add vertex %s", name)
	}

	return nil
}

// AddLink adds a link between parent and child stages.
func (d *DOTDrawer) AddLink(parentName, childName string) error {
	err := d.graph.AddEdge(parentName, childName)
	if err != nil {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childName)
	}

	return nil
}

// SetTotalTime sets the total time label of the stage.
func (d *DOTDrawer) SetTotalTime(stageName string, totalTime time.Duration) error {
	if _, err := d.graph.Vertex(stageName); err != nil {
		return errors.Wrapf(err, "unable to get vertex %s", stageName)
	}

	d.labels[stageName] = "total: " + totalTime.String()

	return nil
}

const maxRGB = 240

// AddMeasure labels every measured stage with its duration and colours it from blue (fastest) to
// red (slowest). Failed stages are filled in red whatever their duration.
func (d *DOTDrawer) AddMeasure(msr measure.Measure) error {
	var minValue, maxValue time.Duration

	first := true
	for name, mt := range msr.AllMetrics() {
		if !d.isStage(name) || mt.Duration() == 0 {
			continue
		}
		if first || mt.Duration() < minValue {
			minValue = mt.Duration()
		}
		if first || mt.Duration() > maxValue {
			maxValue = mt.Duration()
		}
		first = false
	}

	for name, mt := range msr.AllMetrics() {
		if !d.isStage(name) {
			continue
		}

		if mt.Failed() {
			d.labels[name] = "failed after " + mt.Duration().String()
			d.fills[name] = "#ff0000"

			continue
		}
		if mt.Duration() == 0 {
			continue
		}

		fraction := 1.0
		if maxValue > minValue {
			fraction = float64(mt.Duration()-minValue) / float64(maxValue-minValue)
		}

		red := maxRGB * fraction
		blue := maxRGB - red

		colour, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
		if err != nil {
			return errors.Wrap(err, "unable to get colour")
		}

		d.labels[name] = mt.Duration().String()
		d.colours[name] = colour.ToHEX().String()
	}

	return nil
}

// isStage reports whether name is a vertex other than the start and end markers.
func (d *DOTDrawer) isStage(name string) bool {
	if name == "start" || name == "end" {
		return false
	}
	_, err := d.graph.Vertex(name)

	return err == nil
}

// Draw writes the pipeline graph in DOT format.
func (d *DOTDrawer) Draw(w io.Writer) error {
	desc, err := d.generateDOT()
	if err != nil {
		return errors.Wrap(err, "failed to generate DOT description")
	}

	return renderDOT(w, desc)
}

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
{{- range $k, $v := .Attributes}}
	{{$k}}="{{$v}}";
{{- end}}
{{- range .Statements}}
	"{{.Source}}" {{if .Target}}{{$.EdgeOperator}} "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}}weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}}{{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}}weight={{.SourceWeight}} ]{{end}};
{{- end}}
}
`

type description struct {
	GraphType    string
	Attributes   map[string]string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           interface{}
	Target           interface{}
	SourceAttributes map[string]string
	HTMLAttributes   map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

func (d *DOTDrawer) generateDOT() (description, error) {
	desc := description{
		GraphType:    "digraph",
		Attributes:   map[string]string{"rankdir": "LR"},
		EdgeOperator: "->",
		Statements:   make([]statement, 0),
	}

	// the stage graph is a chain, so the topological order is the execution order
	order, err := graph.TopologicalSort(d.graph)
	if err != nil {
		return desc, errors.Wrap(err, "unable to sort stages")
	}

	adjacencyMap, err := d.graph.AdjacencyMap()
	if err != nil {
		return desc, errors.Wrap(err, "unable to get adjacency map")
	}

	for _, vertex := range order {
		_, sourceProperties, err := d.graph.VertexWithProperties(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		sourceAttributes := make(map[string]string, len(sourceProperties.Attributes)+2)
		for k, v := range sourceProperties.Attributes {
			sourceAttributes[k] = v
		}

		if fill, ok := d.fills[vertex]; ok {
			sourceAttributes["style"] = "filled"
			sourceAttributes["fillcolor"] = fill
		} else if colour, ok := d.colours[vertex]; ok {
			sourceAttributes["color"] = colour
		}

		htmlAttributes := make(map[string]string)
		if xlabel, ok := d.labels[vertex]; ok {
			htmlAttributes["label"] = fmt.Sprintf(`<%+v <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, vertex, xlabel)
		}

		desc.Statements = append(desc.Statements, statement{
			Source:           vertex,
			SourceWeight:     sourceProperties.Weight,
			SourceAttributes: sourceAttributes,
			HTMLAttributes:   htmlAttributes,
		})

		for adjacency, edge := range adjacencyMap[vertex] {
			desc.Statements = append(desc.Statements, statement{
				Source:         vertex,
				Target:         adjacency,
				EdgeWeight:     edge.Properties.Weight,
				EdgeAttributes: edge.Properties.Attributes,
			})
		}
	}

	return desc, nil
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*DOTDrawer)(nil)
