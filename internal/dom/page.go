package dom

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_page.yaml
var defaultPage []byte

type pageSpec struct {
	Viewport struct {
		Width  float64 `yaml:"width"`
		Height float64 `yaml:"height"`
	} `yaml:"viewport"`
	Body struct {
		Height float64 `yaml:"height"`
		Class  string  `yaml:"class"`
	} `yaml:"body"`
	Elements []elementSpec `yaml:"elements"`
}

type elementSpec struct {
	Tag      string            `yaml:"tag"`
	ID       string            `yaml:"id"`
	Class    string            `yaml:"class"`
	Rect     []float64         `yaml:"rect"`
	Fixed    bool              `yaml:"fixed"`
	Text     string            `yaml:"text"`
	Value    string            `yaml:"value"`
	Data     map[string]string `yaml:"data"`
	Attrs    map[string]string `yaml:"attrs"`
	Style    map[string]string `yaml:"style"`
	Children []elementSpec     `yaml:"children"`
}

// LoadPage reads a page description from path. An empty path loads the
// built-in demo page.
func LoadPage(path string) (*Document, error) {
	if path == "" {
		return ParsePage(defaultPage)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dom: load %s: %w", path, err)
	}
	doc, err := ParsePage(data)
	if err != nil {
		return nil, fmt.Errorf("dom: %s: %w", path, err)
	}
	return doc, nil
}

func ParsePage(data []byte) (*Document, error) {
	var spec pageSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("dom: unmarshal page: %w", err)
	}
	if spec.Viewport.Width <= 0 || spec.Viewport.Height <= 0 {
		return nil, fmt.Errorf("dom: viewport %vx%v must be positive", spec.Viewport.Width, spec.Viewport.Height)
	}

	doc := New(spec.Viewport.Width, spec.Viewport.Height)
	doc.Body.Bounds.H = max(spec.Body.Height, spec.Viewport.Height)
	for _, c := range strings.Fields(spec.Body.Class) {
		doc.Body.AddClass(c)
	}
	for i, es := range spec.Elements {
		el, err := build(doc, es)
		if err != nil {
			return nil, fmt.Errorf("dom: element %d: %w", i, err)
		}
		doc.Body.AppendChild(el)
	}
	return doc, nil
}

func build(doc *Document, es elementSpec) (*Element, error) {
	if es.Tag == "" {
		return nil, fmt.Errorf("missing tag")
	}
	el := doc.CreateElement(es.Tag)
	el.ID = es.ID
	el.Text = es.Text
	el.Value = es.Value
	el.Fixed = es.Fixed
	for _, c := range strings.Fields(es.Class) {
		el.AddClass(c)
	}
	switch len(es.Rect) {
	case 0:
	case 4:
		el.Bounds = Rect{X: es.Rect[0], Y: es.Rect[1], W: es.Rect[2], H: es.Rect[3]}
	default:
		return nil, fmt.Errorf("%s: rect needs 4 numbers, got %d", el, len(es.Rect))
	}
	for k, v := range es.Data {
		el.SetDataset(k, v)
	}
	for k, v := range es.Attrs {
		el.SetAttr(k, v)
	}
	for k, v := range es.Style {
		el.SetStyle(k, v)
	}
	for _, cs := range es.Children {
		child, err := build(doc, cs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", el, err)
		}
		el.AppendChild(child)
	}
	return el, nil
}
