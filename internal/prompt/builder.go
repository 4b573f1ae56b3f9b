package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed templates/*.yaml
var templateFS embed.FS

type TemplateName string

const (
	TemplatePurpose            TemplateName = "purpose.yaml"
	TemplateSuitability        TemplateName = "suitability.yaml"
	TemplateDescription        TemplateName = "description.yaml"
	TemplateTranslateShort     TemplateName = "translate_short.yaml"
	TemplateTranslateLong      TemplateName = "translate_long.yaml"
	TemplateShortText          TemplateName = "short_text.yaml"
	TemplateExplanationGood    TemplateName = "explanation_good.yaml"
	TemplateExplanationCaution TemplateName = "explanation_caution.yaml"
	TemplateExplanationNeutral TemplateName = "explanation_neutral.yaml"
	TemplateEnhanceReport      TemplateName = "enhance_report.yaml"
)

// Spec is one prompt file: the template plus its generation hints.
type Spec struct {
	Name     string `yaml:"name"`
	Preset   string `yaml:"preset"`
	MaxRunes int    `yaml:"max_runes"`
	Template string `yaml:"template"`
}

type compiled struct {
	spec Spec
	tmpl *template.Template
}

var funcs = template.FuncMap{
	"join": strings.Join,
}

type PromptBuilder struct {
	mu        sync.RWMutex
	templates map[TemplateName]*compiled
}

var (
	defaultBuilderOnce sync.Once
	defaultBuilder     *PromptBuilder
)

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{
		templates: make(map[TemplateName]*compiled),
	}
}

func DefaultPromptBuilder() *PromptBuilder {
	defaultBuilderOnce.Do(func() {
		defaultBuilder = NewPromptBuilder()
	})
	return defaultBuilder
}

// Render executes the named template with data, trimmed.
func (pb *PromptBuilder) Render(name TemplateName, data any) (string, error) {
	c, err := pb.get(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}

	return strings.TrimSpace(buf.String()), nil
}

// Spec returns the generation hints of the named template.
func (pb *PromptBuilder) Spec(name TemplateName) (Spec, error) {
	c, err := pb.get(name)
	if err != nil {
		return Spec{}, err
	}
	return c.spec, nil
}

func (pb *PromptBuilder) get(name TemplateName) (*compiled, error) {
	pb.mu.RLock()
	if c, ok := pb.templates[name]; ok {
		pb.mu.RUnlock()
		return c, nil
	}
	pb.mu.RUnlock()

	filename := filepath.ToSlash(filepath.Join("templates", string(name)))
	content, err := templateFS.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("load prompt template %s: %w", name, err)
	}

	var spec Spec
	if err := yaml.Unmarshal(content, &spec); err != nil {
		return nil, fmt.Errorf("decode prompt template %s: %w", name, err)
	}
	if strings.TrimSpace(spec.Template) == "" {
		return nil, fmt.Errorf("prompt template %s has no template body", name)
	}

	tmpl, err := template.New(string(name)).Funcs(funcs).Parse(spec.Template)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s: %w", name, err)
	}

	c := &compiled{spec: spec, tmpl: tmpl}

	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.templates[name] = c

	return c, nil
}
