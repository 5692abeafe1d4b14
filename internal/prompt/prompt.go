// Package prompt рендерит промпты для подбора карьер и девяти шагов.
// Тексты лежат в templates.yaml и вшиваются в бинарь.
package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/careerlogy/careerlogy-ai/internal/domain"
)

//go:embed templates.yaml
var templatesYAML []byte

var (
	ErrUnknownStep    = errors.New("unknown career step")
	ErrInvalidCatalog = errors.New("invalid prompt catalog")
)

type rawCatalog struct {
	CareerOptions string    `yaml:"career_options"`
	Steps         []rawStep `yaml:"steps"`
}

type rawStep struct {
	Name string `yaml:"name"`
	Text string `yaml:"text"`
}

type stepData struct {
	Qualification string
	CareerTitle   string
}

// Catalog - распарсенные шаблоны. Безопасен для конкурентного использования.
type Catalog struct {
	options *template.Template
	steps   []*template.Template
	names   []string
}

// Default - каталог из вшитого templates.yaml.
func Default() (*Catalog, error) {
	return Parse(templatesYAML)
}

// MustDefault паникует, если вшитый каталог битый (ловится тестами).
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

func Parse(data []byte) (*Catalog, error) {
	var raw rawCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	if strings.TrimSpace(raw.CareerOptions) == "" {
		return nil, fmt.Errorf("%w: career_options is empty", ErrInvalidCatalog)
	}
	if len(raw.Steps) != domain.StepCount {
		return nil, fmt.Errorf("%w: want %d steps, got %d", ErrInvalidCatalog, domain.StepCount, len(raw.Steps))
	}

	options, err := template.New("career_options").Option("missingkey=error").Parse(raw.CareerOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: career_options: %v", ErrInvalidCatalog, err)
	}

	c := &Catalog{
		options: options,
		steps:   make([]*template.Template, 0, len(raw.Steps)),
		names:   make([]string, 0, len(raw.Steps)),
	}
	for i, s := range raw.Steps {
		if strings.TrimSpace(s.Text) == "" {
			return nil, fmt.Errorf("%w: step %d is empty", ErrInvalidCatalog, i)
		}
		tmpl, err := template.New(domain.StepKey(i)).Option("missingkey=error").Parse(s.Text)
		if err != nil {
			return nil, fmt.Errorf("%w: step %d: %v", ErrInvalidCatalog, i, err)
		}
		c.steps = append(c.steps, tmpl)
		c.names = append(c.names, s.Name)
	}

	return c, nil
}

func (c *Catalog) CareerOptions(p domain.StudentProfile) (string, error) {
	var sb strings.Builder
	if err := c.options.Execute(&sb, p); err != nil {
		return "", fmt.Errorf("render career options: %w", err)
	}
	return sb.String(), nil
}

func (c *Catalog) Step(index int, qualification, careerTitle string) (string, error) {
	if index < 0 || index >= len(c.steps) {
		return "", fmt.Errorf("%w: %d", ErrUnknownStep, index)
	}

	var sb strings.Builder
	data := stepData{Qualification: qualification, CareerTitle: careerTitle}
	if err := c.steps[index].Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s: %w", domain.StepKey(index), err)
	}
	return sb.String(), nil
}

// StepName - человекочитаемое имя шага (exploration, job-search, ...).
func (c *Catalog) StepName(index int) string {
	if index < 0 || index >= len(c.names) {
		return ""
	}
	return c.names[index]
}

func (c *Catalog) StepCount() int { return len(c.steps) }
