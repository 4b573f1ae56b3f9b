package adapter

import (
	"embed"
	"strings"
	"sync"
	"text/template"
)

//go:embed templates/*.tmpl
var reportTemplateFS embed.FS

var (
	reportTemplates *template.Template
	reportOnce      sync.Once
	reportErr       error
)

func executeReportTemplate(name string, data any) (string, error) {
	reportOnce.Do(func() {
		funcMap := template.FuncMap{
			"add": func(a, b int) int { return a + b },
		}
		reportTemplates, reportErr = template.New("report").Funcs(funcMap).ParseFS(reportTemplateFS, "templates/*.tmpl")
	})
	if reportErr != nil {
		return "", reportErr
	}

	var builder strings.Builder
	if err := reportTemplates.ExecuteTemplate(&builder, name, data); err != nil {
		return "", err
	}
	return strings.TrimRight(builder.String(), "\n"), nil
}
