package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	UserName    string
	Nav         []NavItem
	Data        any
}

// NavItem is one sidebar entry.
type NavItem struct {
	Label  string
	Href   string
	Active bool
}

var printer = message.NewPrinter(language.English)

// FormatMoney renders an amount with thousands separators and two decimals.
func FormatMoney(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return printer.Sprintf("%.2f", f)
}

// FormatDate renders timestamps in the dashboard's display format.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006 15:04")
}

// NewEngine parses the embedded templates.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate":  FormatDate,
		"formatMoney": FormatMoney,
		"formatInt": func(n int) string {
			return printer.Sprintf("%d", n)
		},
		"formContext": func(token string, form FormPage) map[string]any {
			return map[string]any{"CSRFToken": token, "Form": form}
		},
		"title": func(s string) string {
			s = strings.ReplaceAll(s, "_", " ")
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Execute renders a named template into w.
func (e *Engine) Execute(w io.Writer, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	return e.templates.ExecuteTemplate(w, name, data)
}

// RenderBytes renders into a buffer so failures never leave half a page.
func (e *Engine) RenderBytes(name string, data TemplateData) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Execute(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
