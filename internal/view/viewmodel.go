package view

import "github.com/odyssey-erp/backoffice/internal/listing"

// Row is one table row; Href links to the detail page.
type Row struct {
	Cells []string
	Href  string
}

// Table is a data table with a fixed header.
type Table struct {
	Columns []string
	Rows    []Row
	Empty   string
}

// ListPage drives pages/list.html.
type ListPage struct {
	Heading  string
	BasePath string
	NewURL   string
	Search   string
	Filters  []FormField
	Table    Table
	Pager    listing.Pager
}

// Field is a read-only label/value pair.
type Field struct {
	Label string
	Value string
}

// Action is a button on the detail page.
type Action struct {
	Label string
	Href  string
}

// DetailPage drives pages/detail.html.
type DetailPage struct {
	Heading string
	Fields  []Field
	Actions []Action
	BackURL string
	// Forms are inline mutation forms such as a status change.
	Forms []FormPage
}

// Option is a select option.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// FormField describes one input.
type FormField struct {
	Name        string
	Label       string
	Type        string
	Value       string
	Placeholder string
	Required    bool
	Options     []Option
	Error       string
}

// FormSection groups fields under a heading.
type FormSection struct {
	Title  string
	Fields []FormField
}

// FormPage drives pages/form.html.
type FormPage struct {
	Heading   string
	Action    string
	Submit    string
	CancelURL string
	Error     string
	Sections  []FormSection
}

// ConfirmPage drives pages/confirm.html.
type ConfirmPage struct {
	Heading   string
	Message   string
	Action    string
	Token     string
	TokenName string
	CancelURL string
}

// NotFoundPage drives pages/not_found.html.
type NotFoundPage struct {
	What    string
	BackURL string
}

// Options builds select options marking the current value.
func Options(current string, pairs ...string) []Option {
	opts := make([]Option, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		opts = append(opts, Option{Value: pairs[i], Label: pairs[i+1], Selected: pairs[i] == current})
	}
	return opts
}

// WithErrors copies field errors onto the matching fields.
func (p FormPage) WithErrors(errs map[string]string) FormPage {
	if len(errs) == 0 {
		return p
	}
	sections := make([]FormSection, len(p.Sections))
	for i, section := range p.Sections {
		fields := make([]FormField, len(section.Fields))
		for j, field := range section.Fields {
			field.Error = errs[field.Name]
			fields[j] = field
		}
		sections[i] = FormSection{Title: section.Title, Fields: fields}
	}
	p.Sections = sections
	if general, ok := errs["general"]; ok {
		p.Error = general
	}
	return p
}
