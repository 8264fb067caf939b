// Package chart renders small inline SVG charts for the dashboard.
package chart

import (
	"errors"
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Defaults for dashboard charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 240
	DefaultPadding = 28.0
	DefaultTicks   = 4
)

// ErrEmptySeries is returned when there is nothing to draw.
var ErrEmptySeries = errors.New("chart: series required")

// Series is a labelled run of values.
type Series struct {
	Labels []string
	Values []float64
}

// Opts customises a chart.
type Opts struct {
	Title       string
	Description string
	Width       int
	Height      int
	Color       string
	Fill        string
}

type frame struct {
	width, height int
	pad           float64
	plotW, plotH  float64
	lo, hi        float64
}

func newFrame(s Series, opts Opts) (frame, error) {
	if len(s.Values) == 0 {
		return frame{}, ErrEmptySeries
	}
	if len(s.Labels) != len(s.Values) {
		return frame{}, fmt.Errorf("chart: %d labels for %d values", len(s.Labels), len(s.Values))
	}
	f := frame{width: opts.Width, height: opts.Height, pad: DefaultPadding}
	if f.width <= 0 {
		f.width = DefaultWidth
	}
	if f.height <= 0 {
		f.height = DefaultHeight
	}
	f.plotW = float64(f.width) - 2*f.pad
	f.plotH = float64(f.height) - 2*f.pad
	if f.plotW <= 0 || f.plotH <= 0 {
		return frame{}, errors.New("chart: viewport too small")
	}
	f.lo, f.hi = 0, 0
	for _, v := range s.Values {
		f.lo = math.Min(f.lo, v)
		f.hi = math.Max(f.hi, v)
	}
	if f.hi-f.lo < 1e-9 {
		f.hi = f.lo + 1
	}
	return f, nil
}

func (f frame) y(v float64) float64 {
	return f.pad + f.plotH - (v-f.lo)/(f.hi-f.lo)*f.plotH
}

func (f frame) open(b *strings.Builder, kind string, opts Opts) {
	id := slug(opts.Title) + "-" + kind
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-labelledby="%s-title %s-desc">`, f.width, f.height, id, id)
	fmt.Fprintf(b, `<title id="%s-title">%s</title>`, id, template.HTMLEscapeString(or(opts.Title, "Chart")))
	fmt.Fprintf(b, `<desc id="%s-desc">%s</desc>`, id, template.HTMLEscapeString(opts.Description))
	for i := 0; i <= DefaultTicks; i++ {
		v := f.lo + (f.hi-f.lo)*float64(i)/DefaultTicks
		y := f.y(v)
		fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="#e2e8f0" stroke-dasharray="2,4"></line>`, f.pad, y, f.pad+f.plotW, y)
		fmt.Fprintf(b, `<text x="%.2f" y="%.2f" font-size="10" fill="#64748b" text-anchor="end">%s</text>`, f.pad-4, y+3, Tick(v))
	}
}

func (f frame) labelAt(b *strings.Builder, x float64, label string) {
	fmt.Fprintf(b, `<text x="%.2f" y="%.2f" font-size="10" fill="#64748b" text-anchor="middle">%s</text>`, x, f.pad+f.plotH+14, template.HTMLEscapeString(label))
}

// Line draws s as a line with a shaded area and a dot per point.
func Line(s Series, opts Opts) (template.HTML, error) {
	f, err := newFrame(s, opts)
	if err != nil {
		return "", err
	}
	color := or(opts.Color, "#2563eb")
	step := 0.0
	if n := len(s.Values); n > 1 {
		step = f.plotW / float64(n-1)
	}
	xAt := func(i int) float64 {
		if step == 0 {
			return f.pad + f.plotW/2
		}
		return f.pad + float64(i)*step
	}

	var path strings.Builder
	for i, v := range s.Values {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&path, "%s%.2f %.2f ", cmd, xAt(i), f.y(v))
	}
	d := strings.TrimSpace(path.String())

	var b strings.Builder
	f.open(&b, "line", opts)
	base := f.y(math.Max(f.lo, 0))
	fmt.Fprintf(&b, `<path d="%s L%.2f %.2f L%.2f %.2f Z" fill="%s" stroke="none"></path>`, d, xAt(len(s.Values)-1), base, xAt(0), base, or(opts.Fill, "rgba(37,99,235,0.12)"))
	fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="2" stroke-linejoin="round"></path>`, d, color)
	for i, v := range s.Values {
		fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="3" fill="%s"></circle>`, xAt(i), f.y(v), color)
		if len(s.Labels) <= 12 || i%2 == 0 {
			f.labelAt(&b, xAt(i), s.Labels[i])
		}
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

// Bars draws one vertical bar per value.
func Bars(s Series, opts Opts) (template.HTML, error) {
	f, err := newFrame(s, opts)
	if err != nil {
		return "", err
	}
	color := or(opts.Color, "#0ea5e9")
	slot := f.plotW / float64(len(s.Values))
	zero := f.y(0)

	var b strings.Builder
	f.open(&b, "bars", opts)
	for i, v := range s.Values {
		top, bottom := f.y(v), zero
		if top > bottom {
			top, bottom = bottom, top
		}
		x := f.pad + float64(i)*slot
		fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"><title>%s: %s</title></rect>`,
			x+slot*0.2, top, slot*0.6, bottom-top, color, template.HTMLEscapeString(s.Labels[i]), Tick(v))
		f.labelAt(&b, x+slot/2, truncate(s.Labels[i], 12))
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

// Tick abbreviates large axis values.
func Tick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.1fk", v/1e3)
	case math.Abs(v-math.Round(v)) < 1e-9:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func or(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func slug(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, strings.ToLower(strings.TrimSpace(s)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		return "chart"
	}
	return cleaned
}
