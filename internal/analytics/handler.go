package analytics

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/odyssey-erp/backoffice/internal/analytics/chart"
	"github.com/odyssey-erp/backoffice/internal/apiclient"
	"github.com/odyssey-erp/backoffice/internal/console"
	"github.com/odyssey-erp/backoffice/internal/rbac"
	"github.com/odyssey-erp/backoffice/internal/session"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/view"
)

const sectionUnavailable = "This section could not be loaded."

// Stat is one headline figure.
type Stat struct {
	Label string
	Value string
}

// Section is the render state of one dashboard block.
type Section struct {
	Heading string
	Error   string
	Empty   bool
	Chart   template.HTML
	Stats   []Stat
	Table   view.Table
}

// DashboardPage drives pages/analytics.html.
type DashboardPage struct {
	From      string
	To        string
	ExportURL string
	Summary   Section
	Trend     Section
	Top       Section
}

// Handler serves the analytics dashboard.
type Handler struct {
	kit     *console.Kit
	rbac    rbac.Middleware
	service *Service
	csvPool sync.Pool
}

// NewHandler builds the analytics handler.
func NewHandler(kit *console.Kit, client *apiclient.Client, rbac rbac.Middleware) *Handler {
	h := &Handler{kit: kit, rbac: rbac, service: NewService(client)}
	h.csvPool.New = func() any { return new(bytes.Buffer) }
	return h
}

// MountRoutes registers analytics routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermAnalyticsView))
		r.Get("/", h.showDashboard)
		r.With(limiter).Get("/top-products.csv", h.exportTopProducts)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	if sess := session.FromContext(r.Context()); sess != nil {
		if sub := strings.TrimSpace(sess.Account.Subject); sub != "" {
			return "user:" + sub, nil
		}
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}

func (h *Handler) showDashboard(w http.ResponseWriter, r *http.Request) {
	rng := ParseRange(r.URL.Query())
	dash := h.service.Dashboard(r.Context(), session.FromContext(r.Context()), rng)
	h.kit.Render(w, r, http.StatusOK, "pages/analytics.html", "Analytics", h.buildPage(dash))
}

func (h *Handler) buildPage(d Dashboard) DashboardPage {
	q := d.Range.values()
	export := "/analytics/top-products.csv"
	if len(q) > 0 {
		export += "?" + q.Encode()
	}
	return DashboardPage{
		From:      d.Range.From,
		To:        d.Range.To,
		ExportURL: export,
		Summary:   h.summarySection(d),
		Trend:     h.trendSection(d),
		Top:       h.topSection(d),
	}
}

func (h *Handler) failed(section string, err error) string {
	h.kit.Logger.Warn("analytics section", slog.String("section", section), slog.String("kind", string(apiclient.KindOf(err))), slog.Any("error", err))
	return sectionUnavailable
}

func (h *Handler) summarySection(d Dashboard) Section {
	s := Section{Heading: "Summary"}
	if d.SummaryErr != nil {
		s.Error = h.failed("summary", d.SummaryErr)
		return s
	}
	sum := d.Summary
	s.Stats = []Stat{
		{Label: "Revenue", Value: view.FormatMoney(sum.Revenue)},
		{Label: "Orders", Value: strconv.Itoa(sum.Orders)},
		{Label: "Customers", Value: strconv.Itoa(sum.Customers)},
		{Label: "Average order", Value: view.FormatMoney(sum.AverageOrderValue)},
		{Label: "Pending orders", Value: strconv.Itoa(sum.PendingOrders)},
	}
	return s
}

func (h *Handler) trendSection(d Dashboard) Section {
	s := Section{Heading: "Sales trend"}
	if d.TrendErr != nil {
		s.Error = h.failed("sales-trend", d.TrendErr)
		return s
	}
	if len(d.Trend) == 0 {
		s.Empty = true
		return s
	}
	series := chart.Series{Labels: make([]string, len(d.Trend)), Values: make([]float64, len(d.Trend))}
	rows := make([]view.Row, len(d.Trend))
	for i, p := range d.Trend {
		series.Labels[i] = shortDate(p.Date)
		series.Values[i] = p.Revenue.InexactFloat64()
		rows[i] = view.Row{Cells: []string{p.Date, strconv.Itoa(p.Orders), view.FormatMoney(p.Revenue)}}
	}
	svg, err := chart.Line(series, chart.Opts{Title: "Sales trend", Description: "Revenue per day"})
	if err != nil {
		h.kit.Logger.Error("render sales trend", slog.Any("error", err))
	}
	s.Chart = svg
	s.Table = view.Table{Columns: []string{"Date", "Orders", "Revenue"}, Rows: rows}
	return s
}

func (h *Handler) topSection(d Dashboard) Section {
	s := Section{Heading: "Top products"}
	if d.TopErr != nil {
		s.Error = h.failed("top-products", d.TopErr)
		return s
	}
	if len(d.TopProducts) == 0 {
		s.Empty = true
		return s
	}
	series := chart.Series{Labels: make([]string, len(d.TopProducts)), Values: make([]float64, len(d.TopProducts))}
	rows := make([]view.Row, len(d.TopProducts))
	for i, p := range d.TopProducts {
		series.Labels[i] = p.Name
		series.Values[i] = float64(p.Quantity)
		rows[i] = view.Row{
			Href:  "/catalog/products/" + p.ProductID,
			Cells: []string{strconv.Itoa(i + 1), p.Name, strconv.Itoa(p.Quantity), view.FormatMoney(p.Revenue)},
		}
	}
	svg, err := chart.Bars(series, chart.Opts{Title: "Top products", Description: "Units sold per product"})
	if err != nil {
		h.kit.Logger.Error("render top products", slog.Any("error", err))
	}
	s.Chart = svg
	s.Table = view.Table{Columns: []string{"#", "Product", "Sold", "Revenue"}, Rows: rows}
	return s
}

func shortDate(v string) string {
	if t, err := time.Parse(dateLayout, v); err == nil {
		return t.Format("02 Jan")
	}
	return v
}

func (h *Handler) exportTopProducts(w http.ResponseWriter, r *http.Request) {
	rng := ParseRange(r.URL.Query())
	products, err := h.service.TopProducts(r.Context(), session.FromContext(r.Context()), rng)
	if err != nil {
		h.kit.Logger.Error("export top products", slog.Any("error", err))
		http.Error(w, console.GenericFailure, http.StatusBadGateway)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer h.csvPool.Put(buf)
	if err := WriteTopProductsCSV(buf, rng, products); err != nil {
		h.kit.Logger.Error("write top products csv", slog.Any("error", err))
		http.Error(w, console.GenericFailure, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="top-products-%s.csv"`, fileStamp(rng)))
	_, _ = w.Write(buf.Bytes())
}

func fileStamp(rng Range) string {
	if rng.From == "" && rng.To == "" {
		return "all"
	}
	return strings.Trim(rng.From+"_"+rng.To, "_")
}
