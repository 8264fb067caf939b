package analytics

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/backoffice/internal/apiclient"
	"github.com/odyssey-erp/backoffice/internal/session"
)

const dateLayout = "2006-01-02"

// Service reads dashboard sections from the backend.
type Service struct {
	client *apiclient.Client
}

// NewService constructs the analytics service.
func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

// ParseRange reads date_from and date_to. Values that are not YYYY-MM-DD are
// dropped, and swapped bounds are put back in order.
func ParseRange(q url.Values) Range {
	rng := Range{From: validDate(q.Get("date_from")), To: validDate(q.Get("date_to"))}
	if rng.From != "" && rng.To != "" && rng.From > rng.To {
		rng.From, rng.To = rng.To, rng.From
	}
	return rng
}

func validDate(v string) string {
	if _, err := time.Parse(dateLayout, v); err != nil {
		return ""
	}
	return v
}

func (r Range) values() url.Values {
	q := url.Values{}
	if r.From != "" {
		q.Set("date_from", r.From)
	}
	if r.To != "" {
		q.Set("date_to", r.To)
	}
	return q
}

// Dashboard fetches all sections concurrently. Section failures are recorded
// on the result and never cancel the siblings.
func (s *Service) Dashboard(ctx context.Context, sess *session.Session, rng Range) Dashboard {
	out := Dashboard{Range: rng}
	var g errgroup.Group
	g.Go(func() error {
		out.Summary, out.SummaryErr = fetch[Summary](ctx, s.client, sess, summaryPath, rng)
		return nil
	})
	g.Go(func() error {
		out.Trend, out.TrendErr = fetch[[]TrendPoint](ctx, s.client, sess, salesTrendPath, rng)
		return nil
	})
	g.Go(func() error {
		out.TopProducts, out.TopErr = fetch[[]TopProduct](ctx, s.client, sess, topProductsPath, rng)
		return nil
	})
	_ = g.Wait()
	return out
}

// TopProducts fetches the best sellers alone, for export.
func (s *Service) TopProducts(ctx context.Context, sess *session.Session, rng Range) ([]TopProduct, error) {
	return fetch[[]TopProduct](ctx, s.client, sess, topProductsPath, rng)
}

func fetch[T any](ctx context.Context, client *apiclient.Client, sess *session.Session, path string, rng Range) (T, error) {
	env, err := client.Do(ctx, sess, apiclient.Request{Method: http.MethodGet, Path: path, Query: rng.values()})
	if err != nil {
		var zero T
		return zero, err
	}
	return apiclient.DecodeData[T](env)
}
