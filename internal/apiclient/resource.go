package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/odyssey-erp/backoffice/internal/session"
)

// Page is a decoded list response. Meta is nil when the backend omitted it.
type Page[T any] struct {
	Items []T
	Meta  *Meta
}

// Resource binds the executor to one backend collection.
type Resource[T any] struct {
	client       *Client
	path         string
	alwaysSearch bool
}

// NewResource returns a Resource rooted at path, e.g. "/product/products".
func NewResource[T any](client *Client, path string) *Resource[T] {
	return &Resource[T]{client: client, path: "/" + strings.Trim(path, "/")}
}

// WithAlwaysSearch makes List send search even when it is empty.
func (r *Resource[T]) WithAlwaysSearch() *Resource[T] {
	r.alwaysSearch = true
	return r
}

// Path returns the collection path.
func (r *Resource[T]) Path() string {
	return r.path
}

// List fetches one page of the collection.
func (r *Resource[T]) List(ctx context.Context, sess *session.Session, q Query) (Page[T], error) {
	env, err := r.client.Do(ctx, sess, Request{
		Method:   http.MethodGet,
		Path:     r.path,
		Query:    q.Values(r.alwaysSearch),
		Resource: r.path,
	})
	if err != nil {
		return Page[T]{}, err
	}
	items, err := DecodeData[[]T](env)
	if err != nil {
		return Page[T]{}, err
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Meta: env.Meta}, nil
}

// Get fetches one item. Empty data is reported as ErrEmptyData.
func (r *Resource[T]) Get(ctx context.Context, sess *session.Session, id string) (T, error) {
	var zero T
	env, err := r.client.Do(ctx, sess, Request{
		Method:   http.MethodGet,
		Path:     r.itemPath(id),
		Resource: r.path,
	})
	if err != nil {
		return zero, err
	}
	if env.Empty() {
		return zero, ErrEmptyData
	}
	return DecodeData[T](env)
}

// Create posts body to the collection.
func (r *Resource[T]) Create(ctx context.Context, sess *session.Session, body any) (T, error) {
	return r.write(ctx, sess, http.MethodPost, r.path, body)
}

// Update patches one item.
func (r *Resource[T]) Update(ctx context.Context, sess *session.Session, id string, body any) (T, error) {
	return r.write(ctx, sess, http.MethodPatch, r.itemPath(id), body)
}

// Delete removes one item.
func (r *Resource[T]) Delete(ctx context.Context, sess *session.Session, id string) error {
	_, err := r.client.Do(ctx, sess, Request{
		Method:   http.MethodDelete,
		Path:     r.itemPath(id),
		Resource: r.path,
	})
	return err
}

// Action calls a sub-path of one item, e.g. PATCH /order/orders/{id}/status.
func (r *Resource[T]) Action(ctx context.Context, sess *session.Session, method, id, action string, body any) (T, error) {
	return r.write(ctx, sess, method, r.itemPath(id)+"/"+strings.Trim(action, "/"), body)
}

func (r *Resource[T]) write(ctx context.Context, sess *session.Session, method, path string, body any) (T, error) {
	var zero T
	env, err := r.client.Do(ctx, sess, Request{
		Method:   method,
		Path:     path,
		Body:     body,
		Resource: r.path,
	})
	if err != nil {
		return zero, err
	}
	if env.Empty() {
		return zero, nil
	}
	return DecodeData[T](env)
}

func (r *Resource[T]) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}
