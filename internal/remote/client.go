// Package remote — клиент внешнего Data API: списки в конверте { data, total },
// отдельные сущности голым объектом.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Spok95/graindesk/internal/fault"
	"github.com/Spok95/graindesk/internal/query"
)

type Client struct {
	base  *url.URL
	token string
	http  *http.Client
}

func New(baseURL, token string, hc *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse remote url: %w", err)
	}
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{base: u, token: token, http: hc}, nil
}

// Do выполняет запрос: body кодируется в JSON, ответ декодируется в out (если не nil).
func (c *Client) Do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	op := method + " " + path
	u := *c.base
	u.Path = c.base.Path + path
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode: %w", op, err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fault.Network(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return statusError(op, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fault.Provider(op, "", fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func statusError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(raw, &body)
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	cause := fmt.Errorf("status %d", resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fault.NotFound(op)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		if msg != "" {
			cause = fmt.Errorf("%s", msg)
		}
		return fault.Validation(op, cause)
	default:
		return fault.Provider(op, msg, cause)
	}
}

// Resource — CRUD по одному пути API.
type Resource[T any] struct {
	c    *Client
	path string
}

func NewResource[T any](c *Client, path string) *Resource[T] {
	return &Resource[T]{c: c, path: path}
}

func (r *Resource[T]) List(ctx context.Context, q query.List) (query.Page[T], error) {
	var p query.Page[T]
	if err := r.c.Do(ctx, http.MethodGet, r.path, q.Values(), nil, &p); err != nil {
		return query.Page[T]{}, err
	}
	if p.Data == nil {
		p.Data = []T{}
	}
	return p, nil
}

func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	return r.one(ctx, http.MethodGet, r.path+"/"+url.PathEscape(id), nil)
}

func (r *Resource[T]) Create(ctx context.Context, v T) (T, error) {
	return r.one(ctx, http.MethodPost, r.path, v)
}

func (r *Resource[T]) Update(ctx context.Context, id string, v T) (T, error) {
	return r.one(ctx, http.MethodPut, r.path+"/"+url.PathEscape(id), v)
}

// one — запрос к одной сущности. API отвечает голым объектом;
// конверт { "data": {...} } тоже принимается.
func (r *Resource[T]) one(ctx context.Context, method, path string, body any) (T, error) {
	var zero T
	var raw json.RawMessage
	if err := r.c.Do(ctx, method, path, nil, body, &raw); err != nil {
		return zero, err
	}
	if len(raw) == 0 {
		return zero, fault.Provider(method+" "+path, "", errors.New("empty response"))
	}
	raw = unwrapData(raw)
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fault.Provider(method+" "+path, "", fmt.Errorf("decode response: %w", err))
	}
	return out, nil
}

// unwrapData снимает конверт, если в объекте ровно одно поле "data" и оно объект.
func unwrapData(raw json.RawMessage) json.RawMessage {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil || len(env) != 1 {
		return raw
	}
	data, ok := env["data"]
	if !ok || len(bytes.TrimSpace(data)) == 0 || bytes.TrimSpace(data)[0] != '{' {
		return raw
	}
	return data
}

func (r *Resource[T]) Delete(ctx context.Context, ids ...string) error {
	return r.c.Do(ctx, http.MethodDelete, r.path, nil, map[string][]string{"ids": ids}, nil)
}

// Count — GET {path}/count -> { "total": n }.
func (r *Resource[T]) Count(ctx context.Context) (int, error) {
	var out struct {
		Total int `json:"total"`
	}
	err := r.c.Do(ctx, http.MethodGet, r.path+"/count", nil, nil, &out)
	return out.Total, err
}

// Fetch — произвольный GET под путём ресурса (например, /stats).
func (r *Resource[T]) Fetch(ctx context.Context, sub string, params url.Values, out any) error {
	return r.c.Do(ctx, http.MethodGet, r.path+sub, params, nil, out)
}

// Post — произвольный POST под путём ресурса.
func (r *Resource[T]) Post(ctx context.Context, sub string, body, out any) error {
	return r.c.Do(ctx, http.MethodPost, r.path+sub, nil, body, out)
}
