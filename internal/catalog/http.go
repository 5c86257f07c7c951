package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"vietfood/internal/domain"
)

// HTTPClient resolves products against a remote storefront API exposing
// POST /api/products.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

type HTTPOption func(*HTTPClient)

func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClient) {
		if c != nil {
			h.client = c
		}
	}
}

func WithHTTPLogger(logger *zap.Logger) HTTPOption {
	return func(h *HTTPClient) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func NewHTTPClient(baseURL string, opts ...HTTPOption) *HTTPClient {
	h := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type productRequest struct {
	ID   string `json:"id,omitempty"`
	Slug string `json:"slug,omitempty"`
}

type productEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    struct {
		Product *domain.Product `json:"product"`
	} `json:"data"`
}

type listEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    struct {
		Products []domain.Product `json:"products"`
	} `json:"data"`
}

func (h *HTTPClient) FetchProduct(ctx context.Context, id string) (*domain.Product, error) {
	return h.fetch(ctx, productRequest{ID: id})
}

func (h *HTTPClient) FetchBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return h.fetch(ctx, productRequest{Slug: slug})
}

func (h *HTTPClient) fetch(ctx context.Context, in productRequest) (*domain.Product, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/api/products", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var env productEnvelope
	if err := h.do(req, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("catalog api: %s", env.Error)
	}
	if env.Data.Product == nil {
		return nil, domain.ErrNotFound
	}
	return env.Data.Product, nil
}

func (h *HTTPClient) ListActive(ctx context.Context) ([]domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/api/products", nil)
	if err != nil {
		return nil, err
	}
	var env listEnvelope
	if err := h.do(req, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("catalog api: %s", env.Error)
	}
	if env.Data.Products == nil {
		return []domain.Product{}, nil
	}
	return env.Data.Products, nil
}

func (h *HTTPClient) do(req *http.Request, out any) error {
	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Warn("catalog api: request failed", zap.String("url", req.URL.String()), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		h.logger.Warn("catalog api: unexpected status", zap.Int("status", resp.StatusCode), zap.ByteString("body", msg))
		return fmt.Errorf("catalog api: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("catalog api: decode: %w", err)
	}
	return nil
}
