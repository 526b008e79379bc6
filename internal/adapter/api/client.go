package api

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

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rl1809/storefront/internal/log"
	"github.com/rl1809/storefront/internal/otel"
)

var (
	ErrUnsuccessful = errors.New("api reported failure")
	ErrEmptyData    = errors.New("api returned no data")
)

const headerRequestID = "X-Request-ID"

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api error: %s %s: %s", e.Method, e.URL, e.Status)
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data"`
	Message string `json:"message,omitempty"`
}

// Client talks to the storefront REST API. It serves both the catalog and the
// order endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

func NewClient(baseURL string, timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func do[T any](c context.Context, client *Client, method, path string, query url.Values, body any) (*T, error) {
	c, span := otel.Tracer.Start(c, "api "+method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	endpoint := client.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	span.SetAttributes(attribute.String("http.url", endpoint))

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "api Client").
		Str(log.KeyRequestMethod, method).
		Str(log.KeyURL, endpoint).
		Logger()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			err = fmt.Errorf("encode request body: %w", err)
			otel.HandleError(err, span)
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(c, method, endpoint, reader)
	if err != nil {
		err = fmt.Errorf("build request: %w", err)
		otel.HandleError(err, span)
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requestID := log.RequestIDFromContext(c); requestID != "" {
		req.Header.Set(headerRequestID, requestID)
	}

	logger.Debug().Msg("sending request")
	resp, err := client.http.Do(req)
	if err != nil {
		err = fmt.Errorf("%s %s: %w", method, endpoint, err)
		otel.HandleError(err, span)
		return nil, err
	}
	defer resp.Body.Close()

	logger = logger.With().Int(log.KeyStatusCode, resp.StatusCode).Logger()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := &StatusError{Method: method, URL: endpoint, StatusCode: resp.StatusCode, Status: resp.Status}
		otel.HandleError(err, span)
		logger.Debug().Err(err).Msg("unexpected status")
		return nil, err
	}

	var env envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		err = fmt.Errorf("decode %s %s response: %w", method, endpoint, err)
		otel.HandleError(err, span)
		return nil, err
	}
	if !env.Success {
		err := fmt.Errorf("%w: %s", ErrUnsuccessful, env.Message)
		otel.HandleError(err, span)
		return nil, err
	}
	if env.Data == nil {
		otel.HandleError(ErrEmptyData, span)
		return nil, fmt.Errorf("%w: %s %s", ErrEmptyData, method, endpoint)
	}

	logger.Debug().Msg("received response")
	return env.Data, nil
}
