// Package backend is the HTTP client of the PR Business REST API.
//
// Authenticated calls take their bearer token from a ports.TokenSource at the
// moment each request is sent. A 401 triggers one refresh; the original
// request is retried exactly once after the new token has been stored. When
// the refresh fails the session is expired and nothing is retried.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"

	"github.com/prbusiness/dashboard/internal/api/metrics"
	"github.com/prbusiness/dashboard/internal/core/domain"
	"github.com/prbusiness/dashboard/internal/core/ports"
)

const (
	defaultTimeout = 10 * time.Second
	refreshTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

var errServerFailure = errors.New("backend answered with a server error")

// Config configures the client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default client; Timeout is ignored then.
	HTTPClient *http.Client
}

// Client implements ports.AuthGateway.
type Client struct {
	baseURL   string
	http      *http.Client
	breaker   *gobreaker.CircuitBreaker
	refreshes singleflight.Group
	log       zerolog.Logger
}

var _ ports.AuthGateway = (*Client)(nil)

// New returns a client for cfg.BaseURL.
func New(cfg Config, log zerolog.Logger) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
		log:     log,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "backend",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		// A caller that gave up says nothing about the backend's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
	return c
}

// response is a fully read backend answer.
type response struct {
	status int
	body   []byte
}

// send performs one HTTP exchange. It never retries.
func (c *Client) send(ctx context.Context, op, method, path, token string, payload []byte, out any) error {
	start := time.Now()
	res, err := c.breaker.Execute(func() (interface{}, error) {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, err
		}
		r := &response{status: resp.StatusCode, body: raw}
		if resp.StatusCode >= http.StatusInternalServerError {
			return r, errServerFailure
		}
		return r, nil
	})

	r, _ := res.(*response)
	status := "error"
	if r != nil {
		status = strconv.Itoa(r.status)
	}
	metrics.BackendRequestDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrBackendUnavailable, err)
	case err != nil && r == nil && ctx.Err() != nil:
		return fmt.Errorf("%s: %w", op, ctx.Err())
	case err != nil && r == nil:
		c.log.Warn().Err(err).Str("operation", op).Msg("backend request failed")
		return fmt.Errorf("%s: %w: %v", op, domain.ErrBackendUnavailable, err)
	}

	if r.status < 200 || r.status > 299 {
		return fmt.Errorf("%s: %w", op, decodeError(r))
	}
	if out == nil || len(bytes.TrimSpace(r.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// sendAuthed sends with the current token and runs the refresh flow on 401.
// A caller that gives up while the refresh is in flight gets its context
// error back; the session is left as it was.
func (c *Client) sendAuthed(ctx context.Context, op string, tokens ports.TokenSource, method, path string, payload []byte, out any) error {
	err := c.send(ctx, op, method, path, tokens.AccessToken(), payload, out)
	if !isUnauthorized(err) {
		return err
	}

	token, rerr := c.refresh(ctx, tokens.RefreshToken())
	if rerr != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", op, ctx.Err())
		}
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		c.expire(ctx, tokens)
		return fmt.Errorf("%s: %w: %v", op, domain.ErrSessionExpired, rerr)
	}
	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()

	// The backend may have retired the old token already, so the new one is
	// kept even when the caller has left.
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
	defer cancel()
	if err := tokens.RotateAccessToken(storeCtx, token); err != nil {
		return fmt.Errorf("%s: store refreshed token: %w", op, err)
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%s: %w", op, ctx.Err())
	}

	err = c.send(ctx, op, method, path, tokens.AccessToken(), payload, out)
	if isUnauthorized(err) {
		c.expire(ctx, tokens)
		return fmt.Errorf("%s: %w: rejected after refresh", op, domain.ErrSessionExpired)
	}
	return err
}

// refresh obtains a new access token for rt. Concurrent refreshes of the same
// token share one backend call, which runs detached from every caller's
// cancellation; each caller stops waiting when its own ctx is done.
func (c *Client) refresh(ctx context.Context, rt string) (string, error) {
	if rt == "" {
		return "", errors.New("no refresh token")
	}
	ch := c.refreshes.DoChan(rt, func() (interface{}, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		res, err := c.Refresh(rctx, rt)
		if err != nil {
			return nil, err
		}
		return res.AccessToken, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return "", r.Err
		}
		return r.Val.(string), nil
	}
}

func (c *Client) expire(ctx context.Context, tokens ports.TokenSource) {
	if err := tokens.Expire(ctx); err != nil {
		c.log.Error().Err(err).Msg("failed to clear expired session")
	}
}

func isUnauthorized(err error) bool {
	var apiErr *domain.APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func decodeError(r *response) *domain.APIError {
	var eb errorBody
	_ = json.Unmarshal(r.body, &eb)
	msg := eb.Error
	if msg == "" {
		msg = eb.Message
	}
	return &domain.APIError{Status: r.status, Message: msg}
}

func marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return b, nil
}
