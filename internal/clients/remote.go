// internal/clients/remote.go
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds every call made to the remote API.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of a failed response body is kept for logs.
const maxErrorBody = 4 << 10

// remote holds what every client of the catalog API shares.
type remote struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

func newRemote(baseURL string, httpClient *http.Client, logger *slog.Logger) remote {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return remote{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		timeout:    DefaultTimeout,
		logger:     logger,
	}
}

// call performs one request. A nil out skips decoding of the success body.
func (r *remote) call(ctx context.Context, op, method, url, token string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to encode film API request", slog.String("op", op), slog.String("url", url), slog.String("error", err.Error()))
			return &TransportError{Op: op, URL: url, Err: fmt.Errorf("encode request body: %w", err)}
		}
		body = bytes.NewReader(raw)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, method, url, body)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to build film API request", slog.String("op", op), slog.String("url", url), slog.String("error", err.Error()))
		return &TransportError{Op: op, URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	r.logger.InfoContext(ctx, "Calling film API", slog.String("op", op), slog.String("method", method), slog.String("url", url), slog.Bool("has_token", token != ""))

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.ErrorContext(ctx, "Film API call failed", slog.String("op", op), slog.String("url", url), slog.String("error", err.Error()))
		return &TransportError{Op: op, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		r.logger.WarnContext(ctx, "Film API answered with an error status",
			slog.String("op", op),
			slog.String("url", url),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(snippet)))
		return &RemoteError{Op: op, URL: url, StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	if out == nil {
		if _, err := io.Copy(io.Discard, resp.Body); err != nil {
			r.logger.DebugContext(ctx, "Failed to drain film API response", slog.String("op", op), slog.String("url", url), slog.String("error", err.Error()))
		}
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			err = ErrEmptyBody
		}
		r.logger.ErrorContext(ctx, "Failed to decode film API response", slog.String("op", op), slog.String("url", url), slog.String("error", err.Error()))
		return &TransportError{Op: op, URL: url, Err: fmt.Errorf("decode response body: %w", err)}
	}
	return nil
}
