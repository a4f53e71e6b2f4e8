package suntimes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultRelayEndpoints lists the deployed relay first and the local
// development relay last.
var DefaultRelayEndpoints = []string{
	"https://agnihotra-eternal-agni.vercel.app/",
	"http://localhost:8080/api/agnihotra",
}

// RelayClient submits the times form through an ordered list of relays.
type RelayClient struct {
	httpClient *http.Client
	endpoints  []string
}

// NewRelayClient creates a client. An empty list means DefaultRelayEndpoints.
func NewRelayClient(httpClient *http.Client, endpoints []string) *RelayClient {
	if len(endpoints) == 0 {
		endpoints = DefaultRelayEndpoints
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RelayClient{httpClient: httpClient, endpoints: endpoints}
}

// Submit posts form to each endpoint in turn and returns the body of the
// first 2xx response. Endpoints after the first success are not contacted.
func (c *RelayClient) Submit(ctx context.Context, form url.Values) (string, error) {
	var errs []error
	for _, endpoint := range c.endpoints {
		body, err := c.post(ctx, endpoint, form)
		if err == nil {
			log.Debug().Str("endpoint", endpoint).Msg("relay responded")
			return body, nil
		}
		log.Warn().Err(err).Msg("relay endpoint failed")
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("%w: %w", ErrRelayExhausted, errors.Join(errs...))
}

func (c *RelayClient) post(ctx context.Context, endpoint string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &EndpointError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &EndpointError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &EndpointError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &EndpointError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: err}
	}
	return string(data), nil
}
