// Package relay forwards the times form to the upstream results page so that
// browsers, which cannot call the upstream directly, get its HTML back.
package relay

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Modes.
const (
	// Strict answers any upstream failure with a 500 JSON error.
	Strict = "strict"
	// Transparent passes the upstream status and body through unchanged.
	Transparent = "transparent"
)

// CacheHeader reports whether a response came from the cache.
const CacheHeader = "X-Relay-Cache"

const (
	acceptHTML     = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptLanguage = "en-US,en;q=0.5"
	defaultType    = "text/html; charset=utf-8"
)

// Cache stores successful upstream bodies.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, expiration time.Duration)
}

// Options configures a Forwarder.
type Options struct {
	HTTPClient  *http.Client
	UpstreamURL string
	UserAgent   string
	Mode        string
	Cache       Cache
	CacheTTL    time.Duration
}

// Forwarder is the relay handler.
type Forwarder struct {
	opts Options
}

func NewForwarder(opts Options) *Forwarder {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Mode == "" {
		opts.Mode = Strict
	}
	return &Forwarder{opts: opts}
}

// Handle answers preflights, rejects everything but POST and forwards the
// posted form.
func (f *Forwarder) Handle(ctx *gin.Context) {
	switch ctx.Request.Method {
	case http.MethodOptions:
		ctx.Status(http.StatusOK)
		return
	case http.MethodPost:
	default:
		ctx.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
		return
	}

	if err := ctx.Request.ParseForm(); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form body", "details": err.Error()})
		return
	}
	form := ctx.Request.PostForm
	key := Key(form)

	if contentType, body, ok := f.cached(ctx.Request.Context(), key); ok {
		ctx.Header(CacheHeader, "HIT")
		ctx.Data(http.StatusOK, contentType, body)
		return
	}

	log.Info().Str("upstream", f.opts.UpstreamURL).Msg("proxying times request")

	status, contentType, body, err := f.forward(ctx.Request.Context(), form)
	if err != nil {
		log.Error().Err(err).Msg("relay request failed")
		if f.opts.Mode == Transparent {
			ctx.JSON(http.StatusBadGateway, gin.H{"error": "Failed to reach upstream", "details": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch data from upstream", "details": err.Error()})
		return
	}

	ok := status >= 200 && status <= 299
	if !ok && f.opts.Mode == Strict {
		log.Error().Int("status", status).Msg("upstream rejected relay request")
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch data from upstream",
			"details": fmt.Sprintf("HTTP error! status: %d", status),
		})
		return
	}

	if contentType == "" {
		contentType = defaultType
	}
	if ok && f.opts.Cache != nil {
		f.opts.Cache.Set(ctx.Request.Context(), key, encodeEntry(contentType, body), f.opts.CacheTTL)
	}
	if f.opts.Cache != nil {
		ctx.Header(CacheHeader, "MISS")
	}
	ctx.Data(status, contentType, body)
}

func (f *Forwarder) cached(ctx context.Context, key string) (string, []byte, bool) {
	if f.opts.Cache == nil {
		return "", nil, false
	}
	entry, ok, err := f.opts.Cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Msg("relay cache unavailable")
		return "", nil, false
	}
	if !ok {
		return "", nil, false
	}
	contentType, body, ok := decodeEntry(entry)
	if !ok {
		log.Warn().Str("key", key).Msg("ignoring malformed relay cache entry")
	}
	return contentType, body, ok
}

// A cache entry is the content type, a newline, then the body verbatim.
func encodeEntry(contentType string, body []byte) []byte {
	entry := make([]byte, 0, len(contentType)+1+len(body))
	entry = append(entry, contentType...)
	entry = append(entry, '\n')
	return append(entry, body...)
}

func decodeEntry(entry []byte) (string, []byte, bool) {
	i := bytes.IndexByte(entry, '\n')
	if i <= 0 {
		return "", nil, false
	}
	return string(entry[:i]), entry[i+1:], true
}

func (f *Forwarder) forward(ctx context.Context, form url.Values) (int, string, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.opts.UpstreamURL, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, "", nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", acceptHTML)
	req.Header.Set("Accept-Language", acceptLanguage)
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := f.opts.HTTPClient.Do(req)
	if err != nil {
		return 0, "", nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", nil, err
	}
	return resp.StatusCode, resp.Header.Get("Content-Type"), body, nil
}

// Key identifies a form independently of field order.
func Key(form url.Values) string {
	sum := sha256.Sum256([]byte(form.Encode()))
	return hex.EncodeToString(sum[:])
}
