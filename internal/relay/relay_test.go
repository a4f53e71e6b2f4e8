package relay

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttl  time.Duration
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = value
	m.ttl = ttl
}

func newRouter(f *Forwarder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Any("/api/agnihotra", f.Handle)
	return r
}

func post(r http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/agnihotra", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestForwardsFormAndReturnsBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Equal(t, "TestAgent/1.0", r.Header.Get("User-Agent"))
		body, _ := io.ReadAll(r.Body)
		form, err := url.ParseQuery(string(body))
		assert.NoError(t, err)
		assert.Equal(t, "17.12.2025", form.Get("startdate"))
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = io.WriteString(w, "<html>17.12.2025 07:04:27 16:07:52</html>")
	}))
	defer upstream.Close()

	r := newRouter(NewForwarder(Options{UpstreamURL: upstream.URL, UserAgent: "TestAgent/1.0"}))
	w := post(r, url.Values{"startdate": {"17.12.2025"}, "lat": {"52.52"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<html>17.12.2025 07:04:27 16:07:52</html>", w.Body.String())
	assert.Equal(t, "text/html; charset=iso-8859-1", w.Header().Get("Content-Type"))
	assert.Empty(t, w.Header().Get(CacheHeader))
}

func TestStrictModeReportsUpstreamStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	r := newRouter(NewForwarder(Options{UpstreamURL: upstream.URL}))
	w := post(r, url.Values{"lat": {"1"}})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch data from upstream","details":"HTTP error! status: 503"}`, w.Body.String())
}

func TestStrictModeReportsNetworkError(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	addr := upstream.URL
	upstream.Close()

	r := newRouter(NewForwarder(Options{UpstreamURL: addr, Mode: Strict}))
	w := post(r, url.Values{"lat": {"1"}})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to fetch data from upstream")
}

func TestTransparentModePassesStatusThrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "no such page")
	}))
	defer upstream.Close()

	r := newRouter(NewForwarder(Options{UpstreamURL: upstream.URL, Mode: Transparent}))
	w := post(r, url.Values{"lat": {"1"}})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "no such page", w.Body.String())
}

func TestMethods(t *testing.T) {
	r := newRouter(NewForwarder(Options{UpstreamURL: "http://127.0.0.1:0"}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/agnihotra", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/agnihotra", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, w.Body.String())
}

func TestCachesSuccessfulBodies(t *testing.T) {
	var hits int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = io.WriteString(w, "times")
	}))
	defer upstream.Close()

	cache := &memoryCache{}
	r := newRouter(NewForwarder(Options{UpstreamURL: upstream.URL, Cache: cache, CacheTTL: time.Hour}))
	form := url.Values{"lat": {"1"}, "lon": {"2"}}

	w := post(r, form)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get(CacheHeader))

	w = post(r, url.Values{"lon": {"2"}, "lat": {"1"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HIT", w.Header().Get(CacheHeader))
	assert.Equal(t, "times", w.Body.String())
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.Equal(t, time.Hour, cache.ttl)
}

func TestCacheHitKeepsUpstreamContentType(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=iso-8859-1")
		_, _ = io.WriteString(w, "21.03.2024\n06:04:27\n18:07:52")
	}))
	defer upstream.Close()

	r := newRouter(NewForwarder(Options{UpstreamURL: upstream.URL, Cache: &memoryCache{}, CacheTTL: time.Hour}))
	form := url.Values{"lat": {"1"}}

	miss := post(r, form)
	hit := post(r, form)

	require.Equal(t, "HIT", hit.Header().Get(CacheHeader))
	assert.Equal(t, "text/plain; charset=iso-8859-1", miss.Header().Get("Content-Type"))
	assert.Equal(t, miss.Header().Get("Content-Type"), hit.Header().Get("Content-Type"))
	assert.Equal(t, miss.Body.String(), hit.Body.String())
}

func TestMalformedCacheEntryIsAMiss(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "fresh")
	}))
	defer upstream.Close()

	form := url.Values{"lat": {"1"}}
	cache := &memoryCache{data: map[string][]byte{Key(form): []byte("no separator")}}
	r := newRouter(NewForwarder(Options{UpstreamURL: upstream.URL, Cache: cache}))

	w := post(r, form)
	assert.Equal(t, "MISS", w.Header().Get(CacheHeader))
	assert.Equal(t, "fresh", w.Body.String())
}

func TestDoesNotCacheFailures(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()

	cache := &memoryCache{}
	r := newRouter(NewForwarder(Options{UpstreamURL: upstream.URL, Mode: Transparent, Cache: cache}))
	w := post(r, url.Values{"lat": {"1"}})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Empty(t, cache.data)
}

func TestKeyIgnoresFieldOrder(t *testing.T) {
	a := url.Values{}
	a.Add("lat", "1")
	a.Add("lon", "2")
	b := url.Values{}
	b.Add("lon", "2")
	b.Add("lat", "1")
	assert.Equal(t, Key(a), Key(b))
	assert.NotEqual(t, Key(a), Key(url.Values{"lat": {"3"}}))
}
