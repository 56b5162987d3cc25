package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"complexcare/internal/models"
	"complexcare/internal/repositories"
)

const searchPage = `<html><body>
<h2>Results</h2>
<ul>
  <li><a href="/vtm/318135003">Salbutamol</a></li>
  <li><a href="/vmp/39112411000001108?tab=info">Salbutamol 100micrograms/dose inhaler CFC free</a></li>
  <li><a href="/amp/4034911000001106">Ventolin Evohaler 100micrograms/dose (GlaxoSmithKline UK Ltd)</a></li>
  <li><a href="/vmp/39112411000001108">duplicate</a></li>
  <li><a href="/about">About</a></li>
</ul>
</body></html>`

const vmpPage = `<html><body>
<h1>Salbutamol 100micrograms/dose inhaler CFC free</h1>
<table>
  <tr><th>Controlled drug category</th><td>No Controlled Drug Status</td></tr>
  <tr><td>Prescribing status</td><td>Valid as a prescribable product</td></tr>
</table>
<a href="/vtm/318135003">Salbutamol</a>
</body></html>`

const ampPage = `<html><body>
<h1>Ventolin Evohaler 100micrograms/dose (GlaxoSmithKline UK Ltd)</h1>
<dl>
  <dt>Supplier</dt><dd>GlaxoSmithKline UK Ltd</dd>
  <dt>Prescribing status</dt><dd>ignored, the VMP value wins</dd>
</dl>
<a href="/amp/4034911000001106">Ventolin Evohaler 100micrograms/dose (GlaxoSmithKline UK Ltd)</a>
</body></html>`

type memDMDStore struct {
	mu      sync.Mutex
	entries map[string]*repositories.DMDCacheEntry
}

func newMemDMDStore() *memDMDStore {
	return &memDMDStore{entries: map[string]*repositories.DMDCacheEntry{}}
}

func (m *memDMDStore) Get(_ context.Context, key string) (*repositories.DMDCacheEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[key], nil
}

func (m *memDMDStore) Put(_ context.Context, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = &repositories.DMDCacheEntry{Key: key, Payload: payload, FetchedAt: time.Now()}
	return nil
}

type memHotCache struct {
	mu     sync.Mutex
	values map[string][]byte
}

func (m *memHotCache) GetCached(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *memHotCache) SetCached(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = map[string][]byte{}
	}
	m.values[key] = value
	return nil
}

type dmdBrowser struct {
	srv  *httptest.Server
	hits atomic.Int32
	down atomic.Bool
}

func newDMDBrowser(t *testing.T) *dmdBrowser {
	b := &dmdBrowser{}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.hits.Add(1)
		if b.down.Load() {
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
			return
		}
		switch {
		case r.URL.Path == "/search/results":
			if r.URL.Query().Get("searchText") == "" {
				http.Error(w, "missing", http.StatusBadRequest)
				return
			}
			fmt.Fprint(w, searchPage)
		case r.URL.Path == "/vmp/39112411000001108":
			fmt.Fprint(w, vmpPage)
		case r.URL.Path == "/amp/39112411000001108":
			fmt.Fprint(w, strings.Replace(ampPage, "4034911000001106", "39112411000001108", 1))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func TestDMDSearchCachesResults(t *testing.T) {
	browser := newDMDBrowser(t)
	store := newMemDMDStore()
	hot := &memHotCache{}
	svc := NewDMDService(browser.srv.URL, browser.srv.Client(), store, hot, 7*24*time.Hour, zap.NewNop())
	ctx := context.Background()

	res, err := svc.Search(ctx, "Salbutamol")
	require.NoError(t, err)
	assert.Equal(t, "live", res.Source)
	require.Len(t, res.Products, 3)
	assert.Equal(t, models.DMDProduct{Code: "318135003", Name: "Salbutamol", Type: models.DMDTypeVTM}, res.Products[0])
	assert.Equal(t, models.DMDTypeVMP, res.Products[1].Type)
	assert.Equal(t, "Ventolin Evohaler 100micrograms/dose", res.Products[2].Name)
	assert.Equal(t, "GlaxoSmithKline UK Ltd", res.Products[2].Supplier)

	assert.Contains(t, store.entries, "search:salbutamol")
	assert.Contains(t, hot.values, "search:salbutamol")

	again, err := svc.Search(ctx, "salbutamol")
	require.NoError(t, err)
	assert.Equal(t, "cache", again.Source)
	assert.Equal(t, int32(1), browser.hits.Load())

	hot.values = nil
	fromTable, err := svc.Search(ctx, "SALBUTAMOL")
	require.NoError(t, err)
	assert.Equal(t, "cache", fromTable.Source)
	assert.Equal(t, int32(1), browser.hits.Load())
	assert.Contains(t, hot.values, "search:salbutamol", "table hits warm the hot cache")
}

func TestDMDSearchServesStaleThenMock(t *testing.T) {
	browser := newDMDBrowser(t)
	store := newMemDMDStore()
	svc := NewDMDService(browser.srv.URL, browser.srv.Client(), store, nil, time.Hour, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Search(ctx, "salbutamol")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	browser.down.Store(true)

	stale, err := svc.Search(ctx, "salbutamol")
	require.NoError(t, err)
	assert.Equal(t, "stale", stale.Source)
	assert.Len(t, stale.Products, 3)

	mock, err := svc.Search(ctx, "paracetamol")
	require.NoError(t, err)
	assert.True(t, mock.Mock)
	assert.Equal(t, "mock", mock.Source)
	require.Len(t, mock.Products, 1)
	assert.Equal(t, "Paracetamol 500mg tablets", mock.Products[0].Name)
}

func TestDMDSearchRejectsShortQuery(t *testing.T) {
	svc := NewDMDService("http://unused", nil, newMemDMDStore(), nil, time.Hour, zap.NewNop())
	_, err := svc.Search(context.Background(), " ab ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDMDGetMergesVMPAndAMP(t *testing.T) {
	browser := newDMDBrowser(t)
	svc := NewDMDService(browser.srv.URL, browser.srv.Client(), newMemDMDStore(), nil, time.Hour, zap.NewNop())

	d, err := svc.Get(context.Background(), "39112411000001108")
	require.NoError(t, err)
	assert.Equal(t, models.DMDTypeVMP, d.Type)
	assert.Equal(t, "Salbutamol 100micrograms/dose inhaler CFC free", d.Name)
	assert.Equal(t, "No Controlled Drug Status", d.Attributes["Controlled drug category"])
	assert.Equal(t, "Valid as a prescribable product", d.Attributes["Prescribing status"])
	assert.Equal(t, "GlaxoSmithKline UK Ltd", d.Attributes["Supplier"])
	require.NotEmpty(t, d.Related)
	assert.Equal(t, "318135003", d.Related[0].Code)
	assert.Equal(t, int32(2), browser.hits.Load(), "one request per product page")
}

func TestDMDGetFallbacks(t *testing.T) {
	browser := newDMDBrowser(t)
	svc := NewDMDService(browser.srv.URL, browser.srv.Client(), newMemDMDStore(), nil, time.Hour, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Get(ctx, "not-a-code")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Get(ctx, "123456789")
	assert.ErrorIs(t, err, ErrNotFound)

	browser.down.Store(true)
	d, err := svc.Get(ctx, "318135003")
	require.NoError(t, err)
	assert.True(t, d.Mock)
	assert.Equal(t, "Salbutamol", d.Name)

	_, err = svc.Get(ctx, "999999999")
	assert.ErrorIs(t, err, ErrUnavailable)
}
