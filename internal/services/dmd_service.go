package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"complexcare/internal/metrics"
	"complexcare/internal/models"
	"complexcare/internal/repositories"
)

const (
	dmdMinQueryLength = 3
	dmdHotCacheTTL    = time.Hour
)

var dmdCodePattern = regexp.MustCompile(`^\d{6,20}$`)

// DMDStore is the durable cache table.
type DMDStore interface {
	Get(ctx context.Context, key string) (*repositories.DMDCacheEntry, error)
	Put(ctx context.Context, key string, payload []byte) error
}

// DMDHotCache is the short-lived shared cache in front of DMDStore.
type DMDHotCache interface {
	GetCached(ctx context.Context, key string) ([]byte, error)
	SetCached(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// DMDService looks up medicines in the NHS dm+d browser. Lookups go through
// the hot cache, then the cache table, then the live site. When the site
// fails a stale table row is served, and failing that a fixed mock list.
type DMDService struct {
	baseURL string
	client  *http.Client
	store   DMDStore
	hot     DMDHotCache
	ttl     time.Duration
	log     *zap.Logger
	now     func() time.Time
}

// NewDMDService wires the lookup. hot may be nil when Redis is not
// configured.
func NewDMDService(baseURL string, client *http.Client, store DMDStore, hot DMDHotCache, ttl time.Duration, log *zap.Logger) *DMDService {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &DMDService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		store:   store,
		hot:     hot,
		ttl:     ttl,
		log:     log,
		now:     time.Now,
	}
}

func (s *DMDService) Search(ctx context.Context, query string) (*models.DMDSearchResult, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < dmdMinQueryLength {
		return nil, invalidf("search query must be at least %d characters", dmdMinQueryLength)
	}
	key := "search:" + strings.ToLower(query)

	var products []models.DMDProduct
	source, err := s.cached(ctx, key, &products, func(ctx context.Context) (any, error) {
		return s.scrapeSearch(ctx, query)
	})
	if err != nil {
		s.log.Warn("dm+d search failed, serving mock results", zap.String("query", query), zap.Error(err))
		metrics.RecordDMDLookup("search", "mock")
		return &models.DMDSearchResult{Query: query, Products: mockDMDSearch(query), Source: "mock", Mock: true}, nil
	}
	metrics.RecordDMDLookup("search", source)
	return &models.DMDSearchResult{Query: query, Products: products, Source: source}, nil
}

func (s *DMDService) Get(ctx context.Context, code string) (*models.DMDDetail, error) {
	if !dmdCodePattern.MatchString(code) {
		return nil, invalidf("dm+d code %q must be numeric", code)
	}
	key := "detail:" + code

	var detail models.DMDDetail
	source, err := s.cached(ctx, key, &detail, func(ctx context.Context) (any, error) {
		return s.scrapeDetail(ctx, code)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err != nil {
		s.log.Warn("dm+d lookup failed, serving mock detail", zap.String("code", code), zap.Error(err))
		if d := mockDMDDetail(code); d != nil {
			metrics.RecordDMDLookup("detail", "mock")
			return d, nil
		}
		return nil, fmt.Errorf("%w: dm+d browser unreachable", ErrUnavailable)
	}
	metrics.RecordDMDLookup("detail", source)
	return &detail, nil
}

// cached resolves key into out. fetch runs only on a miss or stale entry;
// its result is written back to both caches. The returned source is
// "cache", "live" or "stale".
func (s *DMDService) cached(ctx context.Context, key string, out any, fetch func(context.Context) (any, error)) (string, error) {
	if s.hot != nil {
		if b, err := s.hot.GetCached(ctx, key); err != nil {
			s.log.Debug("dm+d hot cache read failed", zap.Error(err))
		} else if b != nil && json.Unmarshal(b, out) == nil {
			return "cache", nil
		}
	}

	entry, err := s.store.Get(ctx, key)
	if err != nil {
		s.log.Warn("dm+d cache table read failed", zap.String("key", key), zap.Error(err))
		entry = nil
	}
	if entry != nil && s.now().Sub(entry.FetchedAt) < s.ttl {
		if err := json.Unmarshal(entry.Payload, out); err == nil {
			s.warm(ctx, key, entry.Payload)
			return "cache", nil
		}
	}

	fresh, fetchErr := fetch(ctx)
	if fetchErr == nil {
		payload, err := json.Marshal(fresh)
		if err != nil {
			return "", err
		}
		if err := s.store.Put(ctx, key, payload); err != nil {
			s.log.Warn("dm+d cache table write failed", zap.String("key", key), zap.Error(err))
		}
		s.warm(ctx, key, payload)
		return "live", json.Unmarshal(payload, out)
	}
	if errors.Is(fetchErr, ErrNotFound) {
		return "", fetchErr
	}

	if entry != nil {
		if err := json.Unmarshal(entry.Payload, out); err == nil {
			s.log.Info("serving stale dm+d entry", zap.String("key", key), zap.Time("fetched_at", entry.FetchedAt))
			return "stale", nil
		}
	}
	return "", fetchErr
}

func (s *DMDService) warm(ctx context.Context, key string, payload []byte) {
	if s.hot == nil {
		return
	}
	if err := s.hot.SetCached(ctx, key, payload, dmdHotCacheTTL); err != nil {
		s.log.Debug("dm+d hot cache write failed", zap.Error(err))
	}
}

func (s *DMDService) fetch(ctx context.Context, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "text/html")
	return doRequest(s.client, req)
}

func (s *DMDService) scrapeSearch(ctx context.Context, query string) ([]models.DMDProduct, error) {
	body, status, err := s.fetch(ctx, "/search/results?searchText="+url.QueryEscape(query))
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("dm+d search returned %d", status)
	}
	return parseDMDSearch(bytes.NewReader(body))
}

// scrapeDetail fetches the VMP and AMP pages for code concurrently. A code
// names one or the other, so a 404 on either side is expected.
func (s *DMDService) scrapeDetail(ctx context.Context, code string) (*models.DMDDetail, error) {
	var vmp, amp *models.DMDDetail

	g, gctx := errgroup.WithContext(ctx)
	page := func(productType string, dst **models.DMDDetail) func() error {
		return func() error {
			body, status, err := s.fetch(gctx, "/"+strings.ToLower(productType)+"/"+code)
			if err != nil {
				return err
			}
			switch status {
			case http.StatusOK:
			case http.StatusNotFound:
				return nil
			default:
				return fmt.Errorf("dm+d %s page returned %d", productType, status)
			}
			d, err := parseDMDDetail(bytes.NewReader(body), code, productType)
			if err != nil {
				return err
			}
			if d.Name != "" {
				*dst = d
			}
			return nil
		}
	}
	g.Go(page(models.DMDTypeVMP, &vmp))
	g.Go(page(models.DMDTypeAMP, &amp))
	if err := g.Wait(); err != nil {
		return nil, err
	}

	switch {
	case vmp == nil && amp == nil:
		return nil, notFound("dm+d product " + code)
	case vmp == nil:
		return amp, nil
	case amp == nil:
		return vmp, nil
	}
	for k, v := range amp.Attributes {
		if _, ok := vmp.Attributes[k]; !ok {
			vmp.Attributes[k] = v
		}
	}
	vmp.Related = append(vmp.Related, amp.Related...)
	return vmp, nil
}

var dmdMockProducts = []models.DMDProduct{
	{Code: "42109611000001109", Name: "Paracetamol 500mg tablets", Type: models.DMDTypeVMP},
	{Code: "39695211000001102", Name: "Ibuprofen 200mg tablets", Type: models.DMDTypeVMP},
	{Code: "39732311000001104", Name: "Amoxicillin 500mg capsules", Type: models.DMDTypeVMP},
	{Code: "39109611000001103", Name: "Metformin 500mg tablets", Type: models.DMDTypeVMP},
	{Code: "40805211000001101", Name: "Omeprazole 20mg gastro-resistant capsules", Type: models.DMDTypeVMP},
	{Code: "39692911000001104", Name: "Amlodipine 5mg tablets", Type: models.DMDTypeVMP},
	{Code: "318135003", Name: "Salbutamol", Type: models.DMDTypeVTM},
	{Code: "776714003", Name: "Atorvastatin", Type: models.DMDTypeVTM},
}

func mockDMDSearch(query string) []models.DMDProduct {
	q := strings.ToLower(query)
	products := []models.DMDProduct{}
	for _, p := range dmdMockProducts {
		if strings.Contains(strings.ToLower(p.Name), q) {
			products = append(products, p)
		}
	}
	return products
}

func mockDMDDetail(code string) *models.DMDDetail {
	for _, p := range dmdMockProducts {
		if p.Code == code {
			return &models.DMDDetail{
				Code:       p.Code,
				Name:       p.Name,
				Type:       p.Type,
				Attributes: map[string]string{},
				Mock:       true,
			}
		}
	}
	return nil
}
