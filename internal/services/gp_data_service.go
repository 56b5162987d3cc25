package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"complexcare/internal/models"
)

// GPDataService reads GP practice records from the external GP-data
// provider.
type GPDataService struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *zap.Logger
}

func NewGPDataService(baseURL, apiKey string, client *http.Client, log *zap.Logger) *GPDataService {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &GPDataService{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		log:     log,
	}
}

func (s *GPDataService) Configured() bool {
	return s.baseURL != ""
}

// firstString returns the first non-empty value among paths.
func firstString(doc gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := strings.TrimSpace(doc.Get(p).String()); v != "" {
			return v
		}
	}
	return ""
}

func (s *GPDataService) Practice(ctx context.Context, odsCode string) (*models.GPPractice, error) {
	code := strings.ToUpper(strings.TrimSpace(odsCode))
	if !models.ValidODSCode(code) {
		return nil, invalidf("%q is not a valid ODS code", odsCode)
	}
	if !s.Configured() {
		return nil, fmt.Errorf("%w: GP data provider is not configured", ErrUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/practices/"+url.PathEscape(code), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("X-API-Key", s.apiKey)
	}

	body, status, err := doRequest(s.client, req)
	if err != nil {
		s.log.Warn("GP data request failed", zap.String("ods_code", code), zap.Error(err))
		return nil, fmt.Errorf("%w: GP data provider: %w", ErrUnavailable, err)
	}
	switch {
	case status == http.StatusNotFound:
		return nil, notFound("GP practice " + code)
	case status != http.StatusOK:
		return nil, fmt.Errorf("%w: GP data provider returned %d", ErrUnavailable, status)
	case !gjson.ValidBytes(body):
		return nil, fmt.Errorf("%w: GP data provider returned malformed JSON", ErrUnavailable)
	}

	doc := gjson.ParseBytes(body)
	if doc.Get("practice").IsObject() {
		doc = doc.Get("practice")
	}

	var address string
	if doc.Get("address").IsObject() {
		address = firstString(doc, "address.full")
		if address == "" {
			var parts []string
			for _, key := range []string{"line1", "line2", "line3", "town", "county"} {
				if v := strings.TrimSpace(doc.Get("address." + key).String()); v != "" {
					parts = append(parts, v)
				}
			}
			address = strings.Join(parts, ", ")
		}
	} else {
		address = firstString(doc, "address")
	}

	practice := &models.GPPractice{
		ODSCode:  firstString(doc, "ods_code", "odsCode", "code"),
		Name:     firstString(doc, "name", "organisation_name", "organisationName"),
		Address:  address,
		Postcode: firstString(doc, "postcode", "address.postcode", "address.postCode"),
		Phone:    firstString(doc, "phone", "telephone", "contact.phone"),
		Status:   firstString(doc, "status"),
	}
	if practice.ODSCode == "" {
		practice.ODSCode = code
	}
	if practice.Name == "" {
		return nil, fmt.Errorf("%w: GP data provider returned no practice name", ErrUnavailable)
	}
	return practice, nil
}
