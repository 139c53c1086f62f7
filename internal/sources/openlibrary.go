package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/reconciler/internal/records"
)

// OpenLibrary looks up metadata through the OpenLibrary books API
// (jscmd=data form).
type OpenLibrary struct {
	BaseURL    string
	httpClient *http.Client
}

// NewOpenLibrary creates an OpenLibrary source. An empty baseURL selects
// the public endpoint.
func NewOpenLibrary(baseURL string) *OpenLibrary {
	if baseURL == "" {
		baseURL = "https://openlibrary.org"
	}
	return &OpenLibrary{
		BaseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (o *OpenLibrary) Name() string { return "ol" }

type olRecord struct {
	Title   string `json:"title"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
	Publishers []struct {
		Name string `json:"name"`
	} `json:"publishers"`
	PublishDate   string `json:"publish_date"`
	NumberOfPages int    `json:"number_of_pages"`
	Weight        string `json:"weight"`
}

// Lookup fetches the record keyed "ISBN:<isbn>" from the books endpoint.
func (o *OpenLibrary) Lookup(ctx context.Context, isbn string) (*records.RawRecord, error) {
	lookupURL := fmt.Sprintf("%s/api/books?bibkeys=ISBN:%s&format=json&jscmd=data", o.BaseURL, url.QueryEscape(isbn))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from OpenLibrary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("OpenLibrary API returned status %d: %s", resp.StatusCode, string(body))
	}

	payload := make(map[string]olRecord)
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode OpenLibrary response: %w", err)
	}

	rec, ok := payload["ISBN:"+isbn]
	if !ok || rec.Title == "" {
		return nil, nil
	}

	var authors []string
	for _, a := range rec.Authors {
		authors = append(authors, a.Name)
	}
	publisher := ""
	if len(rec.Publishers) > 0 {
		publisher = rec.Publishers[0].Name
	}

	return &records.RawRecord{
		ID:        uuid.NewString(),
		Source:    o.Name(),
		ISBN:      isbn,
		Title:     rec.Title,
		Authors:   authors,
		Publisher: publisher,
		Year:      parseYear(rec.PublishDate),
		PageCount: rec.NumberOfPages,
		Weight:    records.ParseQuantity(rec.Weight),
		CoverURL:  o.CoverURL(isbn),
	}, nil
}

// CoverURL returns the OpenLibrary covers URL for an ISBN. The image is
// not fetched here; callers that care can probe it themselves.
func (o *OpenLibrary) CoverURL(isbn string) string {
	return fmt.Sprintf("https://covers.openlibrary.org/b/isbn/%s-L.jpg", url.PathEscape(isbn))
}
