package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/reconciler/internal/records"
)

// ISBNDB looks up metadata through the ISBNDB REST API. An API key is
// required and sent as the Authorization header.
type ISBNDB struct {
	BaseURL    string
	APIKey     string
	httpClient *http.Client
}

// NewISBNDB creates an ISBNDB source. An empty baseURL selects the
// public endpoint.
func NewISBNDB(baseURL, apiKey string) *ISBNDB {
	if baseURL == "" {
		baseURL = "https://api2.isbndb.com"
	}
	return &ISBNDB{
		BaseURL: baseURL,
		APIKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (i *ISBNDB) Name() string { return "isbndb" }

type isbndbBook struct {
	Title         string   `json:"title"`
	TitleLong     string   `json:"title_long"`
	Authors       []string `json:"authors"`
	Publisher     string   `json:"publisher"`
	DatePublished string   `json:"date_published"`
	Pages         int      `json:"pages"`
	// Dimensions is a single display string, e.g.
	// "Height: 9.25 Inches, Length: 6.25 Inches, Weight: 1.2 Pounds, Width: 1 Inches"
	Dimensions string `json:"dimensions"`
}

// Lookup fetches /book/<isbn>.
func (i *ISBNDB) Lookup(ctx context.Context, isbn string) (*records.RawRecord, error) {
	if i.APIKey == "" {
		return nil, fmt.Errorf("API key required for ISBNDB")
	}

	lookupURL := fmt.Sprintf("%s/book/%s", i.BaseURL, url.PathEscape(isbn))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", i.APIKey)

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from ISBNDB: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ISBNDB API returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Book isbndbBook `json:"book"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode ISBNDB response: %w", err)
	}

	book := payload.Book
	title := book.TitleLong
	if title == "" {
		title = book.Title
	}
	if title == "" {
		return nil, nil
	}

	dims := parseISBNDBDimensions(book.Dimensions)
	return &records.RawRecord{
		ID:        uuid.NewString(),
		Source:    i.Name(),
		ISBN:      isbn,
		Title:     title,
		Authors:   book.Authors,
		Publisher: book.Publisher,
		Year:      parseYear(book.DatePublished),
		PageCount: book.Pages,
		Weight:    dims["weight"],
		Height:    dims["height"],
		Width:     dims["width"],
		Thickness: dims["length"],
	}, nil
}

// parseISBNDBDimensions splits the "Key: value unit, ..." display string
// into quantities keyed by lowercased dimension name.
func parseISBNDBDimensions(s string) map[string]*records.Quantity {
	out := make(map[string]*records.Quantity)
	for _, part := range strings.Split(s, ",") {
		key, value, found := strings.Cut(part, ":")
		if !found {
			continue
		}
		if q := records.ParseQuantity(value); q != nil {
			out[strings.ToLower(strings.TrimSpace(key))] = q
		}
	}
	return out
}
