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

// GoogleBooks looks up metadata through the Google Books volumes API:
// a search by ISBN yields a volume ID, and the volume endpoint yields
// the full record.
type GoogleBooks struct {
	BaseURL    string
	APIKey     string
	httpClient *http.Client
}

// NewGoogleBooks creates a Google Books source. An empty baseURL selects
// the public API endpoint.
func NewGoogleBooks(baseURL, apiKey string) *GoogleBooks {
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/books/v1"
	}
	return &GoogleBooks{
		BaseURL: baseURL,
		APIKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (g *GoogleBooks) Name() string { return "gobo" }

type gbVolumeInfo struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Publisher     string   `json:"publisher"`
	PublishedDate string   `json:"publishedDate"`
	PageCount     int      `json:"printedPageCount"`
	Dimensions    struct {
		Height    string `json:"height"`
		Width     string `json:"width"`
		Thickness string `json:"thickness"`
	} `json:"dimensions"`
}

// Lookup resolves the ISBN to a volume ID, then fetches the volume.
func (g *GoogleBooks) Lookup(ctx context.Context, isbn string) (*records.RawRecord, error) {
	volID, err := g.volumeID(ctx, isbn)
	if err != nil {
		return nil, err
	}
	if volID == "" {
		return nil, nil
	}

	volURL := fmt.Sprintf("%s/volumes/%s", g.BaseURL, url.PathEscape(volID))
	if g.APIKey != "" {
		volURL += "?key=" + url.QueryEscape(g.APIKey)
	}
	var payload struct {
		VolumeInfo gbVolumeInfo `json:"volumeInfo"`
	}
	if err := g.getJSON(ctx, volURL, &payload); err != nil {
		return nil, err
	}

	info := payload.VolumeInfo
	if info.Title == "" {
		return nil, nil
	}
	return &records.RawRecord{
		ID:        uuid.NewString(),
		Source:    g.Name(),
		ISBN:      isbn,
		Title:     info.Title,
		Authors:   info.Authors,
		Publisher: info.Publisher,
		Year:      parseYear(info.PublishedDate),
		PageCount: info.PageCount,
		Height:    records.ParseQuantity(info.Dimensions.Height),
		Width:     records.ParseQuantity(info.Dimensions.Width),
		Thickness: records.ParseQuantity(info.Dimensions.Thickness),
	}, nil
}

func (g *GoogleBooks) volumeID(ctx context.Context, isbn string) (string, error) {
	searchURL := fmt.Sprintf("%s/volumes?q=isbn:%s", g.BaseURL, url.QueryEscape(isbn))
	var payload struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	if err := g.getJSON(ctx, searchURL, &payload); err != nil {
		return "", err
	}
	if len(payload.Items) == 0 {
		return "", nil
	}
	return payload.Items[0].ID, nil
}

func (g *GoogleBooks) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch from Google Books: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Google Books API returned status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode Google Books response: %w", err)
	}
	return nil
}
