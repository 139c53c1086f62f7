package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/lehigh-university-libraries/reconciler/internal/records"
)

func TestGoogleBooksLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/volumes":
			if r.URL.Query().Get("q") != "isbn:9780140268867" {
				t.Errorf("search query = %q", r.URL.Query().Get("q"))
			}
			fmt.Fprint(w, `{"items":[{"id":"vol123"}]}`)
		case "/volumes/vol123":
			fmt.Fprint(w, `{"volumeInfo":{
				"title":"The Odyssey",
				"authors":["Homer","Emily Wilson"],
				"publisher":"Penguin Books",
				"publishedDate":"1997-01-01",
				"printedPageCount":541,
				"dimensions":{"height":"19.8 cm","width":"12.9 cm","thickness":"2.8 cm"}
			}}`)
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	src := NewGoogleBooks(server.URL, "")
	rec, err := src.Lookup(context.Background(), "9780140268867")
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil {
		t.Fatal("Lookup() = nil record")
	}
	if rec.Source != "gobo" {
		t.Errorf("Source = %q, want gobo", rec.Source)
	}
	if rec.Title != "The Odyssey" {
		t.Errorf("Title = %q", rec.Title)
	}
	if !reflect.DeepEqual(rec.Authors, []string{"Homer", "Emily Wilson"}) {
		t.Errorf("Authors = %v", rec.Authors)
	}
	if rec.Year != 1997 || rec.PageCount != 541 {
		t.Errorf("Year = %d, PageCount = %d", rec.Year, rec.PageCount)
	}
	want := &records.Quantity{Value: 19.8, Unit: "cm"}
	if !reflect.DeepEqual(rec.Height, want) {
		t.Errorf("Height = %+v, want %+v", rec.Height, want)
	}
}

func TestGoogleBooksNoResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer server.Close()

	rec, err := NewGoogleBooks(server.URL, "").Lookup(context.Background(), "9780140268867")
	if err != nil {
		t.Fatal(err)
	}
	if rec != nil {
		t.Errorf("Lookup() = %+v, want nil for no results", rec)
	}
}

func TestGoogleBooksServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	if _, err := NewGoogleBooks(server.URL, "").Lookup(context.Background(), "9780140268867"); err == nil {
		t.Fatal("Lookup() ignored a server error")
	}
}

func TestOpenLibraryLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/books" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("bibkeys") != "ISBN:9780140268867" {
			t.Errorf("bibkeys = %q", r.URL.Query().Get("bibkeys"))
		}
		fmt.Fprint(w, `{"ISBN:9780140268867":{
			"title":"The Odyssey",
			"authors":[{"name":"Homer"}],
			"publishers":[{"name":"Penguin Books"}],
			"publish_date":"Sep 01, 1997",
			"number_of_pages":541,
			"weight":"12 ounces"
		}}`)
	}))
	defer server.Close()

	rec, err := NewOpenLibrary(server.URL).Lookup(context.Background(), "9780140268867")
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil {
		t.Fatal("Lookup() = nil record")
	}
	if rec.Source != "ol" {
		t.Errorf("Source = %q, want ol", rec.Source)
	}
	if rec.Publisher != "Penguin Books" {
		t.Errorf("Publisher = %q", rec.Publisher)
	}
	if rec.Year != 1997 {
		t.Errorf("Year = %d, want 1997 parsed off the display date", rec.Year)
	}
	want := &records.Quantity{Value: 12, Unit: "ounces"}
	if !reflect.DeepEqual(rec.Weight, want) {
		t.Errorf("Weight = %+v, want %+v", rec.Weight, want)
	}
	wantCover := "https://covers.openlibrary.org/b/isbn/9780140268867-L.jpg"
	if rec.CoverURL != wantCover {
		t.Errorf("CoverURL = %q, want %q", rec.CoverURL, wantCover)
	}
}

func TestOpenLibraryNoRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	rec, err := NewOpenLibrary(server.URL).Lookup(context.Background(), "9780140268867")
	if err != nil {
		t.Fatal(err)
	}
	if rec != nil {
		t.Errorf("Lookup() = %+v, want nil for an empty payload", rec)
	}
}

func TestISBNDBLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "secret" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if r.URL.Path != "/book/9780140268867" {
			t.Errorf("path = %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"book":{
			"title":"The Odyssey",
			"title_long":"The Odyssey (Penguin Classics)",
			"authors":["Homer"],
			"publisher":"Penguin Books",
			"date_published":"1997",
			"pages":541,
			"dimensions":"Height: 7.8 Inches, Length: 1.1 Inches, Weight: 0.75 Pounds, Width: 5.1 Inches"
		}}`)
	}))
	defer server.Close()

	rec, err := NewISBNDB(server.URL, "secret").Lookup(context.Background(), "9780140268867")
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil {
		t.Fatal("Lookup() = nil record")
	}
	if rec.Title != "The Odyssey (Penguin Classics)" {
		t.Errorf("Title = %q, want the long title", rec.Title)
	}
	if rec.Weight == nil || rec.Weight.Value != 0.75 || rec.Weight.Unit != "Pounds" {
		t.Errorf("Weight = %+v", rec.Weight)
	}
	if rec.Height == nil || rec.Height.Value != 7.8 {
		t.Errorf("Height = %+v", rec.Height)
	}
	// ISBNDB calls the spine measurement "Length".
	if rec.Thickness == nil || rec.Thickness.Value != 1.1 {
		t.Errorf("Thickness = %+v", rec.Thickness)
	}
}

func TestISBNDBNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	rec, err := NewISBNDB(server.URL, "secret").Lookup(context.Background(), "9780140268867")
	if err != nil {
		t.Fatal(err)
	}
	if rec != nil {
		t.Errorf("Lookup() = %+v, want nil for 404", rec)
	}
}

func TestISBNDBRequiresKey(t *testing.T) {
	if _, err := NewISBNDB("http://unused", "").Lookup(context.Background(), "9780140268867"); err == nil {
		t.Fatal("Lookup() without an API key returned nil error")
	}
}

func TestFetcherBestEffort(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ISBN:9780140268867":{"title":"The Odyssey"}}`)
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer bad.Close()

	fetcher := NewFetcher(
		NewOpenLibrary(good.URL),
		NewGoogleBooks(bad.URL, ""),
	)
	got := fetcher.Fetch(context.Background(), "9780140268867")
	if len(got) != 1 {
		t.Fatalf("Fetch() = %d records, want 1: the failing source is skipped", len(got))
	}
	if got[0].Source != "ol" {
		t.Errorf("Source = %q, want ol", got[0].Source)
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"1996-09-01", 1996},
		{"1996", 1996},
		{"Sep 01, 1996", 1996},
		{"", 0},
		{"n.d.", 0},
	}
	for _, tt := range tests {
		if got := parseYear(tt.input); got != tt.want {
			t.Errorf("parseYear(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
