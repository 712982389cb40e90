package scraper

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"cyleria_watcher/config"
)

func loadFixture(t *testing.T, name string) *goquery.Document {
	t.Helper()
	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to parse fixture %s: %v", name, err)
	}
	return doc
}

func testClient() *CyleriaClient {
	watch := config.WatchConfig{
		BaseURL:          "https://cyleria.pl",
		PlaceholderImage: "/static/no-image.png",
		IgnoredPrefixes: []string{
			"Ankardia Guildhall I",
			"Ankardia Guildhall II",
			"Ankardia Guildhall III",
		},
		ExcludeUnnamedIn: "Cyleria City",
	}
	return NewCyleriaClient(watch, config.ScraperConfig{}, nil)
}

func TestParseListing(t *testing.T) {
	client := testClient()
	doc := loadFixture(t, "houses.html")

	listings := client.parseListing(doc)

	// guildhall, phantom unnamed row and the short row are filtered out
	if len(listings) != 3 {
		t.Fatalf("expected 3 listings, got %d", len(listings))
	}

	red := listings[0]
	if red.Name != "Red Manor" {
		t.Fatalf("expected Red Manor first, got %s", red.Name)
	}
	if red.City != "Ankardia" {
		t.Fatalf("expected city Ankardia, got %s", red.City)
	}
	if red.Size != "Large" || red.Owner != "Gandalf" {
		t.Fatalf("unexpected size/owner: %s/%s", red.Size, red.Owner)
	}
	if red.Image != "https://cyleria.pl/houses/red_manor.png" {
		t.Fatalf("unexpected image %s", red.Image)
	}

	shack := listings[1]
	if shack.Name != "Sea Shack" {
		t.Fatalf("expected Sea Shack, got %s", shack.Name)
	}
	if shack.Image != "https://cdn.cyleria.pl/houses/sea_shack.png" {
		t.Fatalf("protocol-relative src not normalized: %s", shack.Image)
	}

	cottage := listings[2]
	if cottage.Name != "Blue Cottage" {
		t.Fatalf("expected Blue Cottage, got %s", cottage.Name)
	}
	if cottage.City != "Nieznane" {
		t.Fatalf("row without popover should default city, got %s", cottage.City)
	}
	if cottage.Image != "/static/no-image.png" {
		t.Fatalf("row without image should use placeholder, got %s", cottage.Image)
	}
}

func TestParseLastLogin(t *testing.T) {
	doc := loadFixture(t, "character.html")

	got := parseLastLogin(doc)
	if got == nil {
		t.Fatal("expected a login timestamp")
	}

	want := time.Date(2026, 5, 12, 14, 30, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, *got)
	}
}

func TestParseLastLogin_Missing(t *testing.T) {
	doc := loadFixture(t, "houses.html")

	if got := parseLastLogin(doc); got != nil {
		t.Fatalf("expected nil for a page without a login line, got %v", *got)
	}
}

func TestAbsoluteImageURL(t *testing.T) {
	client := testClient()

	cases := map[string]string{
		"//cdn.cyleria.pl/a.png":      "https://cdn.cyleria.pl/a.png",
		"/houses/a.png":               "https://cyleria.pl/houses/a.png",
		"https://elsewhere.com/a.png": "https://elsewhere.com/a.png",
		"houses/a.png":                "https://cyleria.pl/houses/a.png",
		"":                            "",
	}
	for src, want := range cases {
		if got := client.absoluteImageURL(src); got != want {
			t.Fatalf("absoluteImageURL(%q) = %q, want %q", src, got, want)
		}
	}
}
