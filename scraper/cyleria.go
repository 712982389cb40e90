package scraper

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"cyleria_watcher/config"
	"cyleria_watcher/models"
)

// CyleriaClient scrapes the game's houses listing and character pages. It
// implements both ListingSource and LoginSource.
type CyleriaClient struct {
	watch   config.WatchConfig
	client  *http.Client
	limiter *rate.Limiter
	jitter  time.Duration
}

func NewCyleriaClient(watch config.WatchConfig, scraperCfg config.ScraperConfig, client *http.Client) *CyleriaClient {
	delay := scraperCfg.LookupDelay
	if delay <= 0 {
		delay = time.Second
	}
	return &CyleriaClient{
		watch:   watch,
		client:  client,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
		jitter:  scraperCfg.LookupJitter,
	}
}

func (c *CyleriaClient) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.watch.UserAgent)
	if c.watch.Contact != "" {
		req.Header.Set("From", c.watch.Contact)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: status %d", rawURL, resp.StatusCode)
	}
	return resp, nil
}

func (c *CyleriaClient) FetchListing(ctx context.Context) ([]models.Listing, error) {
	listURL := c.watch.BaseURL + "/?subtopic=houses&length=1000"
	log.Printf("[SCRAPE] Fetching houses: %s", listURL)

	resp, err := c.get(ctx, listURL)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}
	return c.parseListing(doc), nil
}

func (c *CyleriaClient) parseListing(doc *goquery.Document) []models.Listing {
	var listings []models.Listing

	doc.Find("table.table-striped tbody tr").Each(func(_ int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() < 4 {
			return
		}

		name := strings.TrimSpace(cols.Eq(0).Text())
		if c.isIgnoredName(name) {
			return
		}

		size := strings.TrimSpace(cols.Eq(1).Text())
		owner := strings.TrimSpace(cols.Eq(2).Text())

		city := "Nieznane"
		image := ""
		if span := cols.Eq(0).Find("span[data-bs-content]").First(); span.Length() > 0 {
			content, _ := span.Attr("data-bs-content")
			city, image = c.parsePopover(content, city)
		}

		// phantom row the site keeps in its primary city
		if c.watch.ExcludeUnnamedIn != "" &&
			strings.HasPrefix(strings.ToLower(name), "unnamed house") &&
			strings.EqualFold(city, c.watch.ExcludeUnnamedIn) {
			return
		}

		if image == "" {
			image = c.watch.PlaceholderImage
		}

		listings = append(listings, models.Listing{
			Name:  name,
			City:  city,
			Size:  size,
			Owner: owner,
			Image: image,
		})
	})

	return listings
}

func (c *CyleriaClient) isIgnoredName(name string) bool {
	for _, prefix := range c.watch.IgnoredPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// parsePopover digs the city and image out of the bootstrap popover HTML the
// listing embeds as an attribute.
func (c *CyleriaClient) parsePopover(content, defaultCity string) (city, image string) {
	city = defaultCity

	inner, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return city, ""
	}

	if img := inner.Find("img").First(); img.Length() > 0 {
		if src, ok := img.Attr("src"); ok {
			image = c.absoluteImageURL(strings.TrimSpace(src))
		}
	}
	if cdiv := inner.Find("div.mt-2.fw-bold").First(); cdiv.Length() > 0 {
		city = strings.TrimSpace(cdiv.Text())
	}
	return city, image
}

func (c *CyleriaClient) absoluteImageURL(src string) string {
	switch {
	case src == "":
		return ""
	case strings.HasPrefix(src, "//"):
		return "https:" + src
	case strings.HasPrefix(src, "/"):
		return c.watch.BaseURL + src
	case strings.HasPrefix(src, "http"):
		return src
	default:
		return c.watch.BaseURL + "/" + src
	}
}

// FetchLastLogin is paced by the rate limiter plus random jitter; the site
// gets one character page hit per house at most.
func (c *CyleriaClient) FetchLastLogin(ctx context.Context, owner string) (*time.Time, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" || strings.EqualFold(owner, "none") {
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if c.jitter > 0 {
		select {
		case <-time.After(time.Duration(rand.Int63n(int64(c.jitter)))):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	charURL := c.watch.BaseURL + "/?" + url.Values{
		"subtopic": {"characters"},
		"name":     {owner},
	}.Encode()

	resp, err := c.get(ctx, charURL)
	if err != nil {
		return nil, fmt.Errorf("fetch character %s: %w", owner, err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse character %s: %w", owner, err)
	}
	return parseLastLogin(doc), nil
}

func parseLastLogin(doc *goquery.Document) *time.Time {
	var found *time.Time

	doc.Find("li.list-group-item.d-flex.justify-content-between").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		if !strings.Contains(li.Text(), "Logowanie:") {
			return true
		}
		strong := li.Find("strong").First()
		if strong.Length() == 0 {
			return true
		}
		t, err := time.ParseInLocation(models.LoginLayout, strings.TrimSpace(strong.Text()), time.Local)
		if err != nil {
			return true
		}
		found = &t
		return false
	})

	return found
}
