package httputil

import (
	"net/http"
	"time"
)

type Clients struct {
	Scraping *http.Client // for the game site
	Webhook  *http.Client // for Discord
}

func NewClients(scrapeTimeout time.Duration) *Clients {
	if scrapeTimeout <= 0 {
		scrapeTimeout = 15 * time.Second
	}
	return &Clients{
		Scraping: &http.Client{Timeout: scrapeTimeout},
		Webhook:  &http.Client{Timeout: 10 * time.Second},
	}
}
