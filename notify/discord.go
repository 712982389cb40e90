package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Discord posts embeds to a webhook URL.
type Discord struct {
	Webhook string
	Client  *http.Client
}

// NewDiscord returns nil when no webhook is configured; callers treat a nil
// notifier as "notifications disabled".
func NewDiscord(webhook string, client *http.Client) *Discord {
	if webhook == "" {
		return nil
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Discord{Webhook: webhook, Client: client}
}

type discordEmbed struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Color       int           `json:"color"`
	Timestamp   string        `json:"timestamp"`
	Fields      []Field       `json:"fields"`
	Image       *discordImage `json:"image,omitempty"`
}

type discordImage struct {
	URL string `json:"url"`
}

type discordPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds"`
}

func (d *Discord) Send(ctx context.Context, msg Message) error {
	if d == nil || d.Webhook == "" {
		return errors.New("discord disabled")
	}

	desc := msg.Description
	if msg.Mention {
		// content pings; the suffix keeps the ping visible inside the embed
		desc += " @everyone"
	}

	embed := discordEmbed{
		Title:       msg.Title,
		Description: desc,
		Color:       msg.Color,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Fields:      msg.Fields,
	}
	if msg.ImageURL != "" {
		embed.Image = &discordImage{URL: msg.ImageURL}
	}

	payload := discordPayload{Embeds: []discordEmbed{embed}}
	if msg.Mention {
		payload.Content = "@everyone"
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.Webhook, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("discord webhook status %d", resp.StatusCode)
	}
	return nil
}
