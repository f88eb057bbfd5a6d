// Package mailer sends transactional email through the Resend HTTP API.
package mailer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.resend.com"

// TemplateData is the variable set of the shared notification template.
type TemplateData struct {
	Title    string `json:"TITLE"`
	Intro    string `json:"INTRO"`
	Name     string `json:"NAME"`
	Table    string `json:"TABLE"`
	RecordID string `json:"RECORD_ID"`
	Status   string `json:"STATUS"`
	Total    string `json:"TOTAL"`
	Footer   string `json:"FOOTER"`
}

// FillDefaults replaces empty fields with the dashes the template expects.
func (d TemplateData) FillDefaults() TemplateData {
	def := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	}
	d.Title = def(d.Title, "Hurly Notification")
	d.Intro = def(d.Intro, "A new update was detected in Hurly.")
	d.Name = def(d.Name, "-")
	d.Table = def(d.Table, "-")
	d.RecordID = def(d.RecordID, "-")
	d.Status = def(d.Status, "-")
	d.Total = def(d.Total, "-")
	d.Footer = def(d.Footer, "Hurly • Automated Email • © 2026 Hurly")
	return d
}

// Client is a minimal Resend API client. BaseURL is overridable for tests.
type Client struct {
	APIKey     string
	From       string
	TemplateID string
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(apiKey, from, templateID string) *Client {
	return &Client{
		APIKey:     apiKey,
		From:       from,
		TemplateID: templateID,
		BaseURL:    defaultBaseURL,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// SendTemplate sends via the stored template first and falls back to an
// inline HTML rendering of the same data when the template send is rejected.
func (c *Client) SendTemplate(to []string, subject string, data TemplateData, text string) error {
	if c.APIKey == "" || c.From == "" || len(to) == 0 {
		return errors.New("missing email config")
	}
	data = data.FillDefaults()

	if c.TemplateID != "" {
		body := map[string]interface{}{
			"from":    c.From,
			"to":      to,
			"subject": subject,
			"template": map[string]interface{}{
				"id":        c.TemplateID,
				"variables": data,
			},
		}
		if err := c.post(body); err == nil {
			return nil
		}
	}

	html := fmt.Sprintf(`
    <div style="font-family:Arial,sans-serif;color:#111;line-height:1.5">
      <h2>%s</h2>
      <p>%s</p>
      <p><strong>Name:</strong> %s</p>
      <p><strong>Table:</strong> %s</p>
      <p><strong>Record:</strong> %s</p>
      <p><strong>Status:</strong> %s</p>
      <p><strong>Total:</strong> %s</p>
      <p>%s</p>
    </div>`,
		data.Title, data.Intro, data.Name, data.Table, data.RecordID, data.Status, data.Total, data.Footer)
	if text == "" {
		text = fmt.Sprintf("%s\n%s\nName: %s\nTable: %s\nRecord: %s\nStatus: %s\nTotal: %s\n%s",
			data.Title, data.Intro, data.Name, data.Table, data.RecordID, data.Status, data.Total, data.Footer)
	}
	return c.Send(to, subject, html, text)
}

// Send delivers a plain HTML/text email.
func (c *Client) Send(to []string, subject, html, text string) error {
	if c.APIKey == "" || c.From == "" || len(to) == 0 {
		return errors.New("missing email config")
	}
	return c.post(map[string]interface{}{
		"from":    c.From,
		"to":      to,
		"subject": subject,
		"html":    html,
		"text":    text,
	})
}

func (c *Client) post(body map[string]interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	req, err := http.NewRequest(http.MethodPost, base+"/emails", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return fmt.Errorf("resend: %s: %s", res.Status, bytes.TrimSpace(msg))
	}
	return nil
}
