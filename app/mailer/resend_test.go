package mailer

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	auth string
	body map[string]interface{}
}

func newFakeResend(t *testing.T, templateStatus int) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var requests []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &body))
		requests = append(requests, capturedRequest{
			auth: r.Header.Get("Authorization"),
			body: body,
		})
		if _, isTemplate := body["template"]; isTemplate && templateStatus != 0 {
			w.WriteHeader(templateStatus)
			return
		}
		w.WriteHeader(200)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func newTestClient(baseURL string) *Client {
	c := NewClient("test-key", "alerts@hurly.example", "tmpl_1")
	c.BaseURL = baseURL
	return c
}

func TestSendTemplate(t *testing.T) {
	srv, requests := newFakeResend(t, 0)
	c := newTestClient(srv.URL)

	err := c.SendTemplate([]string{"ops@hurly.example"}, "Hurly Test", TemplateData{
		Title: "Payroll Finalized",
		Total: "98875",
	}, "plain text")
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "Bearer test-key", req.auth)
	assert.Equal(t, "Hurly Test", req.body["subject"])

	tmpl := req.body["template"].(map[string]interface{})
	assert.Equal(t, "tmpl_1", tmpl["id"])
	vars := tmpl["variables"].(map[string]interface{})
	assert.Equal(t, "Payroll Finalized", vars["TITLE"])
	assert.Equal(t, "98875", vars["TOTAL"])
	assert.Equal(t, "-", vars["NAME"], "empty variables default to dashes")
}

func TestSendTemplateFallsBackToInlineHTML(t *testing.T) {
	srv, requests := newFakeResend(t, 422)
	c := newTestClient(srv.URL)

	err := c.SendTemplate([]string{"ops@hurly.example"}, "Hurly Test", TemplateData{Title: "Alert"}, "")
	require.NoError(t, err)

	require.Len(t, *requests, 2, "template rejection triggers an inline send")
	fallback := (*requests)[1].body
	assert.Contains(t, fallback["html"].(string), "Alert")
	assert.NotEmpty(t, fallback["text"])
	_, isTemplate := fallback["template"]
	assert.False(t, isTemplate)
}

func TestSendTemplateWithoutTemplateID(t *testing.T) {
	srv, requests := newFakeResend(t, 0)
	c := newTestClient(srv.URL)
	c.TemplateID = ""

	err := c.SendTemplate([]string{"ops@hurly.example"}, "Hurly Test", TemplateData{}, "")
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	_, isTemplate := (*requests)[0].body["template"]
	assert.False(t, isTemplate, "no template id means a direct inline send")
}

func TestSendRejectsMissingConfig(t *testing.T) {
	c := NewClient("", "", "")
	assert.Error(t, c.Send([]string{"x@example.com"}, "s", "h", "t"))

	c = NewClient("key", "from@example.com", "")
	assert.Error(t, c.Send(nil, "s", "h", "t"))
}

func TestSendSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid from"}`, 403)
	}))
	defer srv.Close()
	c := newTestClient(srv.URL)
	c.TemplateID = ""

	err := c.Send([]string{"ops@hurly.example"}, "s", "h", "t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestFillDefaults(t *testing.T) {
	d := TemplateData{Title: "Kept"}.FillDefaults()
	assert.Equal(t, "Kept", d.Title)
	assert.Equal(t, "-", d.Table)
	assert.Equal(t, "Hurly • Automated Email • © 2026 Hurly", d.Footer)
}
