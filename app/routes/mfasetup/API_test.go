package mfasetup

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cavel-Dev/Hurly-sub000/app/mailer"
)

func sha256hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func newTestApp(t *testing.T) (*fiber.App, *MemoryStore, *[]map[string]interface{}) {
	t.Helper()
	var sent []map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		_ = json.Unmarshal(raw, &body)
		sent = append(sent, body)
		w.WriteHeader(200)
	}))
	t.Cleanup(srv.Close)

	mail := mailer.NewClient("test-key", "alerts@hurly.example", "")
	mail.BaseURL = srv.URL

	store := NewMemoryStore()
	app := fiber.New()
	SetupMFARoutes(app, &Handler{
		Store:          store,
		Mail:           mail,
		AdminCodeHash:  sha256hex("letmein"),
		Issuer:         "Hurly",
		AllowedOrigins: []string{"*"},
	})
	return app, store, &sent
}

func post(t *testing.T, app *fiber.App, payload interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/functions/mfa-setup", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	var body map[string]interface{}
	data, _ := io.ReadAll(res.Body)
	_ = json.Unmarshal(data, &body)
	return res, body
}

func TestCheckAdmin(t *testing.T) {
	app, _, _ := newTestApp(t)

	res, body := post(t, app, request{Action: "check_admin", Code: "letmein"})
	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, true, body["ok"])

	res, _ = post(t, app, request{Action: "check_admin", Code: "wrong"})
	assert.Equal(t, 401, res.StatusCode)

	res, _ = post(t, app, request{Action: "check_admin"})
	assert.Equal(t, 400, res.StatusCode)
}

func TestCheckAdminUnconfigured(t *testing.T) {
	app := fiber.New()
	SetupMFARoutes(app, &Handler{
		Store:          NewMemoryStore(),
		Mail:           mailer.NewClient("k", "f@example.com", ""),
		AllowedOrigins: []string{"*"},
	})

	res, _ := post(t, app, request{Action: "check_admin", Code: "anything"})
	assert.Equal(t, 500, res.StatusCode)
}

func TestSendAndVerifyCode(t *testing.T) {
	app, store, sent := newTestApp(t)

	res, body := post(t, app, request{Action: "send", Email: "user@example.com"})
	require.Equal(t, 200, res.StatusCode)
	assert.Equal(t, true, body["sent"])
	require.Len(t, *sent, 1, "the code is emailed")

	// Pull the stored hash back out and verify through the endpoint by
	// re-deriving the code from the email body.
	require.Len(t, store.codes, 1)
	emailText := (*sent)[0]["text"].(string)
	code := extractCode(t, emailText)
	require.Equal(t, store.codes[0].codeHash, sha256hex(code))

	res, body = post(t, app, request{Action: "verify", Email: "user@example.com", Code: code})
	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, true, body["verified"])

	// Codes are single-use.
	res, _ = post(t, app, request{Action: "verify", Email: "user@example.com", Code: code})
	assert.Equal(t, 401, res.StatusCode)
}

func TestVerifyExpiredCode(t *testing.T) {
	app, store, _ := newTestApp(t)

	require.NoError(t, store.InsertCode(context.Background(), "user@example.com",
		sha256hex("123456"), time.Now().Add(-time.Minute)))

	res, _ := post(t, app, request{Action: "verify", Email: "user@example.com", Code: "123456"})
	assert.Equal(t, 401, res.StatusCode)
}

func TestVerifyWrongCode(t *testing.T) {
	app, store, _ := newTestApp(t)
	require.NoError(t, store.InsertCode(context.Background(), "user@example.com",
		sha256hex("123456"), time.Now().Add(10*time.Minute)))

	res, _ := post(t, app, request{Action: "verify", Email: "user@example.com", Code: "654321"})
	assert.Equal(t, 401, res.StatusCode)
}

func TestEnrollAndChallenge(t *testing.T) {
	app, store, _ := newTestApp(t)

	res, body := post(t, app, request{Action: "enroll", Email: "user@example.com"})
	require.Equal(t, 200, res.StatusCode)
	secret := body["secret"].(string)
	require.NotEmpty(t, secret)
	assert.Contains(t, body["otpauth_url"].(string), "Hurly")

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	res, body = post(t, app, request{Action: "challenge", Email: "user@example.com", Code: code})
	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, true, body["verified"])

	_, verified, err := store.FactorSecret(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.True(t, verified)

	res, _ = post(t, app, request{Action: "challenge", Email: "user@example.com", Code: "000000"})
	assert.Equal(t, 401, res.StatusCode)
}

func TestChallengeWithoutFactor(t *testing.T) {
	app, _, _ := newTestApp(t)
	res, _ := post(t, app, request{Action: "challenge", Email: "nobody@example.com", Code: "123456"})
	assert.Equal(t, 404, res.StatusCode)
}

func TestUnknownAction(t *testing.T) {
	app, _, _ := newTestApp(t)
	res, _ := post(t, app, request{Action: "exfiltrate"})
	assert.Equal(t, 400, res.StatusCode)
}

func TestRejectsDisallowedOrigin(t *testing.T) {
	app := fiber.New()
	SetupMFARoutes(app, &Handler{
		Store:          NewMemoryStore(),
		Mail:           mailer.NewClient("k", "f@example.com", ""),
		AdminCodeHash:  sha256hex("letmein"),
		AllowedOrigins: []string{"https://app.hurly.example"},
	})

	raw, _ := json.Marshal(request{Action: "check_admin", Code: "letmein"})
	req := httptest.NewRequest("POST", "/functions/mfa-setup", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://evil.example")
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 403, res.StatusCode)
}

// extractCode pulls the 6-digit code out of the plain-text email body.
func extractCode(t *testing.T, text string) string {
	t.Helper()
	for i := 0; i+6 <= len(text); i++ {
		candidate := text[i : i+6]
		digits := true
		for _, ch := range candidate {
			if ch < '0' || ch > '9' {
				digits = false
				break
			}
		}
		if digits {
			return candidate
		}
	}
	t.Fatal("no code found in email body")
	return ""
}
