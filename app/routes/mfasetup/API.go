package mfasetup

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pquerna/otp/totp"

	"github.com/Cavel-Dev/Hurly-sub000/app/mailer"
)

const codeTTL = 10 * time.Minute

// Handler serves the MFA setup function: admin gate check, one-time email
// codes and TOTP factor enrollment.
type Handler struct {
	Store          Store
	Mail           *mailer.Client
	AdminCodeHash  string
	Issuer         string
	AllowedOrigins []string
}

func SetupMFARoutes(app *fiber.App, h *Handler) {
	app.Post("/functions/mfa-setup", h.Handle)
}

func (h *Handler) originAllowed(origin string) bool {
	for _, o := range h.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return origin == ""
}

type request struct {
	Action string `json:"action"`
	Email  string `json:"email"`
	Code   string `json:"code"`
}

func (h *Handler) Handle(c *fiber.Ctx) error {
	if !h.originAllowed(c.Get("Origin")) {
		return c.Status(403).JSON(fiber.Map{"error": "Origin not allowed"})
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	switch req.Action {
	case "check_admin":
		return h.checkAdmin(c, req)
	case "send":
		return h.sendCode(c, req)
	case "verify":
		return h.verifyCode(c, req)
	case "enroll":
		return h.enroll(c, req)
	case "challenge":
		return h.challenge(c, req)
	}
	return c.Status(400).JSON(fiber.Map{"error": "Unknown action"})
}

func (h *Handler) checkAdmin(c *fiber.Ctx, req request) error {
	if h.AdminCodeHash == "" {
		return c.Status(500).JSON(fiber.Map{"error": "Admin setup code not configured"})
	}
	if req.Code == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Code is required"})
	}
	if subtle.ConstantTimeCompare([]byte(hashCode(req.Code)), []byte(h.AdminCodeHash)) != 1 {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid setup code"})
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (h *Handler) sendCode(c *fiber.Ctx, req request) error {
	if req.Email == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Email is required"})
	}
	code, err := randomCode()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to generate code"})
	}
	expires := time.Now().Add(codeTTL)
	if err := h.Store.InsertCode(c.Context(), req.Email, hashCode(code), expires); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to store code"})
	}

	data := mailer.TemplateData{
		Title:  "Your Verification Code",
		Intro:  fmt.Sprintf("Your Hurly verification code is %s. It expires in 10 minutes.", code),
		Name:   req.Email,
		Status: "Pending",
		Footer: "If you did not request this code, ignore this email.",
	}
	if err := h.Mail.SendTemplate([]string{req.Email}, "Hurly Verification Code", data,
		"Your Hurly verification code is "+code); err != nil {
		return c.Status(502).JSON(fiber.Map{"error": "Failed to send code email"})
	}
	return c.JSON(fiber.Map{"sent": true})
}

func (h *Handler) verifyCode(c *fiber.Ctx, req request) error {
	if req.Email == "" || req.Code == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Email and code are required"})
	}
	ok, err := h.Store.ConsumeCode(c.Context(), req.Email, hashCode(req.Code), time.Now())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to verify code"})
	}
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired code"})
	}
	return c.JSON(fiber.Map{"verified": true})
}

func (h *Handler) enroll(c *fiber.Ctx, req request) error {
	if req.Email == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Email is required"})
	}
	issuer := h.Issuer
	if issuer == "" {
		issuer = "Hurly"
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: req.Email,
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to generate factor"})
	}
	if err := h.Store.SaveFactor(c.Context(), req.Email, key.Secret()); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to store factor"})
	}
	return c.JSON(fiber.Map{
		"secret":      key.Secret(),
		"otpauth_url": key.URL(),
	})
}

func (h *Handler) challenge(c *fiber.Ctx, req request) error {
	if req.Email == "" || req.Code == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Email and code are required"})
	}
	secret, _, err := h.Store.FactorSecret(c.Context(), req.Email)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load factor"})
	}
	if secret == "" {
		return c.Status(404).JSON(fiber.Map{"error": "No factor enrolled"})
	}
	if !totp.Validate(req.Code, secret) {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid code"})
	}
	if err := h.Store.MarkFactorVerified(c.Context(), req.Email); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update factor"})
	}
	return c.JSON(fiber.Map{"verified": true})
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
