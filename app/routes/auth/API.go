package auth

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Cavel-Dev/Hurly-sub000/app/config"
	"github.com/Cavel-Dev/Hurly-sub000/app/database"
	"github.com/Cavel-Dev/Hurly-sub000/app/models"
	"github.com/Cavel-Dev/Hurly-sub000/app/store"
)

func LoginAPI(c *fiber.Ctx, svc *store.Service) error {
	type LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}

	user, err := database.GetUserByEmail(config.GetDB(), req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			svc.Audit(nil, models.AuditLoginFailed, "auth", map[string]interface{}{"email": req.Email})
			return c.Status(401).JSON(fiber.Map{"error": "Invalid credentials"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}

	if !CheckPasswordHash(req.Password, user.Password) {
		svc.Audit(nil, models.AuditLoginFailed, "auth", map[string]interface{}{"email": req.Email})
		return c.Status(401).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	token, err := GenerateJWT(user.ID, user.Email, user.Name, user.Role)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to generate token"})
	}

	if err := database.TouchUserLogin(config.GetDB(), user.ID, time.Now()); err == nil {
		svc.Audit(&models.AuditActor{ID: user.ID, Email: user.Email, Role: user.Role},
			models.AuditLogin, "auth", nil)
	}

	c.Cookie(&fiber.Cookie{
		Name:     "jwt_token",
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

func LogoutAPI(c *fiber.Ctx, svc *store.Service) error {
	svc.Audit(Actor(c), models.AuditLogout, "auth", nil)
	c.Cookie(&fiber.Cookie{
		Name:     "jwt_token",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return c.JSON(fiber.Map{"message": "Logged out"})
}

func ChangePasswordAPI(c *fiber.Ctx) error {
	type ChangePasswordRequest struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}

	email := c.Locals("user_email").(string)
	user, err := database.GetUserByEmail(config.GetDB(), email)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}

	if !CheckPasswordHash(req.CurrentPassword, user.Password) {
		return c.Status(400).JSON(fiber.Map{"error": "Current password is incorrect"})
	}

	hashedPassword, err := HashPassword(req.NewPassword)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	if err := database.UpdateUserPassword(config.GetDB(), user.ID, hashedPassword); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update password"})
	}

	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}

func MeAPI(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"user_id": c.Locals("user_id"),
		"email":   c.Locals("user_email"),
		"name":    c.Locals("user_name"),
		"role":    c.Locals("user_role"),
	})
}
