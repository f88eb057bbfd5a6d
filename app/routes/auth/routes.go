package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Cavel-Dev/Hurly-sub000/app/models"
	"github.com/Cavel-Dev/Hurly-sub000/app/store"
)

func SetupAuthRoutes(app *fiber.App, svc *store.Service) {
	api := app.Group("/api/auth")
	api.Post("/login", func(c *fiber.Ctx) error { return LoginAPI(c, svc) })
	api.Post("/logout", AuthMiddleware, func(c *fiber.Ctx) error { return LogoutAPI(c, svc) })
	api.Post("/change-password", AuthMiddleware, ChangePasswordAPI)
	api.Get("/me", AuthMiddleware, MeAPI)
}

// AuthMiddleware validates the JWT from the cookie or Authorization header
// and sets the user context.
func AuthMiddleware(c *fiber.Ctx) error {
	tokenString := c.Cookies("jwt_token")
	if tokenString == "" {
		authHeader := c.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}

	if tokenString == "" {
		return c.Status(401).JSON(fiber.Map{"error": "No token found"})
	}

	claims, err := ValidateJWT(tokenString)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid token"})
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("user_email", claims.Email)
	c.Locals("user_name", claims.Name)
	c.Locals("user_role", claims.Role)
	return c.Next()
}

// Actor snapshots the authenticated user for audit entries. Nil when the
// request carried no valid session.
func Actor(c *fiber.Ctx) *models.AuditActor {
	id, _ := c.Locals("user_id").(string)
	if id == "" {
		return nil
	}
	email, _ := c.Locals("user_email").(string)
	role, _ := c.Locals("user_role").(string)
	return &models.AuditActor{ID: id, Email: email, Role: role}
}
