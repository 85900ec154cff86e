package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hassan-khan07/Chat-App/internal/auth"
	"github.com/hassan-khan07/Chat-App/internal/handlers"
)

// Register wires every HTTP route onto the app.
func Register(
	app *fiber.App,
	jwt *auth.JWTManager,
	userH *handlers.UserHandler,
	groupH *handlers.GroupHandler,
	messageH *handlers.MessageHandler,
) {
	api := app.Group("/api/v1")
	api.Get("/health", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })

	protected := auth.Middleware(jwt)

	users := api.Group("/users")
	users.Post("/signup", userH.Signup)
	users.Post("/login", userH.Login)
	users.Post("/refresh", userH.Refresh)
	users.Post("/logout", protected, userH.Logout)
	users.Get("/me", protected, userH.Me)
	users.Patch("/me/avatar", protected, userH.UpdateAvatar)
	users.Get("/sidebar", protected, userH.Sidebar)

	groups := api.Group("/groups", protected)
	groups.Get("/sidebar", groupH.Sidebar)
	groups.Post("/", groupH.Create)
	groups.Get("/:groupId", groupH.Get)
	groups.Patch("/:groupId", groupH.UpdateDetails)
	groups.Patch("/:groupId/avatar", groupH.UpdateAvatar)
	groups.Delete("/:groupId", groupH.Delete)
	groups.Post("/:groupId/members", groupH.AddMembers)
	groups.Delete("/:groupId/members/:userId", groupH.RemoveMember)
	groups.Patch("/:groupId/members/:userId/role", groupH.ChangeRole)
	groups.Post("/:groupId/leave", groupH.Leave)

	messages := api.Group("/messages", protected)
	messages.Get("/:id", messageH.DirectHistory)
	messages.Post("/send/:id", messageH.SendDirect)

	groupMessages := api.Group("/group-messages", protected)
	groupMessages.Get("/:groupId/messages", messageH.GroupHistory)
	groupMessages.Post("/:groupId/messages", messageH.SendGroup)
}
