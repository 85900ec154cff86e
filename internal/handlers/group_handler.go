package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/hassan-khan07/Chat-App/internal/apperr"
	"github.com/hassan-khan07/Chat-App/internal/auth"
	"github.com/hassan-khan07/Chat-App/internal/models"
	"github.com/hassan-khan07/Chat-App/internal/service"
)

type GroupHandler struct {
	groups *service.GroupService
}

func NewGroupHandler(groups *service.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

func (h *GroupHandler) Create(c *fiber.Ctx) error {
	name := c.FormValue("name")
	description := c.FormValue("description")
	image, err := formFile(c, "groupImage")
	if err != nil {
		return respondErr(c, err)
	}
	group, err := h.groups.Create(c.Context(), auth.UserID(c), name, description, image)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(http.StatusCreated).JSON(group)
}

type updateDetailsRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (h *GroupHandler) UpdateDetails(c *fiber.Ctx) error {
	var req updateDetailsRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, apperr.Validation("malformed request body"))
	}
	group, err := h.groups.UpdateDetails(c.Context(), c.Params("groupId"), auth.UserID(c), req.Name, req.Description)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(group)
}

func (h *GroupHandler) UpdateAvatar(c *fiber.Ctx) error {
	image, err := formFile(c, "groupImage")
	if err != nil {
		return respondErr(c, err)
	}
	if image == nil {
		return respondErr(c, apperr.Validation("group image file is missing"))
	}
	group, err := h.groups.UpdateAvatar(c.Context(), c.Params("groupId"), auth.UserID(c), *image)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(group)
}

func (h *GroupHandler) Delete(c *fiber.Ctx) error {
	groupID := c.Params("groupId")
	if err := h.groups.Delete(c.Context(), groupID, auth.UserID(c)); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"group_id": groupID})
}

type addMembersRequest struct {
	UserIDs []string `json:"user_ids"`
}

func (h *GroupHandler) AddMembers(c *fiber.Ctx) error {
	var req addMembersRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, apperr.Validation("malformed request body"))
	}
	group, err := h.groups.AddMembers(c.Context(), c.Params("groupId"), auth.UserID(c), req.UserIDs)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(group)
}

func (h *GroupHandler) RemoveMember(c *fiber.Ctx) error {
	group, err := h.groups.RemoveMember(c.Context(), c.Params("groupId"), auth.UserID(c), c.Params("userId"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(group)
}

type changeRoleRequest struct {
	NewRole models.Role `json:"new_role"`
}

func (h *GroupHandler) ChangeRole(c *fiber.Ctx) error {
	var req changeRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, apperr.Validation("malformed request body"))
	}
	group, err := h.groups.ChangeRole(c.Context(), c.Params("groupId"), auth.UserID(c), c.Params("userId"), req.NewRole)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(group)
}

func (h *GroupHandler) Leave(c *fiber.Ctx) error {
	group, err := h.groups.Leave(c.Context(), c.Params("groupId"), auth.UserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	if group == nil {
		return c.JSON(fiber.Map{"deleted": true})
	}
	return c.JSON(group)
}

// Sidebar lists the caller's groups.
func (h *GroupHandler) Sidebar(c *fiber.Ctx) error {
	groups, err := h.groups.ListForUser(c.Context(), auth.UserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(groups)
}

func (h *GroupHandler) Get(c *fiber.Ctx) error {
	group, err := h.groups.Get(c.Context(), c.Params("groupId"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(group)
}
