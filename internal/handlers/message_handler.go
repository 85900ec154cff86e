package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/hassan-khan07/Chat-App/internal/auth"
	"github.com/hassan-khan07/Chat-App/internal/service"
)

// maxMessageImages mirrors the upload field limit of the API: at most five
// images per message.
const maxMessageImages = 5

type MessageHandler struct {
	messages *service.MessageService
}

func NewMessageHandler(messages *service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

func (h *MessageHandler) SendDirect(c *fiber.Ctx) error {
	files, err := formFiles(c, "image", maxMessageImages)
	if err != nil {
		return respondErr(c, err)
	}
	msg, err := h.messages.SendDirect(c.Context(), auth.UserID(c), c.Params("id"), c.FormValue("text"), files)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(http.StatusCreated).JSON(msg)
}

func (h *MessageHandler) DirectHistory(c *fiber.Ctx) error {
	msgs, err := h.messages.DirectHistory(c.Context(), auth.UserID(c), c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(msgs)
}

func (h *MessageHandler) SendGroup(c *fiber.Ctx) error {
	files, err := formFiles(c, "image", maxMessageImages)
	if err != nil {
		return respondErr(c, err)
	}
	msg, err := h.messages.SendGroup(c.Context(), auth.UserID(c), c.Params("groupId"), c.FormValue("text"), files)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(http.StatusCreated).JSON(msg)
}

func (h *MessageHandler) GroupHistory(c *fiber.Ctx) error {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)
	msgs, err := h.messages.GroupHistory(c.Context(), auth.UserID(c), c.Params("groupId"), page, limit)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(msgs)
}

func queryInt(c *fiber.Ctx, key string, def int64) int64 {
	v, err := strconv.ParseInt(c.Query(key), 10, 64)
	if err != nil || v < 1 {
		return def
	}
	return v
}
