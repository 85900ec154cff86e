// Package handlers contains the thin fiber glue between HTTP and the
// services. Handlers parse input, call one service method and translate the
// error kind to a status code.
package handlers

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/hassan-khan07/Chat-App/internal/apperr"
	"github.com/hassan-khan07/Chat-App/internal/service"
)

func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindPermission:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindAuth:
		return http.StatusUnauthorized
	case apperr.KindStorage:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondErr(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": apperr.MessageOf(err),
		"kind":  apperr.KindOf(err).String(),
	})
}

func readUpload(fh *multipart.FileHeader) (*service.FileUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, apperr.Validation("could not read uploaded file")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperr.Validation("could not read uploaded file")
	}
	return &service.FileUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// formFile returns the single uploaded file under field, or nil when absent.
func formFile(c *fiber.Ctx, field string) (*service.FileUpload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	return readUpload(fh)
}

// formFiles returns up to max uploaded files under field, in form order.
func formFiles(c *fiber.Ctx, field string, max int) ([]service.FileUpload, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil
	}
	headers := form.File[field]
	if len(headers) > max {
		return nil, apperr.Validation("too many attachments")
	}
	out := make([]service.FileUpload, 0, len(headers))
	for _, fh := range headers {
		up, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, *up)
	}
	return out, nil
}
