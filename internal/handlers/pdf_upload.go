package handlers

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"talentalign/jd-matcher/internal/services"
)

// ErrorHandler renders every error as {"error", "code"}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

// readUploadedPDF pulls the first file in field out of the request and
// returns its text without persisting it.
func readUploadedPDF(c *fiber.Ctx, field string, parser services.PDFParserService, maxSize int64) (string, string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", "", fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("'%s' file is required", field))
	}
	if strings.ToLower(filepath.Ext(file.Filename)) != ".pdf" {
		return "", "", fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s: only PDF files are accepted", file.Filename))
	}
	if maxSize > 0 && file.Size > maxSize {
		return "", "", fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s too large. Max size: %d bytes", file.Filename, maxSize))
	}

	src, err := file.Open()
	if err != nil {
		return "", "", fiber.NewError(fiber.StatusBadRequest, "failed to open uploaded file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", "", fiber.NewError(fiber.StatusBadRequest, "failed to read uploaded file")
	}

	text, err := parser.ExtractTextFromBytes(data)
	if err != nil {
		return "", "", fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("could not extract text from %s", file.Filename))
	}
	return text, file.Filename, nil
}
