package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"talentalign/jd-matcher/internal/logger"
	"talentalign/jd-matcher/internal/models"
	"talentalign/jd-matcher/internal/repositories"
	"talentalign/jd-matcher/internal/services"
)

// uploadFields maps multipart field names to stored document types.
var uploadFields = []struct {
	field    string
	fileType string
}{
	{"resume", models.FileTypeResume},
	{"jd", models.FileTypeJob},
}

type UploadHandler struct {
	docRepo        repositories.DocumentRepository
	storageService services.StorageService
	maxFileSize    int64
	log            *zap.Logger
}

func NewUploadHandler(
	docRepo repositories.DocumentRepository,
	storageService services.StorageService,
	maxFileSize int64,
	log *zap.Logger,
) *UploadHandler {
	return &UploadHandler{
		docRepo:        docRepo,
		storageService: storageService,
		maxFileSize:    maxFileSize,
		log:            logger.OrNop(log),
	}
}

// HandleUpload handles POST /upload. Any number of "resume" files and
// "jd" files may be sent; each becomes a document usable by bulk runs.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	var responses []models.UploadResponse
	for _, uf := range uploadFields {
		for _, file := range form.File[uf.field] {
			if file.Size > h.maxFileSize {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": fmt.Sprintf("%s too large. Max size: %d bytes", file.Filename, h.maxFileSize),
				})
			}

			doc, err := h.store(file, uf.fileType)
			if errors.Is(err, services.ErrUnsupportedFile) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": fmt.Sprintf("%s: only PDF files are accepted", file.Filename),
				})
			}
			if err != nil {
				h.log.Error("upload failed", zap.String(logger.FieldDocument, file.Filename), zap.Error(err))
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": fmt.Sprintf("failed to save %s", file.Filename),
				})
			}

			responses = append(responses, models.UploadResponse{
				ID:           doc.ID.String(),
				Filename:     doc.Filename,
				OriginalName: doc.OriginalFileName,
				FileType:     doc.FileType,
			})
		}
	}

	if len(responses) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No valid files uploaded. Please upload 'resume' and/or 'jd' as PDF files.",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Files uploaded successfully",
		"documents": responses,
	})
}

func (h *UploadHandler) store(file *multipart.FileHeader, fileType string) (*models.Document, error) {
	stored, err := h.storageService.SaveFile(file, fileType)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		ID:               uuid.New(),
		Filename:         stored.Filename,
		OriginalFileName: file.Filename,
		FileType:         fileType,
		FilePath:         stored.Path,
		Size:             stored.Size,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := h.docRepo.Create(doc); err != nil {
		// Cleanup uploaded file if database insert fails
		if derr := h.storageService.DeleteFile(stored.Filename); derr != nil {
			h.log.Warn("failed to remove orphaned upload", zap.String("file", stored.Filename), zap.Error(derr))
		}
		return nil, fmt.Errorf("failed to save document record: %w", err)
	}
	return doc, nil
}
