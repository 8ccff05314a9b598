package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talentalign/jd-matcher/internal/models"
)

var ErrNotFound = errors.New("record not found")

type DocumentRepository interface {
	Create(document *models.Document) error
	FindByID(id uuid.UUID) (*models.Document, error)
	FindByIDs(ids []uuid.UUID) ([]models.Document, error)
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Create implements DocumentRepository.
func (d *documentRepository) Create(document *models.Document) error {
	if err := d.db.Create(document).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// FindByID implements DocumentRepository.
func (d *documentRepository) FindByID(id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	if err := d.db.Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find document: %w", err)
	}
	return &doc, nil
}

// FindByIDs implements DocumentRepository. Order follows ids; unknown ids are omitted.
func (d *documentRepository) FindByIDs(ids []uuid.UUID) ([]models.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var docs []models.Document
	if err := d.db.Where("id IN ?", ids).Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}

	byID := make(map[uuid.UUID]models.Document, len(docs))
	for _, doc := range docs {
		byID[doc.ID] = doc
	}
	ordered := make([]models.Document, 0, len(docs))
	for _, id := range ids {
		if doc, ok := byID[id]; ok {
			ordered = append(ordered, doc)
		}
	}
	return ordered, nil
}
