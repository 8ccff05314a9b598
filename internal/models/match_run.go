package models

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	StatusQueued     RunStatus = "queued"
	StatusProcessing RunStatus = "processing"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
)

// MatchRun is a persisted bulk ranking of many resumes against one job.
type MatchRun struct {
	ID                uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobDocumentID     uuid.UUID        `gorm:"type:uuid;not null" json:"job_document_id"`
	ResumeDocumentIDs []uuid.UUID      `gorm:"serializer:json;type:jsonb" json:"resume_document_ids"`
	TopN              int              `gorm:"default:0" json:"top_n"`
	Status            RunStatus        `gorm:"not null;default:'queued';index" json:"status"`
	JobProfile        ExtractedProfile `gorm:"serializer:json;type:jsonb" json:"job_profile"`
	Results           []MatchResult    `gorm:"serializer:json;type:jsonb" json:"results,omitempty"`
	Skipped           []SkippedItem    `gorm:"serializer:json;type:jsonb" json:"skipped,omitempty"`
	ErrorMessage      *string          `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt         time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	JobDocument Document `gorm:"foreignKey:JobDocumentID" json:"-"`
}

func (MatchRun) TableName() string {
	return "match_runs"
}
