package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ImportStatus string

const (
	ImportStatusPending    ImportStatus = "pending"
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusFailed     ImportStatus = "failed"
)

// Batch is one generation run: a single product request or a CSV upload.
type Batch struct {
	ID               uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	InputFileName    *string        `json:"input_file_name" gorm:"size:255"`
	InputFilePath    *string        `json:"input_file_path" gorm:"size:1024"`
	ResponseFileName *string        `json:"response_file_name" gorm:"size:255"`
	ResponseFilePath *string        `json:"response_file_path" gorm:"size:1024"`
	TotalProducts    int            `json:"total_products" gorm:"not null;default:0"`
	ImportedProducts int            `json:"imported_products" gorm:"not null;default:0"`
	GenerationType   GenerationType `json:"generation_type" gorm:"size:20;not null"`
	ImportStatus     ImportStatus   `json:"import_status" gorm:"size:20;not null;default:pending;index"`
	ErrorMessage     *string        `json:"error_message" gorm:"type:text"`
	ImportedAt       *time.Time     `json:"imported_at"`
	JobID            string         `json:"job_id" gorm:"size:36;index"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (Batch) TableName() string {
	return "generation_batches"
}

func (b *Batch) BeforeCreate(tx *gorm.DB) error {
	if b.JobID == "" {
		b.JobID = uuid.New().String()
	}
	if b.ImportStatus == "" {
		b.ImportStatus = ImportStatusPending
	}
	return nil
}

// Files returns the stored file paths of the batch.
func (b *Batch) Files() []string {
	var paths []string
	for _, p := range []*string{b.InputFilePath, b.ResponseFilePath} {
		if p != nil && *p != "" {
			paths = append(paths, *p)
		}
	}
	return paths
}
