package models

import (
	"time"
)

// ImportItem is one validated row from a third-party CSV export, normalized
// for collection lookups: set uppercased, numeric card numbers zero-padded to
// three digits.
type ImportItem struct {
	Set      string `json:"set"`
	Number   string `json:"number"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Foil     bool   `json:"foil"`
}

// ImportJobStatus represents the status of a CSV import job
type ImportJobStatus string

const (
	ImportStatusPending    ImportJobStatus = "pending"
	ImportStatusProcessing ImportJobStatus = "processing"
	ImportStatusCompleted  ImportJobStatus = "completed"
	ImportStatusFailed     ImportJobStatus = "failed"
)

// ImportJob represents one CSV import session. The raw payload is kept on the
// job so the background worker can process it after the upload request has
// returned.
type ImportJob struct {
	ID           string          `json:"id" gorm:"primaryKey"`
	Status       ImportJobStatus `json:"status" gorm:"not null;default:'pending'"`
	Source       string          `json:"source"` // which tool exported the CSV, free-form
	RawCSV       string          `json:"-" gorm:"type:text"`
	TotalRows    int             `json:"total_rows"`
	ImportedRows int             `json:"imported_rows"`
	Diagnostics  string          `json:"diagnostics,omitempty" gorm:"type:text"` // JSON array of row-level messages
	Error        string          `json:"error,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ImportJobResponse is the API response for job status
type ImportJobResponse struct {
	ID           string          `json:"id"`
	Status       ImportJobStatus `json:"status"`
	Source       string          `json:"source"`
	TotalRows    int             `json:"total_rows"`
	ImportedRows int             `json:"imported_rows"`
	Diagnostics  []string        `json:"diagnostics,omitempty"`
	Error        string          `json:"error,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
