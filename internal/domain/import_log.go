package domain

import (
	"time"

	"github.com/google/uuid"
)

// ImportLogEntry captures one row level issue raised during an import.
type ImportLogEntry struct {
	ID        uuid.UUID `json:"id"`
	FileName  string    `json:"file_name"`
	RowNumber *int      `json:"row_number,omitempty"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
