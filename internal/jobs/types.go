package jobs

import "time"

type JobType string

const (
	JobDeleteStoredFile   JobType = "storage.delete_file"
	JobResyncProductStock JobType = "catalog.resync_stock"
)

func (t JobType) IsValid() bool {
	switch t {
	case JobDeleteStoredFile, JobResyncProductStock:
		return true
	}
	return false
}

// DeleteStoredFilePayload asks the worker to remove an object left behind
// by a deleted product or replaced image.
type DeleteStoredFilePayload struct {
	ObjectKey   string    `json:"objectKey"`
	RequestedBy int64     `json:"requestedBy"`
	RequestedAt time.Time `json:"requestedAt"`
	RequestID   string    `json:"requestId,omitempty"`
}

type ResyncProductStockPayload struct {
	VariantID int64 `json:"variantId"`
	Stock     int   `json:"stock"`
}
