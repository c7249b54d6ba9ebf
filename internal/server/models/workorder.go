package models

import "time"

type WorkOrderStatus string

const (
	StatusOpen       WorkOrderStatus = "open"
	StatusInProgress WorkOrderStatus = "in_progress"
	StatusCompleted  WorkOrderStatus = "completed"
	StatusCancelled  WorkOrderStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s WorkOrderStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// WorkOrder is a unit of repair work on one car.
type WorkOrder struct {
	ID          string          `json:"id"`
	CarID       string          `json:"carId"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Status      WorkOrderStatus `json:"status"`
	AssignedTo  *string         `json:"assignedTo,omitempty"`
	CreatedBy   string          `json:"createdBy"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// WorkOrderFilter narrows List results. Empty fields match everything.
type WorkOrderFilter struct {
	CarID      string
	Status     WorkOrderStatus
	AssignedTo string
}

// Attachment is a file stored in object storage and linked to a work order.
// The bytes never pass through the API; clients use presigned URLs.
type Attachment struct {
	ID          string    `json:"id"`
	WorkOrderID string    `json:"workOrderId"`
	FileName    string    `json:"fileName"`
	StorageKey  string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}
