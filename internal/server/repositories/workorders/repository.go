package workorders

import (
	"context"

	"github.com/dmitrijs2005/garagekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, wo *models.WorkOrder) (*models.WorkOrder, error)
	GetByID(ctx context.Context, id string) (*models.WorkOrder, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*models.WorkOrder, error)
	List(ctx context.Context, filter models.WorkOrderFilter) ([]*models.WorkOrder, error)
	Update(ctx context.Context, wo *models.WorkOrder) error
	Delete(ctx context.Context, id string) error
}

type AttachmentRepository interface {
	Create(ctx context.Context, a *models.Attachment) (*models.Attachment, error)
	Get(ctx context.Context, workOrderID, id string) (*models.Attachment, error)
	ListByWorkOrder(ctx context.Context, workOrderID string) ([]*models.Attachment, error)
}
