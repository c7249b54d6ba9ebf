package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/garagekeeper/internal/common"
	"github.com/dmitrijs2005/garagekeeper/internal/dbx"
	"github.com/dmitrijs2005/garagekeeper/internal/server/auth"
	"github.com/dmitrijs2005/garagekeeper/internal/server/models"
	"github.com/dmitrijs2005/garagekeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

type CreateWorkOrderInput struct {
	CarID       string  `json:"carId"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	AssignedTo  *string `json:"assignedTo,omitempty"`
}

// UpdateWorkOrderInput carries the fields to change; nil fields are left as is.
// An empty AssignedTo clears the assignee.
type UpdateWorkOrderInput struct {
	Title       *string                 `json:"title,omitempty"`
	Description *string                 `json:"description,omitempty"`
	Status      *models.WorkOrderStatus `json:"status,omitempty"`
	AssignedTo  *string                 `json:"assignedTo,omitempty"`
}

type WorkOrderService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	newID       func() string
	withTx      txRunner
}

func NewWorkOrderService(db *sql.DB, m repomanager.RepositoryManager) *WorkOrderService {
	return &WorkOrderService{
		db:          db,
		repomanager: m,
		newID:       func() string { return uuid.NewString() },
		withTx:      dbTx(db),
	}
}

// Create opens a work order on an existing car on behalf of actor.
func (s *WorkOrderService) Create(ctx context.Context, actor auth.Principal, in CreateWorkOrderInput) (*models.WorkOrder, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, common.NewValidationError("title", "title is required")
	}
	if in.CarID == "" {
		return nil, common.NewValidationError("carId", "carId is required")
	}
	if !validID(in.CarID) {
		return nil, common.NewValidationError("carId", "car does not exist")
	}

	if _, err := s.repomanager.Cars(s.db).GetByID(ctx, in.CarID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewValidationError("carId", "car does not exist")
		}
		return nil, err
	}

	assignee, err := s.resolveAssignee(ctx, s.db, in.AssignedTo)
	if err != nil {
		return nil, err
	}

	wo := &models.WorkOrder{
		ID:          s.newID(),
		CarID:       in.CarID,
		Title:       title,
		Description: in.Description,
		Status:      models.StatusOpen,
		AssignedTo:  assignee,
		CreatedBy:   actor.ID,
	}
	return s.repomanager.WorkOrders(s.db).Create(ctx, wo)
}

func (s *WorkOrderService) Get(ctx context.Context, id string) (*models.WorkOrder, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.WorkOrders(s.db).GetByID(ctx, id)
}

func (s *WorkOrderService) List(ctx context.Context, filter models.WorkOrderFilter) ([]*models.WorkOrder, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, common.NewValidationError("status", "unknown status")
	}
	if filter.CarID != "" && !validID(filter.CarID) {
		return nil, common.NewValidationError("carId", "invalid carId")
	}
	if filter.AssignedTo != "" && !validID(filter.AssignedTo) {
		return nil, common.NewValidationError("assignedTo", "invalid assignedTo")
	}
	return s.repomanager.WorkOrders(s.db).List(ctx, filter)
}

// Update applies in to the work order id. The row stays locked from read to
// write so concurrent updates do not overwrite each other's fields.
func (s *WorkOrderService) Update(ctx context.Context, id string, in UpdateWorkOrderInput) (*models.WorkOrder, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}

	var title string
	if in.Title != nil {
		title = strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, common.NewValidationError("title", "title is required")
		}
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, common.NewValidationError("status", "unknown status")
	}

	var out *models.WorkOrder
	err := s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.WorkOrders(tx)
		wo, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if in.Title != nil {
			wo.Title = title
		}
		if in.Description != nil {
			wo.Description = *in.Description
		}
		if in.Status != nil {
			wo.Status = *in.Status
		}
		if in.AssignedTo != nil {
			assignee, err := s.resolveAssignee(ctx, tx, in.AssignedTo)
			if err != nil {
				return err
			}
			wo.AssignedTo = assignee
		}

		if err := repo.Update(ctx, wo); err != nil {
			return err
		}
		out = wo
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *WorkOrderService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return common.ErrorNotFound
	}
	return s.repomanager.WorkOrders(s.db).Delete(ctx, id)
}

func (s *WorkOrderService) resolveAssignee(ctx context.Context, db dbx.DBTX, id *string) (*string, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	if !validID(*id) {
		return nil, common.NewValidationError("assignedTo", "assignee does not exist")
	}
	if _, err := s.repomanager.Users(db).GetByID(ctx, *id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewValidationError("assignedTo", "assignee does not exist")
		}
		return nil, err
	}
	assignee := *id
	return &assignee, nil
}
