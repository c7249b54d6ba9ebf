package cars

import (
	"context"

	"github.com/dmitrijs2005/garagekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, car *models.Car) (*models.Car, error)
	GetByID(ctx context.Context, id string) (*models.Car, error)
	List(ctx context.Context) ([]*models.Car, error)
	Update(ctx context.Context, car *models.Car) error
	Delete(ctx context.Context, id string) error
}
