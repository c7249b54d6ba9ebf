package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/dmitrijs2005/garagekeeper/internal/common"
	"github.com/dmitrijs2005/garagekeeper/internal/server/models"
	"github.com/dmitrijs2005/garagekeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// firstCarYear is the year of the first production automobile.
const firstCarYear = 1886

type CarService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
	newID       func() string
}

func NewCarService(db *sql.DB, m repomanager.RepositoryManager) *CarService {
	return &CarService{
		db:          db,
		repomanager: m,
		now:         time.Now,
		newID:       func() string { return uuid.NewString() },
	}
}

func (s *CarService) validate(car *models.Car) error {
	car.Make = strings.TrimSpace(car.Make)
	car.Model = strings.TrimSpace(car.Model)
	car.VIN = strings.ToUpper(strings.TrimSpace(car.VIN))

	switch {
	case car.Make == "":
		return common.NewValidationError("make", "make is required")
	case car.Model == "":
		return common.NewValidationError("model", "model is required")
	case car.VIN == "":
		return common.NewValidationError("vin", "vin is required")
	}

	if car.Year != 0 {
		maxYear := s.now().Year() + 1
		if car.Year < firstCarYear || car.Year > maxYear {
			return common.NewValidationError("year", "year is out of range")
		}
	}
	return nil
}

func (s *CarService) Create(ctx context.Context, car *models.Car) (*models.Car, error) {
	if err := s.validate(car); err != nil {
		return nil, err
	}
	car.ID = s.newID()
	return s.repomanager.Cars(s.db).Create(ctx, car)
}

func (s *CarService) Get(ctx context.Context, id string) (*models.Car, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Cars(s.db).GetByID(ctx, id)
}

func (s *CarService) List(ctx context.Context) ([]*models.Car, error) {
	return s.repomanager.Cars(s.db).List(ctx)
}

func (s *CarService) Update(ctx context.Context, id string, car *models.Car) (*models.Car, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	if err := s.validate(car); err != nil {
		return nil, err
	}
	repo := s.repomanager.Cars(s.db)
	car.ID = id
	if err := repo.Update(ctx, car); err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, id)
}

func (s *CarService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return common.ErrorNotFound
	}
	return s.repomanager.Cars(s.db).Delete(ctx, id)
}
