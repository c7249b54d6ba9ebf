package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/garagekeeper/internal/common"
	"github.com/dmitrijs2005/garagekeeper/internal/dbx"
	"github.com/dmitrijs2005/garagekeeper/internal/server/models"
	"github.com/dmitrijs2005/garagekeeper/internal/server/repositories/cars"
	"github.com/dmitrijs2005/garagekeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/garagekeeper/internal/server/repositories/workorders"
)

var errBoom = errors.New("boom")

// Fixed record ids used across the service tests.
const (
	aliceID   = "a11ce000-0000-4000-8000-000000000001"
	bobID     = "b0b00000-0000-4000-8000-000000000002"
	carID     = "ca700000-0000-4000-8000-000000000003"
	orderID   = "0d000000-0000-4000-8000-000000000004"
	missingID = "0ff00000-0000-4000-8000-0000000000ff"
)

// inlineTx runs fn without a transaction; the in-memory repositories ignore
// the handle they are given.
func inlineTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return fn(ctx, nil)
}

// memStore is an in-memory stand-in for every repository the services use.
type memStore struct {
	mu          sync.Mutex
	users       map[string]*models.User
	cars        map[string]*models.Car
	workOrders  map[string]*models.WorkOrder
	attachments map[string]*models.Attachment

	// usersErr, when set, is returned by every users repository call.
	usersErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[string]*models.User{},
		cars:        map[string]*models.Car{},
		workOrders:  map[string]*models.WorkOrder{},
		attachments: map[string]*models.Attachment{},
	}
}

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository           { return (*memUsers)(m.s) }
func (m *fakeRepoManager) Cars(dbx.DBTX) cars.Repository             { return (*memCars)(m.s) }
func (m *fakeRepoManager) WorkOrders(dbx.DBTX) workorders.Repository { return (*memWorkOrders)(m.s) }
func (m *fakeRepoManager) Attachments(dbx.DBTX) workorders.AttachmentRepository {
	return (*memAttachments)(m.s)
}

type memUsers memStore

func (r *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.usersErr != nil {
		return nil, r.usersErr
	}
	for _, other := range r.users {
		if other.Username == u.Username {
			return nil, &common.DuplicateError{Field: "username"}
		}
	}
	u.CreatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return u, nil
}

func (r *memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.usersErr != nil {
		return nil, r.usersErr
	}
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.usersErr != nil {
		return nil, r.usersErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) GetByIDForUpdate(ctx context.Context, id string) (*models.User, error) {
	return r.GetByID(ctx, id)
}

func (r *memUsers) List(context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *memUsers) Update(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUsers) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.users, id)
	return nil
}

type memCars memStore

func (r *memCars) Create(_ context.Context, c *models.Car) (*models.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.cars {
		if other.VIN == c.VIN {
			return nil, &common.DuplicateError{Field: "vin"}
		}
	}
	cp := *c
	r.cars[c.ID] = &cp
	return c, nil
}

func (r *memCars) GetByID(_ context.Context, id string) (*models.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cars[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memCars) List(context.Context) ([]*models.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Car, 0, len(r.cars))
	for _, c := range r.cars {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memCars) Update(_ context.Context, c *models.Car) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cars[c.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *c
	r.cars[c.ID] = &cp
	return nil
}

func (r *memCars) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cars[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.cars, id)
	return nil
}

type memWorkOrders memStore

func (r *memWorkOrders) Create(_ context.Context, wo *models.WorkOrder) (*models.WorkOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wo.CreatedAt = time.Now()
	wo.UpdatedAt = wo.CreatedAt
	cp := *wo
	r.workOrders[wo.ID] = &cp
	return wo, nil
}

func (r *memWorkOrders) GetByID(_ context.Context, id string) (*models.WorkOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wo, ok := r.workOrders[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *wo
	return &cp, nil
}

func (r *memWorkOrders) GetByIDForUpdate(ctx context.Context, id string) (*models.WorkOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *memWorkOrders) List(_ context.Context, f models.WorkOrderFilter) ([]*models.WorkOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.WorkOrder, 0)
	for _, wo := range r.workOrders {
		if f.CarID != "" && wo.CarID != f.CarID {
			continue
		}
		if f.Status != "" && wo.Status != f.Status {
			continue
		}
		if f.AssignedTo != "" && (wo.AssignedTo == nil || *wo.AssignedTo != f.AssignedTo) {
			continue
		}
		cp := *wo
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memWorkOrders) Update(_ context.Context, wo *models.WorkOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workOrders[wo.ID]; !ok {
		return common.ErrorNotFound
	}
	wo.UpdatedAt = time.Now()
	cp := *wo
	r.workOrders[wo.ID] = &cp
	return nil
}

func (r *memWorkOrders) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workOrders[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.workOrders, id)
	return nil
}

type memAttachments memStore

func (r *memAttachments) Create(_ context.Context, a *models.Attachment) (*models.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.CreatedAt = time.Now()
	cp := *a
	r.attachments[a.ID] = &cp
	return a, nil
}

func (r *memAttachments) Get(_ context.Context, workOrderID, id string) (*models.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attachments[id]
	if !ok || a.WorkOrderID != workOrderID {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memAttachments) ListByWorkOrder(_ context.Context, workOrderID string) ([]*models.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Attachment, 0)
	for _, a := range r.attachments {
		if a.WorkOrderID == workOrderID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}
