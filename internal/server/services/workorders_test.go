package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/garagekeeper/internal/common"
	"github.com/dmitrijs2005/garagekeeper/internal/server/auth"
	"github.com/dmitrijs2005/garagekeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedWorkOrderStore() *memStore {
	store := newMemStore()
	store.cars[carID] = &models.Car{ID: carID, Make: "VW", Model: "Golf", VIN: "X"}
	store.users[aliceID] = &models.User{ID: aliceID, Username: "alice"}
	store.users[bobID] = &models.User{ID: bobID, Username: "bob"}
	return store
}

func seededWorkOrderService(t *testing.T) (*WorkOrderService, *memStore) {
	t.Helper()
	store := seedWorkOrderStore()
	s := NewWorkOrderService(nil, &fakeRepoManager{s: store})
	s.newID = func() string { return orderID }
	s.withTx = inlineTx
	return s, store
}

func ptr[T any](v T) *T { return &v }

func TestWorkOrderService_Create(t *testing.T) {
	s, _ := seededWorkOrderService(t)
	actor := auth.Principal{ID: aliceID, Username: "alice"}
	ctx := context.Background()

	wo, err := s.Create(ctx, actor, CreateWorkOrderInput{CarID: carID, Title: " Brakes ", AssignedTo: ptr(bobID)})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, wo.Status)
	assert.Equal(t, "Brakes", wo.Title)
	assert.Equal(t, aliceID, wo.CreatedBy)
	require.NotNil(t, wo.AssignedTo)
	assert.Equal(t, bobID, *wo.AssignedTo)

	tests := []struct {
		in    CreateWorkOrderInput
		field string
	}{
		{CreateWorkOrderInput{CarID: carID}, "title"},
		{CreateWorkOrderInput{Title: "x"}, "carId"},
		{CreateWorkOrderInput{CarID: missingID, Title: "x"}, "carId"},
		{CreateWorkOrderInput{CarID: "not-a-uuid", Title: "x"}, "carId"},
		{CreateWorkOrderInput{CarID: carID, Title: "x", AssignedTo: ptr(missingID)}, "assignedTo"},
		{CreateWorkOrderInput{CarID: carID, Title: "x", AssignedTo: ptr("ghost")}, "assignedTo"},
	}
	for _, tt := range tests {
		_, err := s.Create(ctx, actor, tt.in)
		var verr *common.ValidationError
		require.ErrorAs(t, err, &verr, "%+v", tt.in)
		assert.Equal(t, tt.field, verr.Field)
	}
}

func TestWorkOrderService_Update(t *testing.T) {
	s, _ := seededWorkOrderService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, auth.Principal{ID: aliceID}, CreateWorkOrderInput{CarID: carID, Title: "Oil", AssignedTo: ptr(bobID)})
	require.NoError(t, err)

	wo, err := s.Update(ctx, orderID, UpdateWorkOrderInput{Status: ptr(models.StatusInProgress), AssignedTo: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, wo.Status)
	assert.Nil(t, wo.AssignedTo)
	assert.Equal(t, "Oil", wo.Title)

	_, err = s.Update(ctx, orderID, UpdateWorkOrderInput{Status: ptr(models.WorkOrderStatus("paused"))})
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.Update(ctx, orderID, UpdateWorkOrderInput{Title: ptr("  ")})
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.Update(ctx, orderID, UpdateWorkOrderInput{AssignedTo: ptr("ghost")})
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.Update(ctx, missingID, UpdateWorkOrderInput{})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestWorkOrderService_ListAndDelete(t *testing.T) {
	s, _ := seededWorkOrderService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, auth.Principal{ID: aliceID}, CreateWorkOrderInput{CarID: carID, Title: "Oil"})
	require.NoError(t, err)

	open, err := s.List(ctx, models.WorkOrderFilter{Status: models.StatusOpen, CarID: carID})
	require.NoError(t, err)
	assert.Len(t, open, 1)

	done, err := s.List(ctx, models.WorkOrderFilter{Status: models.StatusCompleted})
	require.NoError(t, err)
	assert.Empty(t, done)

	for _, f := range []models.WorkOrderFilter{
		{Status: "bogus"},
		{CarID: "c-1"},
		{AssignedTo: "bob"},
	} {
		_, err = s.List(ctx, f)
		assert.ErrorIs(t, err, common.ErrorValidation, "%+v", f)
	}

	require.NoError(t, s.Delete(ctx, orderID))
	assert.ErrorIs(t, s.Delete(ctx, orderID), common.ErrorNotFound)
}

func TestWorkOrderService_MalformedIDIsNotFound(t *testing.T) {
	s, _ := seededWorkOrderService(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "w-1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = s.Update(ctx, "w-1", UpdateWorkOrderInput{})
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "w-1"), common.ErrorNotFound)
}

func TestWorkOrderService_UpdateTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := seedWorkOrderStore()
	store.workOrders[orderID] = &models.WorkOrder{ID: orderID, CarID: carID, Title: "Oil", Status: models.StatusOpen}
	s := NewWorkOrderService(db, &fakeRepoManager{s: store})
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectCommit()
	wo, err := s.Update(ctx, orderID, UpdateWorkOrderInput{AssignedTo: ptr(bobID)})
	require.NoError(t, err)
	require.NotNil(t, wo.AssignedTo)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = s.Update(ctx, orderID, UpdateWorkOrderInput{Status: ptr(models.StatusCompleted), AssignedTo: ptr(missingID)})
	assert.ErrorIs(t, err, common.ErrorValidation)

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, models.StatusOpen, store.workOrders[orderID].Status, "rolled back update leaves the row alone")
}
