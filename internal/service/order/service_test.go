package order

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/maintenance/internal/config"
	"github.com/Additional-Code/maintenance/internal/directory"
	"github.com/Additional-Code/maintenance/internal/entity"
	repo "github.com/Additional-Code/maintenance/internal/repository/order"
	"github.com/Additional-Code/maintenance/pkg/errorbank"
)

const (
	validAssetID   = "123e4567-e89b-12d3-a456-426614174000"
	unknownAssetID = "96f7c53a-2f1d-47fe-b3f5-eaa6b46372da"
)

type fakeStore struct {
	orders    map[int64]*entity.Order
	nextID    int64
	createErr error
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{orders: make(map[int64]*entity.Order), nextID: 1}
}

func (f *fakeStore) Create(_ context.Context, order *entity.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	order.ID = f.nextID
	f.nextID++
	copied := *order
	f.orders[order.ID] = &copied
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*entity.Order, error) {
	stored, ok := f.orders[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeStore) List(_ context.Context, assetID string) ([]entity.Order, error) {
	var out []entity.Order
	for _, stored := range f.orders {
		if assetID != "" && stored.AssetID != assetID {
			continue
		}
		out = append(out, *stored)
	}
	return out, nil
}

func (f *fakeStore) ExistsByID(_ context.Context, id int64) (bool, error) {
	_, ok := f.orders[id]
	return ok, nil
}

func (f *fakeStore) HasOpenOrder(_ context.Context, assetID string) (bool, error) {
	for _, stored := range f.orders {
		if stored.AssetID != assetID {
			continue
		}
		for _, open := range entity.OpenStatuses() {
			if stored.Status == open {
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeStore) Update(_ context.Context, order *entity.Order) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	stored, ok := f.orders[order.ID]
	if !ok {
		return repo.ErrNotFound
	}
	stored.Description = order.Description
	stored.Status = order.Status
	stored.Priority = order.Priority
	stored.UpdatedAt = order.UpdatedAt
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	delete(f.orders, id)
	return nil
}

type fakeAssetClient struct {
	known map[string]bool
	err   error
}

func (f *fakeAssetClient) GetAssetByID(_ context.Context, id uuid.UUID) (*directory.Asset, error) {
	if f.err != nil {
		return nil, f.err
	}
	if !f.known[id.String()] {
		return nil, directory.ErrNotFound
	}
	return &directory.Asset{ID: id.String()}, nil
}

func newTestService(store Store, assets directory.AssetClient) *Service {
	return NewService(Params{
		Store:  store,
		Assets: assets,
		Config: config.Config{},
		Logger: zap.NewNop(),
	})
}

func validInput() Input {
	return Input{
		AssetID:     validAssetID,
		Description: "Routine check",
		Status:      entity.StatusPending,
		Priority:    5,
	}
}

func TestCreateUnknownAssetFailsWithoutPersisting(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeAssetClient{known: map[string]bool{validAssetID: true}})

	in := validInput()
	in.AssetID = unknownAssetID
	_, err := svc.Create(context.Background(), in, "u1")

	require.Error(t, err)
	assert.Equal(t, errorbank.KindNotFound, errorbank.From(err).Kind())
	assert.Empty(t, store.orders)
}

func TestCreateInvalidAssetIDIsBadRequest(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeAssetClient{known: map[string]bool{}})

	in := validInput()
	in.AssetID = "not-a-uuid"
	_, err := svc.Create(context.Background(), in, "u1")

	require.Error(t, err)
	assert.Equal(t, errorbank.KindBadRequest, errorbank.From(err).Kind())
}

func TestCreateUpstreamFailureAbortsCreation(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeAssetClient{err: errors.New("connection refused")})

	_, err := svc.Create(context.Background(), validInput(), "u1")

	require.Error(t, err)
	assert.Equal(t, errorbank.KindInternal, errorbank.From(err).Kind())
	assert.Empty(t, store.orders)
}

func TestCreateSetsPlacedByAndTimestamps(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeAssetClient{known: map[string]bool{validAssetID: true}})

	created, err := svc.Create(context.Background(), validInput(), "u1")

	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, validAssetID, created.AssetID)
	assert.Equal(t, "u1", created.PlacedBy)
	assert.Empty(t, created.CompletedBy)
	assert.Equal(t, entity.StatusPending, created.Status)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestCreateSecondOpenOrderConflicts(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeAssetClient{known: map[string]bool{validAssetID: true}})

	_, err := svc.Create(context.Background(), validInput(), "u1")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validInput(), "u2")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindConflict, errorbank.From(err).Kind())
	assert.Len(t, store.orders, 1)
}

func TestCreateAllowsNewOrderAfterCompletion(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeAssetClient{known: map[string]bool{validAssetID: true}})

	first, err := svc.Create(context.Background(), validInput(), "u1")
	require.NoError(t, err)
	store.orders[first.ID].Status = entity.StatusCompleted

	_, err = svc.Create(context.Background(), validInput(), "u1")
	assert.NoError(t, err)
}

func TestCreateMapsIndexViolationToConflict(t *testing.T) {
	store := newFakeStore()
	store.createErr = repo.ErrOpenOrderExists
	svc := newTestService(store, &fakeAssetClient{known: map[string]bool{validAssetID: true}})

	_, err := svc.Create(context.Background(), validInput(), "u1")

	require.Error(t, err)
	assert.Equal(t, errorbank.KindConflict, errorbank.From(err).Kind())
}

func TestUpdateMapsIndexViolationToConflict(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeAssetClient{known: map[string]bool{validAssetID: true}})

	created, err := svc.Create(context.Background(), validInput(), "u1")
	require.NoError(t, err)

	// Reopening this order while another open one exists on the asset trips
	// the same index as a duplicate insert.
	store.updateErr = repo.ErrOpenOrderExists
	in := validInput()
	in.Status = entity.StatusInProgress
	_, err = svc.Update(context.Background(), created.ID, in)

	require.Error(t, err)
	assert.Equal(t, errorbank.KindConflict, errorbank.From(err).Kind())
}

func TestGetMissingOrderIsNotFound(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeAssetClient{})

	_, err := svc.Get(context.Background(), 999)

	require.Error(t, err)
	assert.Equal(t, errorbank.KindNotFound, errorbank.From(err).Kind())
}

func TestUpdateKeepsAssetAndPlacerImmutable(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeAssetClient{known: map[string]bool{validAssetID: true}})

	created, err := svc.Create(context.Background(), validInput(), "u1")
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, Input{
		AssetID:     unknownAssetID,
		Description: "Engine repair",
		Status:      entity.StatusInProgress,
		Priority:    4,
	})

	require.NoError(t, err)
	assert.Equal(t, "Engine repair", updated.Description)
	assert.Equal(t, entity.StatusInProgress, updated.Status)
	assert.Equal(t, 4, updated.Priority)
	assert.Equal(t, validAssetID, updated.AssetID)
	assert.Equal(t, "u1", updated.PlacedBy)
}

func TestUpdateMissingOrderIsNotFound(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeAssetClient{})

	_, err := svc.Update(context.Background(), 42, validInput())

	require.Error(t, err)
	assert.Equal(t, errorbank.KindNotFound, errorbank.From(err).Kind())
}

func TestDeleteRemovesOrder(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeAssetClient{known: map[string]bool{validAssetID: true}})

	created, err := svc.Create(context.Background(), validInput(), "u1")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	_, err = svc.Get(context.Background(), created.ID)
	require.Error(t, err)
	assert.Equal(t, errorbank.KindNotFound, errorbank.From(err).Kind())
}

func TestDeleteMissingOrderIsNotFound(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeAssetClient{})

	err := svc.Delete(context.Background(), 404)

	require.Error(t, err)
	assert.Equal(t, errorbank.KindNotFound, errorbank.From(err).Kind())
}
