package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/maintenance/internal/directory"
	"github.com/Additional-Code/maintenance/internal/entity"
)

const (
	assetA = "123e4567-e89b-12d3-a456-426614174000"
	assetB = "223e4567-e89b-12d3-a456-426614174001"
)

type fakeAssetClient struct {
	calls int
	err   error
}

func (f *fakeAssetClient) GetAssetByID(_ context.Context, id uuid.UUID) (*directory.Asset, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	name := "Pump station"
	return &directory.Asset{ID: id.String(), Name: &name}, nil
}

type fakeUserClient struct {
	batchCalls int
	lastIDs    []string
	known      map[string]bool
	err        error
}

func (f *fakeUserClient) GetUserByID(_ context.Context, id string) (*directory.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &directory.User{ID: id}, nil
}

func (f *fakeUserClient) GetUsersByIDs(_ context.Context, ids []string, _ bool) ([]directory.User, error) {
	f.batchCalls++
	f.lastIDs = append([]string(nil), ids...)
	if f.err != nil {
		return nil, f.err
	}
	var users []directory.User
	for _, id := range ids {
		if f.known == nil || f.known[id] {
			username := "user-" + id
			users = append(users, directory.User{ID: id, Username: &username})
		}
	}
	return users, nil
}

func newTestResolver(assets directory.AssetClient, users directory.UserClient) *Resolver {
	return NewResolver(Params{Assets: assets, Users: users, Logger: zap.NewNop()})
}

func TestOrderEnrichesAssetAndUsers(t *testing.T) {
	assets := &fakeAssetClient{}
	users := &fakeUserClient{}
	res := newTestResolver(assets, users)

	resp := res.Order(context.Background(), &entity.Order{
		ID:          1,
		AssetID:     assetA,
		PlacedBy:    "u1",
		CompletedBy: "u2",
	})

	require.NotNil(t, resp.Asset)
	assert.Equal(t, assetA, resp.Asset.ID)
	require.NotNil(t, resp.Asset.Name)
	require.NotNil(t, resp.PlacedBy)
	assert.Equal(t, "u1", resp.PlacedBy.ID)
	require.NotNil(t, resp.CompletedBy)
	assert.Equal(t, "u2", resp.CompletedBy.ID)
	assert.Equal(t, 1, users.batchCalls)
	assert.ElementsMatch(t, []string{"u1", "u2"}, users.lastIDs)
}

func TestOrderUserFailureDegradesToPlaceholder(t *testing.T) {
	res := newTestResolver(&fakeAssetClient{}, &fakeUserClient{err: errors.New("user service down")})

	resp := res.Order(context.Background(), &entity.Order{ID: 1, AssetID: assetA, PlacedBy: "u1"})

	require.NotNil(t, resp.PlacedBy)
	assert.Equal(t, "u1", resp.PlacedBy.ID)
	assert.Nil(t, resp.PlacedBy.Username)
	assert.Nil(t, resp.PlacedBy.Email)
	assert.True(t, resp.PlacedBy.Inactive)
	assert.Empty(t, resp.PlacedBy.Roles)
}

func TestOrderAssetFailureDegradesToPlaceholder(t *testing.T) {
	res := newTestResolver(&fakeAssetClient{err: errors.New("asset service down")}, &fakeUserClient{})

	resp := res.Order(context.Background(), &entity.Order{ID: 1, AssetID: assetA, PlacedBy: "u1"})

	require.NotNil(t, resp.Asset)
	assert.Equal(t, assetA, resp.Asset.ID)
	assert.Nil(t, resp.Asset.Name)
	assert.Nil(t, resp.Asset.Status)
}

func TestOrderUnparseableAssetIDKeepsIdentifier(t *testing.T) {
	assets := &fakeAssetClient{}
	res := newTestResolver(assets, &fakeUserClient{})

	resp := res.Order(context.Background(), &entity.Order{ID: 1, AssetID: "legacy-0042", PlacedBy: "u1"})

	require.NotNil(t, resp.Asset)
	assert.Equal(t, "legacy-0042", resp.Asset.ID)
	assert.Nil(t, resp.Asset.Name)
	assert.Zero(t, assets.calls)
}

func TestOrderBlankPlacedBySkipsUserLookup(t *testing.T) {
	users := &fakeUserClient{}
	res := newTestResolver(&fakeAssetClient{}, users)

	resp := res.Order(context.Background(), &entity.Order{ID: 1, AssetID: assetA})

	assert.Nil(t, resp.PlacedBy)
	assert.Nil(t, resp.CompletedBy)
	assert.Zero(t, users.batchCalls)
}

func TestOrdersDeduplicatesUpstreamLookups(t *testing.T) {
	assets := &fakeAssetClient{}
	users := &fakeUserClient{}
	res := newTestResolver(assets, users)

	orders := []entity.Order{
		{ID: 1, AssetID: assetA, PlacedBy: "u1"},
		{ID: 2, AssetID: assetA, PlacedBy: "u1", CompletedBy: "u2"},
		{ID: 3, AssetID: assetB, PlacedBy: "u2"},
	}

	responses := res.Orders(context.Background(), orders)

	require.Len(t, responses, 3)
	// One asset call per distinct asset, one user batch for the union.
	assert.Equal(t, 2, assets.calls)
	assert.Equal(t, 1, users.batchCalls)
	assert.ElementsMatch(t, []string{"u1", "u2"}, users.lastIDs)
	assert.Equal(t, assetA, responses[0].Asset.ID)
	assert.Equal(t, assetB, responses[2].Asset.ID)
}

func TestOrdersMissingUserFromBatchGetsPlaceholder(t *testing.T) {
	users := &fakeUserClient{known: map[string]bool{"u1": true}}
	res := newTestResolver(&fakeAssetClient{}, users)

	responses := res.Orders(context.Background(), []entity.Order{
		{ID: 1, AssetID: assetA, PlacedBy: "u1"},
		{ID: 2, AssetID: assetA, PlacedBy: "u-gone"},
	})

	require.Len(t, responses, 2)
	require.NotNil(t, responses[0].PlacedBy)
	assert.NotNil(t, responses[0].PlacedBy.Username)
	require.NotNil(t, responses[1].PlacedBy)
	assert.Nil(t, responses[1].PlacedBy.Username)
	assert.True(t, responses[1].PlacedBy.Inactive)
}

func TestOrdersEmptyListMakesNoCalls(t *testing.T) {
	assets := &fakeAssetClient{}
	users := &fakeUserClient{}
	res := newTestResolver(assets, users)

	responses := res.Orders(context.Background(), nil)

	assert.Empty(t, responses)
	assert.Zero(t, assets.calls)
	assert.Zero(t, users.batchCalls)
}

func TestNotesBatchAuthorLookup(t *testing.T) {
	users := &fakeUserClient{}
	res := newTestResolver(&fakeAssetClient{}, users)

	responses := res.Notes(context.Background(), []entity.Note{
		{ID: 1, OrderID: 1, Note: "Second note", CreatedBy: "tech1"},
		{ID: 2, OrderID: 1, Note: "First note", CreatedBy: "tech1"},
	})

	require.Len(t, responses, 2)
	assert.Equal(t, 1, users.batchCalls)
	assert.Equal(t, []string{"tech1"}, users.lastIDs)
	require.NotNil(t, responses[0].CreatedBy)
	assert.Equal(t, "tech1", responses[0].CreatedBy.ID)
}

func TestNoteUserFailureDegradesToPlaceholder(t *testing.T) {
	res := newTestResolver(&fakeAssetClient{}, &fakeUserClient{err: errors.New("down")})

	resp := res.Note(context.Background(), &entity.Note{ID: 1, OrderID: 1, Note: "n", CreatedBy: "tech1"})

	require.NotNil(t, resp.CreatedBy)
	assert.Equal(t, "tech1", resp.CreatedBy.ID)
	assert.True(t, resp.CreatedBy.Inactive)
}
