package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/maintenance/internal/config"
	"github.com/Additional-Code/maintenance/internal/directory"
	"github.com/Additional-Code/maintenance/internal/dto"
	"github.com/Additional-Code/maintenance/internal/entity"
	repo "github.com/Additional-Code/maintenance/internal/repository/order"
	"github.com/Additional-Code/maintenance/internal/resolver"
	service "github.com/Additional-Code/maintenance/internal/service/order"
)

const testAssetID = "123e4567-e89b-12d3-a456-426614174000"

type memStore struct {
	orders map[int64]*entity.Order
	nextID int64
}

func newMemStore() *memStore {
	return &memStore{orders: make(map[int64]*entity.Order), nextID: 1}
}

func (m *memStore) Create(_ context.Context, order *entity.Order) error {
	order.ID = m.nextID
	m.nextID++
	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*entity.Order, error) {
	stored, ok := m.orders[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *stored
	return &copied, nil
}

func (m *memStore) List(_ context.Context, assetID string) ([]entity.Order, error) {
	var out []entity.Order
	for _, stored := range m.orders {
		if assetID != "" && stored.AssetID != assetID {
			continue
		}
		out = append(out, *stored)
	}
	return out, nil
}

func (m *memStore) ExistsByID(_ context.Context, id int64) (bool, error) {
	_, ok := m.orders[id]
	return ok, nil
}

func (m *memStore) HasOpenOrder(_ context.Context, assetID string) (bool, error) {
	for _, stored := range m.orders {
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

func (m *memStore) Update(_ context.Context, order *entity.Order) error {
	stored, ok := m.orders[order.ID]
	if !ok {
		return repo.ErrNotFound
	}
	*stored = *order
	return nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	delete(m.orders, id)
	return nil
}

type stubAssets struct{}

func (stubAssets) GetAssetByID(_ context.Context, id uuid.UUID) (*directory.Asset, error) {
	if id.String() != testAssetID {
		return nil, directory.ErrNotFound
	}
	name := "Tank A"
	return &directory.Asset{ID: id.String(), Name: &name}, nil
}

type stubUsers struct{}

func (stubUsers) GetUserByID(_ context.Context, id string) (*directory.User, error) {
	return &directory.User{ID: id}, nil
}

func (stubUsers) GetUsersByIDs(_ context.Context, ids []string, _ bool) ([]directory.User, error) {
	var users []directory.User
	for _, id := range ids {
		users = append(users, directory.User{ID: id})
	}
	return users, nil
}

type envelope struct {
	Success bool              `json:"success"`
	Data    dto.OrderResponse `json:"data"`
	Error   struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestServer() (*echo.Echo, *memStore) {
	store := newMemStore()
	svc := service.NewService(service.Params{
		Store:  store,
		Assets: stubAssets{},
		Config: config.Config{},
		Logger: zap.NewNop(),
	})
	res := resolver.NewResolver(resolver.Params{
		Assets: stubAssets{},
		Users:  stubUsers{},
		Logger: zap.NewNop(),
	})

	e := echo.New()
	Register(e, NewHandler(svc, res))
	return e, store
}

func doRequest(e *echo.Echo, method, path, userID string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if userID != "" {
		req.Header.Set(HeaderUserID, userID)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func createBody(assetID string) string {
	return `{"asset_id":"` + assetID + `","description":"Routine check","status":"PENDING","priority":5}`
}

func TestCreateOrderReturnsEnrichedRepresentation(t *testing.T) {
	e, _ := newTestServer()

	rec := doRequest(e, http.MethodPost, "/orders", "u1", createBody(testAssetID))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Data.Asset)
	assert.Equal(t, testAssetID, resp.Data.Asset.ID)
	assert.Equal(t, entity.StatusPending, resp.Data.Status)
	assert.Equal(t, 5, resp.Data.Priority)
	require.NotNil(t, resp.Data.PlacedBy)
	assert.Equal(t, "u1", resp.Data.PlacedBy.ID)
	assert.Nil(t, resp.Data.CompletedBy)
}

func TestCreateOrderRequiresCallerIdentity(t *testing.T) {
	e, store := newTestServer()

	rec := doRequest(e, http.MethodPost, "/orders", "", createBody(testAssetID))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.orders)
}

func TestCreateOrderRejectsInvalidPriority(t *testing.T) {
	e, _ := newTestServer()

	body := `{"asset_id":"` + testAssetID + `","description":"x","status":"PENDING","priority":6}`
	rec := doRequest(e, http.MethodPost, "/orders", "u1", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrderUnknownAssetIs404(t *testing.T) {
	e, _ := newTestServer()

	rec := doRequest(e, http.MethodPost, "/orders", "u1", createBody("96f7c53a-2f1d-47fe-b3f5-eaa6b46372da"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateDuplicateOpenOrderIs409(t *testing.T) {
	e, _ := newTestServer()

	rec := doRequest(e, http.MethodPost, "/orders", "u1", createBody(testAssetID))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(e, http.MethodPost, "/orders", "u1", createBody(testAssetID))
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "conflict", resp.Error.Kind)
}

func TestGetMissingOrderIs404(t *testing.T) {
	e, _ := newTestServer()

	rec := doRequest(e, http.MethodGet, "/orders/999", "", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateOrderIgnoresAssetChanges(t *testing.T) {
	e, _ := newTestServer()

	rec := doRequest(e, http.MethodPost, "/orders", "u1", createBody(testAssetID))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	body := `{"asset_id":"96f7c53a-2f1d-47fe-b3f5-eaa6b46372da","description":"Engine repair","status":"IN_PROGRESS","priority":4}`
	rec = doRequest(e, http.MethodPut, "/orders/"+strconv.FormatInt(created.Data.ID, 10), "", body)

	require.Equal(t, http.StatusOK, rec.Code)
	var updated envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Engine repair", updated.Data.Description)
	assert.Equal(t, entity.StatusInProgress, updated.Data.Status)
	assert.Equal(t, 4, updated.Data.Priority)
	assert.Equal(t, testAssetID, updated.Data.Asset.ID)
}

func TestDeleteOrderReturnsNoContent(t *testing.T) {
	e, _ := newTestServer()

	rec := doRequest(e, http.MethodPost, "/orders", "u1", createBody(testAssetID))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	path := "/orders/" + strconv.FormatInt(created.Data.ID, 10)
	rec = doRequest(e, http.MethodDelete, path, "", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(e, http.MethodGet, path, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteMissingOrderIs404(t *testing.T) {
	e, _ := newTestServer()

	rec := doRequest(e, http.MethodDelete, "/orders/12345", "", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListOrdersFiltersByAsset(t *testing.T) {
	e, _ := newTestServer()

	rec := doRequest(e, http.MethodPost, "/orders", "u1", createBody(testAssetID))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(e, http.MethodGet, "/orders?asset_id="+testAssetID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Success bool                `json:"success"`
		Data    []dto.OrderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Data, 1)
	assert.Equal(t, testAssetID, listed.Data[0].Asset.ID)

	rec = doRequest(e, http.MethodGet, "/orders?asset_id=223e4567-e89b-12d3-a456-426614174001", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Empty(t, listed.Data)
}
