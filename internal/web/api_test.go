package web

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"bike-factory/internal/auth"
	"bike-factory/internal/config"
	"bike-factory/internal/ledger"
	"bike-factory/internal/records"
	"bike-factory/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer 搭起一套不带事件总线与持久化的 API
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	led, err := ledger.New(
		config.DefaultOpeningStock(),
		config.DefaultStations(),
		config.DefaultRecipes(),
		logger, nil, nil,
	)
	require.NoError(t, err)

	api := &API{
		Ledger:  led,
		Users:   auth.NewStore(logger),
		Records: records.NewBook(),
		Tracker: NewStateTracker(nil),
		Hub:     NewHub(),
		Logger:  logger,
	}
	srv := httptest.NewServer(api.NewMux())
	t.Cleanup(srv.Close)
	return srv
}

// do 发送一个带 Basic Auth 的 JSON 请求
func do(t *testing.T, srv *httptest.Server, method, path, user, pass string, body interface{}) *http.Response {
	t.Helper()
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, srv.URL+path, buf)
	require.NoError(t, err)
	if user != "" {
		req.SetBasicAuth(user, pass)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestMissingCredentialsAreRejected(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/api/snapshot", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("WWW-Authenticate"), "Basic")
}

func TestWrongPasswordIsRejected(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/api/snapshot", "admin", "wrong", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRestockByInventoryManager(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodPost, "/api/parts/restock", "manager1", "m123",
		map[string]interface{}{"part": "Motors", "amount": 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Part     types.PartID `json:"part"`
		Quantity int          `json:"quantity"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, types.PartID("Motors"), body.Part)
	assert.Equal(t, 8, body.Quantity)
}

func TestSalesCannotCompleteStation(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodPost, "/api/stations/complete", "sales1", "s123",
		map[string]interface{}{"station": "FrameWelded"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	var body errorBody
	decodeBody(t, resp, &body)
	assert.Equal(t, string(ledger.CodePermissionDenied), body.Code)
}

func TestUnknownStationIs404(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodPost, "/api/stations/complete", "worker1", "w123",
		map[string]interface{}{"station": "Teleporter"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body errorBody
	decodeBody(t, resp, &body)
	assert.Equal(t, string(ledger.CodeUnknownStation), body.Code)
}

func TestInsufficientPartsIsConflict(t *testing.T) {
	srv := newTestServer(t)

	// 默认库存只有 5 个电机，第六辆电动车装不出来
	for i := 0; i < 5; i++ {
		resp := do(t, srv, http.MethodPost, "/api/bikes/assemble", "worker1", "w123",
			map[string]interface{}{"model": "Electric"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp := do(t, srv, http.MethodPost, "/api/bikes/assemble", "worker1", "w123",
		map[string]interface{}{"model": "Electric"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var body errorBody
	decodeBody(t, resp, &body)
	assert.Equal(t, string(ledger.CodeInsufficientParts), body.Code)
}

func TestOrderFlowOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	// 缺字段的订单直接打回
	resp := do(t, srv, http.MethodPost, "/api/orders", "sales1", "s123",
		types.Order{CustomerName: "Ada", BikeModel: types.ModelTour})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/api/orders", "sales1", "s123", types.Order{
		CustomerName:    "Ada",
		ContactInfo:     "ada@example.com",
		DeliveryAddress: "1 Factory Way",
		BikeModel:       types.ModelTour,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var order types.Order
	decodeBody(t, resp, &order)
	assert.NotEmpty(t, order.Ref)
	assert.Equal(t, types.OrderPending, order.Status)

	// 成品库存为零，交付被拒且订单保持 Pending
	resp = do(t, srv, http.MethodPost, "/api/orders/fulfill", "worker1", "w123",
		map[string]string{"ref": order.Ref})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var body errorBody
	decodeBody(t, resp, &body)
	assert.Equal(t, string(ledger.CodeNoBikeAvailable), body.Code)

	resp = do(t, srv, http.MethodPost, "/api/bikes/assemble", "worker1", "w123",
		map[string]interface{}{"model": "Tour"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/api/orders/fulfill", "worker1", "w123",
		map[string]string{"ref": order.Ref})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fulfilled types.Order
	decodeBody(t, resp, &fulfilled)
	assert.Equal(t, types.OrderCompleted, fulfilled.Status)

	// 交付过的订单不可重复交付
	resp = do(t, srv, http.MethodPost, "/api/orders/fulfill", "worker1", "w123",
		map[string]string{"ref": order.Ref})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSnapshotEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/api/snapshot", "admin", "password", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap ledger.Snapshot
	decodeBody(t, resp, &snap)
	assert.Equal(t, 20, snap.Parts["Tubular Steel"])
	assert.Len(t, snap.Production, 10)
	assert.Len(t, snap.Bikes, 5)
}

func TestReportSummarisesTheLedger(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodPost, "/api/bikes/assemble", "worker1", "w123",
		map[string]interface{}{"model": "Sport"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = do(t, srv, http.MethodPost, "/api/orders", "sales1", "s123", types.Order{
		CustomerName:    "Ada",
		ContactInfo:     "ada@example.com",
		DeliveryAddress: "1 Factory Way",
		BikeModel:       types.ModelSport,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/api/report", "admin", "password", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report Report
	decodeBody(t, resp, &report)
	assert.Equal(t, 1, report.Bikes[types.ModelSport])
	assert.Equal(t, OrderSummary{Total: 1, Pending: 1, Completed: 0}, report.Orders)
	assert.Len(t, report.Production, 10)
}

func TestStateEndpointNeedsNoAuth(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/api/state", "", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUserManagementRequiresAdmin(t *testing.T) {
	srv := newTestServer(t)

	newUser := map[string]interface{}{"username": "worker2", "password": "w456", "role": "ProductionWorker"}

	resp := do(t, srv, http.MethodPost, "/api/users", "manager1", "m123", newUser)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/api/users", "admin", "password", newUser)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// 新用户立即可用
	resp = do(t, srv, http.MethodGet, "/api/snapshot", "worker2", "w456", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, srv, http.MethodDelete, "/api/users/worker2", "admin", "password", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// 内置管理员不可删除
	resp = do(t, srv, http.MethodDelete, "/api/users/admin", "admin", "password", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestMaintenanceRecords(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodPost, "/api/maintenance", "admin", "password",
		types.MaintenanceRecord{Station: "Painting"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	rec := types.MaintenanceRecord{
		Station: "Painting", Timestamp: "2024-01-02 10:00", Description: "nozzle cleaned",
	}
	resp = do(t, srv, http.MethodPost, "/api/maintenance", "admin", "password", rec)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/api/maintenance", "admin", "password", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []types.MaintenanceRecord
	decodeBody(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, rec, list[0])
}

func TestSaveWithoutPersistenceIsNotImplemented(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodPost, "/api/save", "admin", "password", nil)
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/api/save", "sales1", "s123", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
