package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"bike-factory/internal/auth"
	"bike-factory/internal/ledger"
	"bike-factory/internal/records"
	"bike-factory/internal/types"
	"bike-factory/internal/util"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// API 聚合 HTTP 层需要的全部协作者
// 认证在这里完成（Basic Auth 对照用户目录），能力校验在核心完成：
// 即使某个入口忘了挡，台账也会拒绝无权的操作
type API struct {
	Ledger  *ledger.Ledger
	Users   *auth.Store
	Records *records.Book
	Tracker *StateTracker
	Hub     *Hub
	Save    func() error // 写出全量快照并截断操作日志（检查点）
	Logger  *slog.Logger
}

// NewMux 构建完整的路由表
func (a *API) NewMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws", a.Hub.ServeWs)

	mux.HandleFunc("POST /api/parts/restock", a.withActor(a.handleRestock))
	mux.HandleFunc("POST /api/stations/complete", a.withActor(a.handleCompleteStation))
	mux.HandleFunc("POST /api/bikes/assemble", a.withActor(a.handleAssemble))
	mux.HandleFunc("POST /api/orders", a.withActor(a.handleSubmitOrder))
	mux.HandleFunc("POST /api/orders/fulfill", a.withActor(a.handleFulfill))

	mux.HandleFunc("GET /api/snapshot", a.withActor(a.handleSnapshot))
	mux.HandleFunc("GET /api/report", a.withActor(a.handleReport))
	mux.HandleFunc("GET /api/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, a.Tracker.GetStateSnapshot())
	})

	mux.HandleFunc("GET /api/maintenance", a.withActor(a.handleListMaintenance))
	mux.HandleFunc("POST /api/maintenance", a.withActor(a.handleAddMaintenance))
	mux.HandleFunc("GET /api/shifts", a.withActor(a.handleListShifts))
	mux.HandleFunc("POST /api/shifts", a.withActor(a.handleAddShift))
	mux.HandleFunc("GET /api/schedule", a.withActor(a.handleListSchedule))
	mux.HandleFunc("POST /api/schedule", a.withActor(a.handleAddSchedule))

	mux.HandleFunc("POST /api/users", a.withActor(a.handleCreateUser))
	mux.HandleFunc("DELETE /api/users/{name}", a.withActor(a.handleDeleteUser))

	mux.HandleFunc("POST /api/save", a.withActor(a.handleSave))

	return mux
}

// actorHandler 是通过认证后的处理函数签名
type actorHandler func(w http.ResponseWriter, r *http.Request, actor types.Actor)

// withActor 完成 Basic Auth 认证并为请求分配 Trace ID
func (a *API) withActor(next actorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="bike-factory"`)
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "authentication required"})
			return
		}
		actor, err := a.Users.Authenticate(username, password)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
			return
		}

		traceID := util.NewTraceID()
		r = r.WithContext(util.ContextWithTraceID(r.Context(), traceID))
		a.Logger.Info("API 请求",
			"method", r.Method, "path", r.URL.Path,
			"actor", actor.Name, "role", actor.Role, "trace_id", traceID)

		next(w, r, actor)
	}
}

func (a *API) handleRestock(w http.ResponseWriter, r *http.Request, actor types.Actor) {
	var req struct {
		Part   types.PartID `json:"part"`
		Amount int          `json:"amount"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := a.Ledger.AddStock(actor, req.Part, req.Amount); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"part": req.Part, "quantity": a.Ledger.Get(req.Part),
	})
}

func (a *API) handleCompleteStation(w http.ResponseWriter, r *http.Request, actor types.Actor) {
	var req struct {
		Station types.StationID `json:"station"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := a.Ledger.CompleteStation(actor, req.Station); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"station": req.Station})
}

func (a *API) handleAssemble(w http.ResponseWriter, r *http.Request, actor types.Actor) {
	var req struct {
		Model types.BikeModel `json:"model"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := a.Ledger.Assemble(actor, req.Model); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"model": req.Model})
}

func (a *API) handleSubmitOrder(w http.ResponseWriter, r *http.Request, actor types.Actor) {
	var draft types.Order
	if !decode(w, r, &draft) {
		return
	}
	order, err := a.Ledger.SubmitOrder(actor, draft)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (a *API) handleFulfill(w http.ResponseWriter, r *http.Request, actor types.Actor) {
	var req struct {
		Ref string `json:"ref"`
	}
	if !decode(w, r, &req) {
		return
	}
	order, err := a.Ledger.Fulfill(actor, req.Ref)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (a *API) handleSnapshot(w http.ResponseWriter, r *http.Request, _ types.Actor) {
	writeJSON(w, http.StatusOK, a.Ledger.Snapshot())
}

// Report 汇总仪表板上的关键数字：工站完工计数、成品库存和订单统计
type Report struct {
	Production map[types.StationID]int `json:"production"`
	Bikes      map[types.BikeModel]int `json:"bike_inventory"`
	Orders     OrderSummary            `json:"orders"`
}

func (a *API) handleReport(w http.ResponseWriter, r *http.Request, _ types.Actor) {
	snap := a.Ledger.Snapshot()
	pending := snap.PendingOrders()
	writeJSON(w, http.StatusOK, Report{
		Production: snap.Production,
		Bikes:      snap.Bikes,
		Orders: OrderSummary{
			Total:     len(snap.Orders),
			Pending:   pending,
			Completed: len(snap.Orders) - pending,
		},
	})
}

func (a *API) handleListMaintenance(w http.ResponseWriter, r *http.Request, _ types.Actor) {
	writeJSON(w, http.StatusOK, a.Records.Maintenance())
}

func (a *API) handleAddMaintenance(w http.ResponseWriter, r *http.Request, _ types.Actor) {
	var rec types.MaintenanceRecord
	if !decode(w, r, &rec) {
		return
	}
	if err := a.Records.AddMaintenance(rec); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (a *API) handleListShifts(w http.ResponseWriter, r *http.Request, _ types.Actor) {
	writeJSON(w, http.StatusOK, a.Records.Shifts())
}

func (a *API) handleAddShift(w http.ResponseWriter, r *http.Request, _ types.Actor) {
	var s types.Shift
	if !decode(w, r, &s) {
		return
	}
	if err := a.Records.AddShift(s); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (a *API) handleListSchedule(w http.ResponseWriter, r *http.Request, _ types.Actor) {
	writeJSON(w, http.StatusOK, a.Records.Schedule())
}

func (a *API) handleAddSchedule(w http.ResponseWriter, r *http.Request, _ types.Actor) {
	var e types.ScheduleEntry
	if !decode(w, r, &e) {
		return
	}
	if err := a.Records.AddScheduleEntry(e); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (a *API) handleCreateUser(w http.ResponseWriter, r *http.Request, actor types.Actor) {
	if actor.Role != types.RoleAdmin {
		writeJSON(w, http.StatusForbidden, errorBody{Error: "user management requires the Admin role"})
		return
	}
	var req struct {
		Username string     `json:"username"`
		Password string     `json:"password"`
		Role     types.Role `json:"role"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := a.Users.Create(req.Username, req.Password, req.Role); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"username": req.Username})
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request, actor types.Actor) {
	if actor.Role != types.RoleAdmin {
		writeJSON(w, http.StatusForbidden, errorBody{Error: "user management requires the Admin role"})
		return
	}
	if err := a.Users.Delete(r.PathValue("name")); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleSave(w http.ResponseWriter, r *http.Request, actor types.Actor) {
	if actor.Role != types.RoleAdmin {
		writeJSON(w, http.StatusForbidden, errorBody{Error: "saving requires the Admin role"})
		return
	}
	if a.Save == nil {
		writeJSON(w, http.StatusNotImplemented, errorBody{Error: "persistence is not configured"})
		return
	}
	if err := a.Save(); err != nil {
		a.Logger.Error("写出存档失败", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeError 把核心错误映射为 HTTP 状态码，消息原样透出
func (a *API) writeError(w http.ResponseWriter, err error) {
	var le *ledger.Error
	if errors.As(err, &le) {
		status := http.StatusBadRequest
		switch le.Code {
		case ledger.CodePermissionDenied:
			status = http.StatusForbidden
		case ledger.CodeUnknownStation, ledger.CodeUnknownRecipe,
			ledger.CodeUnknownResource, ledger.CodeOrderNotFound:
			status = http.StatusNotFound
		case ledger.CodeInsufficientResource, ledger.CodeInsufficientParts,
			ledger.CodeNoBikeAvailable:
			status = http.StatusConflict
		}
		writeJSON(w, status, errorBody{Error: le.Message, Code: string(le.Code)})
		return
	}

	status := http.StatusBadRequest
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, auth.ErrBuiltinAdmin):
		status = http.StatusForbidden
	case errors.Is(err, auth.ErrDuplicateUser):
		status = http.StatusConflict
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("写出响应失败", "error", err)
	}
}
