/*
handlers.go - HTTP API handlers for travel window planning

PURPOSE:
  Exposes users, saved holidays, time-off allowances and generated travel
  windows over REST. Handles HTTP request/response and JSON serialization,
  and delegates generation to planner.Planner.

ENDPOINTS:
  Users:
    GET    /api/users                            List users
    POST   /api/users                            Create user

  Holidays:
    GET    /api/users/{id}/holidays              Saved holidays
    POST   /api/users/{id}/holidays              Add one holiday
    DELETE /api/users/{id}/holidays/{date}       Remove one holiday
    POST   /api/users/{id}/holidays/defaults     Seed US federal holidays

  Time off:
    GET    /api/users/{id}/time-off              Allowances and total
    PUT    /api/users/{id}/time-off              Set allowances

  Windows:
    GET    /api/users/{id}/windows               Stored windows
    POST   /api/users/{id}/windows/preview       Selection with decisions, not stored
    POST   /api/users/{id}/windows/generate      Generate (?force=true regenerates)
    DELETE /api/users/{id}/windows               Drop stored windows

  Runs:
    POST   /api/generate                         Full run over every user

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (duplicate user or window)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/warp/travel-windows/generic"
	"github.com/warp/travel-windows/planner"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   generic.AdminStore
	Planner *planner.Planner
	Clock   generic.Clock
	Log     zerolog.Logger
}

func NewHandler(store generic.AdminStore, p *planner.Planner, log zerolog.Logger) *Handler {
	return &Handler{Store: store, Planner: p, Log: log}
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// ListUsers returns all users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUserRecords(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users", err)
		return
	}

	dtos := make([]UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, toUserDTO(u))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateUser adds a user.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	user := generic.User{
		ID:        generic.UserID(req.ID),
		Email:     req.Email,
		CreatedAt: h.now(),
	}
	if err := h.Store.SaveUser(r.Context(), user); err != nil {
		h.writeStoreError(w, "Failed to create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(user))
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns the user's saved holidays in date order.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	holidays, err := h.Store.ListHolidays(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get holidays", err)
		return
	}

	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, HolidayDTO{Date: hol.Date.String(), Name: hol.Name})
	}
	writeJSON(w, http.StatusOK, map[string]any{"holidays": dtos})
}

// CreateHoliday saves one holiday date. Saving an existing date renames it.
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Date == "" {
		writeError(w, http.StatusBadRequest, "Date is required", nil)
		return
	}
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	holiday := generic.Holiday{UserID: userID, Date: date, Name: req.Name}
	if err := h.Store.SaveHoliday(r.Context(), holiday); err != nil {
		h.writeStoreError(w, "Failed to create holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, HolidayDTO{Date: date.String(), Name: req.Name})
}

// DeleteHoliday removes one saved holiday.
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	userID := generic.UserID(chi.URLParam(r, "id"))
	date, err := generic.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	if err := h.Store.DeleteHoliday(r.Context(), userID, date); err != nil {
		h.writeStoreError(w, "Failed to delete holiday", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// AddDefaultHolidays saves the observed US federal holidays for a year.
func (h *Handler) AddDefaultHolidays(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req DefaultHolidaysRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}
	if req.Year == 0 {
		req.Year = generic.Today(h.Clock).Year()
	}

	added := 0
	for _, hol := range generic.DefaultHolidays(req.Year) {
		hol.UserID = userID
		if err := h.Store.SaveHoliday(r.Context(), hol); err != nil {
			h.writeStoreError(w, "Failed to save holiday", err)
			return
		}
		added++
	}
	writeJSON(w, http.StatusCreated, map[string]any{"status": "created", "year": req.Year, "added": added})
}

// =============================================================================
// TIME OFF HANDLERS
// =============================================================================

// GetTimeOff returns raw allowances and the usable total.
func (h *Handler) GetTimeOff(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	h.writeTimeOff(w, r, userID)
}

// SetTimeOff stores allowances. Negative and fractional quantities are rejected.
func (h *Handler) SetTimeOff(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req SetTimeOffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Allowances) == 0 {
		writeError(w, http.StatusBadRequest, "At least one allowance is required", nil)
		return
	}

	raw := make(map[generic.LeaveType]decimal.Decimal, len(req.Allowances))
	for lt, qty := range req.Allowances {
		if strings.TrimSpace(lt) == "" {
			writeError(w, http.StatusBadRequest, "Leave type must not be empty", nil)
			return
		}
		raw[generic.LeaveType(lt)] = qty
	}
	if _, err := generic.NewPTOBudget(raw); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid allowance", err)
		return
	}

	for lt, qty := range raw {
		if err := h.Store.SetAllowance(r.Context(), userID, lt, qty); err != nil {
			h.writeStoreError(w, "Failed to save allowance", err)
			return
		}
	}
	h.writeTimeOff(w, r, userID)
}

func (h *Handler) writeTimeOff(w http.ResponseWriter, r *http.Request, userID generic.UserID) {
	raw, err := h.Store.ListAllowances(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get allowances", err)
		return
	}
	dto := TimeOffDTO{Allowances: make(map[string]decimal.Decimal, len(raw))}
	for lt, qty := range raw {
		dto.Allowances[string(lt)] = qty
	}
	if budget, err := generic.NewPTOBudget(raw); err == nil {
		dto.Total = budget.Total()
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// WINDOW HANDLERS
// =============================================================================

// ListWindows returns the user's stored windows ordered by start date.
func (h *Handler) ListWindows(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	ws, err := h.Store.ListWindows(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list windows", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"windows": toWindowDTOs(ws)})
}

// PreviewWindows runs the selection without storing anything.
func (h *Handler) PreviewWindows(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	sel, err := h.Planner.Preview(r.Context(), userID)
	if err != nil {
		h.writeStoreError(w, "Failed to preview windows", err)
		return
	}
	writeJSON(w, http.StatusOK, toPreviewDTO(sel))
}

// GenerateWindows plans one user. With ?force=true existing windows do not
// cause a skip; ranges already stored are reported as duplicates.
func (h *Handler) GenerateWindows(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	force := false
	if v := r.URL.Query().Get("force"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid force flag", err)
			return
		}
		force = parsed
	}

	var (
		res planner.UserResult
		err error
	)
	if force {
		res, err = h.Planner.Regenerate(r.Context(), userID)
	} else {
		res, err = h.Planner.PlanUser(r.Context(), userID)
	}
	if err != nil {
		h.writeStoreError(w, "Failed to generate windows", err)
		return
	}

	status := http.StatusCreated
	if len(res.Created) == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, GenerateUserDTO{
		Outcome:    string(res.Outcome),
		Created:    toWindowDTOs(res.Created),
		Duplicates: res.Duplicates,
	})
}

// DeleteWindows drops every stored window so the next run plans the user again.
func (h *Handler) DeleteWindows(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	n, err := h.Store.DeleteWindows(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete windows", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted", "deleted": n})
}

// RunGeneration plans every user and returns the run report.
func (h *Handler) RunGeneration(w http.ResponseWriter, r *http.Request) {
	report, err := h.Planner.Run(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Generation run failed", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// =============================================================================
// HELPERS
// =============================================================================

// requireUser resolves {id} and writes 404 when the user does not exist.
func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (generic.UserID, bool) {
	userID := generic.UserID(chi.URLParam(r, "id"))
	if _, err := h.Store.GetUser(r.Context(), userID); err != nil {
		h.writeStoreError(w, "Failed to get user", err)
		return "", false
	}
	return userID, true
}

// writeStoreError maps domain errors to status codes.
func (h *Handler) writeStoreError(w http.ResponseWriter, message string, err error) {
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case generic.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Log.Error().Err(err).Msg(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func (h *Handler) now() time.Time {
	clock := h.Clock
	if clock == nil {
		clock = time.Now
	}
	return clock().UTC()
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
