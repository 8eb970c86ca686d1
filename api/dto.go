/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  domain types (generic, windows, planner) from the external contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/travel-windows/generic"
	"github.com/warp/travel-windows/windows"
)

// =============================================================================
// USERS
// =============================================================================

type UserDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUserRequest creates a user. ID is generated when empty.
type CreateUserRequest struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func toUserDTO(u generic.User) UserDTO {
	return UserDTO{ID: string(u.ID), Email: u.Email, CreatedAt: u.CreatedAt}
}

// =============================================================================
// HOLIDAYS
// =============================================================================

type HolidayDTO struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

type CreateHolidayRequest struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// DefaultHolidaysRequest seeds the US federal calendar. Year defaults to
// the current year.
type DefaultHolidaysRequest struct {
	Year int `json:"year"`
}

// =============================================================================
// TIME OFF
// =============================================================================

// TimeOffDTO lists raw allowances and the usable total.
type TimeOffDTO struct {
	Allowances map[string]decimal.Decimal `json:"allowances"`
	Total      int                        `json:"total"`
}

// SetTimeOffRequest replaces the given leave types' allowances.
type SetTimeOffRequest struct {
	Allowances map[string]decimal.Decimal `json:"allowances"`
}

// =============================================================================
// WINDOWS
// =============================================================================

type WindowDTO struct {
	ID        string    `json:"id,omitempty"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Days      int       `json:"days"`
	PTOCost   int       `json:"pto_cost"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

func toWindowDTO(w generic.Window) WindowDTO {
	return WindowDTO{
		ID:        string(w.ID),
		StartDate: w.Period.Start.String(),
		EndDate:   w.Period.End.String(),
		Days:      w.Period.Len(),
		PTOCost:   w.PTOCost,
		CreatedAt: w.CreatedAt,
	}
}

func toWindowDTOs(ws []generic.Window) []WindowDTO {
	dtos := make([]WindowDTO, 0, len(ws))
	for _, w := range ws {
		dtos = append(dtos, toWindowDTO(w))
	}
	return dtos
}

type DecisionDTO struct {
	Anchor    string `json:"anchor"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	PTOCost   int    `json:"pto_cost"`
	Outcome   string `json:"outcome"`
}

// PreviewDTO is a selection that was not persisted.
type PreviewDTO struct {
	Windows   []WindowDTO   `json:"windows"`
	Decisions []DecisionDTO `json:"decisions"`
	Committed int           `json:"committed"`
	Remaining int           `json:"remaining"`
	LongTrips int           `json:"long_trips"`
}

func toPreviewDTO(sel windows.Selection) PreviewDTO {
	dto := PreviewDTO{
		Windows:   make([]WindowDTO, 0, len(sel.Windows)),
		Decisions: make([]DecisionDTO, 0, len(sel.Decisions)),
		Committed: sel.State.Committed,
		Remaining: sel.Remaining(),
		LongTrips: sel.State.LongTrips,
	}
	for _, a := range sel.Windows {
		dto.Windows = append(dto.Windows, WindowDTO{
			StartDate: a.Period.Start.String(),
			EndDate:   a.Period.End.String(),
			Days:      a.Days(),
			PTOCost:   a.PTOCost,
		})
	}
	for _, d := range sel.Decisions {
		dto.Decisions = append(dto.Decisions, DecisionDTO{
			Anchor:    d.Anchor.String(),
			StartDate: d.Candidate.Period.Start.String(),
			EndDate:   d.Candidate.Period.End.String(),
			PTOCost:   d.Candidate.PTOCost,
			Outcome:   string(d.Outcome),
		})
	}
	return dto
}

// GenerateUserDTO reports one user's generation.
type GenerateUserDTO struct {
	Outcome    string      `json:"outcome"`
	Created    []WindowDTO `json:"created"`
	Duplicates int         `json:"duplicates"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
