package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tranvd/attendance-kiosk/internal/store"
)

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// employeeResponse is the JSON shape of an employee. Embeddings are never
// exposed over the API.
type employeeResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Major           string     `json:"major,omitempty"`
	Age             int        `json:"age,omitempty"`
	Email           string     `json:"email,omitempty"`
	PhoneNumber     string     `json:"phone_number,omitempty"`
	Role            string     `json:"role,omitempty"`
	PhotoURL        string     `json:"photo_url,omitempty"`
	CheckInTime     *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime    *time.Time `json:"check_out_time,omitempty"`
	AttendanceCount int        `json:"attendance_count"`
	LateCount       int        `json:"late_count"`
}

func toEmployeeResponse(e *store.Employee) employeeResponse {
	return employeeResponse{
		ID:              e.ID,
		Name:            e.Name,
		Major:           e.Major,
		Age:             e.Age,
		Email:           e.Email,
		PhoneNumber:     e.PhoneNumber,
		Role:            e.Role,
		PhotoURL:        e.PhotoURL,
		CheckInTime:     e.CheckInTime,
		CheckOutTime:    e.CheckOutTime,
		AttendanceCount: e.AttendanceCount,
		LateCount:       e.LateCount,
	}
}

type accessLogResponse struct {
	EmployeeID string    `json:"employee_id"`
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
}

type alertResponse struct {
	ID        string    `json:"id"`
	ImageURL  string    `json:"image_url"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListEmployees lists employees, optionally narrowed by repeated
// filter query parameters in field:op:value form.
func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	var filters []store.Filter
	for _, expr := range r.URL.Query()["filter"] {
		f, err := store.ParseFilter(expr)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		filters = append(filters, f)
	}

	employees, err := s.employees.List(r.Context(), filters...)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list employees")
		return
	}

	resp := make([]employeeResponse, 0, len(employees))
	for i := range employees {
		resp = append(resp, toEmployeeResponse(&employees[i]))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"count":     len(resp),
		"employees": resp,
	})
}

func (s *Server) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	e, err := s.employees.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "employee not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get employee")
		return
	}

	respondJSON(w, http.StatusOK, toEmployeeResponse(e))
}

func (s *Server) handleListAccessLogs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Surface a 404 for unknown employees instead of an empty log.
	if _, err := s.employees.Get(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "employee not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get employee")
		return
	}

	entries, err := s.logs.ListAccess(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list access logs")
		return
	}

	resp := make([]accessLogResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, accessLogResponse{
			EmployeeID: entry.EmployeeID,
			Status:     entry.Status,
			Timestamp:  entry.Timestamp,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"count": len(resp),
		"logs":  resp,
	})
}

const defaultAlertLimit = 50

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	limit := defaultAlertLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	alerts, err := s.alerts.ListAlerts(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}

	resp := make([]alertResponse, 0, len(alerts))
	for _, a := range alerts {
		resp = append(resp, alertResponse{
			ID:        a.ID,
			ImageURL:  a.ImageURL,
			Message:   a.Message,
			Timestamp: a.Timestamp,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"count":  len(resp),
		"alerts": resp,
	})
}
