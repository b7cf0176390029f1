package handlers

import (
	"log/slog"
	"net/http"
	"time"
)

// AdminHandler обрабатывает запросы административной зоны.
// Доступ ограничен middleware'ом RequireRole(ROLE_ADMIN).
type AdminHandler struct {
	logger *slog.Logger
}

// NewAdminHandler создает новый handler для административной зоны
func NewAdminHandler(logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		logger: logger,
	}
}

// DashboardResponse представляет ответ административной панели
type DashboardResponse struct {
	Message    string    `json:"message"`
	AdminEmail string    `json:"adminEmail"`
	Timestamp  time.Time `json:"timestamp"`
	Status     string    `json:"status"`
}

// Dashboard обрабатывает GET /api/admin/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email, ok := GetEmail(ctx)
	if !ok {
		WriteError(h.logger, w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	h.logger.InfoContext(ctx, "admin dashboard accessed", slog.String("email", email))

	resp := DashboardResponse{
		Message:    "Welcome to the admin dashboard",
		AdminEmail: email,
		Timestamp:  time.Now().UTC(),
		Status:     "operational",
	}

	WriteJSON(h.logger, w, resp, http.StatusOK)
}
