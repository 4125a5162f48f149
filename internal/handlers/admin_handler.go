package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"kvr/userdb/internal/repositories"
	"kvr/userdb/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MinPasswordLength is the weakest admin password the set endpoint accepts.
const MinPasswordLength = 4

// AdminHandler serves the admin console API. Unlike the public handler it is
// schema-generic: the column set is read from the live table on every
// request, so columns added out-of-band show up without a restart.
type AdminHandler struct {
	Users  UserRepository
	Admin  AdminRepository
	Logger *zap.Logger
}

func NewAdminHandler(users UserRepository, admin AdminRepository, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{Users: users, Admin: admin, Logger: logger}
}

// FieldsHandler handles GET /api/fields: the live column name list, in
// table order, for the console to render forms from.
func (h *AdminHandler) FieldsHandler(w http.ResponseWriter, r *http.Request) {
	columns, err := h.Users.Columns()
	if err != nil {
		h.Logger.Error("failed to read table columns", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "Failed to read table columns.")
		return
	}

	fields := make([]string, 0, len(columns))
	for _, column := range columns {
		fields = append(fields, column.Name)
	}
	utils.JSON(w, http.StatusOK, map[string]any{"fields": fields})
}

// ListUsersHandler handles GET /api/users: every row, every column.
func (h *AdminHandler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Users.ListAll()
	if err != nil {
		h.Logger.Error("failed to list users", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "Failed to list users.")
		return
	}
	utils.JSON(w, http.StatusOK, rows)
}

// CreateUserHandler handles POST /api/users. username and pin are required;
// any other key matching a live column is inserted alongside, the rest are
// dropped.
func (h *AdminHandler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	username, okUsername := payload["username"].(string)
	pin, okPin := payload["pin"].(string)
	if !okUsername || username == "" || !okPin || pin == "" {
		utils.JSONError(w, http.StatusBadRequest, "'username' and 'pin' are required.")
		return
	}

	allowed, err := h.allowedColumns()
	if err != nil {
		h.Logger.Error("failed to read table columns", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "Failed to read table columns.")
		return
	}

	values := map[string]any{"username": username, "pin": pin}
	for field, value := range payload {
		if allowed[field] {
			values[field] = value
		}
	}

	if err := h.Users.CreateFromMap(values); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			utils.JSONError(w, http.StatusConflict, "Conflict: username or pin already exists.")
			return
		}
		h.Logger.Error("failed to create user", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "Failed to create user.")
		return
	}

	row, err := h.Users.GetRow(username)
	if err != nil {
		h.Logger.Error("failed to read back created user", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "Failed to read back created user.")
		return
	}
	utils.JSON(w, http.StatusCreated, row)
}

// UpdateUserHandler handles PATCH /api/users/{username}. Any subset of live
// columns may change except id and username.
func (h *AdminHandler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	allowed, err := h.allowedColumns()
	if err != nil {
		h.Logger.Error("failed to read table columns", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "Failed to read table columns.")
		return
	}

	updates := map[string]any{}
	for field, value := range payload {
		if allowed[field] {
			updates[field] = value
		}
	}
	if len(updates) == 0 {
		utils.JSONError(w, http.StatusBadRequest, "No valid fields provided for update.")
		return
	}

	if err := h.Users.UpdateFromMap(username, updates); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserNotFound):
			utils.JSONError(w, http.StatusNotFound, fmt.Sprintf("No user with username '%s'.", username))
		case errors.Is(err, repositories.ErrDuplicate):
			utils.JSONError(w, http.StatusConflict, "Conflict: pin already exists.")
		default:
			h.Logger.Error("failed to update user", zap.Error(err))
			utils.JSONError(w, http.StatusInternalServerError, "Failed to update user.")
		}
		return
	}

	row, err := h.Users.GetRow(username)
	if err != nil {
		h.Logger.Error("failed to read back updated user", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "Failed to read back updated user.")
		return
	}
	utils.JSON(w, http.StatusOK, row)
}

// DeleteUserHandler handles DELETE /api/users/{username}.
func (h *AdminHandler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	if err := h.Users.DeleteUser(username); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			utils.JSONError(w, http.StatusNotFound, fmt.Sprintf("No user with username '%s'.", username))
			return
		}
		h.Logger.Error("failed to delete user", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "Failed to delete user.")
		return
	}

	utils.JSONMessage(w, http.StatusOK, fmt.Sprintf("User '%s' deleted.", username))
}

// StatusHandler handles GET /api/admin/status. Unauthenticated: the console
// needs it to decide between the setup form and the login prompt.
func (h *AdminHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	has, err := h.Admin.HasPassword()
	if err != nil {
		h.Logger.Error("failed to read admin credential state", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "Failed to read admin credential state.")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]bool{"has_password": has})
}

// SetPasswordHandler handles POST /api/admin/set. While no password exists
// this is the unauthenticated bootstrap path (trust-on-first-use: whoever
// reaches the admin port first wins; documented, not mitigated). Once a
// password is set, rotating it requires basic auth with the current one.
func (h *AdminHandler) SetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	password, ok := payload["password"].(string)
	if !ok || len(password) < MinPasswordLength {
		utils.JSONError(w, http.StatusBadRequest,
			fmt.Sprintf("'password' must be a string of at least %d characters.", MinPasswordLength))
		return
	}

	has, err := h.Admin.HasPassword()
	if err != nil {
		h.Logger.Error("failed to read admin credential state", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "Failed to read admin credential state.")
		return
	}

	if has {
		_, current, okAuth := r.BasicAuth()
		if !okAuth {
			w.Header().Set("WWW-Authenticate", `Basic realm="admin"`)
			utils.JSONError(w, http.StatusUnauthorized, "Invalid or missing admin password.")
			return
		}
		if err := h.Admin.CheckPassword(current); err != nil {
			if errors.Is(err, repositories.ErrWrongPassword) || errors.Is(err, repositories.ErrNoCredential) {
				w.Header().Set("WWW-Authenticate", `Basic realm="admin"`)
				utils.JSONError(w, http.StatusUnauthorized, "Invalid or missing admin password.")
				return
			}
			h.Logger.Error("failed to verify admin password", zap.Error(err))
			utils.JSONError(w, http.StatusInternalServerError, "Failed to verify admin password.")
			return
		}
	}

	if err := h.Admin.SetPassword(password); err != nil {
		h.Logger.Error("failed to store admin password", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "Failed to store admin password.")
		return
	}

	utils.JSONMessage(w, http.StatusOK, "Admin password set.")
}

// allowedColumns is the live column set minus the keys the admin API never
// lets a payload touch.
func (h *AdminHandler) allowedColumns() (map[string]bool, error) {
	columns, err := h.Users.Columns()
	if err != nil {
		return nil, err
	}
	allowed := make(map[string]bool, len(columns))
	for _, column := range columns {
		if column.Name == "id" || column.Name == "username" {
			continue
		}
		allowed[column.Name] = true
	}
	return allowed, nil
}
