package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"carenest/db"
	"carenest/models"
	"carenest/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// Store is the slice of the persistence gateway the admin gateway needs.
type Store interface {
	GetUser(ctx context.Context, email string) (bson.M, error)
	ListAllUsers(ctx context.Context) ([]bson.M, error)
	ListAllBookings(ctx context.Context, status string) ([]models.Booking, error)
	UpdateUserRole(ctx context.Context, email, role string) (int64, error)
	Stats(ctx context.Context) (*models.AdminStats, error)
}

type Handler struct {
	store Store
	log   *logrus.Logger
}

func NewHandler(store Store, log *logrus.Logger) *Handler {
	return &Handler{store: store, log: log}
}

// CheckAdmin reports whether a user with this email exists and is an admin.
// Deliberately unguarded: clients call it to decide whether to show admin UI.
func (h *Handler) CheckAdmin(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	doc, err := h.store.GetUser(r.Context(), ps.ByName("email"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			utils.RespondWithJSON(w, http.StatusOK, utils.M{"isAdmin": false})
			return
		}
		h.log.WithError(err).Error("admin check failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to check admin")
		return
	}
	role, _ := doc["role"].(string)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"isAdmin": role == models.RoleAdmin})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		h.log.WithError(err).Error("stats aggregation failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stats)
}

// ListBookings returns every booking, optionally filtered by status,
// newest first.
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	list, err := h.store.ListAllBookings(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.log.WithError(err).Error("admin list bookings failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to fetch bookings")
		return
	}
	if list == nil {
		list = []models.Booking{}
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	list, err := h.store.ListAllUsers(r.Context())
	if err != nil {
		h.log.WithError(err).Error("admin list users failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to fetch users")
		return
	}
	if list == nil {
		list = []bson.M{}
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// UpdateRole sets a user's role. Unlike booking statuses the role enum is
// closed: anything but "user" or "admin" is rejected.
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if body.Role != models.RoleUser && body.Role != models.RoleAdmin {
		utils.RespondWithError(w, http.StatusBadRequest, "role must be user or admin")
		return
	}

	matched, err := h.store.UpdateUserRole(r.Context(), ps.ByName("email"), body.Role)
	if err != nil {
		h.log.WithError(err).Error("update role failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update role")
		return
	}
	if matched == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "user not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true})
}
