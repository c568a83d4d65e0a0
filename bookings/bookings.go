package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"carenest/db"
	"carenest/mailer"
	"carenest/models"
	"carenest/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is the slice of the persistence gateway the ledger needs.
type Store interface {
	CreateBooking(ctx context.Context, b models.Booking) (string, error)
	ListBookingsByEmail(ctx context.Context, email string) ([]models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id, status string) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id string) (int64, error)
}

type Handler struct {
	store Store
	mail  mailer.Mailer // nil when SMTP is not configured
	log   *logrus.Logger
}

func NewHandler(store Store, mail mailer.Mailer, log *logrus.Logger) *Handler {
	return &Handler{store: store, mail: mail, log: log}
}

// Create inserts a booking with status forced to Pending and createdAt
// stamped server-side, then attempts the confirmation email. The email is
// best-effort: transport errors are logged and never affect the response.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var b models.Booking
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	b.ID = primitive.NilObjectID
	b.Status = models.StatusPending
	b.CreatedAt = time.Now()

	id, err := h.store.CreateBooking(r.Context(), b)
	if err != nil {
		h.log.WithError(err).Error("create booking failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create booking")
		return
	}
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		b.ID = oid
	}

	if h.mail != nil {
		if err := h.mail.SendBookingConfirmation(&b); err != nil {
			h.log.WithError(err).WithField("booking", id).Error("confirmation email failed")
		}
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"insertedId": id, "booking": b})
}

// ListByUser requires the email query parameter and returns that user's
// bookings, newest first.
func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	email := r.URL.Query().Get("email")
	if email == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	list, err := h.store.ListBookingsByEmail(r.Context(), email)
	if err != nil {
		h.log.WithError(err).Error("list bookings failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to fetch bookings")
		return
	}
	if list == nil {
		list = []models.Booking{}
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	b, err := h.store.GetBooking(r.Context(), ps.ByName("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "booking not found")
			return
		}
		h.log.WithError(err).Error("get booking failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to fetch booking")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, b)
}

// UpdateStatus patches only the status field. Any non-empty string is
// accepted; the status set is open.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if body.Status == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "status is required")
		return
	}

	updated, err := h.store.UpdateBookingStatus(r.Context(), ps.ByName("id"), body.Status)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "booking not found")
			return
		}
		h.log.WithError(err).Error("update booking status failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update booking")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true, "booking": updated})
}

// Delete removes by id. A miss is reported as zero deletions, not an error.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	deleted, err := h.store.DeleteBooking(r.Context(), ps.ByName("id"))
	if err != nil {
		h.log.WithError(err).Error("delete booking failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to delete booking")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"deletedCount": deleted})
}
