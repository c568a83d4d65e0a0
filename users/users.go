package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"carenest/db"
	"carenest/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// Store is the slice of the persistence gateway the directory needs.
type Store interface {
	CreateUser(ctx context.Context, email string, fields bson.M) (bool, error)
	GetUser(ctx context.Context, email string) (bson.M, error)
	UpsertUser(ctx context.Context, email string, fields bson.M) error
}

type Handler struct {
	store Store
	log   *logrus.Logger
}

func NewHandler(store Store, log *logrus.Logger) *Handler {
	return &Handler{store: store, log: log}
}

// Create registers a user keyed by email. Creation is idempotent: an
// existing email is acknowledged without modification. Profile fields are
// stored as supplied; role and createdAt are server-set.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body bson.M
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	email, _ := body["email"].(string)
	if email == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "email is required")
		return
	}
	delete(body, "email")
	delete(body, "_id")
	delete(body, "role")
	delete(body, "createdAt")

	created, err := h.store.CreateUser(r.Context(), email, body)
	if err != nil {
		h.log.WithError(err).Error("create user failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	if !created {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"acknowledged": false, "message": "user already exists"})
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"acknowledged": true})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	doc, err := h.store.GetUser(r.Context(), ps.ByName("email"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "user not found")
			return
		}
		h.log.WithError(err).Error("get user failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, doc)
}

// Update upserts by email: creates the document when absent, otherwise
// merges only the supplied fields.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var fields bson.M
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	delete(fields, "_id")
	delete(fields, "email")

	if err := h.store.UpsertUser(r.Context(), ps.ByName("email"), fields); err != nil {
		h.log.WithError(err).Error("upsert user failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update user")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"acknowledged": true})
}
