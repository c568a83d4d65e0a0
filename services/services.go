package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"carenest/db"
	"carenest/models"
	"carenest/rdx"
	"carenest/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is the slice of the persistence gateway the catalog needs.
type Store interface {
	ListServices(ctx context.Context, createdBy string) ([]models.Service, error)
	GetService(ctx context.Context, id string) (*models.Service, error)
	CreateService(ctx context.Context, svc models.Service) (string, error)
	UpdateService(ctx context.Context, id string, fields bson.M) (int64, error)
	DeleteService(ctx context.Context, id string) (int64, error)
}

type Handler struct {
	store Store
	cache *rdx.Cache // nil when Redis is not configured
	log   *logrus.Logger
}

func NewHandler(store Store, cache *rdx.Cache, log *logrus.Logger) *Handler {
	return &Handler{store: store, cache: cache, log: log}
}

// List returns the catalog, optionally filtered by creator email, newest
// first. The unfiltered listing goes through the cache.
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	createdBy := r.URL.Query().Get("email")

	if createdBy == "" {
		if cached, ok := h.cache.GetCatalog(r.Context()); ok {
			utils.RespondWithJSON(w, http.StatusOK, cached)
			return
		}
	}

	list, err := h.store.ListServices(r.Context(), createdBy)
	if err != nil {
		h.log.WithError(err).Error("list services failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to fetch services")
		return
	}
	if list == nil {
		list = []models.Service{}
	}
	if createdBy == "" {
		h.cache.SetCatalog(r.Context(), list)
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	svc, err := h.store.GetService(r.Context(), ps.ByName("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "service not found")
			return
		}
		h.log.WithError(err).Error("get service failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to fetch service")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, svc)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var svc models.Service
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	svc.ID = primitive.NilObjectID
	svc.CreatedAt = time.Now()

	id, err := h.store.CreateService(r.Context(), svc)
	if err != nil {
		h.log.WithError(err).Error("create service failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create service")
		return
	}
	h.cache.InvalidateCatalog(r.Context())
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"insertedId": id})
}

// Update applies a partial field set. Identity and creation stamps are
// stripped from the payload; everything else is written as given.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var fields bson.M
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	delete(fields, "_id")
	delete(fields, "createdAt")

	matched, err := h.store.UpdateService(r.Context(), ps.ByName("id"), fields)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "service not found")
			return
		}
		h.log.WithError(err).Error("update service failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update service")
		return
	}
	h.cache.InvalidateCatalog(r.Context())
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"matchedCount": matched})
}

// Delete removes by id. A miss is reported as zero deletions, not an error.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	deleted, err := h.store.DeleteService(r.Context(), ps.ByName("id"))
	if err != nil {
		h.log.WithError(err).Error("delete service failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to delete service")
		return
	}
	h.cache.InvalidateCatalog(r.Context())
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"deletedCount": deleted})
}
