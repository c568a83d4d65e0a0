package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"carenest/db"
	"carenest/models"
	"carenest/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

type contextKey string

// CallerEmailKey carries the verified admin identity through the request context.
const CallerEmailKey contextKey = "callerEmail"

// RequestIDKey carries the per-request correlation id.
const RequestIDKey contextKey = "requestID"

// UserGetter is the directory lookup the admin guard depends on.
type UserGetter interface {
	GetUser(ctx context.Context, email string) (bson.M, error)
}

// CallerEmail resolves the caller identity from the email query parameter,
// falling back to the X-User-Email header.
func CallerEmail(r *http.Request) string {
	if email := r.URL.Query().Get("email"); email != "" {
		return email
	}
	return r.Header.Get("X-User-Email")
}

// AdminOnly guards a handler behind the user directory: 401 when no identity
// is supplied, 403 when the user is unknown or not an admin.
func AdminOnly(users UserGetter, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		email := CallerEmail(r)
		if email == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, "missing caller identity")
			return
		}

		doc, err := users.GetUser(r.Context(), email)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				utils.RespondWithError(w, http.StatusForbidden, "admin access required")
				return
			}
			utils.RespondWithError(w, http.StatusInternalServerError, "failed to verify caller")
			return
		}
		if role, _ := doc["role"].(string); role != models.RoleAdmin {
			utils.RespondWithError(w, http.StatusForbidden, "admin access required")
			return
		}

		ctx := context.WithValue(r.Context(), CallerEmailKey, email)
		next(w, r.WithContext(ctx), ps)
	}
}

// RequestID tags every request with a correlation id, echoed back in the
// X-Request-ID header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLogger logs method, path, remote address and duration per request.
func RequestLogger(log *logrus.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		fields := logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"remote":   r.RemoteAddr,
			"duration": time.Since(start).String(),
		}
		if id := w.Header().Get("X-Request-ID"); id != "" {
			fields["request_id"] = id
		}
		log.WithFields(fields).Info("request served")
	})
}
