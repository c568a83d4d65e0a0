package bookings_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"carenest/bookings"
	"carenest/db"
	"carenest/mailer"
	"carenest/models"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateBooking(ctx context.Context, b models.Booking) (string, error) {
	args := m.Called(ctx, b)
	return args.String(0), args.Error(1)
}

func (m *MockStore) ListBookingsByEmail(ctx context.Context, email string) ([]models.Booking, error) {
	args := m.Called(ctx, email)
	if list, ok := args.Get(0).([]models.Booking); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if b, ok := args.Get(0).(*models.Booking); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) UpdateBookingStatus(ctx context.Context, id, status string) (*models.Booking, error) {
	args := m.Called(ctx, id, status)
	if b, ok := args.Get(0).(*models.Booking); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) DeleteBooking(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

type stubMailer struct {
	err  error
	sent []*models.Booking
}

func (s *stubMailer) SendBookingConfirmation(b *models.Booking) error {
	s.sent = append(s.sent, b)
	return s.err
}

func newRouter(store bookings.Store, mail mailer.Mailer) *httprouter.Router {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	h := bookings.NewHandler(store, mail, logger)

	router := httprouter.New()
	router.POST("/bookings", h.Create)
	router.GET("/bookings", h.ListByUser)
	router.GET("/bookings/:id", h.Get)
	router.PATCH("/bookings/:id", h.UpdateStatus)
	router.DELETE("/bookings/:id", h.Delete)
	return router
}

const createBody = `{
	"userEmail": "rahim@example.com",
	"userName": "Rahim",
	"serviceName": "Baby Care",
	"durationValue": 4,
	"durationType": "hourly",
	"area": "Mirpur-10",
	"city": "Dhaka",
	"district": "Dhaka",
	"division": "Dhaka",
	"address": "House 12, Road 3",
	"totalCost": 1200,
	"status": "Confirmed"
}`

func TestCreateForcesPendingStatus(t *testing.T) {
	store := new(MockStore)
	insertedID := primitive.NewObjectID().Hex()
	store.On("CreateBooking", mock.Anything, mock.MatchedBy(func(b models.Booking) bool {
		return b.Status == models.StatusPending && !b.CreatedAt.IsZero()
	})).Return(insertedID, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(createBody))
	newRouter(store, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	store.AssertExpectations(t)
}

func TestCreatePersistsLocationFields(t *testing.T) {
	store := new(MockStore)
	store.On("CreateBooking", mock.Anything, mock.MatchedBy(func(b models.Booking) bool {
		return b.Area == "Mirpur-10" && b.City == "Dhaka" &&
			b.District == "Dhaka" && b.Division == "Dhaka" &&
			b.Address == "House 12, Road 3"
	})).Return(primitive.NewObjectID().Hex(), nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(createBody))
	newRouter(store, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	store.AssertExpectations(t)
}

func TestCreateSucceedsWhenEmailFails(t *testing.T) {
	store := new(MockStore)
	insertedID := primitive.NewObjectID().Hex()
	store.On("CreateBooking", mock.Anything, mock.Anything).Return(insertedID, nil)

	mail := &stubMailer{err: errors.New("smtp unreachable")}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(createBody))
	newRouter(store, mail).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, mail.sent, 1)

	var resp map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, insertedID, resp["insertedId"])
}

func TestCreateSucceedsWithoutMailer(t *testing.T) {
	store := new(MockStore)
	store.On("CreateBooking", mock.Anything, mock.Anything).
		Return(primitive.NewObjectID().Hex(), nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(createBody))
	newRouter(store, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateSendsConfirmationToBookingEmail(t *testing.T) {
	store := new(MockStore)
	store.On("CreateBooking", mock.Anything, mock.Anything).
		Return(primitive.NewObjectID().Hex(), nil)

	mail := &stubMailer{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(createBody))
	newRouter(store, mail).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	if assert.Len(t, mail.sent, 1) {
		assert.Equal(t, "rahim@example.com", mail.sent[0].UserEmail)
		assert.Equal(t, models.StatusPending, mail.sent[0].Status)
	}
}

func TestListByUserRequiresEmail(t *testing.T) {
	store := new(MockStore)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	newRouter(store, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	store.AssertNotCalled(t, "ListBookingsByEmail", mock.Anything, mock.Anything)
}

func TestListByUserReturnsOwnBookings(t *testing.T) {
	store := new(MockStore)
	store.On("ListBookingsByEmail", mock.Anything, "rahim@example.com").
		Return([]models.Booking{{UserEmail: "rahim@example.com", ServiceName: "Baby Care"}}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/bookings?email=rahim@example.com", nil)
	newRouter(store, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	store.AssertExpectations(t)
}

func TestGetUnknownBookingReturns404(t *testing.T) {
	store := new(MockStore)
	store.On("GetBooking", mock.Anything, "missing").Return(nil, db.ErrNotFound)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/bookings/missing", nil)
	newRouter(store, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateStatusAcceptsAnyValue(t *testing.T) {
	store := new(MockStore)
	store.On("UpdateBookingStatus", mock.Anything, "abc", "On The Way").
		Return(&models.Booking{Status: "On The Way"}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/bookings/abc", strings.NewReader(`{"status":"On The Way"}`))
	newRouter(store, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	store.AssertExpectations(t)
}

func TestUpdateStatusRequiresStatus(t *testing.T) {
	store := new(MockStore)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/bookings/abc", strings.NewReader(`{}`))
	newRouter(store, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteMissingBookingIsNoop(t *testing.T) {
	store := new(MockStore)
	store.On("DeleteBooking", mock.Anything, "missing").Return(int64(0), nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/bookings/missing", nil)
	newRouter(store, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(0), resp["deletedCount"])
}
