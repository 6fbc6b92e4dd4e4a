package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"staylock/internal/api"
)

type MockService struct{ mock.Mock }

func (m *MockService) CreateBooking(ctx context.Context, userID int, req CreateBookingRequest) (*Booking, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) GetBookingByReference(ctx context.Context, reference string) (*Booking, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func setupRouter(service Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	// stand-in for the auth middleware
	router.Use(func(c *gin.Context) {
		c.Set("user_id", 42)
	})

	h := NewHandler(service)
	router.POST("/bookings", h.CreateBooking)
	router.GET("/bookings/:reference", h.GetBooking)

	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateBookingHandler(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		service := new(MockService)
		router := setupRouter(service)

		service.On("CreateBooking", mock.Anything, 42, mock.Anything).Return(&Booking{
			ID:        1,
			Reference: "BK-20250601-3FA9",
			UserID:    42,
			Status:    StatusConfirmed,
		}, nil)

		w := postJSON(t, router, "/bookings", validRequest())
		require.Equal(t, http.StatusCreated, w.Code)

		var resp Booking
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "BK-20250601-3FA9", resp.Reference)
	})

	t.Run("missing fields rejected before the service runs", func(t *testing.T) {
		service := new(MockService)
		router := setupRouter(service)

		w := postJSON(t, router, "/bookings", gin.H{"hotel_id": 1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		service.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("expired lock tells the caller to re-lock", func(t *testing.T) {
		service := new(MockService)
		router := setupRouter(service)

		service.On("CreateBooking", mock.Anything, 42, mock.Anything).Return(nil, ErrLockInvalid)

		w := postJSON(t, router, "/bookings", validRequest())
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp["action"], "acquire a new availability lock")
	})

	t.Run("lock mismatch", func(t *testing.T) {
		service := new(MockService)
		router := setupRouter(service)

		service.On("CreateBooking", mock.Anything, 42, mock.Anything).Return(nil, ErrLockMismatch)

		w := postJSON(t, router, "/bookings", validRequest())
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("allocation conflict", func(t *testing.T) {
		service := new(MockService)
		router := setupRouter(service)

		service.On("CreateBooking", mock.Anything, 42, mock.Anything).Return(nil, ErrNoRoomAvailable)

		w := postJSON(t, router, "/bookings", validRequest())
		assert.Equal(t, http.StatusConflict, w.Code)

		var resp api.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, ErrNoRoomAvailable.Error(), resp.Error)
	})

	t.Run("pricing down", func(t *testing.T) {
		service := new(MockService)
		router := setupRouter(service)

		service.On("CreateBooking", mock.Anything, 42, mock.Anything).Return(nil, ErrPricingUnavailable)

		w := postJSON(t, router, "/bookings", validRequest())
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestGetBookingHandler(t *testing.T) {
	service := new(MockService)
	router := setupRouter(service)

	service.On("GetBookingByReference", mock.Anything, "BK-20250601-3FA9").
		Return(&Booking{Reference: "BK-20250601-3FA9", Status: StatusConfirmed}, nil)
	service.On("GetBookingByReference", mock.Anything, "BK-MISSING").
		Return(nil, ErrBookingNotFound)

	req, _ := http.NewRequest(http.MethodGet, "/bookings/BK-20250601-3FA9", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest(http.MethodGet, "/bookings/BK-MISSING", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateBookingHandlerUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewHandler(new(MockService))
	router.POST("/bookings", h.CreateBooking)

	w := postJSON(t, router, "/bookings", validRequest())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
