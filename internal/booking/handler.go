package booking

import (
	"errors"
	"net/http"

	"staylock/internal/api"
	"staylock/internal/auth"
	"staylock/internal/availability"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateBooking godoc
// @Summary      Finalize a booking
// @Description  Converts a held availability lock into a confirmed booking. The lock must still exist and match the request's hotel, room type and dates.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      CreateBookingRequest  true  "Booking request"
// @Success      201      {object}  Booking
// @Failure      400      {object}  gin.H
// @Failure      401      {object}  api.ErrorResponse
// @Failure      409      {object}  gin.H
// @Failure      502      {object}  api.ErrorResponse
// @Router       /bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	if errs := api.ValidateStruct(req); len(errs) > 0 {
		api.RespondWithValidationErrors(c, errs)
		return
	}

	booking, err := h.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case availability.IsValidationError(err):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrLockInvalid):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  err.Error(),
				"action": "acquire a new availability lock and retry",
			})
		case errors.Is(err, ErrLockMismatch):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  err.Error(),
				"action": "acquire a lock matching the booking details and retry",
			})
		case errors.Is(err, ErrNoRoomAvailable):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrPricingUnavailable):
			c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create booking"})
		}
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// GetBooking godoc
// @Summary      Look up a booking
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        reference  path      string  true  "Booking reference"
// @Success      200        {object}  Booking
// @Failure      404        {object}  api.ErrorResponse
// @Router       /bookings/{reference} [get]
func (h *Handler) GetBooking(c *gin.Context) {
	reference := c.Param("reference")

	booking, err := h.service.GetBookingByReference(c.Request.Context(), reference)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch booking"})
		return
	}

	c.JSON(http.StatusOK, booking)
}
