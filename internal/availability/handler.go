package availability

import (
	"errors"
	"net/http"
	"strconv"

	"staylock/internal/api"
	"staylock/internal/hotel"
	"staylock/internal/metrics"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	manager Manager
	hotels  hotel.Service
}

func NewHandler(manager Manager, hotels hotel.Service) *Handler {
	return &Handler{manager: manager, hotels: hotels}
}

// CreateLock godoc
// @Summary      Lock room availability
// @Description  Reserves a quantity of rooms for a hotel, room type and date range while the caller completes checkout. Expires automatically after the TTL.
// @Tags         availability
// @Accept       json
// @Produce      json
// @Param        request  body      CreateLockRequest  true  "Lock request"
// @Success      201      {object}  CreateLockResponse
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  gin.H
// @Failure      500      {object}  api.ErrorResponse
// @Router       /availability/lock [post]
func (h *Handler) CreateLock(c *gin.Context) {
	var req CreateLockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	if errs := api.ValidateStruct(req); len(errs) > 0 {
		api.RespondWithValidationErrors(c, errs)
		return
	}

	lock, expiresAt, err := h.manager.CreateLock(c.Request.Context(), req)
	if err != nil {
		var capErr *CapacityError
		switch {
		case IsValidationError(err):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrHotelNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
		case errors.As(err, &capErr):
			c.JSON(http.StatusConflict, gin.H{
				"error":     capErr.Error(),
				"requested": capErr.Requested,
				"available": capErr.Available,
			})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create lock"})
		}
		return
	}

	c.JSON(http.StatusCreated, CreateLockResponse{
		Lock:       *lock,
		ExpiresAt:  expiresAt,
		TTLSeconds: int(h.manager.TTL().Seconds()),
	})
}

// ReleaseLock godoc
// @Summary      Release an availability lock
// @Description  Frees the locked quantity immediately. Safe to call more than once; a missing or expired lock reports released=false.
// @Tags         availability
// @Accept       json
// @Produce      json
// @Param        request  body      ReleaseLockRequest  true  "Release request"
// @Success      200      {object}  ReleaseLockResponse
// @Failure      400      {object}  gin.H
// @Failure      500      {object}  api.ErrorResponse
// @Router       /availability/release [post]
func (h *Handler) ReleaseLock(c *gin.Context) {
	var req ReleaseLockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	released, err := h.manager.ReleaseLock(c.Request.Context(), req.LockID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to release lock"})
		return
	}

	resp := ReleaseLockResponse{LockID: req.LockID, Released: released}
	if released {
		metrics.RecordLockReleased("released")
		resp.Message = "Lock released successfully"
	} else {
		metrics.RecordLockReleased("not_found")
		resp.Message = "Lock not found (may have already expired)"
	}

	c.JSON(http.StatusOK, resp)
}

// GetLockStatus godoc
// @Summary      Check an availability lock
// @Description  Reports whether the lock still exists and its remaining TTL.
// @Tags         availability
// @Produce      json
// @Param        lockID  path      string  true  "Lock ID"
// @Success      200     {object}  LockStatusResponse
// @Failure      500     {object}  api.ErrorResponse
// @Router       /availability/lock/{lockID} [get]
func (h *Handler) GetLockStatus(c *gin.Context) {
	lockID := c.Param("lockID")

	status, err := h.manager.GetLockStatus(c.Request.Context(), lockID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to check lock status"})
		return
	}

	if status == nil {
		c.JSON(http.StatusOK, LockStatusResponse{LockID: lockID, Exists: false})
		return
	}

	c.JSON(http.StatusOK, LockStatusResponse{
		LockID:     status.LockID,
		Exists:     true,
		HotelID:    status.HotelID,
		RoomType:   status.RoomType,
		CheckIn:    status.CheckIn,
		CheckOut:   status.CheckOut,
		Quantity:   status.Quantity,
		TTLSeconds: status.TTLSeconds,
	})
}

// ExtendLock godoc
// @Summary      Extend an availability lock
// @Description  Resets the lock's TTL for a checkout that is taking longer than expected.
// @Tags         availability
// @Produce      json
// @Param        lockID  path      string  true  "Lock ID"
// @Success      200     {object}  gin.H
// @Failure      404     {object}  api.ErrorResponse
// @Failure      500     {object}  api.ErrorResponse
// @Router       /availability/lock/{lockID}/extend [post]
func (h *Handler) ExtendLock(c *gin.Context) {
	lockID := c.Param("lockID")

	extended, err := h.manager.ExtendLock(c.Request.Context(), lockID, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to extend lock"})
		return
	}

	if !extended {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Lock not found or has expired"})
		return
	}

	ttlSeconds := int(h.manager.TTL().Seconds())
	c.JSON(http.StatusOK, gin.H{
		"lock_id":         lockID,
		"extended":        true,
		"new_ttl_seconds": ttlSeconds,
	})
}

// Search godoc
// @Summary      Check room availability
// @Description  Returns the free room count from persisted data and the quantity currently held by active locks for the scope.
// @Tags         availability
// @Produce      json
// @Param        hotel_id   query     int     true  "Hotel ID"
// @Param        room_type  query     string  true  "Room type"
// @Param        check_in   query     string  true  "Check-in date (YYYY-MM-DD)"
// @Param        check_out  query     string  true  "Check-out date (YYYY-MM-DD)"
// @Success      200        {object}  gin.H
// @Failure      400        {object}  gin.H
// @Failure      500        {object}  api.ErrorResponse
// @Router       /availability [get]
func (h *Handler) Search(c *gin.Context) {
	hotelID, err := strconv.Atoi(c.Query("hotel_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid hotel_id"})
		return
	}

	roomType, err := hotel.ParseRoomType(c.Query("room_type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	checkIn, err := hotel.ParseDate(c.Query("check_in"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid check_in, expected YYYY-MM-DD"})
		return
	}

	checkOut, err := hotel.ParseDate(c.Query("check_out"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid check_out, expected YYYY-MM-DD"})
		return
	}

	if !checkOut.After(checkIn) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: ErrInvalidDateRange.Error()})
		return
	}

	ctx := c.Request.Context()
	free, err := h.hotels.FreeCount(ctx, hotelID, roomType, checkIn, checkOut)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to compute availability"})
		return
	}

	scope := Scope{
		HotelID:  hotelID,
		RoomType: string(roomType),
		CheckIn:  checkIn.Format(hotel.DateLayout),
		CheckOut: checkOut.Format(hotel.DateLayout),
	}
	locked, err := h.manager.LockedQuantity(ctx, scope)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to read locked quantity"})
		return
	}

	available := free - locked
	if available < 0 {
		available = 0
	}

	c.JSON(http.StatusOK, gin.H{
		"hotel_id":        hotelID,
		"room_type":       string(roomType),
		"check_in":        scope.CheckIn,
		"check_out":       scope.CheckOut,
		"free_count":      free,
		"locked_quantity": locked,
		"available":       available,
	})
}
