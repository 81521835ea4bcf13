package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/senpow/italy-restaurant-booking/booking"
	"github.com/senpow/italy-restaurant-booking/middlewares"
	"github.com/senpow/italy-restaurant-booking/models"
	"github.com/senpow/italy-restaurant-booking/utils"
)

// ReservationController serves the interactive booking flow of signed in
// guests: time, table, contact details, confirm.
type ReservationController struct {
	Service *booking.Service
}

func NewReservationController(svc *booking.Service) *ReservationController {
	return &ReservationController{Service: svc}
}

// GetSlots -> GET /api/slots?date=&partySize=
func (rc *ReservationController) GetSlots(c *gin.Context) {
	partySize, err := queryInt(c, "partySize")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	overview, err := rc.Service.SlotOverview(c.Request.Context(), c.Query("date"), partySize)
	if err != nil {
		respondServiceError(c, "Slot overview", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Available time slots", overview)
}

// GetTables -> GET /api/tables?date=&time=&partySize=
func (rc *ReservationController) GetTables(c *gin.Context) {
	partySize, err := queryInt(c, "partySize")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tableMap, err := rc.Service.TableMap(c.Request.Context(), c.Query("date"), c.Query("time"), partySize)
	if err != nil {
		respondServiceError(c, "Table map", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Floor plan", tableMap)
}

// CreateReservation -> POST /api/reservations
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var req struct {
		Date        string `json:"date" binding:"required"`
		Time        string `json:"time" binding:"required"`
		PartySize   int    `json:"partySize" binding:"required"`
		TableNumber int    `json:"tableNumber"`
		Name        string `json:"name"`
		Phone       string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Please provide the date, time and party size."))
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	name := req.Name
	if strings.TrimSpace(name) == "" {
		name = c.GetString(middlewares.ContextName)
	}

	reservation, err := rc.Service.Book(c.Request.Context(), booking.BookingRequest{
		Date:           req.Date,
		Time:           req.Time,
		PartySize:      req.PartySize,
		Name:           name,
		Phone:          strings.TrimSpace(req.Phone),
		Email:          c.GetString(middlewares.ContextEmail),
		UserID:         userID,
		Source:         models.SourceWeb,
		PreferredTable: req.TableNumber,
	})
	if err != nil {
		respondServiceError(c, "Create reservation", err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Reservation confirmed", reservation)
}

// GetMyReservations -> GET /api/reservations
func (rc *ReservationController) GetMyReservations(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	reservations, err := rc.Service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, "List reservations", err)
		return
	}
	if reservations == nil {
		reservations = []models.Reservation{}
	}
	utils.RespondJSON(c, http.StatusOK, "Your reservations", reservations)
}

// CancelMyReservation -> POST /api/reservations/:id/cancel
func (rc *ReservationController) CancelMyReservation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	reservation, err := rc.Service.CancelOwn(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondServiceError(c, "Cancel reservation", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation cancelled", reservation)
}

// currentUser reads the user set by AuthMiddleware and answers 403 without one.
func currentUser(c *gin.Context) (string, bool) {
	userID := c.GetString(middlewares.ContextUserID)
	if userID == "" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return "", false
	}
	return userID, true
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, errors.New(key + " is required")
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(key + " must be a number")
	}
	return v, nil
}

// respondServiceError maps booking errors onto the response envelope. Faults
// are logged, the guest only sees the generic apology.
func respondServiceError(c *gin.Context, op string, err error) {
	status, message := reservationErrors.Map(err)
	if status >= http.StatusInternalServerError {
		utils.ErrorLogger.Printf("%s failed: %v", op, err)
	}
	utils.RespondError(c, status, errors.New(message))
}
