package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/senpow/italy-restaurant-booking/booking"
	"github.com/senpow/italy-restaurant-booking/middlewares"
	"github.com/senpow/italy-restaurant-booking/utils"
)

type AdminController struct {
	Service *booking.Service
}

func NewAdminController(svc *booking.Service) *AdminController {
	return &AdminController{Service: svc}
}

// GetReservations -> GET /admin/reservations?date= (default today)
func (ac *AdminController) GetReservations(c *gin.Context) {
	date := c.DefaultQuery("date", ac.Service.Today())

	sheet, err := ac.Service.DaySheet(c.Request.Context(), date)
	if err != nil {
		respondServiceError(c, "Admin list", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservations of "+date, sheet)
}

// UpdateReservation -> PATCH /admin/reservations/:id
func (ac *AdminController) UpdateReservation(c *gin.Context) {
	var req struct {
		TableNumber *int    `json:"tableNumber"`
		Time        *string `json:"time"`
		PartySize   *int    `json:"partySize"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.TableNumber == nil && req.Time == nil && req.PartySize == nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Nothing to update"))
		return
	}

	reservation, err := ac.Service.AdminUpdate(c.Request.Context(), c.Param("id"), booking.AdminEdit{
		TableNumber: req.TableNumber,
		Time:        req.Time,
		PartySize:   req.PartySize,
	})
	if err != nil {
		respondServiceError(c, "Admin update", err)
		return
	}
	utils.InfoLogger.Printf("Reservation %s edited by %s", reservation.ID, c.GetString(middlewares.ContextUserID))
	utils.RespondJSON(c, http.StatusOK, "Reservation updated", reservation)
}

// CancelReservation -> POST /admin/reservations/:id/cancel
func (ac *AdminController) CancelReservation(c *gin.Context) {
	reservation, err := ac.Service.AdminCancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, "Admin cancel", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation cancelled", reservation)
}

// DeleteReservation -> DELETE /admin/reservations/:id
func (ac *AdminController) DeleteReservation(c *gin.Context) {
	if err := ac.Service.AdminDelete(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, "Admin delete", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation deleted", nil)
}
