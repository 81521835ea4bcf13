package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/senpow/italy-restaurant-booking/booking"
	"github.com/senpow/italy-restaurant-booking/services"
)

type ReportController struct {
	Service *booking.Service
	Reports *services.ReportService
}

func NewReportController(svc *booking.Service, reports *services.ReportService) *ReportController {
	return &ReportController{Service: svc, Reports: reports}
}

// DaySheet -> GET /admin/reports/day.pdf?date=
func (rc *ReportController) DaySheet(c *gin.Context) {
	ctx := c.Request.Context()
	date := c.DefaultQuery("date", rc.Service.Today())

	sheet, err := rc.Service.DaySheet(ctx, date)
	if err != nil {
		respondServiceError(c, "Day sheet", err)
		return
	}
	occupancy, err := rc.Service.Occupancy(ctx, date)
	if err != nil {
		respondServiceError(c, "Day sheet", err)
		return
	}

	var buf bytes.Buffer
	if err := rc.Reports.DaySheetPDF(&buf, sheet, occupancy); err != nil {
		respondServiceError(c, "Day sheet", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="reservations-%s.pdf"`, date))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// OccupancyChart -> GET /admin/reports/occupancy.png?date=
func (rc *ReportController) OccupancyChart(c *gin.Context) {
	date := c.DefaultQuery("date", rc.Service.Today())

	occupancy, err := rc.Service.Occupancy(c.Request.Context(), date)
	if err != nil {
		respondServiceError(c, "Occupancy chart", err)
		return
	}

	var buf bytes.Buffer
	if err := rc.Reports.OccupancyChart(&buf, date, occupancy); err != nil {
		respondServiceError(c, "Occupancy chart", err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
