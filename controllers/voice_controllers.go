package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/senpow/italy-restaurant-booking/booking"
	"github.com/senpow/italy-restaurant-booking/models"
	"github.com/senpow/italy-restaurant-booking/utils"
)

// Identity recorded on reservations made by the phone agent.
const (
	VoiceAgentUserID       = "voice-ai-agent"
	VoiceAgentDefaultEmail = "voice-ai@placeholder.com"
)

// VoiceController serves the API used by the phone agent. Its responses are
// plain JSON objects, not the envelope of the web API.
type VoiceController struct {
	Service *booking.Service
}

func NewVoiceController(svc *booking.Service) *VoiceController {
	return &VoiceController{Service: svc}
}

// partySize accepts a JSON number as well as a numeric string, the voice
// agent sends either.
type partySize json.RawMessage

func (p *partySize) UnmarshalJSON(data []byte) error {
	*p = append((*p)[:0], data...)
	return nil
}

func (p partySize) missing() bool {
	raw := bytes.TrimSpace(p)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func (p partySize) Int() (int, error) {
	var n int
	if err := json.Unmarshal(p, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(p, &s); err == nil {
		return booking.ParsePartySize(s)
	}
	return booking.ParsePartySize(string(p))
}

type availabilityRequest struct {
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	PartySize partySize `json:"partySize"`
}

type voiceReservationRequest struct {
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	PartySize partySize `json:"partySize"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
}

// CheckAvailability -> POST /checkAvailability
func (vc *VoiceController) CheckAvailability(c *gin.Context) {
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Date == "" || req.Time == "" || req.PartySize.missing() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Missing required parameters",
			"message": "Please provide the date, time and party size.",
		})
		return
	}

	size, err := req.PartySize.Int()
	if err != nil {
		vc.respondError(c, "Check availability", err, gin.H{})
		return
	}

	availability, err := vc.Service.CheckAvailability(c.Request.Context(), booking.AvailabilityQuery{
		Date:      req.Date,
		Time:      req.Time,
		PartySize: size,
	})
	if err != nil {
		vc.respondError(c, "Check availability", err, gin.H{})
		return
	}

	if availability.Available {
		c.JSON(http.StatusOK, gin.H{
			"available": true,
			"message":   fmt.Sprintf("Good news, we have a table for %d at %s on %s.", size, req.Time, req.Date),
		})
		return
	}

	alternatives := availability.Alternatives
	if alternatives == nil {
		alternatives = []string{}
	}
	message := fmt.Sprintf("We are very sorry, every time slot on %s is fully booked. Could you choose another date?", req.Date)
	if len(alternatives) > 0 {
		message = fmt.Sprintf("Sorry, %s is fully booked, but we still have tables at %s. Would one of these times work for you?",
			req.Time, strings.Join(alternatives, ", "))
	}
	c.JSON(http.StatusOK, gin.H{
		"available":    false,
		"alternatives": alternatives,
		"message":      message,
	})
}

// CreateReservation -> POST /createReservation
func (vc *VoiceController) CreateReservation(c *gin.Context) {
	var req voiceReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Date == "" || req.Time == "" || req.PartySize.missing() || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Missing required fields",
			"message": "Please provide the date, time, party size and name.",
		})
		return
	}

	size, err := req.PartySize.Int()
	if err != nil {
		vc.respondError(c, "Create reservation", err, gin.H{"success": false})
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = VoiceAgentDefaultEmail
	}

	reservation, err := vc.Service.Book(c.Request.Context(), booking.BookingRequest{
		Date:      req.Date,
		Time:      req.Time,
		PartySize: size,
		Name:      req.Name,
		Phone:     strings.TrimSpace(req.Phone),
		Email:     email,
		UserID:    VoiceAgentUserID,
		Source:    models.SourceVoiceAI,
	})
	if err != nil {
		vc.respondError(c, "Create reservation", err, gin.H{"success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"reservationId": reservation.ID,
		"message": fmt.Sprintf("Your reservation is confirmed! %s, we have booked a table for %d on %s at %s. We look forward to your visit!",
			reservation.UserName, reservation.PartySize, reservation.Date, reservation.TimeSlot),
	})
}

// respondError writes the voice API error body on top of base.
func (vc *VoiceController) respondError(c *gin.Context, op string, err error, base gin.H) {
	status, message := reservationErrors.Map(err)
	body := gin.H{"message": message}
	for k, v := range base {
		body[k] = v
	}

	switch {
	case errors.Is(err, booking.ErrInvalidInput):
		body["error"] = "Invalid input"
	case errors.Is(err, booking.ErrTableUnavailable):
	default:
		body["error"] = "Server error"
		utils.ErrorLogger.Printf("%s failed: %v", op, err)
	}
	c.JSON(status, body)
}
