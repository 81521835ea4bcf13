package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/senpow/italy-restaurant-booking/booking"
	"github.com/senpow/italy-restaurant-booking/config"
	"github.com/senpow/italy-restaurant-booking/database"
	"github.com/senpow/italy-restaurant-booking/events"
	"github.com/senpow/italy-restaurant-booking/models"
	"github.com/senpow/italy-restaurant-booking/router"
	"github.com/senpow/italy-restaurant-booking/services"
	"github.com/senpow/italy-restaurant-booking/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testAPIKey = "test-voice-key"

var testNow = time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
	JWT    *utils.JWTManager
}

// setupTestApp wires the real router to an in-memory SQLite database.
func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		VoiceAPIKey: testAPIKey,
		RateLimit:   1000,
		RateBurst:   1000,
		CORSOrigin:  "*",
		AdminEmails: []string{"chef@bellavista.de"},
		Location:    time.UTC,
	}
	svc := booking.NewService(database.NewReservationStore(db), booking.DefaultCatalog(),
		booking.WithClock(fixedClock{now: testNow}),
		booking.WithLocation(time.UTC),
	)
	t.Cleanup(func() { svc.Close() })
	jwtManager := utils.NewJWTManager("test-secret", "bella-vista", time.Hour)

	r := router.SetupRouter(router.Dependencies{
		Config:  cfg,
		Service: svc,
		Reports: services.NewReportService("Bella Vista"),
		Hub:     events.NewHub(),
		JWT:     jwtManager,
	})
	return &testApp{DB: db, Router: r, JWT: jwtManager}
}

func (app *testApp) token(t *testing.T, userID, email string, admin bool) string {
	t.Helper()
	token, err := app.JWT.GenerateToken(userID, "Giulia Bianchi", email, admin)
	require.NoError(t, err)
	return token
}

func (app *testApp) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	return w
}

func (app *testApp) seed(t *testing.T, r models.Reservation) models.Reservation {
	t.Helper()
	if r.Status == "" {
		r.Status = models.ReservationStatusConfirmed
	}
	if r.Duration == 0 {
		r.Duration = booking.DefaultDuration
	}
	if r.UserName == "" {
		r.UserName = "Seeded Guest"
	}
	if r.UserID == "" {
		r.UserID = "seed-user"
	}
	if r.Source == "" {
		r.Source = models.SourceWeb
	}
	require.NoError(t, app.DB.Create(&r).Error)
	return r
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}
