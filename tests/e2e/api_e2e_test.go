package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dailyroutine/internal/config"
	"github.com/dailyroutine/internal/db"
	"github.com/dailyroutine/internal/handler"
	"github.com/dailyroutine/internal/router"
)

type apiClient struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func (c *apiClient) do(method, path string, payload any) *httptest.ResponseRecorder {
	c.t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			c.t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	return w
}

func (c *apiClient) doJSON(method, path string, payload any, wantStatus int) map[string]any {
	c.t.Helper()

	w := c.do(method, path, payload)
	if w.Code != wantStatus {
		c.t.Fatalf("%s %s: expected status %d, got %d: %s", method, path, wantStatus, w.Code, w.Body.String())
	}

	var parsed map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
			c.t.Fatalf("%s %s: failed to decode response: %v", method, path, err)
		}
	}
	return parsed
}

func setupServer(t *testing.T) (http.Handler, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := gdb.AutoMigrate(&db.User{}, &db.Student{}, &db.Routine{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	db.DB = gdb

	api := handler.NewAPI(gdb, config.AppConfig{JWTSecret: "e2e-secret", TokenTTL: time.Hour})
	engine := router.SetupRouter(api)

	return engine, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func login(t *testing.T, h http.Handler, username, password string) *apiClient {
	t.Helper()
	anon := &apiClient{t: t, handler: h}
	resp := anon.doJSON(http.MethodPost, "/api/auth/login", map[string]any{
		"username": username,
		"password": password,
	}, http.StatusOK)

	token, _ := resp["token"].(string)
	if token == "" {
		t.Fatalf("expected token for %s", username)
	}
	return &apiClient{t: t, handler: h, token: token}
}

func TestRoutineReviewFlow(t *testing.T) {
	h, cleanup := setupServer(t)
	defer cleanup()

	anon := &apiClient{t: t, handler: h}

	// accounts
	anon.doJSON(http.MethodPost, "/api/auth/register", map[string]any{
		"username": "admin", "password": "password", "email": "admin@example.com", "role": "admin",
	}, http.StatusOK)
	parentResp := anon.doJSON(http.MethodPost, "/api/auth/register", map[string]any{
		"username": "parent1", "password": "password", "email": "parent1@example.com", "role": "parent",
	}, http.StatusOK)
	parentID := uint(parentResp["userId"].(float64))

	admin := login(t, h, "admin", "password")
	parent := login(t, h, "parent1", "password")

	// the API is closed without a token
	if w := anon.do(http.MethodGet, "/api/students", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	// admin builds the directory
	studentResp := admin.doJSON(http.MethodPost, "/api/students", map[string]any{
		"name": "John Doe", "classGrade": "Grade 5", "parentId": parentID,
	}, http.StatusOK)
	studentID := uint(studentResp["id"].(float64))
	admin.doJSON(http.MethodPost, "/api/students", map[string]any{
		"name": "Jane Smith", "classGrade": "Grade 3", "parentId": parentID,
	}, http.StatusOK)

	// parent submits, then corrects the same day
	date := "2024-05-01"
	parent.doJSON(http.MethodPost, "/api/routines", map[string]any{
		"studentId": studentID, "routineDate": date, "wakeUpTime": "07:00",
	}, http.StatusOK)
	updated := parent.doJSON(http.MethodPost, "/api/routines", map[string]any{
		"studentId": studentID, "routineDate": date,
		"wakeUpTime": "07:30", "behaviorAtHome": "GOOD", "studyTimeMinutes": 60,
	}, http.StatusOK)
	if updated["wakeUpTime"] != "07:30" {
		t.Fatalf("expected corrected wake up time, got %v", updated["wakeUpTime"])
	}
	routineID := uint(updated["id"].(float64))

	// exactly one routine exists for the day
	w := admin.do(http.MethodGet, "/api/routines/date/"+date, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 listing routines, got %d", w.Code)
	}
	var listed []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("failed to decode routine list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 routine for %s, got %d", date, len(listed))
	}
	student, ok := listed[0]["student"].(map[string]any)
	if !ok || student["name"] != "John Doe" {
		t.Fatalf("expected embedded student, got %v", listed[0]["student"])
	}

	// review: parent forbidden, admin attaches feedback
	feedbackPath := fmt.Sprintf("/api/routines/%d/feedback", routineID)
	if w := parent.do(http.MethodPut, feedbackPath, map[string]any{"feedback": "self praise"}); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for parent feedback, got %d", w.Code)
	}
	reviewed := admin.doJSON(http.MethodPut, feedbackPath, map[string]any{"feedback": "Great job"}, http.StatusOK)
	feedback, ok := reviewed["feedback"].(map[string]any)
	if !ok || feedback["text"] != "Great job" {
		t.Fatalf("expected feedback attached, got %v", reviewed["feedback"])
	}

	// completion: 1 of 2 students submitted
	summary := admin.doJSON(http.MethodGet, "/api/routines/summary/"+date, nil, http.StatusOK)
	if summary["totalStudents"] != float64(2) || summary["submittedCount"] != float64(1) || summary["rate"] != float64(50) {
		t.Fatalf("unexpected summary: %v", summary)
	}

	// history for the student, newest first
	parent.doJSON(http.MethodPost, "/api/routines", map[string]any{
		"studentId": studentID, "routineDate": "2024-05-02", "wakeUpTime": "06:45",
	}, http.StatusOK)
	w = parent.do(http.MethodGet, fmt.Sprintf("/api/routines/student/%d", studentID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 listing history, got %d", w.Code)
	}
	var history []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &history); err != nil {
		t.Fatalf("failed to decode history: %v", err)
	}
	if len(history) != 2 || history[0]["routineDate"] != "2024-05-02" {
		t.Fatalf("expected newest routine first, got %v", history)
	}

	// cleanup path
	admin.doJSON(http.MethodDelete, fmt.Sprintf("/api/routines/%d", routineID), nil, http.StatusOK)
	if w := admin.do(http.MethodPut, feedbackPath, map[string]any{"feedback": "gone"}); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}
