package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campus-ops/timetable-api/internal/models"
	"github.com/campus-ops/timetable-api/internal/service"
)

func TestSubmitManualRejectionCarriesIssues(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newHandlerFixture(nil)

	payload := []byte(`{
		"departmentId": "dept-1",
		"batchId": "batch-1",
		"semesterId": "sem-1",
		"section": "A",
		"status": "DRAFT",
		"days": [{
			"dayOfWeek": "SUNDAY",
			"sessions": [{
				"courseId": "math",
				"roomId": "room-101",
				"instructorId": "teacher-1",
				"startTime": "09:00",
				"endTime": "10:00",
				"sessionType": "LEC"
			}]
		}]
	}`)
	w := performRequest(handler.SubmitManual, http.MethodPost, payload)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var envelope struct {
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
	issues, ok := envelope.Meta["issues"].([]interface{})
	require.True(t, ok)
	assert.Contains(t, issues, `unknown weekday "SUNDAY"`)
}

func TestSubmitManualMalformedPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newHandlerFixture(nil)

	w := performRequest(handler.SubmitManual, http.MethodPost, []byte(`{"departmentId":`))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateMalformedPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newHandlerFixture(nil)

	w := performRequest(handler.Generate, http.MethodPost, []byte(`not-json`))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTimetableNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newHandlerFixture(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/timetables/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetTimetableReturnsView(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &handlerTimetableStoreStub{}
	store.items = append(store.items, &models.Timetable{ID: "tt-1", Status: models.TimetableStatusDraft})
	handler := newHandlerFixture(store)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/timetables/tt-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "tt-1"}}

	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tt-1"`)
}

// --- Fixtures ---

func performRequest(h gin.HandlerFunc, method string, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, "/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	h(c)
	return w
}

func newHandlerFixture(store *handlerTimetableStoreStub) *TimetableHandler {
	if store == nil {
		store = &handlerTimetableStoreStub{}
	}
	sessions := &handlerSessionStoreStub{}
	tx := handlerTxStub{}
	brk := models.BreakWindow{Start: 13 * 60, End: 14 * 60}

	generator := service.NewTimetableGeneratorService(
		handlerWorkHoursStub{}, handlerCourseStub{}, handlerRoomStub{}, handlerInstructorStub{},
		store, sessions, tx, nil, nil, nil, zap.NewNop(),
		service.GeneratorConfig{Break: brk},
	)
	manual := service.NewManualTimetableService(store, sessions, tx, nil, nil, zap.NewNop(), brk)
	svc := service.NewTimetableService(store, sessions, tx, nil, zap.NewNop(), time.Minute)
	return NewTimetableHandler(generator, manual, svc)
}

type handlerTimetableStoreStub struct {
	items []*models.Timetable
}

func (s *handlerTimetableStoreStub) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, t *models.Timetable) error {
	t.ID = fmt.Sprintf("tt-%d", len(s.items)+1)
	t.Version = len(s.items) + 1
	s.items = append(s.items, t)
	return nil
}

func (s *handlerTimetableStoreStub) DemotePublished(ctx context.Context, exec sqlx.ExtContext, departmentID, batchID, semesterID, section string) error {
	return nil
}

func (s *handlerTimetableStoreStub) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	for _, t := range s.items {
		if t.ID == id {
			copied := *t
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *handlerTimetableStoreStub) ListByTuple(ctx context.Context, departmentID, batchID, semesterID, section string) ([]models.Timetable, error) {
	return nil, nil
}

func (s *handlerTimetableStoreStub) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.TimetableStatus) error {
	return nil
}

func (s *handlerTimetableStoreStub) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	return nil
}

type handlerSessionStoreStub struct{}

func (handlerSessionStoreStub) InsertDay(ctx context.Context, exec sqlx.ExtContext, day *models.TimetableDay) error {
	return nil
}

func (handlerSessionStoreStub) InsertSession(ctx context.Context, exec sqlx.ExtContext, session *models.TimetableSession) error {
	return nil
}

func (handlerSessionStoreStub) DeleteByTimetable(ctx context.Context, exec sqlx.ExtContext, timetableID string) error {
	return nil
}

func (handlerSessionStoreStub) ListByTimetable(ctx context.Context, timetableID string) ([]models.SessionRow, error) {
	return nil, nil
}

func (handlerSessionStoreStub) PublishedOccupancy(ctx context.Context, exec sqlx.ExtContext, roomIDs, instructorIDs []string) ([]models.PublishedSession, error) {
	return nil, nil
}

func (handlerSessionStoreStub) ListPublishedAt(ctx context.Context, exec sqlx.ExtContext, roomID, dayOfWeek, startTime string) ([]models.PublishedSession, error) {
	return nil, nil
}

type handlerTxStub struct{}

func (handlerTxStub) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return nil, sql.ErrConnDone
}

type handlerWorkHoursStub struct{}

func (handlerWorkHoursStub) FindByDepartment(ctx context.Context, departmentID string) (*models.WorkHoursConfig, error) {
	return &models.WorkHoursConfig{DepartmentID: departmentID, DayStart: "09:00", DayEnd: "17:00", LectureDuration: 1, LabDuration: 2}, nil
}

type handlerCourseStub struct{}

func (handlerCourseStub) ListByBatch(ctx context.Context, departmentID, batchID, semesterID string) ([]models.Course, error) {
	return nil, nil
}

type handlerRoomStub struct{}

func (handlerRoomStub) ListBySection(ctx context.Context, departmentID, batchID, section string) ([]models.SectionRoom, error) {
	return nil, nil
}

type handlerInstructorStub struct{}

func (handlerInstructorStub) ActiveByCourses(ctx context.Context, courseIDs []string) (map[string]string, error) {
	return map[string]string{}, nil
}
