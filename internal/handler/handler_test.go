package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub/internal/apperr"
	"schoolhub/internal/attendance"
	"schoolhub/internal/auth"
	"schoolhub/internal/event"
	"schoolhub/internal/marklist"
	"schoolhub/internal/queue"
)

const (
	testSigningKey = "test-signing-secret"
	testIssuer     = "schoolhub-test"
)

// ---------- fakes ----------

type fakeEventRepo struct {
	events map[string]event.Event
}

func (r *fakeEventRepo) Get(_ context.Context, id string) (event.Event, error) {
	ev, ok := r.events[id]
	if !ok {
		return event.Event{}, apperr.NotFound("event not found")
	}
	return ev, nil
}

func (r *fakeEventRepo) Insert(_ context.Context, ev event.Event) (event.Event, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	r.events[ev.ID] = ev
	return ev, nil
}

func (r *fakeEventRepo) Update(_ context.Context, id string, upd event.Update) (event.Event, error) {
	ev := r.events[id]
	if upd.Title != nil {
		ev.Title = *upd.Title
	}
	if upd.Description != nil {
		ev.Description = *upd.Description
	}
	if upd.Location != nil {
		ev.Location = *upd.Location
	}
	if upd.Image != nil {
		ev.Image = *upd.Image
	}
	if upd.Date != nil {
		ev.Date = *upd.Date
	}
	r.events[id] = ev
	return ev, nil
}

func (r *fakeEventRepo) Delete(_ context.Context, id string) error {
	delete(r.events, id)
	return nil
}

func (r *fakeEventRepo) List(_ context.Context, f event.Filter) ([]event.Event, int, error) {
	var matches []event.Event
	for _, ev := range r.events {
		if f.Keyword != "" && !strings.Contains(strings.ToLower(ev.Title), strings.ToLower(f.Keyword)) {
			continue
		}
		if f.From != nil && ev.Date.Before(*f.From) {
			continue
		}
		matches = append(matches, ev)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Date.Before(matches[j].Date) })
	total := len(matches)
	if f.Offset >= total {
		return nil, total, nil
	}
	end := f.Offset + f.Limit
	if end > total {
		end = total
	}
	return matches[f.Offset:end], total, nil
}

type fakeAttendanceRepo struct {
	submissions []attendance.Attendance
}

func (r *fakeAttendanceRepo) Insert(_ context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	for _, existing := range r.submissions {
		if existing.EventID == att.EventID && existing.Date.Equal(att.Date) {
			return attendance.Attendance{}, apperr.Conflict("attendance already submitted for this event on %s", att.Date.Format("2006-01-02"))
		}
	}
	att.ID = uuid.NewString()
	att.CreatedAt = time.Now().UTC()
	r.submissions = append(r.submissions, att)
	return att, nil
}

func (r *fakeAttendanceRepo) ListByEvent(_ context.Context, eventID string) ([]attendance.Attendance, error) {
	var res []attendance.Attendance
	for _, att := range r.submissions {
		if att.EventID == eventID {
			res = append(res, att)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Date.After(res[j].Date) })
	return res, nil
}

type fakeMarklistRepo struct {
	rows map[string]marklist.Marklist
}

func (r *fakeMarklistRepo) GetByEventStudent(_ context.Context, eventID, studentID string) (marklist.Marklist, error) {
	ml, ok := r.rows[eventID+"|"+studentID]
	if !ok {
		return marklist.Marklist{}, apperr.NotFound("marklist not found")
	}
	return ml, nil
}

func (r *fakeMarklistRepo) Insert(_ context.Context, ml marklist.Marklist) (marklist.Marklist, error) {
	ml.ID = uuid.NewString()
	r.rows[ml.EventID+"|"+ml.StudentID] = ml
	return ml, nil
}

func (r *fakeMarklistRepo) Save(_ context.Context, ml marklist.Marklist) (marklist.Marklist, error) {
	r.rows[ml.EventID+"|"+ml.StudentID] = ml
	return ml, nil
}

func (r *fakeMarklistRepo) ListByEvent(_ context.Context, eventID string) ([]marklist.Marklist, error) {
	var res []marklist.Marklist
	for _, ml := range r.rows {
		if ml.EventID == eventID {
			res = append(res, ml)
		}
	}
	return res, nil
}

type fakeNames map[string]string

func (m fakeNames) Names(_ context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, id := range ids {
		if name, ok := m[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

// ---------- harness ----------

type testEnv struct {
	router *gin.Engine
	events *fakeEventRepo
	audits *queue.InMemory
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	eventRepo := &fakeEventRepo{events: make(map[string]event.Event)}
	names := fakeNames{"s1": "Abebe Bikila", "s2": "Tirunesh Dibaba"}
	audits := queue.NewInMemory(16)

	events := event.NewService(eventRepo)
	att := attendance.NewService(&fakeAttendanceRepo{}, eventRepo, names)
	mls := marklist.NewService(&fakeMarklistRepo{rows: make(map[string]marklist.Marklist)}, eventRepo, names)

	h := New(events, att, mls, nil, nil, audits)
	r := gin.New()
	h.Register(r,
		auth.RequireAuth(testSigningKey, testIssuer),
		auth.RequireRole(auth.RoleTeacher),
		auth.RequireRole(auth.RoleAdmin),
	)
	return &testEnv{router: r, events: eventRepo, audits: audits}
}

func mintToken(t *testing.T, subject, role string) string {
	t.Helper()
	token, _, err := auth.Issue(subject, role, testIssuer, testSigningKey, time.Hour)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) seedEvent(teacherID string) event.Event {
	ev := event.Event{
		ID:          uuid.NewString(),
		Title:       "Math Quiz",
		Description: "Chapter 4",
		Date:        time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		Location:    "Room 12",
		Image:       "img",
		OrganiserID: "org1",
	}
	if teacherID != "" {
		ev.TeacherID = &teacherID
	}
	e.events.events[ev.ID] = ev
	return ev
}

// ---------- events ----------

func TestCreateEvent(t *testing.T) {
	env := setup(t)
	body := gin.H{
		"title":       "Science Fair",
		"description": "Annual fair",
		"date":        "2025-09-01",
		"location":    "Main Hall",
		"image":       "https://cdn.example.com/fair.png",
	}

	t.Run("requires auth", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/events", "", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("creates with organiser set to caller", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/events", mintToken(t, "org1", auth.RoleAdmin), body)
		require.Equal(t, http.StatusCreated, rec.Code)
		var ev event.Event
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ev))
		assert.Equal(t, "org1", ev.OrganiserID)
		assert.Equal(t, "Science Fair", ev.Title)
	})

	t.Run("missing field is a 400", func(t *testing.T) {
		bad := gin.H{"title": "No description"}
		rec := env.do(t, http.MethodPost, "/v1/events", mintToken(t, "org1", auth.RoleAdmin), bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListEventsEnvelope(t *testing.T) {
	env := setup(t)
	env.seedEvent("")
	env.seedEvent("t1")

	rec := env.do(t, http.MethodGet, "/v1/events?limit=1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page event.Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 2, page.TotalEvents)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Events, 1)
}

func TestGetEventNotFound(t *testing.T) {
	env := setup(t)
	rec := env.do(t, http.MethodGet, "/v1/events/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateEventOwnership(t *testing.T) {
	env := setup(t)
	ev := env.seedEvent("")
	body := gin.H{"title": "Renamed"}

	rec := env.do(t, http.MethodPut, "/v1/events/"+ev.ID, mintToken(t, "intruder", auth.RoleTeacher), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPut, "/v1/events/"+ev.ID, mintToken(t, "org1", auth.RoleAdmin), body)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated event.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Renamed", updated.Title)
}

func TestDeleteEventOwnership(t *testing.T) {
	env := setup(t)
	ev := env.seedEvent("")

	rec := env.do(t, http.MethodDelete, "/v1/events/"+ev.ID, mintToken(t, "intruder", auth.RoleStudent), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodDelete, "/v1/events/"+ev.ID, mintToken(t, "org1", auth.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/events/"+ev.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ---------- attendance ----------

func TestSubmitAttendanceFlow(t *testing.T) {
	env := setup(t)
	ev := env.seedEvent("t1")
	body := gin.H{
		"eventId": ev.ID,
		"records": []gin.H{{"student": "s1", "status": "present"}},
	}

	t.Run("student role rejected by middleware", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/attendance/submit", mintToken(t, "s1", auth.RoleStudent), body)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("teacher not assigned to the event", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/attendance/submit", mintToken(t, "t2", auth.RoleTeacher), body)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown event", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/attendance/submit", mintToken(t, "t1", auth.RoleTeacher),
			gin.H{"eventId": "ghost", "records": []gin.H{{"student": "s1"}}})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("assigned teacher succeeds then conflicts", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/attendance/submit", mintToken(t, "t1", auth.RoleTeacher), body)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "Attendance recorded successfully")

		// Same calendar date again.
		rec = env.do(t, http.MethodPost, "/v1/attendance/submit", mintToken(t, "t1", auth.RoleTeacher), body)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("audit entry published", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		msgs, err := env.audits.Consume(ctx)
		require.NoError(t, err)
		select {
		case msg := <-msgs:
			assert.Equal(t, "audit", msg.Type)
		case <-ctx.Done():
			t.Fatal("no audit message published")
		}
	})
}

func TestSubmitAttendanceUnassignedEvent(t *testing.T) {
	env := setup(t)
	ev := env.seedEvent("")
	rec := env.do(t, http.MethodPost, "/v1/attendance/submit", mintToken(t, "t1", auth.RoleTeacher),
		gin.H{"eventId": ev.ID, "records": []gin.H{{"student": "s1"}}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "teacher assigned")
}

func TestListAttendancePopulatesStudents(t *testing.T) {
	env := setup(t)
	ev := env.seedEvent("t1")

	rec := env.do(t, http.MethodPost, "/v1/attendance/submit", mintToken(t, "t1", auth.RoleTeacher),
		gin.H{"eventId": ev.ID, "records": []gin.H{{"student": "s1"}, {"student": "s2", "status": "late"}}})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/attendance/"+ev.ID, mintToken(t, "t1", auth.RoleTeacher), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var atts []attendance.Attendance
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &atts))
	require.Len(t, atts, 1)
	require.Len(t, atts[0].Records, 2)
	assert.Equal(t, "Abebe Bikila", atts[0].Records[0].StudentName)
	assert.Equal(t, "late", atts[0].Records[1].Status)
}

// ---------- marklist ----------

func TestUpsertMarklistFlow(t *testing.T) {
	env := setup(t)
	ev := env.seedEvent("t1")

	t.Run("student role rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/marklist/upsert", mintToken(t, "s1", auth.RoleStudent),
			gin.H{"eventId": ev.ID, "studentId": "s1"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("quizScore maps to the test component", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/marklist/upsert", mintToken(t, "t1", auth.RoleTeacher),
			gin.H{"eventId": ev.ID, "studentId": "s1", "attendanceScore": 9, "quizScore": 18})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Message  string            `json:"message"`
			Marklist marklist.Marklist `json:"marklist"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Grades updated successfully", resp.Message)
		assert.Equal(t, 18, resp.Marklist.TestScore)
		assert.Equal(t, 27, resp.Marklist.TotalScore)
	})

	t.Run("caller-supplied totalScore ignored", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/marklist/upsert", mintToken(t, "t1", auth.RoleTeacher),
			gin.H{"eventId": ev.ID, "studentId": "s1", "finalExam": 40, "totalScore": 999})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Marklist marklist.Marklist `json:"marklist"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 9+18+0+40, resp.Marklist.TotalScore)
	})

	t.Run("out of bounds score", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/marklist/upsert", mintToken(t, "t1", auth.RoleTeacher),
			gin.H{"eventId": ev.ID, "studentId": "s1", "midExam": 31})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListMarklistsPopulatesStudents(t *testing.T) {
	env := setup(t)
	ev := env.seedEvent("t1")

	rec := env.do(t, http.MethodPost, "/v1/marklist/upsert", mintToken(t, "t1", auth.RoleTeacher),
		gin.H{"eventId": ev.ID, "studentId": "s1", "quizScore": 12})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/marklist/event/"+ev.ID, mintToken(t, "t1", auth.RoleTeacher), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var mls []marklist.Marklist
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mls))
	require.Len(t, mls, 1)
	assert.Equal(t, "Abebe Bikila", mls[0].StudentName)
}
