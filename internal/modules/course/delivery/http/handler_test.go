package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/internal/middleware"
	"anoa.com/learnhub/internal/modules/course/service"
	"anoa.com/learnhub/internal/testutil"
	"anoa.com/learnhub/pkg/response"
)

type fixture struct {
	db      *testutil.DB
	handler *CourseHandler
}

func newFixture() *fixture {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB()
	svc := service.NewCourseService(db.Courses(), db.Teachers(), nil, nil, nil, nil)
	return &fixture{db: db, handler: NewCourseHandler(svc)}
}

func (f *fixture) router(as *entity.Account) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if as != nil {
			middleware.SetAccount(c, as)
		}
		c.Next()
	})
	r.POST("/courses", f.handler.Create)
	r.GET("/courses/:id", f.handler.Get)
	r.PATCH("/courses/:id/reject", f.handler.Reject)
	return r
}

func send(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Body {
	t.Helper()
	var body response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestCreateCourse(t *testing.T) {
	f := newFixture()
	acc := f.db.SeedAccount(entity.NewAccount("t@x.com", entity.RoleTeacher, "hash"))
	f.db.SeedTeacher(&entity.Teacher{AccountID: acc.ID, Moderation: entity.Moderation{Status: entity.StatusApproved}})

	w := send(f.router(acc), http.MethodPost, "/courses", map[string]any{
		"title":       "Go 101",
		"description": "Basics",
		"price":       20,
		"level":       "intermediate",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.True(t, body.Success)
	assert.Equal(t, "Course created successfully. Awaiting admin approval.", body.Message)
	data := body.Data.(map[string]any)
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, "intermediate", data["level"])
}

func TestCreateCourseValidation(t *testing.T) {
	f := newFixture()
	acc := f.db.SeedAccount(entity.NewAccount("t@x.com", entity.RoleTeacher, "hash"))

	w := send(f.router(acc), http.MethodPost, "/courses", map[string]any{"level": "expert"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.False(t, body.Success)
	assert.NotEmpty(t, body.Errors)
}

func TestGetCourseRejectsMalformedID(t *testing.T) {
	f := newFixture()

	w := send(f.router(nil), http.MethodGet, "/courses/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid course id", decode(t, w).Message)
}

func TestRejectCourseWithReason(t *testing.T) {
	f := newFixture()
	admin := f.db.SeedAccount(entity.NewAccount("a@x.com", entity.RoleAdmin, "hash"))
	course := f.db.SeedCourse(&entity.Course{Title: "Go", Moderation: entity.Moderation{Status: entity.StatusPending}})

	w := send(f.router(admin), http.MethodPatch, "/courses/"+course.ID.String()+"/reject", map[string]string{"reason": "Needs a syllabus"})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Course rejected", body.Message)
	data := body.Data.(map[string]any)
	assert.Equal(t, "rejected", data["status"])
	assert.Equal(t, "Needs a syllabus", data["reason"])
}

func TestRejectCourseWithoutBody(t *testing.T) {
	f := newFixture()
	admin := f.db.SeedAccount(entity.NewAccount("a@x.com", entity.RoleAdmin, "hash"))
	course := f.db.SeedCourse(&entity.Course{Title: "Go", Moderation: entity.Moderation{Status: entity.StatusPending}})

	w := send(f.router(admin), http.MethodPatch, "/courses/"+course.ID.String()+"/reject", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rejected", decode(t, w).Data.(map[string]any)["status"])
}
