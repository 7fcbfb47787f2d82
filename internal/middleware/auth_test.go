package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/pkg/response"
	"anoa.com/learnhub/pkg/token"
)

type fakeAccounts map[uuid.UUID]*entity.Account

func (f fakeAccounts) FindByID(_ context.Context, id uuid.UUID) (*entity.Account, error) {
	if a, ok := f[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fixture struct {
	mw       *AuthMiddleware
	codec    *token.Codec
	accounts fakeAccounts
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec, err := token.NewCodec("test-secret", time.Hour, token.WithRoles(entity.RoleNames()...))
	require.NoError(t, err)

	accounts := fakeAccounts{}
	return &fixture{mw: NewAuthMiddleware(accounts, codec), codec: codec, accounts: accounts}
}

func (f *fixture) addAccount(t *testing.T, role entity.Role, active bool) (*entity.Account, string) {
	t.Helper()
	acc := entity.NewAccount(uuid.NewString()+"@x.com", role, "hash")
	acc.ID = uuid.New()
	acc.IsActive = active
	f.accounts[acc.ID] = acc

	tok, _, err := f.codec.Issue(token.Claims{Subject: acc.ID.String(), Role: string(role)})
	require.NoError(t, err)
	return acc, tok
}

func (f *fixture) router(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		acc, ok := CurrentAccount(c)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, string(acc.Role))
	})
	r.GET("/", handlers...)
	return r
}

func do(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
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

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	f := newFixture(t)
	_, tok := f.addAccount(t, entity.RoleTeacher, true)

	w := do(f.router(f.mw.RequireAuth()), "Bearer "+tok)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "teacher", w.Body.String())
}

func TestRequireAuthRejections(t *testing.T) {
	f := newFixture(t)
	_, inactive := f.addAccount(t, entity.RoleStudent, false)

	ghostTok, _, err := f.codec.Issue(token.Claims{Subject: uuid.NewString(), Role: "student"})
	require.NoError(t, err)
	badRoleTok, _, err := f.codec.Issue(token.Claims{Subject: uuid.NewString(), Role: "root"})
	require.NoError(t, err)

	cases := map[string]string{
		"missing header":   "",
		"wrong scheme":     "Basic abc",
		"empty bearer":     "Bearer ",
		"garbage":          "Bearer not.a.jwt",
		"unknown account":  "Bearer " + ghostTok,
		"inactive account": "Bearer " + inactive,
		"unknown role":     "Bearer " + badRoleTok,
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(f.router(f.mw.RequireAuth()), header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.False(t, decode(t, w).Success)
		})
	}
}

func TestRequireAuthIgnoresQueryToken(t *testing.T) {
	f := newFixture(t)
	_, tok := f.addAccount(t, entity.RoleAdmin, true)

	req := httptest.NewRequest(http.MethodGet, "/?token="+tok, nil)
	w := httptest.NewRecorder()
	f.router(f.mw.RequireAuth()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireSocketAuthAcceptsQueryToken(t *testing.T) {
	f := newFixture(t)
	_, tok := f.addAccount(t, entity.RoleAdmin, true)

	req := httptest.NewRequest(http.MethodGet, "/?token="+tok, nil)
	w := httptest.NewRecorder()
	f.router(f.mw.RequireSocketAuth()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())
}

func TestOptionalAuth(t *testing.T) {
	f := newFixture(t)
	_, tok := f.addAccount(t, entity.RoleReview, true)
	r := f.router(f.mw.OptionalAuth())

	assert.Equal(t, "review", do(r, "Bearer "+tok).Body.String())
	assert.Equal(t, "anonymous", do(r, "").Body.String())
	assert.Equal(t, "anonymous", do(r, "Bearer broken").Body.String())
}

func TestRequireRole(t *testing.T) {
	f := newFixture(t)
	_, teacherTok := f.addAccount(t, entity.RoleTeacher, true)
	_, studentTok := f.addAccount(t, entity.RoleStudent, true)
	r := f.router(f.mw.RequireAuth(), f.mw.RequireRole(entity.RoleTeacher, entity.RoleAdmin))

	assert.Equal(t, http.StatusOK, do(r, "Bearer "+teacherTok).Code)

	w := do(r, "Bearer "+studentTok)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied. Insufficient permissions.", decode(t, w).Message)
}

func TestRequireRoleWithoutAuthIs401(t *testing.T) {
	f := newFixture(t)
	r := f.router(f.mw.RequireRole(entity.RoleAdmin))

	assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
}
