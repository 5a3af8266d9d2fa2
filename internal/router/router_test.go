package router_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/wayfind-ar/internal/config"
	"github.com/iliyamo/wayfind-ar/internal/model"
	"github.com/iliyamo/wayfind-ar/internal/repository"
	"github.com/iliyamo/wayfind-ar/internal/router"
	"github.com/iliyamo/wayfind-ar/internal/seed"
	"github.com/iliyamo/wayfind-ar/internal/session"
	"github.com/iliyamo/wayfind-ar/internal/testutil"
)

type app struct {
	t     *testing.T
	e     *echo.Echo
	users *repository.UserRepo
}

func newApp(t *testing.T) *app {
	t.Helper()
	db := testutil.NewMigratedDB(t)
	_, err := seed.New(db, nil, nil).EnsureSeeded(context.Background())
	require.NoError(t, err)

	e := router.New(router.Deps{
		Cfg: config.Config{
			Env:          "development",
			JWTSecret:    "router-test-secret",
			AccessTTLMin: 5,
			BcryptCost:   4,
		},
		DB:       db,
		Sessions: session.NewMemoryStore(),
		Logger:   zap.NewNop(),
	})
	return &app{t: t, e: e, users: repository.NewUserRepo(db)}
}

type reqOpt func(*http.Request)

func withCookie(ck *http.Cookie) reqOpt { return func(r *http.Request) { r.AddCookie(ck) } }

func withBearer(tok string) reqOpt {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
}

func (a *app) do(method, path, body string, opts ...reqOpt) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, o := range opts {
		o(req)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *app) decode(rec *httptest.ResponseRecorder, v any) {
	a.t.Helper()
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func cookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "WayFindAR.Session" {
			return ck
		}
	}
	t.Fatal("no session cookie")
	return nil
}

// login creates a user with role and returns its access token.
func (a *app) login(email, role string) string {
	a.t.Helper()
	_, err := a.users.Create(context.Background(), email, "correct-horse", "Test "+role, role, 4)
	require.NoError(a.t, err)
	rec := a.do(http.MethodPost, "/account/login", `{"email":"`+email+`","password":"correct-horse"}`)
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Access struct {
			Token string `json:"token"`
		} `json:"access"`
	}
	a.decode(rec, &resp)
	require.NotEmpty(a.t, resp.Access.Token)
	return resp.Access.Token
}

func TestHomeRoutes(t *testing.T) {
	a := newApp(t)
	for _, path := range []string{"/", "/home", "/home/index"} {
		rec := a.do(http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `{"app":"WayFind AR","buildings":4}`, rec.Body.String(), path)
	}

	rec := a.do(http.MethodGet, "/home/error", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "an error occurred")

	rec = a.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, "ok", rec.Body.String())
	rec = a.do(http.MethodGet, "/healthz?verbose=1", "")
	assert.JSONEq(t, `{"status":"ok","database":"up"}`, rec.Body.String())
}

func TestListBuildings(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodGet, "/api/v1/buildings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Items []model.Building `json:"items"`
	}
	a.decode(rec, &list)
	names := make([]string, 0, len(list.Items))
	for _, b := range list.Items {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"Library", "Main Building", "Main Cafeteria", "Science Center"}, names)
	assert.Equal(t, model.Position{X: 2, Y: 0, Z: 1}, list.Items[0].Position)

	rec = a.do(http.MethodGet, "/api/v1/buildings?category=Academic", "")
	a.decode(rec, &list)
	assert.Len(t, list.Items, 2)

	rec = a.do(http.MethodGet, "/api/v1/buildings/categories", "")
	assert.JSONEq(t, `{"items":["Academic","Administration","Services"]}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/v1/buildings/999", "").Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/v1/buildings/abc", "").Code)
}

func TestAccountSessionFlow(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodPost, "/account/register", `{"email":"Ada@Example.com","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/account/register", `{"email":"Ada@Example.com","password":"long enough","full_name":"Ada"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ck := cookieFrom(t, rec)

	rec = a.do(http.MethodPost, "/account/register", `{"email":"ada@example.com","password":"long enough"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodGet, "/account/me", "", withCookie(ck))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"ada@example.com"`)
	assert.Contains(t, rec.Body.String(), `"role":"USER"`)

	rec = a.do(http.MethodGet, "/", "", withCookie(ck))
	assert.Contains(t, rec.Body.String(), `"user":"Ada"`)

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodPost, "/account/logout", "", withCookie(ck)).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/account/me", "", withCookie(ck)).Code)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	a := newApp(t)
	a.login("someone@example.com", model.RoleUser)

	rec := a.do(http.MethodPost, "/account/login", `{"email":"someone@example.com","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = a.do(http.MethodPost, "/account/login", `{"email":"nobody@example.com","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminBuildingWrites(t *testing.T) {
	a := newApp(t)
	admin := a.login("admin@example.com", model.RoleAdmin)
	user := a.login("user@example.com", model.RoleUser)
	body := `{"name":"Sports Hall","description":"Gym","position":{"x":3,"y":0,"z":-4},"model_type":"sports","category":"Services","floor_level":"Ground Floor"}`

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/api/v1/buildings", body).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/api/v1/buildings", body, withBearer(user)).Code)

	rec := a.do(http.MethodPost, "/api/v1/buildings", body, withBearer(admin))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created model.Building
	a.decode(rec, &created)
	assert.True(t, created.IsActive)
	assert.Equal(t, model.Position{X: 3, Y: 0, Z: -4}, created.Position)

	rec = a.do(http.MethodPost, "/api/v1/buildings", body, withBearer(admin))
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = a.do(http.MethodPost, "/api/v1/buildings", `{"name":"  "}`, withBearer(admin))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	path := "/api/v1/buildings/" + strconv.FormatUint(created.ID, 10)

	rec = a.do(http.MethodPut, path, `{"name":"Sports Hall","is_active":false}`, withBearer(admin))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, path, "").Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, path, "", withBearer(admin)).Code)

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, path, "", withBearer(admin)).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, path, "", withBearer(admin)).Code)
}

func TestDestinationIsKeptInSession(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodGet, "/api/v1/destination", "")
	assert.JSONEq(t, `{"destination":null}`, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/api/v1/destination", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodPost, "/api/v1/destination", `{"building_id":999}`).Code)

	rec = a.do(http.MethodPost, "/api/v1/destination", `{"building_id":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ck := cookieFrom(t, rec)

	rec = a.do(http.MethodGet, "/api/v1/destination", "", withCookie(ck))
	var resp struct {
		Destination *model.Building `json:"destination"`
	}
	a.decode(rec, &resp)
	require.NotNil(t, resp.Destination)
	assert.Equal(t, "Main Building", resp.Destination.Name)

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/api/v1/destination", "", withCookie(ck)).Code)
	rec = a.do(http.MethodGet, "/api/v1/destination", "", withCookie(ck))
	assert.JSONEq(t, `{"destination":null}`, rec.Body.String())
}
