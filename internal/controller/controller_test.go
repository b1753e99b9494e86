package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"notekeeper-be/internal/dto"
	"notekeeper-be/internal/pkg/apperror"
	"notekeeper-be/internal/pkg/logger"
	"notekeeper-be/internal/pkg/ratelimit"
	"notekeeper-be/internal/pkg/serverutils"
	"notekeeper-be/internal/pkg/token"
	"notekeeper-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNoteService struct {
	mock.Mock
}

func (m *mockNoteService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	args := m.Called(ctx, userId, req)
	res, _ := args.Get(0).(*dto.NoteResponse)
	return res, args.Error(1)
}

func (m *mockNoteService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	args := m.Called(ctx, userId, req)
	res, _ := args.Get(0).(*dto.NoteResponse)
	return res, args.Error(1)
}

func (m *mockNoteService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	return m.Called(ctx, userId, id).Error(0)
}

func (m *mockNoteService) List(ctx context.Context, userId uuid.UUID, query dto.ListNotesQuery) (*dto.NotePage, error) {
	args := m.Called(ctx, userId, query)
	res, _ := args.Get(0).(*dto.NotePage)
	return res, args.Error(1)
}

func (m *mockNoteService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowNoteResponse, error) {
	args := m.Called(ctx, userId, id)
	res, _ := args.Get(0).(*dto.ShowNoteResponse)
	return res, args.Error(1)
}

func (m *mockNoteService) ListCategories(ctx context.Context, userId uuid.UUID) ([]dto.CategoryResponse, error) {
	args := m.Called(ctx, userId)
	res, _ := args.Get(0).([]dto.CategoryResponse)
	return res, args.Error(1)
}

func (m *mockNoteService) ListTags(ctx context.Context, userId uuid.UUID) ([]dto.TagResponse, error) {
	args := m.Called(ctx, userId)
	res, _ := args.Get(0).([]dto.TagResponse)
	return res, args.Error(1)
}

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*service.Session, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*service.Session)
	return res, args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*service.Session, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*service.Session)
	return res, args.Error(1)
}

func (m *mockAuthService) Me(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error) {
	args := m.Called(ctx, userId)
	res, _ := args.Get(0).(*dto.UserProfileResponse)
	return res, args.Error(1)
}

type testEnv struct {
	app    *fiber.App
	notes  *mockNoteService
	auth   *mockAuthService
	issuer *token.Issuer
	userId uuid.UUID
	bearer string
}

func newTestEnv(t *testing.T, burst int) *testEnv {
	t.Helper()

	issuer, err := token.NewIssuer("controller-secret", time.Hour, "token", false)
	require.NoError(t, err)

	env := &testEnv{
		notes:  &mockNoteService{},
		auth:   &mockAuthService{},
		issuer: issuer,
		userId: uuid.New(),
	}
	signed, _, err := issuer.Issue(env.userId)
	require.NoError(t, err)
	env.bearer = "Bearer " + signed

	gate := serverutils.JwtMiddleware(issuer, "token")
	throttle := serverutils.RateLimitMiddleware(ratelimit.New(0.001, burst, time.Minute))

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(logger.NewNopLogger()))
	api := app.Group("/api")
	NewAuthController(env.auth, gate, throttle, "token").RegisterRoutes(api)
	NewNoteController(env.notes, gate).RegisterRoutes(api)
	NewLabelController(env.notes, gate).RegisterRoutes(api)
	env.app = app

	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, authed bool) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", e.bearer)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestNoteController_Create(t *testing.T) {
	env := newTestEnv(t, 10)
	noteId := uuid.New()

	env.notes.On("Create", mock.Anything, env.userId, mock.MatchedBy(func(req *dto.CreateNoteRequest) bool {
		return req.Title == "T1" && req.Name != nil && *req.Name == "Work" && len(req.Tags) == 1 && req.Tags[0].Name == "urgent"
	})).Return(&dto.NoteResponse{Id: noteId, Title: "T1", Content: "C1", UserId: env.userId}, nil).Once()

	resp, body := env.do(t, http.MethodPost, "/api/notes", map[string]interface{}{
		"title": "T1", "content": "C1", "name": "Work", "tags": []map[string]string{{"name": "urgent"}},
	}, true)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, false, body["error"])
	note := body["note"].(map[string]interface{})
	assert.Equal(t, noteId.String(), note["id"])
	assert.Equal(t, "T1", note["title"])
	assert.Nil(t, note["category_id"])
	env.notes.AssertExpectations(t)
}

func TestNoteController_CreateErrors(t *testing.T) {
	env := newTestEnv(t, 10)

	resp, body := env.do(t, http.MethodPost, "/api/notes", map[string]string{"title": "T"}, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED_ERROR", body["code"])

	env.notes.On("Create", mock.Anything, env.userId, mock.Anything).
		Return(nil, apperror.BadRequest("Title and content are required")).Once()

	resp, body = env.do(t, http.MethodPost, "/api/notes", map[string]string{"title": "T"}, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, true, body["error"])
	assert.Equal(t, "Title and content are required", body["message"])

	req := httptest.NewRequest(http.MethodPost, "/api/notes", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", env.bearer)
	raw, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestNoteController_Update(t *testing.T) {
	env := newTestEnv(t, 10)
	noteId := uuid.New()

	env.notes.On("Update", mock.Anything, env.userId, mock.MatchedBy(func(req *dto.UpdateNoteRequest) bool {
		return req.Id == noteId && req.Title == nil && req.Content != nil && *req.Content == "C2" && req.Tags == nil
	})).Return(&dto.NoteResponse{Id: noteId, Title: "T1", Content: "C2"}, nil).Once()

	resp, body := env.do(t, http.MethodPut, "/api/notes/"+noteId.String(), map[string]string{"content": "C2"}, true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "C2", body["note"].(map[string]interface{})["content"])

	env.notes.On("Update", mock.Anything, env.userId, mock.MatchedBy(func(req *dto.UpdateNoteRequest) bool {
		return req.Tags != nil && len(*req.Tags) == 0
	})).Return(&dto.NoteResponse{Id: noteId}, nil).Once()

	resp, _ = env.do(t, http.MethodPut, "/api/notes/"+noteId.String(), map[string]interface{}{"tags": []string{}}, true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	env.notes.On("Update", mock.Anything, env.userId, mock.Anything).
		Return(nil, apperror.NotFound("Note not found")).Once()

	resp, body = env.do(t, http.MethodPut, "/api/notes/"+uuid.NewString(), map[string]string{"title": "x"}, true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND_ERROR", body["code"])

	resp, _ = env.do(t, http.MethodPut, "/api/notes/not-a-uuid", map[string]string{"title": "x"}, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	env.notes.AssertExpectations(t)
}

func TestNoteController_Delete(t *testing.T) {
	env := newTestEnv(t, 10)
	noteId := uuid.New()

	env.notes.On("Delete", mock.Anything, env.userId, noteId).Return(nil).Once()
	resp, body := env.do(t, http.MethodDelete, "/api/notes/"+noteId.String(), nil, true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Note deleted", body["message"])

	env.notes.On("Delete", mock.Anything, env.userId, mock.Anything).Return(apperror.NotFound("Note not found")).Once()
	resp, _ = env.do(t, http.MethodDelete, "/api/notes/"+uuid.NewString(), nil, true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	env.notes.AssertExpectations(t)
}

func TestNoteController_List(t *testing.T) {
	env := newTestEnv(t, 10)

	env.notes.On("List", mock.Anything, env.userId, dto.ListNotesQuery{Page: 2, PerPage: 5}).
		Return(&dto.NotePage{Notes: []*dto.NoteResponse{{Title: "n6"}}, Page: 2, PerPage: 5}, nil).Once()

	resp, body := env.do(t, http.MethodGet, "/api/notes?page=2&per_page=5", nil, true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["page"])
	assert.EqualValues(t, 5, body["per_page"])
	assert.Len(t, body["data"], 1)

	env.notes.On("List", mock.Anything, env.userId, dto.ListNotesQuery{}).
		Return(&dto.NotePage{Page: 1, PerPage: 50}, nil).Once()

	resp, body = env.do(t, http.MethodGet, "/api/notes?page=abc", nil, true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []interface{}{}, body["data"])

	other := uuid.New()
	env.notes.On("List", mock.Anything, env.userId, dto.ListNotesQuery{UserId: &other}).
		Return(nil, apperror.Unauthorized("Not allowed to list another user's notes")).Once()

	resp, _ = env.do(t, http.MethodGet, "/api/notes?user_id="+other.String(), nil, true)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/notes?user_id=nope", nil, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	env.notes.AssertExpectations(t)
}

func TestNoteController_Show(t *testing.T) {
	env := newTestEnv(t, 10)
	noteId := uuid.New()

	env.notes.On("Show", mock.Anything, env.userId, noteId).Return(&dto.ShowNoteResponse{
		NoteResponse: dto.NoteResponse{Id: noteId, Title: "T"},
		Category:     &dto.CategoryResponse{Id: uuid.New(), Name: "Work"},
		Tags:         []dto.TagResponse{{Id: uuid.New(), Name: "urgent"}},
	}, nil).Once()

	resp, body := env.do(t, http.MethodGet, "/api/notes/"+noteId.String(), nil, true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "T", data["title"])
	assert.Equal(t, "Work", data["category"].(map[string]interface{})["name"])
	assert.Len(t, data["tags"], 1)

	env.notes.AssertExpectations(t)
}

func TestLabelController(t *testing.T) {
	env := newTestEnv(t, 10)

	env.notes.On("ListCategories", mock.Anything, env.userId).Return([]dto.CategoryResponse{}, nil).Once()
	resp, body := env.do(t, http.MethodGet, "/api/categories", nil, true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []interface{}{}, body["data"])

	env.notes.On("ListTags", mock.Anything, env.userId).Return([]dto.TagResponse{{Name: "a"}}, nil).Once()
	resp, body = env.do(t, http.MethodGet, "/api/tags", nil, true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"], 1)

	resp, _ = env.do(t, http.MethodGet, "/api/tags", nil, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	env.notes.AssertExpectations(t)
}

func TestAuthController_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t, 10)
	signed, cookie, err := env.issuer.Issue(env.userId)
	require.NoError(t, err)
	session := &service.Session{UserId: env.userId, Token: signed, Cookie: cookie}

	env.auth.On("Register", mock.Anything, &dto.RegisterRequest{Email: "a@x.com", Password: "pw", Username: "a"}).
		Return(session, nil).Once()

	resp, body := env.do(t, http.MethodPost, "/api/user/register", map[string]string{
		"email": "a@x.com", "password": "pw", "username": "a",
	}, false)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Registration successful", body["message"])
	assert.Equal(t, signed, body["token"])

	var tokenCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			tokenCookie = c
		}
	}
	require.NotNil(t, tokenCookie)
	assert.Equal(t, signed, tokenCookie.Value)
	assert.True(t, tokenCookie.HttpOnly)
	assert.Equal(t, int(cookie.MaxAge.Seconds()), tokenCookie.MaxAge)

	env.auth.On("Login", mock.Anything, &dto.LoginRequest{Email: "a@x.com", Password: "bad"}).
		Return(nil, apperror.BadRequest("Password is incorrect")).Once()

	resp, body = env.do(t, http.MethodPost, "/api/user/login", map[string]string{"email": "a@x.com", "password": "bad"}, false)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Password is incorrect", body["message"])

	env.auth.On("Login", mock.Anything, &dto.LoginRequest{Email: "a@x.com", Password: "pw"}).
		Return(session, nil).Once()

	resp, body = env.do(t, http.MethodPost, "/api/user/login", map[string]string{"email": "a@x.com", "password": "pw"}, false)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Login successful", body["message"])

	resp, _ = env.do(t, http.MethodPost, "/api/user/register", map[string]string{"email": "not-an-email"}, false)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	env.auth.AssertExpectations(t)
}

func TestAuthController_Throttle(t *testing.T) {
	env := newTestEnv(t, 1)
	env.auth.On("Login", mock.Anything, mock.Anything).Return(nil, apperror.NotFound("User not found"))

	resp, _ := env.do(t, http.MethodPost, "/api/user/login", map[string]string{"email": "a@x.com", "password": "pw"}, false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := env.do(t, http.MethodPost, "/api/user/login", map[string]string{"email": "a@x.com", "password": "pw"}, false)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "TOO_MANY_REQUESTS_ERROR", body["code"])
}

func TestAuthController_MeAndLogout(t *testing.T) {
	env := newTestEnv(t, 10)

	env.auth.On("Me", mock.Anything, env.userId).
		Return(&dto.UserProfileResponse{Id: env.userId, Username: "a", Email: "a@x.com"}, nil).Once()

	resp, body := env.do(t, http.MethodGet, "/api/user/me", nil, true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "a", body["data"].(map[string]interface{})["username"])

	resp, _ = env.do(t, http.MethodGet, "/api/user/me", nil, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = env.do(t, http.MethodPost, "/api/user/logout", nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["error"])

	env.auth.AssertExpectations(t)
}
