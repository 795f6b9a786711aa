package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"girlfanz/pkg/logger"
	"girlfanz/pkg/middleware"
	"girlfanz/services/auth/internal/entity"
	"girlfanz/services/auth/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAuthUseCase is a mock implementation of AuthUseCase
type MockAuthUseCase struct {
	mock.Mock
}

func (m *MockAuthUseCase) Register(ctx context.Context, email, username, password string, role entity.UserRole) (*entity.User, string, error) {
	args := m.Called(ctx, email, username, password, role)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*entity.User), args.String(1), args.Error(2)
}

func (m *MockAuthUseCase) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*entity.User), args.String(1), args.Error(2)
}

func (m *MockAuthUseCase) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockAuthUseCase) SetAgeVerification(ctx context.Context, userID string, verified bool) (*entity.User, error) {
	args := m.Called(ctx, userID, verified)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockAuthUseCase) GetSubscriptions(ctx context.Context, actor usecase.Actor, userID string) ([]*entity.Subscription, error) {
	args := m.Called(ctx, actor, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Subscription), args.Error(1)
}

func (m *MockAuthUseCase) Subscribe(ctx context.Context, actor usecase.Actor, userID, creatorID string) (*entity.Subscription, error) {
	args := m.Called(ctx, actor, userID, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Subscription), args.Error(1)
}

func (m *MockAuthUseCase) Unsubscribe(ctx context.Context, actor usecase.Actor, userID, creatorID string) error {
	args := m.Called(ctx, actor, userID, creatorID)
	return args.Error(0)
}

var _ usecase.AuthUseCase = (*MockAuthUseCase)(nil)

const (
	fanID      = "0b8f6d0e-3a52-4c1e-9f1a-1d2e3f405161"
	otherFanID = "1c9a7e1f-4b63-4d2f-8a2b-2e3f40516272"
	ghostID    = "2dab8f20-5c74-4e30-9b3c-3f4051627383"
	creatorID  = "3ebc9031-6d85-4f41-8c4d-405162738494"
)

func setupTestRouter(userID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set(middleware.ContextUserID, userID)
			c.Set(middleware.ContextUserRole, role)
		}
		c.Next()
	})
	return r
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func TestRegister_Success(t *testing.T) {
	mockUseCase := new(MockAuthUseCase)
	handler := NewAuthHandler(mockUseCase, logger.NewNop())
	router := setupTestRouter("", "")
	router.POST("/register", handler.Register)

	user := &entity.User{ID: "u1", Email: "a@example.com", Username: "alice", Role: entity.RoleCreator}
	mockUseCase.On("Register", mock.Anything, "a@example.com", "alice", "password123", entity.RoleCreator).Return(user, "tok", nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/register", jsonBody(t, map[string]string{
		"email": "a@example.com", "username": "alice", "password": "password123", "role": "creator",
	}))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "tok", response["token"])
	assert.Equal(t, "creator", response["user"].(map[string]interface{})["role"])
	assert.NotContains(t, response["user"], "password")
}

func TestRegister_Validation(t *testing.T) {
	mockUseCase := new(MockAuthUseCase)
	handler := NewAuthHandler(mockUseCase, logger.NewNop())
	router := setupTestRouter("", "")
	router.POST("/register", handler.Register)

	for _, body := range []map[string]string{
		{"email": "not-an-email", "username": "alice", "password": "password123"},
		{"email": "a@example.com", "username": "alice", "password": "short"},
		{"email": "a@example.com", "username": "alice", "password": "password123", "role": "admin"},
	} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/register", jsonBody(t, body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
	mockUseCase.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegister_Conflict(t *testing.T) {
	mockUseCase := new(MockAuthUseCase)
	handler := NewAuthHandler(mockUseCase, logger.NewNop())
	router := setupTestRouter("", "")
	router.POST("/register", handler.Register)

	mockUseCase.On("Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, "", entity.ErrEmailTaken)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/register", jsonBody(t, map[string]string{
		"email": "a@example.com", "username": "alice", "password": "password123",
	}))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	mockUseCase := new(MockAuthUseCase)
	handler := NewAuthHandler(mockUseCase, logger.NewNop())
	router := setupTestRouter("", "")
	router.POST("/login", handler.Login)

	mockUseCase.On("Login", mock.Anything, "a@example.com", "nope").Return(nil, "", entity.ErrInvalidCredentials)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/login", jsonBody(t, map[string]string{"email": "a@example.com", "password": "nope"}))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "InvalidCredentials", response["error"])
}

func TestMe(t *testing.T) {
	mockUseCase := new(MockAuthUseCase)
	handler := NewAuthHandler(mockUseCase, logger.NewNop())
	router := setupTestRouter("u1", "fan")
	router.GET("/me", handler.Me)

	mockUseCase.On("GetUser", mock.Anything, "u1").Return(&entity.User{ID: "u1", Username: "alice", AgeVerified: true}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/me", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["age_verified"])
}

func TestSetAgeVerification(t *testing.T) {
	mockUseCase := new(MockAuthUseCase)
	handler := NewAuthHandler(mockUseCase, logger.NewNop())
	router := setupTestRouter("admin-1", "admin")
	router.PUT("/users/:user_id/age-verification", handler.SetAgeVerification)

	mockUseCase.On("SetAgeVerification", mock.Anything, fanID, false).Return(&entity.User{ID: fanID}, nil)
	mockUseCase.On("SetAgeVerification", mock.Anything, ghostID, true).Return(nil, entity.ErrUserNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/users/"+fanID+"/age-verification", jsonBody(t, map[string]bool{"verified": false}))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("PUT", "/users/"+ghostID+"/age-verification", jsonBody(t, map[string]bool{"verified": true}))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("PUT", "/users/"+fanID+"/age-verification", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscriptions(t *testing.T) {
	mockUseCase := new(MockAuthUseCase)
	handler := NewAuthHandler(mockUseCase, logger.NewNop())
	router := setupTestRouter(fanID, "fan")
	router.GET("/users/:user_id/subscriptions", handler.GetSubscriptions)
	router.POST("/users/:user_id/subscriptions/:creator_id", handler.Subscribe)
	router.DELETE("/users/:user_id/subscriptions/:creator_id", handler.Unsubscribe)

	actor := usecase.Actor{ID: fanID, Role: entity.RoleFan}
	mockUseCase.On("GetSubscriptions", mock.Anything, actor, fanID).
		Return([]*entity.Subscription{{ViewerID: fanID, CreatorID: creatorID}}, nil)
	mockUseCase.On("Subscribe", mock.Anything, actor, fanID, creatorID).
		Return(&entity.Subscription{ViewerID: fanID, CreatorID: creatorID}, nil)
	mockUseCase.On("Subscribe", mock.Anything, actor, otherFanID, creatorID).Return(nil, entity.ErrForbidden)
	mockUseCase.On("Unsubscribe", mock.Anything, actor, fanID, ghostID).Return(entity.ErrSubscriptionNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/users/"+fanID+"/subscriptions", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	var list map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, float64(1), list["count"])

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/users/"+fanID+"/subscriptions/"+creatorID, nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/users/"+otherFanID+"/subscriptions/"+creatorID, nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/users/"+fanID+"/subscriptions/"+ghostID, nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWriteError_Internal(t *testing.T) {
	mockUseCase := new(MockAuthUseCase)
	handler := NewAuthHandler(mockUseCase, logger.NewNop())
	router := setupTestRouter("u1", "fan")
	router.GET("/me", handler.Me)

	mockUseCase.On("GetUser", mock.Anything, "u1").Return(nil, errors.New("db down"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/me", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestMalformedPathIDs(t *testing.T) {
	mockUseCase := new(MockAuthUseCase)
	handler := NewAuthHandler(mockUseCase, logger.NewNop())
	router := setupTestRouter(fanID, "admin")
	router.GET("/users/:user_id/subscriptions", handler.GetSubscriptions)
	router.POST("/users/:user_id/subscriptions/:creator_id", handler.Subscribe)
	router.DELETE("/users/:user_id/subscriptions/:creator_id", handler.Unsubscribe)
	router.PUT("/users/:user_id/age-verification", handler.SetAgeVerification)

	routes := []struct {
		method string
		path   string
	}{
		{"GET", "/users/not-a-uuid/subscriptions"},
		{"POST", "/users/not-a-uuid/subscriptions/" + creatorID},
		{"POST", "/users/" + fanID + "/subscriptions/not-a-uuid"},
		{"DELETE", "/users/" + fanID + "/subscriptions/not-a-uuid"},
		{"PUT", "/users/not-a-uuid/age-verification"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(route.method, route.path, jsonBody(t, map[string]bool{"verified": true}))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, "InvalidRequest", response.Error)
		})
	}

	mockUseCase.AssertNotCalled(t, "GetSubscriptions", mock.Anything, mock.Anything, mock.Anything)
	mockUseCase.AssertNotCalled(t, "Subscribe", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockUseCase.AssertNotCalled(t, "Unsubscribe", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockUseCase.AssertNotCalled(t, "SetAgeVerification", mock.Anything, mock.Anything, mock.Anything)
}
