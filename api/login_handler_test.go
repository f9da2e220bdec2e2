package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anoixa/album-chat/api/common"
	"github.com/anoixa/album-chat/api/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func bindRoute[T any](router *gin.Engine) {
	router.POST("/test", func(c *gin.Context) {
		var req T
		if err := c.ShouldBindJSON(&req); err != nil {
			common.RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
		common.RespondSuccess(c, req)
	})
}

func postJSON(router *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	jsonBody, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// --- 测试请求 DTO 绑定 ---

func TestRegisterRequest_Binding(t *testing.T) {
	router := setupTestRouter()
	bindRoute[registerRequestBody](router)

	tests := []struct {
		name       string
		body       map[string]interface{}
		wantStatus int
	}{
		{name: "valid", body: map[string]interface{}{"email": "a@example.com", "username": "alice", "password": "password123"}, wantStatus: http.StatusOK},
		{name: "bad email", body: map[string]interface{}{"email": "nope", "username": "alice", "password": "password123"}, wantStatus: http.StatusBadRequest},
		{name: "short username", body: map[string]interface{}{"email": "a@example.com", "username": "al", "password": "password123"}, wantStatus: http.StatusBadRequest},
		{name: "short password", body: map[string]interface{}{"email": "a@example.com", "username": "alice", "password": "short"}, wantStatus: http.StatusBadRequest},
		{name: "empty body", body: map[string]interface{}{}, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, postJSON(router, tt.body).Code)
		})
	}
}

func TestLoginRequest_Binding(t *testing.T) {
	router := setupTestRouter()
	bindRoute[loginRequestBody](router)

	assert.Equal(t, http.StatusOK, postJSON(router, map[string]string{"email": "a@example.com", "password": "x"}).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(router, map[string]string{"email": "a@example.com"}).Code)
}

func TestLoginRequest_InvalidJSON(t *testing.T) {
	router := setupTestRouter()
	bindRoute[loginRequestBody](router)

	req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewBufferString("invalid json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateAccountRequest_Binding(t *testing.T) {
	router := setupTestRouter()
	bindRoute[updateAccountRequest](router)

	assert.Equal(t, http.StatusOK, postJSON(router, map[string]string{}).Code)
	assert.Equal(t, http.StatusOK, postJSON(router, map[string]string{"username": "bobby"}).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(router, map[string]string{"email": "bad"}).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(router, map[string]string{"password": "short"}).Code)
}

// --- 测试 Cookie ---

func TestSetAccessCookie(t *testing.T) {
	h := &LoginHandler{secureCookie: true}
	router := setupTestRouter()
	router.GET("/cookie", func(c *gin.Context) {
		h.setAccessCookie(c, "Bearer abc", 60)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cookie", nil))

	cookie := w.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(cookie, middleware.AccessCookieName+"="))
	assert.Contains(t, cookie, "HttpOnly")
	assert.Contains(t, cookie, "Secure")
	assert.Contains(t, cookie, "SameSite=Lax")
	assert.Contains(t, cookie, "Max-Age=60")
}
