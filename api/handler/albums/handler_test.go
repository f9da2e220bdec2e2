package albums

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anoixa/album-chat/api/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func runBinding(t *testing.T, router *gin.Engine, body map[string]interface{}) int {
	t.Helper()
	jsonBody, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

// --- 测试请求 DTO 绑定 ---

func TestAlbumRequest_Binding(t *testing.T) {
	router := setupTestRouter()
	router.POST("/test", func(c *gin.Context) {
		var req albumRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			common.RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
		common.RespondSuccess(c, req)
	})

	tests := []struct {
		name       string
		body       map[string]interface{}
		wantStatus int
	}{
		{name: "valid request", body: map[string]interface{}{"title": "Trip"}, wantStatus: http.StatusOK},
		{name: "missing title", body: map[string]interface{}{}, wantStatus: http.StatusBadRequest},
		{name: "title too long", body: map[string]interface{}{"title": strings.Repeat("a", 101)}, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, runBinding(t, router, tt.body))
		})
	}
}

func TestImageRequest_Binding(t *testing.T) {
	router := setupTestRouter()
	router.POST("/test", func(c *gin.Context) {
		var req imageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			common.RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
		common.RespondSuccess(c, req.input())
	})

	tests := []struct {
		name       string
		body       map[string]interface{}
		wantStatus int
	}{
		{name: "valid request", body: map[string]interface{}{"title": "beach", "image_path": "/a.jpg"}, wantStatus: http.StatusOK},
		{name: "with description", body: map[string]interface{}{"title": "beach", "image_path": "/a.jpg", "description": "sunny"}, wantStatus: http.StatusOK},
		{name: "missing path", body: map[string]interface{}{"title": "beach"}, wantStatus: http.StatusBadRequest},
		{name: "description too long", body: map[string]interface{}{"title": "beach", "image_path": "/a.jpg", "description": strings.Repeat("d", 1001)}, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, runBinding(t, router, tt.body))
		})
	}
}

func TestAddParticipantRequest_Binding(t *testing.T) {
	router := setupTestRouter()
	router.POST("/test", func(c *gin.Context) {
		var req addParticipantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			common.RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
		common.RespondSuccess(c, req)
	})

	assert.Equal(t, http.StatusOK, runBinding(t, router, map[string]interface{}{"user_id": 3}))
	assert.Equal(t, http.StatusBadRequest, runBinding(t, router, map[string]interface{}{}))
	assert.Equal(t, http.StatusBadRequest, runBinding(t, router, map[string]interface{}{"user_id": "three"}))
}

func TestParseID(t *testing.T) {
	router := setupTestRouter()
	router.GET("/albums/:id", func(c *gin.Context) {
		id, ok := common.ParseID(c, "id")
		if !ok {
			return
		}
		common.RespondSuccess(c, id)
	})

	for path, want := range map[string]int{
		"/albums/12":  http.StatusOK,
		"/albums/0":   http.StatusBadRequest,
		"/albums/abc": http.StatusBadRequest,
		"/albums/-1":  http.StatusBadRequest,
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}
}
