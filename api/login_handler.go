package api

import (
	"net/http"
	"time"

	"github.com/anoixa/album-chat/api/common"
	"github.com/anoixa/album-chat/api/middleware"
	"github.com/anoixa/album-chat/config"
	"github.com/anoixa/album-chat/database/models"
	"github.com/anoixa/album-chat/internal/auth"
	"github.com/gin-gonic/gin"
)

// LoginHandler 注册、登录与注销
type LoginHandler struct {
	loginService *auth.LoginService
	secureCookie bool
}

// NewLoginHandler 创建登录处理器
func NewLoginHandler(loginService *auth.LoginService, cfg *config.Config) *LoginHandler {
	secure := config.IsProduction()
	if cfg != nil && cfg.CookieSecure {
		secure = true
	}
	return &LoginHandler{
		loginService: loginService,
		secureCookie: secure,
	}
}

type registerRequestBody struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type loginRequestBody struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken       string       `json:"access_token"`
	AccessTokenExpiry int64        `json:"access_token_expiry"`
	User              *models.User `json:"user"`
}

// RegisterHandlerFunc user registration
func (h *LoginHandler) RegisterHandlerFunc(c *gin.Context) {
	var req registerRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.loginService.Register(c.Request.Context(), auth.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondCreated(c, user)
}

// LoginHandlerFunc user login
func (h *LoginHandler) LoginHandlerFunc(c *gin.Context) {
	var req loginRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.loginService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	maxAge := int(time.Until(result.AccessTokenExpiry).Seconds())
	h.setAccessCookie(c, "Bearer "+result.AccessToken, maxAge)

	common.RespondSuccessMessage(c, "Login successful", loginResponse{
		AccessToken:       "Bearer " + result.AccessToken,
		AccessTokenExpiry: result.AccessTokenExpiry.Unix(),
		User:              result.User,
	})
}

// LogoutHandlerFunc user logout，令牌无效时也清除 cookie
func (h *LoginHandler) LogoutHandlerFunc(c *gin.Context) {
	h.setAccessCookie(c, "", -1)

	if err := middleware.Resolve(c, h.loginService); err != nil {
		common.RespondSuccessMessage(c, "Already logged out or session invalid", nil)
		return
	}

	if err := h.loginService.Logout(c.Request.Context(), middleware.CurrentClaims(c)); err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Logout successful", nil)
}

// setAccessCookie 设置 access cookie，maxAge 小于 0 时删除
func (h *LoginHandler) setAccessCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.AccessCookieName,
		Value:    value,
		MaxAge:   maxAge,
		Path:     "/",
		Secure:   h.secureCookie,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
