package http

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/heliowatt/heliowatt/internal/domain/auth"
	apperrors "github.com/heliowatt/heliowatt/pkg/errors"
)

// Register creates a local account.
func (h *Handler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	view, err := h.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "auth_failed"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, "email_exists"):
			status = http.StatusConflict
			code = "email_exists"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusCreated, view)
}

// Login exchanges credentials for a token pair.
func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "auth_failed"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, "invalid_credentials"):
			status = http.StatusUnauthorized
			code = "invalid_credentials"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Refresh rotates the token pair using a refresh token.
func (h *Handler) Refresh(c *gin.Context) {
	var req auth.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		status := http.StatusInternalServerError
		code := "auth_failed"
		switch {
		case apperrors.IsCode(err, "invalid_token"):
			status = http.StatusUnauthorized
			code = "invalid_token"
		case apperrors.IsCode(err, "user_not_found"):
			status = http.StatusUnauthorized
			code = "invalid_token"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Profile returns the authenticated user.
func (h *Handler) Profile(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}

	view, err := h.authSvc.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		status := http.StatusInternalServerError
		code := "auth_failed"
		if apperrors.IsCode(err, "user_not_found") {
			status = http.StatusNotFound
			code = "user_not_found"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, view)
}

// Logout tears down the saved session inputs and best-effort revokes any
// linked Google refresh token. Access tokens simply expire.
func (h *Handler) Logout(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}

	if err := h.sessionSvc.Clear(c.Request.Context(), claims.UserID); err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "logout_failed", errMessage(err), err))
		return
	}
	if err := h.authSvc.Logout(c.Request.Context(), claims.UserID); err != nil {
		h.logger.Warn("token revocation failed", "userId", claims.UserID, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

// GoogleAuthURL starts the OAuth flow and hands the client the consent URL.
func (h *Handler) GoogleAuthURL(c *gin.Context) {
	state, verifier, challenge, err := auth.NewOAuthState()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "auth_failed", "failed to create oauth state", err))
		return
	}

	consentURL, err := h.authSvc.GoogleAuthURL(c.Request.Context(), state, challenge)
	if err != nil {
		status := http.StatusInternalServerError
		code := "auth_failed"
		if apperrors.IsCode(err, "auth_not_configured") {
			status = http.StatusServiceUnavailable
			code = "auth_not_configured"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	setOAuthStateCookie(c, state, verifier)
	c.JSON(http.StatusOK, gin.H{"url": consentURL})
}

// GoogleCallback completes the OAuth flow.
func (h *Handler) GoogleCallback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "oauth_denied", errParam, nil))
		return
	}

	cookie, ok := readOAuthStateCookie(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "missing oauth state", nil))
		return
	}
	clearOAuthStateCookie(c)
	if c.Query("state") != cookie.State {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "oauth state mismatch", nil))
		return
	}

	resp, err := h.authSvc.GoogleCallback(c.Request.Context(), c.Query("code"), cookie.CodeVerifier)
	if err != nil {
		status := http.StatusInternalServerError
		code := "auth_failed"
		switch {
		case apperrors.IsCode(err, "invalid_request"), apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, "invalid_credentials"), apperrors.IsCode(err, "invalid_token"):
			status = http.StatusUnauthorized
			code = "invalid_credentials"
		case apperrors.IsCode(err, "account_linking_disabled"):
			status = http.StatusConflict
			code = "account_linking_disabled"
		case apperrors.IsCode(err, "email_exists"):
			status = http.StatusConflict
			code = "email_exists"
		case apperrors.IsCode(err, "user_not_found"):
			status = http.StatusNotFound
			code = "user_not_found"
		case apperrors.IsCode(err, "auth_not_configured"):
			status = http.StatusServiceUnavailable
			code = "auth_not_configured"
		case apperrors.IsCode(err, "oauth_exchange_failed"):
			status = http.StatusBadGateway
			code = "oauth_exchange_failed"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	if target := h.cfg.Auth.Google.PostLoginRedirectURL; target != "" {
		fragment := "#token=" + url.QueryEscape(resp.Token) + "&refreshToken=" + url.QueryEscape(resp.RefreshToken)
		c.Redirect(http.StatusFound, target+fragment)
		return
	}
	c.JSON(http.StatusOK, resp)
}
