package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"exam-scheduler/internal/auth"
	"exam-scheduler/internal/middleware"
)

const refreshCookie = "refresh_token"

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type sessionResponse struct {
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func (h *Handler) Register(c echo.Context) error {
	var req credentials
	if err := bind(c, &req); err != nil {
		return err
	}
	s, err := h.accounts.Register(c.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return err
	}
	return h.writeSession(c, http.StatusCreated, s)
}

func (h *Handler) Login(c echo.Context) error {
	var req credentials
	if err := bind(c, &req); err != nil {
		return err
	}
	s, err := h.accounts.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.writeSession(c, http.StatusOK, s)
}

// Refresh reads the refresh token from its cookie, falling back to a JSON
// body of {"refreshToken": "..."}.
func (h *Handler) Refresh(c echo.Context) error {
	s, err := h.accounts.Refresh(c.Request().Context(), h.refreshToken(c))
	if err != nil {
		h.clearCookies(c)
		return err
	}
	return h.writeSession(c, http.StatusOK, s)
}

func (h *Handler) Logout(c echo.Context) error {
	if err := h.accounts.Logout(c.Request().Context(), h.refreshToken(c)); err != nil {
		return err
	}
	h.clearCookies(c)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) refreshToken(c echo.Context) string {
	if ck, err := c.Cookie(refreshCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = bind(c, &body)
	return body.RefreshToken
}

func (h *Handler) writeSession(c echo.Context, code int, s *auth.Session) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AccessCookie,
		Value:    s.AccessToken,
		Path:     "/",
		Expires:  s.AccessExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	c.SetCookie(&http.Cookie{
		Name:     refreshCookie,
		Value:    s.RefreshToken,
		Path:     "/",
		Expires:  s.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	return c.JSON(code, sessionResponse{
		UserID:      s.User.ID,
		Name:        s.User.Name,
		Email:       s.User.Email,
		AccessToken: s.AccessToken,
		ExpiresAt:   s.AccessExpiresAt,
	})
}

func (h *Handler) clearCookies(c echo.Context) {
	for _, name := range []string{middleware.AccessCookie, refreshCookie} {
		c.SetCookie(&http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: h.secureCookie})
	}
}
