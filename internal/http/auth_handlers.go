package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	httpmiddleware "github.com/gestaozabele/visa/internal/http/middleware"
	"github.com/gestaozabele/visa/internal/service"
)

const refreshCookie = "visa_refresh"

// Login autentica por login e senha.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Senha    string `json:"senha"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if strings.TrimSpace(payload.Username) == "" || payload.Senha == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "login e senha obrigatórios", nil)
		return
	}

	result, err := h.authService.Login(r.Context(), strings.TrimSpace(payload.Username), payload.Senha)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.writeLoginSuccess(w, result)
}

// Refresh troca o refresh token (cookie ou corpo) por novo par.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	token, err := getRefreshFromRequest(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "refresh ausente", nil)
		return
	}

	result, err := h.authService.Refresh(r.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrRefreshInvalid) {
			h.clearRefreshCookie(w)
		}
		writeServiceError(w, r, err)
		return
	}
	h.writeLoginSuccess(w, result)
}

// Logout revoga o refresh token atual; sempre responde sucesso.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, err := getRefreshFromRequest(r); err == nil {
		_ = h.authService.Logout(r.Context(), token)
	}
	h.clearRefreshCookie(w)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Me devolve a identidade atual, relida da tabela de usuários.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := httpmiddleware.GetIdentity(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "AUTH", "sessão ausente", nil)
		return
	}
	me, err := h.authService.Me(r.Context(), id.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, me)
}

func (h *Handler) writeLoginSuccess(w http.ResponseWriter, result *service.LoginResult) {
	h.setRefreshCookie(w, result.RefreshToken, result.RefreshExpiry)
	WriteJSON(w, http.StatusOK, result)
}

func getRefreshFromRequest(r *http.Request) (string, error) {
	if c, err := r.Cookie(refreshCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}
	var payload struct {
		RefreshToken string `json:"refresh_token"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := jsonDecode(r, &payload); err == nil && payload.RefreshToken != "" {
			return payload.RefreshToken, nil
		}
	}
	return "", errors.New("refresh ausente")
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, h.buildRefreshCookie(token, expires, 0))
}

func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, h.buildRefreshCookie("", time.Time{}, -1))
}

func (h *Handler) buildRefreshCookie(value string, expires time.Time, maxAge int) *http.Cookie {
	sameSite := http.SameSiteNoneMode
	if h.devCookies {
		sameSite = http.SameSiteLaxMode
	}
	return &http.Cookie{
		Name:     refreshCookie,
		Value:    value,
		Path:     "/auth",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   !h.devCookies,
		SameSite: sameSite,
	}
}
