package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/harshyelwatkar/rapmania/internal/apperror"
	"github.com/harshyelwatkar/rapmania/internal/auth"
	"github.com/harshyelwatkar/rapmania/internal/service"
)

// sessionCookieMaxAge matches the JWT lifetime, so the cookie and the token
// expire together.
const sessionCookieMaxAge = int(24 * time.Hour / time.Second)

// AuthHandler owns the account endpoints: signup, signin, the two Google
// entry points, signout, and the session probe.
//
// DEPENDENCY CHAIN:
//   - authService *service.AuthService → account rules and session issuing
//   - google *auth.GoogleProvider      → server-side OAuth code exchange
//     (nil when the Google credentials aren't configured; the redirect
//     endpoints then report a misconfigured deployment instead of panicking)
type AuthHandler struct {
	authService *service.AuthService
	google      *auth.GoogleProvider
	logger      *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, google *auth.GoogleProvider, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		google:      google,
		logger:      logger,
	}
}

// setSessionCookie stores the JWT in an HttpOnly cookie.
// HttpOnly = JavaScript cannot read it (XSS protection).
// SameSite=Lax = sent on top-level navigations, not cross-site POSTs.
// Secure should be true in production (HTTPS only); left off for local dev.
func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   sessionCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// HandleSignUp registers a password account.
//
// HTTP: POST /api/auth/signup
// BODY: {"username": "...", "email": "...", "password": "..."}
//
// The response is the user record — its JSON shape never includes the
// password hash (the model tags it `json:"-"`).
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	result, err := h.authService.SignUp(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusCreated, result.User)
}

// HandleSignIn authenticates a password account.
//
// HTTP: POST /api/auth/signin
// BODY: {"email": "...", "password": "..."}
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	result, err := h.authService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, result.User)
}

// HandleGoogleSignIn is the client-token Google entry point: the frontend
// has already verified the Google credential and posts the profile fields.
//
// HTTP: POST /api/auth/google
// BODY: {"email": "...", "name": "...", "googleId": "..."}
func (h *AuthHandler) HandleGoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		GoogleID string `json:"googleId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	result, err := h.authService.ResolveGoogleUser(r.Context(), req.GoogleID, req.Email, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, result.User)
}

// HandleGoogleLogin starts the server-side OAuth flow by redirecting the
// browser to Google's consent page.
//
// HTTP: GET /auth/google/login
//
// CSRF PROTECTION VIA STATE:
// A random state value goes into a short-lived cookie; the callback verifies
// the query parameter against it, proving the flow started here.
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeError(w, apperror.Misconfigured("Google sign-in is not configured on this server"))
		return
	}

	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback completes the server-side OAuth flow.
//
// HTTP: GET /auth/google/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter (CSRF check)
//  2. Exchange the code for the Google profile
//  3. Resolve-or-create the account (same path as the client-token POST)
//  4. Issue the session cookie and redirect home
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeError(w, apperror.Misconfigured("Google sign-in is not configured on this server"))
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("google callback: missing state cookie")
		writeError(w, apperror.ValidationFailed("state", "invalid OAuth state"))
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("google callback: state mismatch")
		writeError(w, apperror.ValidationFailed("state", "invalid OAuth state"))
		return
	}

	// Single-use: clear the state cookie regardless of outcome.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	// The user may have denied the consent screen.
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("google callback: authorization denied", slog.String("error", errParam))
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, apperror.ValidationFailed("code", "missing OAuth code"))
		return
	}

	googleUser, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("google callback: exchange failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "authentication failed",
		})
		return
	}

	result, err := h.authService.ResolveGoogleUser(r.Context(), googleUser.Sub, googleUser.Email, googleUser.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	setSessionCookie(w, result.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleSignOut clears the session cookie.
//
// HTTP: POST /api/auth/signout
//
// Sessions are stateless JWTs, so signout just deletes the client-side
// cookie. The token itself stays valid until expiry, but without the cookie
// the browser can't send it.
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

// HandleMe returns the current session's user.
//
// HTTP: GET /api/auth/me
// Auth: Required (RequireAuth middleware sets userID in context)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		// Should never happen on a RequireAuth-protected route, but be safe.
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		h.logger.Error("me: lookup failed", slog.String("userID", userID), slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
