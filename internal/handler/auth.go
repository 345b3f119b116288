package handler

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/templui/folio/internal/config"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/service"
	"github.com/templui/folio/internal/validation"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

const oauthStateCookie = "oauth_state"

type AuthHandler struct {
	authService       *service.AuthService
	googleOAuthConfig *oauth2.Config
	githubOAuthConfig *oauth2.Config
	googleUserInfoURL string
	githubAPIURL      string
	appURL            string
	isProduction      bool
}

func NewAuthHandler(authService *service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		googleOAuthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.AppURL + "/api/auth/google/callback",
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		githubOAuthConfig: &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  cfg.AppURL + "/api/auth/github/callback",
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		googleUserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		githubAPIURL:      "https://api.github.com",
		appURL:            cfg.AppURL,
		isProduction:      cfg.IsProduction(),
	}
}

// sessionResponse is returned by every call that starts a session. Token is
// for clients that authenticate with a Bearer header instead of the cookie.
type sessionResponse struct {
	User      *model.Identity `json:"user"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// startSession issues a token for user and sets the session cookie.
func (h *AuthHandler) startSession(w http.ResponseWriter, user *model.User) (*sessionResponse, error) {
	session, err := h.authService.GenerateJWT(user)
	if err != nil {
		return nil, err
	}
	h.authService.SetJWTCookie(w, session)
	return &sessionResponse{User: user.Identity(), Token: session.Token, ExpiresAt: session.ExpiresAt}, nil
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in validation.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := h.authService.Register(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp, err := h.startSession(w, user)
	if err != nil {
		slog.Error("failed to generate JWT", "error", err, "user_id", user.ID)
		respondFailure(w, http.StatusInternalServerError, "something went wrong, please try again")
		return
	}

	slog.Info("user registered", "user_id", user.ID, "role", user.Role)
	respondCreated(w, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in validation.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := h.authService.Login(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp, err := h.startSession(w, user)
	if err != nil {
		slog.Error("failed to generate JWT", "error", err, "user_id", user.ID)
		respondFailure(w, http.StatusInternalServerError, "something went wrong, please try again")
		return
	}

	slog.Info("user logged in", "user_id", user.ID)
	respondOK(w, resp)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	respondOK(w, nil)
}

// GoogleAuth redirects to the Google consent screen.
func (h *AuthHandler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	h.redirectToProvider(w, r, h.googleOAuthConfig)
}

// GitHubAuth redirects to the GitHub consent screen.
func (h *AuthHandler) GitHubAuth(w http.ResponseWriter, r *http.Request) {
	h.redirectToProvider(w, r, h.githubOAuthConfig)
}

func (h *AuthHandler) redirectToProvider(w http.ResponseWriter, r *http.Request, cfg *oauth2.Config) {
	if cfg.ClientID == "" {
		respondFailure(w, http.StatusNotFound, "sign-in provider not configured")
		return
	}

	state := generateOAuthState()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})

	http.Redirect(w, r, cfg.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// checkState validates the state parameter against the cookie and clears it.
func (h *AuthHandler) checkState(w http.ResponseWriter, r *http.Request) bool {
	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(oauthStateCookie)

	http.SetCookie(w, &http.Cookie{
		Name:   oauthStateCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	return err == nil && state != "" && cookie.Value == state
}

// GoogleCallback completes the Google flow.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	h.callback(w, r, "google", h.googleOAuthConfig, h.fetchGoogleUser)
}

// GitHubCallback completes the GitHub flow.
func (h *AuthHandler) GitHubCallback(w http.ResponseWriter, r *http.Request) {
	h.callback(w, r, "github", h.githubOAuthConfig, h.fetchGitHubUser)
}

type fetchUserFunc func(r *http.Request, client *http.Client) (service.ProviderUser, error)

func (h *AuthHandler) callback(w http.ResponseWriter, r *http.Request, provider string, cfg *oauth2.Config, fetch fetchUserFunc) {
	if !h.checkState(w, r) {
		slog.Warn("oauth state validation failed", "provider", provider)
		h.oauthFailed(w, r)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		slog.Warn("oauth callback missing code", "provider", provider)
		h.oauthFailed(w, r)
		return
	}

	token, err := cfg.Exchange(r.Context(), code)
	if err != nil {
		slog.Error("oauth token exchange failed", "provider", provider, "error", err)
		h.oauthFailed(w, r)
		return
	}

	info, err := fetch(r, cfg.Client(r.Context(), token))
	if err != nil {
		slog.Error("failed to fetch oauth user", "provider", provider, "error", err)
		h.oauthFailed(w, r)
		return
	}
	if info.Email == "" {
		slog.Warn("oauth provider returned no email", "provider", provider)
		h.oauthFailed(w, r)
		return
	}
	info.Provider = provider

	user, err := h.authService.AuthenticateOAuth(r.Context(), info)
	if err != nil {
		slog.Error("oauth authentication failed", "provider", provider, "error", err)
		h.oauthFailed(w, r)
		return
	}

	if _, err := h.startSession(w, user); err != nil {
		slog.Error("failed to generate JWT", "error", err, "user_id", user.ID)
		h.oauthFailed(w, r)
		return
	}

	slog.Info("user logged in with oauth", "provider", provider, "user_id", user.ID)
	http.Redirect(w, r, h.appURL+service.PathDashboard, http.StatusSeeOther)
}

func (h *AuthHandler) oauthFailed(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.appURL+"/login?error=oauth", http.StatusSeeOther)
}

func (h *AuthHandler) fetchGoogleUser(r *http.Request, client *http.Client) (service.ProviderUser, error) {
	var info struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := getJSON(r, client, h.googleUserInfoURL, &info); err != nil {
		return service.ProviderUser{}, err
	}
	return service.ProviderUser{Email: info.Email, Name: info.Name, Image: info.Picture}, nil
}

func (h *AuthHandler) fetchGitHubUser(r *http.Request, client *http.Client) (service.ProviderUser, error) {
	var info struct {
		Email     string `json:"email"`
		Name      string `json:"name"`
		Login     string `json:"login"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := getJSON(r, client, h.githubAPIURL+"/user", &info); err != nil {
		return service.ProviderUser{}, err
	}

	// Private emails are only listed on /user/emails.
	if info.Email == "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := getJSON(r, client, h.githubAPIURL+"/user/emails", &emails); err != nil {
			return service.ProviderUser{}, err
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				info.Email = e.Email
				break
			}
		}
	}

	name := info.Name
	if name == "" {
		name = info.Login
	}
	return service.ProviderUser{Email: info.Email, Name: name, Image: info.AvatarURL}, nil
}

func getJSON(r *http.Request, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			slog.Error("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// generateOAuthState creates cryptographically secure random state token for OAuth CSRF protection
func generateOAuthState() string {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		panic("failed to generate oauth state: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}
