package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/repository"
	"github.com/templui/folio/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

const (
	AuthCookieName = "auth_token"
	bcryptCost     = 12
)

var invalidUsernameChars = regexp.MustCompile(`[^a-z0-9_.-]+`)

// Session is a freshly issued token and the id it carries.
type Session struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

// SessionClaims is what a verified token says about its holder.
type SessionClaims struct {
	UserID    string
	SessionID string
	ExpiresAt time.Time
}

// ProviderUser is the profile returned by an external identity provider.
type ProviderUser struct {
	Provider string
	Email    string
	Name     string
	Image    string
}

type AuthService struct {
	userRepository repository.UserRepository
	revalidator    *Revalidator
	jwtSecret      string
	jwtExpiry      time.Duration
	isProduction   bool
}

func NewAuthService(
	userRepository repository.UserRepository,
	revalidator *Revalidator,
	jwtSecret string,
	jwtExpiry time.Duration,
	isProduction bool,
) *AuthService {
	return &AuthService{
		userRepository: userRepository,
		revalidator:    revalidator,
		jwtSecret:      jwtSecret,
		jwtExpiry:      jwtExpiry,
		isProduction:   isProduction,
	}
}

// Register creates a password account. The first account created while no
// admin exists becomes the admin.
func (s *AuthService) Register(ctx context.Context, in validation.RegisterInput) (*model.User, error) {
	in, err := validation.ValidateRegister(in)
	if err != nil {
		return nil, err
	}

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, upstream("hash password", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		Username:     in.Username,
		Name:         in.Name,
		PasswordHash: &hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.userRepository.Create(ctx, user)
	if err != nil {
		return nil, classifyUserWrite(err, "create user")
	}

	slog.Info("user registered", "user_id", user.ID, "role", user.Role)
	return user, s.ownerChanged(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, in validation.LoginInput) (*model.User, error) {
	in, err := validation.ValidateLogin(in)
	if err != nil {
		return nil, err
	}

	invalid := &Error{Kind: ErrUnauthorized, Message: ErrInvalidCredentials.Error(), Err: ErrInvalidCredentials}

	user, err := s.userRepository.ByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, invalid
		}
		return nil, upstream("get user by email", err)
	}

	if !user.HasPassword() {
		return nil, invalid
	}

	if err := s.ComparePassword(in.Password, *user.PasswordHash); err != nil {
		return nil, invalid
	}

	return user, nil
}

// AuthenticateOAuth returns the account for the provider's email, creating a
// password-less one when none exists.
func (s *AuthService) AuthenticateOAuth(ctx context.Context, p ProviderUser) (*model.User, error) {
	email := validation.NormalizeEmail(p.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, validation.Single("email", p.Provider+" did not return a usable email address")
	}

	user, err := s.userRepository.ByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, upstream("get user by email", err)
	}

	name := strings.TrimSpace(p.Name)
	if validation.ValidateName(name) != nil {
		name = strings.Split(email, "@")[0]
	}

	var avatar *model.Asset
	if p.Image != "" {
		avatar = &model.Asset{URL: p.Image}
	}

	base := usernameFromEmail(email)
	username := base
	for attempt := 0; ; attempt++ {
		now := time.Now().UTC()
		user = &model.User{
			ID:        uuid.New().String(),
			Email:     email,
			Username:  username,
			Name:      name,
			Avatar:    avatar,
			CreatedAt: now,
			UpdatedAt: now,
		}

		err = s.userRepository.Create(ctx, user)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicateUsername) || attempt == 3 {
			return nil, classifyUserWrite(err, "create oauth user")
		}
		username = base + "-" + randomSuffix()
	}

	slog.Info("user registered via oauth", "user_id", user.ID, "provider", p.Provider, "role", user.Role)
	return user, s.ownerChanged(ctx, user)
}

// ownerChanged refreshes public views when user just became the site owner.
func (s *AuthService) ownerChanged(ctx context.Context, user *model.User) error {
	if !model.IsAdmin(user) {
		return nil
	}
	return s.revalidator.Revalidate(ctx, PathHome)
}

func usernameFromEmail(email string) string {
	local := strings.Split(email, "@")[0]
	username := invalidUsernameChars.ReplaceAllString(validation.NormalizeUsername(local), "")
	if len(username) > 40 {
		username = username[:40]
	}
	if len(username) < 2 {
		username = "user-" + randomSuffix()
	}
	return username
}

func randomSuffix() string {
	b := make([]byte, 3)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// classifyUserWrite maps uniqueness violations to conflicts.
func classifyUserWrite(err error, op string) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return conflict("email already exists", err)
	case errors.Is(err, repository.ErrDuplicateUsername):
		return conflict("username already taken", err)
	}
	return upstream(op, err)
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateJWT issues a token for user under a new session id.
func (s *AuthService) GenerateJWT(user *model.User) (*Session, error) {
	now := time.Now()
	session := &Session{
		ID:        uuid.New().String(),
		ExpiresAt: now.Add(s.jwtExpiry),
	}

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"sid":     session.ID,
		"exp":     session.ExpiresAt.Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, err
	}

	session.Token = tokenString
	return session, nil
}

func (s *AuthService) VerifyJWT(tokenString string) (*SessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	userID, _ := claims["user_id"].(string)
	sid, _ := claims["sid"].(string)
	if userID == "" || sid == "" {
		return nil, fmt.Errorf("token is missing user_id or sid")
	}

	out := &SessionClaims{UserID: userID, SessionID: sid}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

func (s *AuthService) SetJWTCookie(w http.ResponseWriter, session *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    session.Token,
		Expires:  session.ExpiresAt,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearJWTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}
