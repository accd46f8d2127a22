package httpapi

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/pbkdf2"

	"mobimaster/backend/internal/domain"
	"mobimaster/backend/internal/store"
)

// Credential hashing is a deliberate carry-over from the legacy deployment
// so existing credential files keep working: PBKDF2-SHA256 with a fixed
// salt and iteration count. The fixed salt and universal reset code make
// this scheme acceptable only for a single-operator shop counter.
const (
	credentialSalt       = "mobile_shop_salt_2024"
	credentialIterations = 100000

	defaultUsername  = "bond007"
	defaultPassword  = "bond007"
	defaultResetCode = "bond#"
)

type CredentialStore interface {
	LoadCredentials(ctx context.Context) (*domain.Credentials, error)
	SaveCredentials(ctx context.Context, creds domain.Credentials) error
}

type AuthManager struct {
	mu       sync.RWMutex
	secret   []byte
	tokenTTL time.Duration
	creds    CredentialStore
	current  domain.Credentials
}

type shopCustomClaims struct {
	jwtlib.RegisteredClaims
}

func NewAuthManager(secret string, tokenTTL time.Duration, creds CredentialStore) *AuthManager {
	if secret == "" {
		secret = "dev-change-me"
	}
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}

	manager := &AuthManager{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		creds:    creds,
	}
	// Startup operation, before any request context exists.
	manager.bootstrapCredentials(context.Background())
	return manager
}

// bootstrapCredentials loads the stored operator credentials, regenerating
// the fixed defaults when the store is empty or unreadable so a broken
// credential file never locks the operator out.
func (a *AuthManager) bootstrapCredentials(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	stored, err := a.creds.LoadCredentials(ctx)
	if err == nil && stored.Username != "" && stored.PasswordHash != "" && stored.ResetCodeHash != "" {
		a.current = *stored
		return
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("[auth] WARN: credential store unreadable (%v), regenerating defaults", err)
	}

	defaults := domain.Credentials{
		Username:      defaultUsername,
		PasswordHash:  hashCredential(defaultPassword),
		ResetCodeHash: hashCredential(defaultResetCode),
	}
	if err := a.creds.SaveCredentials(ctx, defaults); err != nil {
		log.Printf("[auth] WARN: could not persist default credentials: %v", err)
	}
	a.current = defaults
	log.Printf("[auth] default operator credentials regenerated (username %q)", defaultUsername)
}

func (a *AuthManager) Login(req domain.LoginRequest) (domain.LoginResponse, error) {
	username := strings.TrimSpace(req.Username)

	a.mu.RLock()
	current := a.current
	a.mu.RUnlock()

	if username != current.Username || !verifyCredential(current.PasswordHash, req.Password) {
		return domain.LoginResponse{}, errors.New("invalid credentials")
	}

	expiresAt := time.Now().UTC().Add(a.tokenTTL)
	token, err := a.sign(username, expiresAt)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	return domain.LoginResponse{
		AccessToken: token,
		Username:    username,
		ExpiresAt:   expiresAt.Format(time.RFC3339),
	}, nil
}

// ResetPassword overwrites the stored password hash when the submitted
// reset code matches. The username is left untouched.
func (a *AuthManager) ResetPassword(ctx context.Context, req domain.PasswordResetRequest) error {
	if strings.TrimSpace(req.NewPassword) == "" || len(req.NewPassword) < 6 {
		return errors.New("new password must be at least 6 characters")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if !verifyCredential(a.current.ResetCodeHash, req.ResetCode) {
		return errors.New("invalid reset code")
	}

	updated := a.current
	updated.PasswordHash = hashCredential(req.NewPassword)
	if err := a.creds.SaveCredentials(ctx, updated); err != nil {
		return err
	}
	a.current = updated
	return nil
}

func (a *AuthManager) ParseToken(tokenStr string) (domain.Actor, error) {
	claims := &shopCustomClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return domain.Actor{}, errors.New("invalid or expired token")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return domain.Actor{}, errors.New("invalid token subject")
	}
	return domain.Actor{Username: sub}, nil
}

func (a *AuthManager) sign(username string, expiresAt time.Time) (string, error) {
	claims := shopCustomClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwtlib.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			Issuer:    "mobimaster",
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func hashCredential(value string) string {
	derived := pbkdf2.Key([]byte(value), []byte(credentialSalt), credentialIterations, sha256.Size, sha256.New)
	return base64.StdEncoding.EncodeToString(derived)
}

func verifyCredential(storedHash, input string) bool {
	if storedHash == "" || input == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(hashCredential(input))) == 1
}
