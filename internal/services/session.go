package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okovalenko/wishlink/internal/cache"
	"github.com/okovalenko/wishlink/internal/identity"
	"github.com/okovalenko/wishlink/internal/logging"
	"github.com/okovalenko/wishlink/internal/models"
	"github.com/okovalenko/wishlink/internal/store"
)

const usersCollection = "users"

// SessionService resolves the current identity, preferring the cached
// snapshot, falling back to the identity provider plus the remote profile
// document, and repopulating the cache.
type SessionService struct {
	provider identity.Provider
	store    store.Store
	cache    cache.Cache
}

func NewSessionService(provider identity.Provider, st store.Store, c cache.Cache) *SessionService {
	return &SessionService{provider: provider, store: st, cache: c}
}

// GetCurrentUser returns the user for the session token in ctx, or (nil, nil)
// when no session exists. Connectivity failures are returned only after the
// cache has been exhausted.
func (s *SessionService) GetCurrentUser(ctx context.Context) (*models.UserSummary, error) {
	token := TokenFromContext(ctx)
	if token == "" {
		return nil, nil
	}

	key := cache.UserKey(identity.HashToken(token))
	if data, err := s.cache.Get(ctx, key); err == nil && data != nil {
		var summary models.UserSummary
		if json.Unmarshal(data, &summary) == nil {
			return &summary, nil
		}
	}

	ident, err := s.provider.CurrentSession(ctx, token)
	if errors.Is(err, identity.ErrNoSession) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving session: %w", err)
	}

	summary := models.UserSummary{
		UID:    ident.UID,
		Email:  ident.Email,
		Name:   ident.Name,
		Avatar: ident.Avatar,
	}

	// Merge supplemental profile fields from the users document.
	doc, err := s.store.Get(ctx, usersCollection, ident.Email)
	if err != nil && !errors.Is(err, store.ErrDocumentNotFound) {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	if err == nil {
		var user models.User
		if decodeErr := doc.Decode(&user); decodeErr == nil {
			if user.Name != "" {
				summary.Name = user.Name
			}
			summary.Username = user.Username
			if user.Avatar != nil {
				summary.Avatar = user.Avatar
			}
		}
	}

	s.cacheSnapshot(ctx, key, &summary)
	return &summary, nil
}

// IsAuthenticated probes identity-provider session state only; it consults
// neither the cache nor the remote store.
func (s *SessionService) IsAuthenticated(ctx context.Context) bool {
	_, err := s.provider.CurrentSession(ctx, TokenFromContext(ctx))
	return err == nil
}

// Register creates an account under a generated one-time credential and sends
// both a verification email and a password-reset email: the user sets their
// real password through the reset flow, so registration never collects one.
// The profile document is seeded so the first login finds it in place. The
// returned summary describes the created account; no session is started.
func (s *SessionService) Register(ctx context.Context, email, name, username string) (*models.UserSummary, error) {
	tempPassword, err := generateTempPassword()
	if err != nil {
		return nil, err
	}

	ident, err := s.provider.CreateAccount(ctx, email, tempPassword)
	if err != nil {
		return nil, err
	}

	if err := s.provider.UpdateDisplayFields(ctx, ident.UID, name, nil); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := models.User{
		UID:            ident.UID,
		Email:          ident.Email,
		Name:           name,
		Username:       username,
		Friends:        []string{},
		FriendRequests: []string{},
		CreatedAt:      now,
		LastLogin:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Set(ctx, usersCollection, ident.Email, &user, false); err != nil {
		return nil, err
	}

	ident.Name = name
	if err := s.provider.SendVerification(ctx, ident); err != nil {
		return nil, err
	}
	if err := s.provider.SendPasswordReset(ctx, email); err != nil {
		return nil, err
	}

	return &models.UserSummary{
		UID:      ident.UID,
		Email:    ident.Email,
		Name:     name,
		Username: username,
	}, nil
}

// Login authenticates, bootstraps the profile document on first login,
// stamps last-login time, and caches the denormalized session snapshot.
// It returns the snapshot and the new session token.
func (s *SessionService) Login(ctx context.Context, email, password string) (*models.UserSummary, string, error) {
	ident, token, err := s.provider.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	var user models.User

	doc, err := s.store.Get(ctx, usersCollection, ident.Email)
	switch {
	case err == nil:
		if decodeErr := doc.Decode(&user); decodeErr != nil {
			return nil, "", decodeErr
		}
		if err := s.store.Set(ctx, usersCollection, ident.Email, map[string]any{"lastLogin": now}, true); err != nil {
			return nil, "", err
		}
	case errors.Is(err, store.ErrDocumentNotFound):
		// First login: create the profile document with empty relationship sets.
		user = models.User{
			UID:            ident.UID,
			Email:          ident.Email,
			Name:           ident.Name,
			Avatar:         ident.Avatar,
			Friends:        []string{},
			FriendRequests: []string{},
			CreatedAt:      now,
			LastLogin:      now,
			UpdatedAt:      now,
		}
		if err := s.store.Set(ctx, usersCollection, ident.Email, &user, false); err != nil {
			return nil, "", err
		}
	default:
		return nil, "", fmt.Errorf("loading profile: %w", err)
	}

	summary := models.UserSummary{
		UID:      ident.UID,
		Email:    ident.Email,
		Name:     user.Name,
		Username: user.Username,
		Avatar:   user.Avatar,
	}
	if summary.Name == "" {
		summary.Name = ident.Name
	}
	if summary.Avatar == nil {
		summary.Avatar = ident.Avatar
	}

	s.cacheSnapshot(ctx, cache.UserKey(identity.HashToken(token)), &summary)
	return &summary, token, nil
}

// Logout ends the session and purges the cached snapshots. Cache purge
// failures do not fail the caller.
func (s *SessionService) Logout(ctx context.Context) error {
	token := TokenFromContext(ctx)
	if token == "" {
		return nil
	}

	// Learn the email before the session snapshot goes away so the
	// per-collection snapshots can be purged too.
	var email string
	if user, err := s.GetCurrentUser(ctx); err == nil && user != nil {
		email = user.Email
	}

	if err := s.provider.EndSession(ctx, token); err != nil {
		return err
	}

	keys := []string{cache.UserKey(identity.HashToken(token))}
	if email != "" {
		keys = append(keys,
			cache.WishlistsKey(email),
			cache.FriendsKey(email),
			cache.RequestsKey(email),
		)
	}
	for _, key := range keys {
		if err := s.cache.Remove(ctx, key); err != nil {
			logging.Warn("Failed to purge cache on logout", logging.Fields{"key": key, "error": err.Error()})
		}
	}

	return nil
}

// ResetPassword requests a password-reset email. An unknown account surfaces
// as identity.ErrAccountNotFound rather than being swallowed.
func (s *SessionService) ResetPassword(ctx context.Context, email string) error {
	return s.provider.SendPasswordReset(ctx, email)
}

// VerifyEmail completes the verification flow started at registration.
func (s *SessionService) VerifyEmail(ctx context.Context, token string) error {
	return s.provider.VerifyEmail(ctx, token)
}

// CompletePasswordReset sets the account password from a reset token.
func (s *SessionService) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	return s.provider.CompletePasswordReset(ctx, token, newPassword)
}

// UpdateProfile updates identity-provider display fields and the profile
// document, then patches the cached snapshot.
func (s *SessionService) UpdateProfile(ctx context.Context, params models.UpdateProfileParams) (*models.UserSummary, error) {
	token := TokenFromContext(ctx)
	ident, err := s.provider.CurrentSession(ctx, token)
	if errors.Is(err, identity.ErrNoSession) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("resolving session: %w", err)
	}

	if err := s.provider.UpdateDisplayFields(ctx, ident.UID, params.Name, params.Avatar); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	fields := map[string]any{
		"name":      params.Name,
		"username":  params.Username,
		"avatar":    params.Avatar,
		"updatedAt": now,
	}
	if err := s.store.Set(ctx, usersCollection, ident.Email, fields, true); err != nil {
		return nil, err
	}

	summary := models.UserSummary{
		UID:      ident.UID,
		Email:    ident.Email,
		Name:     params.Name,
		Username: params.Username,
		Avatar:   params.Avatar,
	}
	s.cacheSnapshot(ctx, cache.UserKey(identity.HashToken(token)), &summary)

	return &summary, nil
}

// UserExists reports whether a profile document exists for the email.
func (s *SessionService) UserExists(ctx context.Context, email string) (bool, error) {
	_, err := s.store.Get(ctx, usersCollection, email)
	if errors.Is(err, store.ErrDocumentNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking user existence: %w", err)
	}
	return true, nil
}

func (s *SessionService) cacheSnapshot(ctx context.Context, key string, summary *models.UserSummary) {
	data, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data); err != nil {
		logging.Warn("Failed to cache session snapshot", logging.Fields{"error": err.Error()})
	}
}

func generateTempPassword() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating temporary credential: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
