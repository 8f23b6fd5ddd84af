package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/okovalenko/wishlink/internal/email"
	"github.com/okovalenko/wishlink/internal/logging"
)

const (
	bcryptCost        = 12
	maxPasswordLength = 72 // bcrypt input limit

	sessionDuration  = 30 * 24 * time.Hour
	sessionKeyPrefix = "session:"

	verificationTokenExpiry  = 24 * time.Hour
	passwordResetTokenExpiry = 1 * time.Hour
)

// LocalProvider implements Provider with bcrypt credentials in Postgres,
// session tokens in Redis (Postgres as fallback when Redis is down), and
// token-based email flows.
type LocalProvider struct {
	db      *pgxpool.Pool
	redis   *redis.Client
	mailer  email.Sender
	baseURL string
}

func NewLocalProvider(db *pgxpool.Pool, redisClient *redis.Client, mailer email.Sender, baseURL string) *LocalProvider {
	return &LocalProvider{
		db:      db,
		redis:   redisClient,
		mailer:  mailer,
		baseURL: baseURL,
	}
}

func (p *LocalProvider) CreateAccount(ctx context.Context, emailAddr, password string) (*Identity, error) {
	var exists bool
	err := p.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)", emailAddr,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking account existence: %w", err)
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := p.hashPassword(password)
	if err != nil {
		return nil, err
	}

	uid := uuid.NewString()
	_, err = p.db.Exec(ctx,
		`INSERT INTO accounts (uid, email, password_hash) VALUES ($1, $2, $3)`,
		uid, emailAddr, hash,
	)
	if err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	return &Identity{UID: uid, Email: emailAddr}, nil
}

func (p *LocalProvider) Authenticate(ctx context.Context, emailAddr, password string) (*Identity, string, error) {
	ident := &Identity{}
	var hash string
	err := p.db.QueryRow(ctx,
		`SELECT uid, email, password_hash, display_name, avatar_url, email_verified
		 FROM accounts WHERE email = $1`,
		emailAddr,
	).Scan(&ident.UID, &ident.Email, &hash, &ident.Name, &ident.Avatar, &ident.Verified)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("looking up account: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := p.createSession(ctx, ident.UID)
	if err != nil {
		return nil, "", err
	}

	return ident, token, nil
}

func (p *LocalProvider) CurrentSession(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	tokenHash := HashToken(token)
	redisKey := sessionKeyPrefix + tokenHash

	uid, err := p.redis.Get(ctx, redisKey).Result()
	if err == nil {
		p.redis.Expire(ctx, redisKey, sessionDuration)
		return p.identityByUID(ctx, uid)
	}

	// Fall back to the sessions table when Redis misses or is down.
	var expiresAt time.Time
	err = p.db.QueryRow(ctx,
		`SELECT uid, expires_at FROM sessions WHERE token_hash = $1`,
		tokenHash,
	).Scan(&uid, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	if time.Now().After(expiresAt) {
		p.db.Exec(ctx, "DELETE FROM sessions WHERE token_hash = $1", tokenHash)
		return nil, ErrNoSession
	}

	return p.identityByUID(ctx, uid)
}

func (p *LocalProvider) EndSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	tokenHash := HashToken(token)
	p.redis.Del(ctx, sessionKeyPrefix+tokenHash)

	if _, err := p.db.Exec(ctx, "DELETE FROM sessions WHERE token_hash = $1", tokenHash); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func (p *LocalProvider) SendVerification(ctx context.Context, ident *Identity) error {
	token, tokenHash, err := GenerateToken()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(verificationTokenExpiry)
	_, err = p.db.Exec(ctx,
		`INSERT INTO email_verification_tokens (uid, token_hash, expires_at) VALUES ($1, $2, $3)`,
		ident.UID, tokenHash, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("storing verification token: %w", err)
	}

	verifyURL := fmt.Sprintf("%s/#verify-email?token=%s", p.baseURL, token)
	html, text := renderVerificationEmail(verifyURL)

	return p.mailer.Send(ctx, &email.Message{
		To:      ident.Email,
		Subject: "Verify your WishLink account",
		HTML:    html,
		Text:    text,
	})
}

func (p *LocalProvider) VerifyEmail(ctx context.Context, token string) error {
	tokenHash := HashToken(token)

	var uid string
	var expiresAt time.Time
	err := p.db.QueryRow(ctx,
		`SELECT uid, expires_at FROM email_verification_tokens WHERE token_hash = $1`,
		tokenHash,
	).Scan(&uid, &expiresAt)
	if err != nil {
		return ErrInvalidToken
	}
	if time.Now().After(expiresAt) {
		return ErrInvalidToken
	}

	_, err = p.db.Exec(ctx,
		`UPDATE accounts SET email_verified = true, updated_at = NOW() WHERE uid = $1`, uid,
	)
	if err != nil {
		return fmt.Errorf("marking account verified: %w", err)
	}

	if _, err := p.db.Exec(ctx,
		`DELETE FROM email_verification_tokens WHERE uid = $1`, uid,
	); err != nil {
		logging.Error("Failed to delete verification tokens", logging.Fields{"error": err.Error(), "uid": uid})
	}

	return nil
}

func (p *LocalProvider) SendPasswordReset(ctx context.Context, emailAddr string) error {
	var uid string
	err := p.db.QueryRow(ctx,
		"SELECT uid FROM accounts WHERE email = $1", emailAddr,
	).Scan(&uid)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAccountNotFound
	}
	if err != nil {
		return fmt.Errorf("looking up account: %w", err)
	}

	token, tokenHash, err := GenerateToken()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(passwordResetTokenExpiry)
	_, err = p.db.Exec(ctx,
		`INSERT INTO password_reset_tokens (uid, token_hash, expires_at) VALUES ($1, $2, $3)`,
		uid, tokenHash, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("storing password reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/#reset-password?token=%s", p.baseURL, token)
	html, text := renderPasswordResetEmail(resetURL)

	return p.mailer.Send(ctx, &email.Message{
		To:      emailAddr,
		Subject: "Reset your WishLink password",
		HTML:    html,
		Text:    text,
	})
}

func (p *LocalProvider) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	tokenHash := HashToken(token)

	var uid string
	var expiresAt time.Time
	var usedAt *time.Time
	err := p.db.QueryRow(ctx,
		`SELECT uid, expires_at, used_at FROM password_reset_tokens WHERE token_hash = $1`,
		tokenHash,
	).Scan(&uid, &expiresAt, &usedAt)
	if err != nil {
		return ErrInvalidToken
	}
	if usedAt != nil || time.Now().After(expiresAt) {
		return ErrInvalidToken
	}

	hash, err := p.hashPassword(newPassword)
	if err != nil {
		return err
	}

	_, err = p.db.Exec(ctx,
		`UPDATE accounts SET password_hash = $1, updated_at = NOW() WHERE uid = $2`,
		hash, uid,
	)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	if _, err := p.db.Exec(ctx,
		`UPDATE password_reset_tokens SET used_at = NOW() WHERE token_hash = $1`, tokenHash,
	); err != nil {
		logging.Error("Failed to mark reset token used", logging.Fields{"error": err.Error(), "uid": uid})
	}

	// Invalidate existing sessions after a password change.
	if err := p.endAllSessions(ctx, uid); err != nil {
		logging.Error("Failed to end sessions after reset", logging.Fields{"error": err.Error(), "uid": uid})
	}

	return nil
}

func (p *LocalProvider) UpdateDisplayFields(ctx context.Context, uid, name string, avatar *string) error {
	result, err := p.db.Exec(ctx,
		`UPDATE accounts SET display_name = $1, avatar_url = $2, updated_at = NOW() WHERE uid = $3`,
		name, avatar, uid,
	)
	if err != nil {
		return fmt.Errorf("updating display fields: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (p *LocalProvider) hashPassword(password string) (string, error) {
	if len(password) > maxPasswordLength {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func (p *LocalProvider) createSession(ctx context.Context, uid string) (string, error) {
	token, tokenHash, err := GenerateToken()
	if err != nil {
		return "", err
	}

	expiresAt := time.Now().Add(sessionDuration)

	err = p.redis.Set(ctx, sessionKeyPrefix+tokenHash, uid, sessionDuration).Err()
	if err != nil {
		// Redis unavailable; keep the session in Postgres only.
		_, err = p.db.Exec(ctx,
			`INSERT INTO sessions (uid, token_hash, expires_at) VALUES ($1, $2, $3)`,
			uid, tokenHash, expiresAt,
		)
		if err != nil {
			return "", fmt.Errorf("creating session: %w", err)
		}
	}

	return token, nil
}

func (p *LocalProvider) endAllSessions(ctx context.Context, uid string) error {
	rows, err := p.db.Query(ctx, "SELECT token_hash FROM sessions WHERE uid = $1", uid)
	if err != nil {
		return fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return fmt.Errorf("scanning token hash: %w", err)
		}
		hashes = append(hashes, h)
	}

	for _, h := range hashes {
		p.redis.Del(ctx, sessionKeyPrefix+h)
	}

	if _, err := p.db.Exec(ctx, "DELETE FROM sessions WHERE uid = $1", uid); err != nil {
		return fmt.Errorf("deleting sessions: %w", err)
	}
	return nil
}

func (p *LocalProvider) identityByUID(ctx context.Context, uid string) (*Identity, error) {
	ident := &Identity{}
	err := p.db.QueryRow(ctx,
		`SELECT uid, email, display_name, avatar_url, email_verified
		 FROM accounts WHERE uid = $1`,
		uid,
	).Scan(&ident.UID, &ident.Email, &ident.Name, &ident.Avatar, &ident.Verified)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("getting account: %w", err)
	}
	return ident, nil
}
