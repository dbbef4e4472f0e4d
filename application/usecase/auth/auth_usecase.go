package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gudson/kpi/application/port/inbound"
	"github.com/gudson/kpi/application/port/outbound"
	"github.com/gudson/kpi/domain/entity"
	apperr "github.com/gudson/kpi/domain/error"
	"github.com/gudson/kpi/domain/valueobject"
	"github.com/gudson/kpi/infrastructure/service/logger"
)

// LoginPolicy bounds failed login attempts per username.
type LoginPolicy struct {
	MaxAttempts   int
	Window        time.Duration
	BlockDuration time.Duration
}

var DefaultLoginPolicy = LoginPolicy{
	MaxAttempts:   5,
	Window:        15 * time.Minute,
	BlockDuration: 30 * time.Minute,
}

type AuthUseCase struct {
	credentials outbound.CredentialStore
	passwords   outbound.PasswordService
	tokens      outbound.TokenService
	rateLimit   outbound.RateLimitService
	sessions    *SessionRegistry
	metrics     outbound.MetricsRecorder
	logger      logger.Logger
	policy      LoginPolicy
}

func NewAuthUseCase(
	credentials outbound.CredentialStore,
	passwords outbound.PasswordService,
	tokens outbound.TokenService,
	rateLimit outbound.RateLimitService,
	sessions *SessionRegistry,
	metrics outbound.MetricsRecorder,
	logger logger.Logger,
	policy LoginPolicy,
) *AuthUseCase {
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}
	if policy.MaxAttempts <= 0 {
		policy = DefaultLoginPolicy
	}
	return &AuthUseCase{
		credentials: credentials,
		passwords:   passwords,
		tokens:      tokens,
		rateLimit:   rateLimit,
		sessions:    sessions,
		metrics:     metrics,
		logger:      logger,
		policy:      policy,
	}
}

var _ inbound.AuthUseCase = (*AuthUseCase)(nil)

func attemptKey(username string) string {
	return "login:" + username
}

// Authenticate checks a username and password against the credential store
// and returns the stored account as a Principal.
func (uc *AuthUseCase) Authenticate(ctx context.Context, username, password string) (*entity.Principal, error) {
	creds, err := valueobject.NewCredentials(username, password)
	if err != nil {
		uc.metrics.AuthAttempt(outbound.OutcomeInvalid)
		return nil, apperr.ErrValidation(err.Error())
	}
	key := attemptKey(creds.Username())

	if uc.rateLimit != nil {
		blocked, err := uc.rateLimit.IsBlocked(ctx, key)
		if err != nil {
			uc.logger.Error(ctx, "Failed to check login block status", err, map[string]interface{}{
				"username": creds.Username(),
			})
		}
		if blocked {
			uc.metrics.AuthAttempt(outbound.OutcomeBlocked)
			logger.LogSecurityEvent(ctx, uc.logger, "blocked_login_attempt", "MEDIUM", map[string]interface{}{
				"username": creds.Username(),
			})
			return nil, apperr.ErrTooManyAttempts(creds.Username(), uc.policy.BlockDuration.String())
		}
	}

	cred, err := uc.credentials.FindByUsername(ctx, creds.Username())
	if err != nil {
		if errors.Is(err, outbound.ErrCredentialNotFound) {
			uc.registerFailure(ctx, key)
			uc.metrics.AuthAttempt(outbound.OutcomeNotFound)
			logger.LogAuthEvent(ctx, uc.logger, "login_failed_unknown_user", creds.Username(), false, nil)
			return nil, apperr.ErrUnknownUser(creds.Username())
		}
		uc.metrics.AuthAttempt(outbound.OutcomeFailed)
		uc.logger.Error(ctx, "Failed to read credential store", err, map[string]interface{}{
			"username": creds.Username(),
		})
		return nil, apperr.ErrInternalServerError("credential lookup failed", err)
	}

	start := time.Now()
	ok, err := uc.passwords.VerifyPassword(creds.Password(), cred.PasswordHash)
	logger.LogPerformance(ctx, uc.logger, "password_verification", time.Since(start), map[string]interface{}{
		"username": cred.Username,
	})
	if err != nil {
		uc.logger.Error(ctx, "Password verification error", err, map[string]interface{}{
			"username": cred.Username,
		})
	}
	if err != nil || !ok {
		uc.registerFailure(ctx, key)
		uc.metrics.AuthAttempt(outbound.OutcomeInvalid)
		logger.LogAuthEvent(ctx, uc.logger, "login_failed_bad_credential", cred.Username, false, nil)
		return nil, apperr.ErrBadCredential(cred.Username)
	}

	if uc.rateLimit != nil {
		if err := uc.rateLimit.Reset(ctx, key); err != nil {
			uc.logger.Warn(ctx, "Failed to reset login attempts", map[string]interface{}{
				"username": cred.Username,
				"error":    err.Error(),
			})
		}
	}

	uc.metrics.AuthAttempt(outbound.OutcomeSuccess)
	logger.LogAuthEvent(ctx, uc.logger, "authenticated", cred.Username, true, map[string]interface{}{
		"role": string(cred.Role),
	})
	return cred.Principal(), nil
}

func (uc *AuthUseCase) registerFailure(ctx context.Context, key string) {
	if uc.rateLimit == nil {
		return
	}
	if err := uc.rateLimit.Increment(ctx, key, uc.policy.Window); err != nil {
		uc.logger.Error(ctx, "Failed to count login failure", err, map[string]interface{}{"key": key})
		return
	}
	allowed, err := uc.rateLimit.CheckLimit(ctx, key, uc.policy.MaxAttempts, uc.policy.Window)
	if err != nil || allowed {
		return
	}
	if err := uc.rateLimit.Block(ctx, key, uc.policy.BlockDuration, "too many failed logins"); err != nil {
		uc.logger.Error(ctx, "Failed to block login key", err, map[string]interface{}{"key": key})
		return
	}
	logger.LogSecurityEvent(ctx, uc.logger, "login_rate_limit_exceeded", "HIGH", map[string]interface{}{
		"key": key,
	})
}

// Login authenticates and opens a session bound to a signed access token.
func (uc *AuthUseCase) Login(ctx context.Context, req inbound.LoginRequest) (*inbound.LoginResponse, error) {
	principal, err := uc.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	token, expiresAt, err := uc.tokens.GenerateAccessToken(outbound.TokenClaims{
		SessionID: sessionID,
		Username:  principal.Username,
	})
	if err != nil {
		uc.logger.Error(ctx, "Failed to issue access token", err, map[string]interface{}{
			"username": principal.Username,
		})
		return nil, apperr.ErrInternalServerError("token generation failed", err)
	}
	uc.sessions.Open(sessionID, principal, expiresAt)

	logger.LogAuthEvent(ctx, uc.logger, "login_success", principal.Username, true, map[string]interface{}{
		"session_id": sessionID,
	})

	return &inbound.LoginResponse{
		Token: valueobject.NewSessionToken(token, expiresAt),
		User:  inbound.NewPrincipalView(principal),
	}, nil
}

// Resolve maps an access token to the principal of its session.
func (uc *AuthUseCase) Resolve(ctx context.Context, token string) (*entity.Principal, error) {
	claims, err := uc.tokens.ValidateAccessToken(token)
	if err != nil {
		return nil, apperr.ErrInvalidSession(err.Error())
	}
	principal, ok := uc.sessions.Get(claims.SessionID)
	if !ok {
		return nil, apperr.ErrInvalidSession(fmt.Sprintf("session %s is closed", claims.SessionID))
	}
	return principal, nil
}

// Logout closes the session behind token.
func (uc *AuthUseCase) Logout(ctx context.Context, token string) error {
	claims, err := uc.tokens.ValidateAccessToken(token)
	if err != nil {
		return apperr.ErrInvalidSession(err.Error())
	}
	uc.sessions.Close(claims.SessionID)
	logger.LogAuthEvent(ctx, uc.logger, "logout", claims.Username, true, map[string]interface{}{
		"session_id": claims.SessionID,
	})
	return nil
}
