// Package gate authenticates a request token: it verifies the token, applies
// the inactivity window, reloads the identity and issues a replacement
// token.
package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/nimson07/postFlow/internal/activity"
	"github.com/nimson07/postFlow/internal/auth"
	"github.com/nimson07/postFlow/internal/domain"
	apperrors "github.com/nimson07/postFlow/pkg/errors"
)

const tracerName = "github.com/nimson07/postFlow/internal/gate"

// Decision labels for auth_gate_decisions_total.
const (
	resultAllowed      = "allowed"
	resultNoToken      = "no_token"
	resultInvalidToken = "invalid_token"
	resultTokenExpired = "token_expired"
	resultInactive     = "inactive"
	resultUnknownUser  = "user_not_found"
	resultError        = "error"
)

var decisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_gate_decisions_total",
		Help: "Auth gate decisions by result",
	},
	[]string{"result"},
)

// TokenService verifies incoming tokens and issues replacements.
// *auth.TokenIssuer satisfies it.
type TokenService interface {
	Verify(raw string) (*auth.Claims, error)
	Issue(user *domain.User) (string, error)
}

// UserFinder loads the current state of an identity.
type UserFinder interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Gate authorizes requests.
type Gate struct {
	tokens  TokenService
	tracker activity.Tracker
	users   UserFinder
	logger  *slog.Logger
}

// New creates a Gate.
func New(tokens TokenService, tracker activity.Tracker, users UserFinder, logger *slog.Logger) *Gate {
	return &Gate{
		tokens:  tokens,
		tracker: tracker,
		users:   users,
		logger:  logger,
	}
}

// Authorize checks raw and returns the caller's identity together with a
// freshly issued token. Every rejection is an Unauthorized AppError; store,
// tracker and signing failures are Internal.
//
// Activity is only recorded for tokens that verify. A failure after the
// touch (unknown user, signing) leaves the touch in place.
func (g *Gate) Authorize(ctx context.Context, raw string) (_ *domain.AuthorizedContext, _ string, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "gate.Authorize")
	defer span.End()

	result := resultError
	defer func() {
		decisionsTotal.WithLabelValues(result).Inc()
		span.SetAttributes(attribute.String("auth.result", result))
		if err != nil && result == resultError {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if raw == "" {
		result = resultNoToken
		return nil, "", apperrors.Unauthorized("no token provided")
	}

	claims, err := g.tokens.Verify(raw)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			result = resultTokenExpired
			return nil, "", apperrors.Unauthorized("token expired")
		}
		result = resultInvalidToken
		return nil, "", apperrors.Unauthorized("invalid token")
	}
	span.SetAttributes(attribute.String("user.id", claims.UserID))

	outcome, err := g.tracker.Touch(ctx, claims.UserID)
	if err != nil {
		return nil, "", apperrors.Internal(fmt.Errorf("touch activity: %w", err))
	}
	if outcome == activity.Expired {
		result = resultInactive
		g.logger.InfoContext(ctx, "session expired due to inactivity",
			slog.String("user_id", claims.UserID),
		)
		return nil, "", apperrors.Unauthorized("token expired due to inactivity")
	}

	user, err := g.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			result = resultUnknownUser
			return nil, "", apperrors.Unauthorized("user not found")
		}
		return nil, "", apperrors.Internal(fmt.Errorf("get user: %w", err))
	}

	token, err := g.tokens.Issue(user)
	if err != nil {
		return nil, "", apperrors.Internal(fmt.Errorf("issue token: %w", err))
	}

	result = resultAllowed
	return domain.NewAuthorizedContext(user), token, nil
}
