package middleware

import (
	"context"

	"github.com/freshkart/orders-backend/pkg/auth"
	"github.com/freshkart/orders-backend/pkg/enums"
	"github.com/google/uuid"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// IdentityFromContext rebuilds the authenticated principal seeded by Auth.
// The zero Identity is returned when the request is unauthenticated.
func IdentityFromContext(ctx context.Context) auth.Identity {
	id, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return auth.Identity{}
	}
	return auth.Identity{
		UserID: id,
		Role:   enums.MemberRole(RoleFromContext(ctx)),
	}
}

// WithIdentity injects the principal into the context.
func WithIdentity(ctx context.Context, identity auth.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, identity.UserID.String())
	return context.WithValue(ctx, ctxRole, string(identity.Role))
}
