package auth

import (
	"github.com/freshkart/orders-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims is the JWT payload minted for storefront members.
type AccessClaims struct {
	UserID uuid.UUID        `json:"uid"`
	Role   enums.MemberRole `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the authenticated principal attached to request contexts.
type Identity struct {
	UserID uuid.UUID
	Role   enums.MemberRole
}

// Can reports whether the identity's role grants the capability.
func (i Identity) Can(cap Capability) bool {
	return RoleHas(i.Role, cap)
}
