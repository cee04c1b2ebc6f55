package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role is the actor role carried in access tokens. Customers place orders;
// admins drive the fulfillment lifecycle.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// AccessTokenClaims represents the typed JWT issued by the identity service.
// Email and Phone travel in the token so checkout can backfill contact
// details without a user-store round trip.
type AccessTokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   Role      `json:"role"`
	Email  *string   `json:"email,omitempty"`
	Phone  *string   `json:"phone,omitempty"`
	jwt.RegisteredClaims
}
