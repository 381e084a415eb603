package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// CustomerClaims is the typed view of the token minted by the external
// auth service. The storefront never issues these tokens, it only reads
// the identity needed to stamp orders.
type CustomerClaims struct {
	CustomerID string `json:"customer_id"`
	Username   string `json:"username"`
	Email      string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the opaque customer input the rest of the storefront sees.
type Identity struct {
	CustomerID string
	Username   string
	Email      string
}

// Identity maps the claims onto the internal identity value.
func (c *CustomerClaims) Identity() Identity {
	if c == nil {
		return Identity{}
	}
	return Identity{
		CustomerID: c.CustomerID,
		Username:   c.Username,
		Email:      c.Email,
	}
}
