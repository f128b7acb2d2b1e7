package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims issued on login and registration.
type Payload struct {
	// StandardClaims embeds expiry, issue time and issuer.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the directory identifier of the account.
	ID string `json:"id"`

	// Username is the account's unique login name.
	Username string `json:"username"`

	// Avatar is the derived single-letter avatar.
	Avatar string `json:"avatar"`
}
