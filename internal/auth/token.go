package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload carrying an actor.
type Claims struct {
	Name         string `json:"name"`
	Role         Role   `json:"role"`
	StateCode    string `json:"state_code"`
	DistrictID   string `json:"district_id,omitempty"`
	DistrictCode string `json:"district_code,omitempty"`
	jwt.RegisteredClaims
}

// Verifier signs and verifies HS256 actor tokens.
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Issue signs a token for actor a, valid for ttl.
func (v *Verifier) Issue(a Actor, ttl time.Duration) (string, error) {
	now := v.now()

	claims := Claims{
		Name:         a.Name,
		Role:         a.Role,
		StateCode:    a.StateCode,
		DistrictID:   a.DistrictID,
		DistrictCode: a.DistrictCode,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.UserID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

// Verify parses raw and returns the actor it carries.
func (v *Verifier) Verify(raw string) (*Actor, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	a := &Actor{
		UserID:       claims.Subject,
		Name:         claims.Name,
		Role:         claims.Role,
		StateCode:    claims.StateCode,
		DistrictID:   claims.DistrictID,
		DistrictCode: claims.DistrictCode,
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return a, nil
}
