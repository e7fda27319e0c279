package backend

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "careerguide-mock"

// Claims are carried by every bearer token the backend issues.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (b *Backend) issueToken(account *Account) (string, error) {
	jti, err := b.ids.Generate(21)
	if err != nil {
		return "", err
	}

	now := b.clock()
	claims := Claims{
		Role: string(account.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    tokenIssuer,
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(b.tokenTTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
}

func (b *Backend) parseToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return b.secret, nil
		},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(b.clock),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
