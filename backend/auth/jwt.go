package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// JWTVerifier verifies HMAC-SHA256 bearer tokens issued by the auth service.
// Only HS256 is accepted; tokens carry {id, username, iat, exp} claims and
// the username is returned as the verified identity.
type JWTVerifier struct {
	secret []byte
	now    func() time.Time
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{
		secret: []byte(secret),
		now:    time.Now,
	}
}

type jwtHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

type jwtClaims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Iat      int64  `json:"iat"`
	Exp      int64  `json:"exp"`
}

func (v *JWTVerifier) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrMissingCredentials
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", ErrInvalidCredentials
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", ErrInvalidCredentials
	}
	var header jwtHeader
	if err = json.Unmarshal(headerJSON, &header); err != nil {
		return "", ErrInvalidCredentials
	}
	if header.Alg != "HS256" {
		return "", ErrInvalidCredentials
	}

	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return "", ErrInvalidCredentials
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(parts[0] + "." + parts[1]))
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return "", ErrInvalidCredentials
	}

	claimsJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", ErrInvalidCredentials
	}
	var claims jwtClaims
	if err = json.Unmarshal(claimsJSON, &claims); err != nil {
		return "", ErrInvalidCredentials
	}
	if claims.Username == "" {
		return "", ErrInvalidCredentials
	}
	if claims.Exp != 0 && v.now().Unix() >= claims.Exp {
		return "", ErrInvalidCredentials
	}
	return claims.Username, nil
}
