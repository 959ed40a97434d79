// Package session はゲストセッションの発行と検証。
// session_idは不透明な文字列で、カートの外部キーとして使う。
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// ゲストセッションの有効期限
const GuestTTL = 24 * time.Hour

type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

type Guest struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueGuest は新しいゲストセッションを発行する。
// session_idはUUID、tokenはHS256署名付き。
func (i *Issuer) IssueGuest(now time.Time) (Guest, error) {
	sid := "guest_" + uuid.NewString()
	expiresAt := now.Add(i.ttl)

	claims := jwt.MapClaims{
		"sid":  sid,
		"role": "guest",
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return Guest{}, err
	}

	return Guest{SessionID: sid, Token: signed, ExpiresAt: expiresAt}, nil
}

// Verify はトークンを検証してsession_idを返す。
func (i *Issuer) Verify(rawToken string) (string, error) {
	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token")
	}

	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", errors.New("invalid token")
	}
	return sid, nil
}
