package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	SessionCookieName = "quiz_session"
	sessionIDKey      = "quiz.session_id"
	issuer            = "quiz-app"
)

type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// SessionManager keeps the session id in an HMAC-signed cookie. The cookie
// holds only the id; quiz state lives in the session store.
type SessionManager struct {
	secretKey []byte
	ttl       time.Duration
	secure    bool
	now       func() time.Time
}

func NewSessionManager(secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		secretKey: []byte(secret),
		ttl:       ttl,
		secure:    secure,
		now:       time.Now,
	}
}

func (m *SessionManager) Sign(sessionID string) (string, error) {
	now := m.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		SessionID: sessionID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
}

func (m *SessionManager) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&SessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, fmt.Errorf("invalid session token claims")
	}
	return claims, nil
}

// Session resolves the caller's session id from the cookie, issuing a new id
// when the cookie is absent, tampered with or expired. The cookie is re-issued
// once half its lifetime has passed so active users keep their quiz.
func (m *SessionManager) Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		var sessionID string
		renew := true

		if raw, err := c.Cookie(SessionCookieName); err == nil && raw != "" {
			claims, err := m.Verify(raw)
			if err != nil {
				slog.Debug("Discarding session cookie", "err", err)
			} else {
				sessionID = claims.SessionID
				renew = claims.ExpiresAt != nil && claims.ExpiresAt.Sub(m.now()) < m.ttl/2
			}
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		if renew {
			token, err := m.Sign(sessionID)
			if err != nil {
				slog.Error("Failed to sign session cookie", "err", err)
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookieName, token, int(m.ttl.Seconds()), "/", "", m.secure, true)
		}

		c.Set(sessionIDKey, sessionID)
		c.Next()
	}
}

// SessionID returns the id resolved by Session, or "" when the middleware did not run.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
