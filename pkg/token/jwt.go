// Package token 提供了咨询会话令牌（JWT）的生成和验证功能。
package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTManager 负责管理会话 JWT 的生成和验证。
type JWTManager struct {
	secretKey  []byte        // secretKey 用于签名和验证 token 的密钥
	sessionDur time.Duration // sessionDur 定义了会话 token 的有效期
}

// SessionClaims 把会话 ID 放在 jwt.RegisteredClaims 的 Subject 中。
type SessionClaims struct {
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

const kindCounsel = "counsel"

// SessionID 解析 Subject 中的会话 ID。
func (c *SessionClaims) SessionID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// NewJWTManager 创建一个新的 JWTManager 实例。
// secret: 用于签名的密钥字符串。
// sessionExpireHours: 会话 token 的过期时间（小时），非正数时使用 24 小时。
func NewJWTManager(secret string, sessionExpireHours int) *JWTManager {
	if sessionExpireHours <= 0 {
		sessionExpireHours = 24
	}
	return &JWTManager{
		secretKey:  []byte(secret),
		sessionDur: time.Hour * time.Duration(sessionExpireHours),
	}
}

// GenerateSessionToken 为给定会话签发 token，同时返回过期时间。
func (m *JWTManager) GenerateSessionToken(sessionID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.sessionDur)
	claims := SessionClaims{
		Kind: kindCounsel,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID.String(),
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	// 使用 HS256 签名方法创建新的 token 对象
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("签名会话 token 失败: %w", err)
	}
	return signed, expiresAt, nil
}

// VerifyToken 验证给定的 token 字符串。
// 签名不匹配、已过期或不是会话 token 时返回错误。
func (m *JWTManager) VerifyToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 检查签名方法是否为 HMAC
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Kind != kindCounsel {
		return nil, fmt.Errorf("unexpected token kind %q", claims.Kind)
	}
	if _, err := claims.SessionID(); err != nil {
		return nil, fmt.Errorf("invalid session id: %w", err)
	}
	return claims, nil
}

// GenerateRandomString generates a random hex string of a given length.
func GenerateRandomString(length int) string {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to a less random string on error
		return fmt.Sprintf("fallback%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}
