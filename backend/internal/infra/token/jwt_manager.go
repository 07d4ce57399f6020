/*
 * @Author: NEFU AB-IN
 * @Date: 2026-03-02 16:40:12
 * @FilePath: \employee-portal\backend\internal\infra\token\jwt_manager.go
 * @LastEditTime: 2026-03-04 11:18:27
 */
package token

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	domain "employee-portal/backend/internal/domain/user"
	"employee-portal/backend/internal/service/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ClaimSubject   = "sub"
	ClaimEmail     = "email"
	ClaimName      = "name"
	ClaimIsAdmin   = "is_admin"
	ClaimTokenType = "token_type"
	claimTokenID   = "jti"

	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	errNotRefreshToken = errors.New("not a refresh token")
	errMissingTokenID  = errors.New("missing refresh token id")
)

// JWTManager 使用 HS256 签发访问令牌与刷新令牌。
type JWTManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewJWTManager 创建 JWT 管理器。
func NewJWTManager(secret string, accessTTL, refreshTTL time.Duration) *JWTManager {
	if accessTTL <= 0 {
		accessTTL = 30 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &JWTManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// GenerateTokens 为用户签发一对令牌，refresh token 携带 jti 供存储校验。
func (m *JWTManager) GenerateTokens(_ context.Context, user *domain.User) (auth.TokenPair, error) {
	if user == nil {
		return auth.TokenPair{}, errors.New("user required")
	}
	issuedAt := m.now()

	accessToken, accessExp, err := m.sign(user, issuedAt, m.accessTTL, TokenTypeAccess, "")
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("generate access token: %w", err)
	}

	refreshID := uuid.NewString()
	refreshToken, refreshExp, err := m.sign(user, issuedAt, m.refreshTTL, TokenTypeRefresh, refreshID)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("generate refresh token: %w", err)
	}

	return auth.TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		TokenType:             "bearer",
		ExpiresIn:             int64(accessExp.Sub(issuedAt).Seconds()),
		RefreshTokenID:        refreshID,
		RefreshTokenExpiresAt: refreshExp,
	}, nil
}

func (m *JWTManager) sign(user *domain.User, issuedAt time.Time, ttl time.Duration, tokenType, tokenID string) (string, time.Time, error) {
	expiresAt := issuedAt.Add(ttl)
	claims := jwt.MapClaims{
		ClaimSubject:   strconv.FormatUint(uint64(user.ID), 10),
		ClaimEmail:     user.Email,
		ClaimName:      user.Name,
		ClaimIsAdmin:   user.IsAdmin,
		ClaimTokenType: tokenType,
		"iat":          issuedAt.Unix(),
		"exp":          expiresAt.Unix(),
	}
	if tokenID != "" {
		claims[claimTokenID] = tokenID
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseRefreshToken 校验签名与类型，返回用户 ID、jti 与过期时间。
// 过期令牌返回的错误满足 errors.Is(err, jwt.ErrTokenExpired)。
func (m *JWTManager) ParseRefreshToken(raw string) (auth.RefreshTokenClaims, error) {
	claims, err := ParseClaims(raw, m.secret)
	if err != nil {
		return auth.RefreshTokenClaims{}, err
	}

	if tType, _ := claims[ClaimTokenType].(string); tType != TokenTypeRefresh {
		return auth.RefreshTokenClaims{}, errNotRefreshToken
	}

	userID, err := SubjectID(claims)
	if err != nil {
		return auth.RefreshTokenClaims{}, err
	}

	tokenID, _ := claims[claimTokenID].(string)
	if tokenID == "" {
		return auth.RefreshTokenClaims{}, errMissingTokenID
	}

	var expiresAt time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
	}

	return auth.RefreshTokenClaims{
		UserID:    userID,
		TokenID:   tokenID,
		ExpiresAt: expiresAt,
	}, nil
}

// ParseClaims 校验 HMAC 签名并返回原始 claims，鉴权中间件与刷新流程共用。
func ParseClaims(raw string, secret []byte) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return claims, nil
}

// SubjectID 从 sub 解析用户 ID。
func SubjectID(claims jwt.MapClaims) (uint, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, errors.New("missing subject")
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid subject %q", sub)
	}
	return uint(id), nil
}
