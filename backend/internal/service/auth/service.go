/*
 * @Author: NEFU AB-IN
 * @Date: 2026-03-02 17:20:06
 * @FilePath: \employee-portal\backend\internal\service\auth\service.go
 * @LastEditTime: 2026-03-06 11:46:45
 */
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	domain "employee-portal/backend/internal/domain/user"
	wellnessdomain "employee-portal/backend/internal/domain/wellness"
	appLogger "employee-portal/backend/internal/infra/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MinPasswordLength 密码最短长度，注册、改密、管理员建号共用。
const MinPasswordLength = 6

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidLogin         = errors.New("invalid email or password")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUserNotFound         = errors.New("user not found")
	ErrRefreshTokenInvalid  = errors.New("refresh token is invalid")
	ErrRefreshTokenExpired  = errors.New("refresh token expired")
	ErrRefreshTokenRevoked  = errors.New("refresh token revoked")
	ErrRefreshTokenRequired = errors.New("refresh token is required")
)

// TokenPair 一次鉴权签发的访问令牌与刷新令牌。
// RefreshTokenID/RefreshTokenExpiresAt 只在服务内部使用，用于写入刷新令牌存储。
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	TokenType             string    `json:"token_type"`
	ExpiresIn             int64     `json:"expires_in"` // seconds
	RefreshTokenID        string    `json:"-"`
	RefreshTokenExpiresAt time.Time `json:"-"`
}

// TokenManager 签发与解析令牌，token.JWTManager 实现该接口。
type TokenManager interface {
	GenerateTokens(ctx context.Context, user *domain.User) (TokenPair, error)
	ParseRefreshToken(token string) (RefreshTokenClaims, error)
}

// RefreshTokenClaims 刷新令牌解析结果。
type RefreshTokenClaims struct {
	UserID    uint
	TokenID   string
	ExpiresAt time.Time
}

// RefreshTokenStore 保存刷新令牌指纹（userID + jti），用于轮换、登出与批量吊销。
type RefreshTokenStore interface {
	Save(ctx context.Context, userID uint, tokenID string, expiresAt time.Time) error
	Delete(ctx context.Context, userID uint, tokenID string) error
	Exists(ctx context.Context, userID uint, tokenID string) (bool, error)
	RevokeAll(ctx context.Context, userID uint) error
}

// UserStore 用户读写能力，repository.UserRepository 实现该接口。
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}

// ActivityRecorder 登录/登出时写入活动日志，wellness.Service 实现该接口。
type ActivityRecorder interface {
	LogActivity(ctx context.Context, userID uint, activityType string, loginTime, logoutTime *time.Time) (*wellnessdomain.ActivityLog, error)
}

// Service 负责注册、登录、刷新、登出。
//
// 依赖说明：
//   - UserStore：读写用户数据。
//   - TokenManager：生成 / 解析 access token 与 refresh token。
//   - RefreshTokenStore：保存刷新令牌指纹，防止重复使用、实现登出。
//   - ActivityRecorder：可选，记录 login / logout 活动供健康风险评估使用。
type Service struct {
	users        UserStore
	tokenManager TokenManager
	refreshStore RefreshTokenStore
	activities   ActivityRecorder
	logger       *zap.SugaredLogger
	now          func() time.Time
}

// NewService 创建鉴权服务实例。activities 可为 nil。
func NewService(users UserStore, tm TokenManager, store RefreshTokenStore, activities ActivityRecorder) *Service {
	return &Service{
		users:        users,
		tokenManager: tm,
		refreshStore: store,
		activities:   activities,
		logger:       appLogger.Component("auth.service"),
		now:          time.Now,
	}
}

// RegisterParams 注册入参。
type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

// LoginParams 登录入参。
type LoginParams struct {
	Email    string
	Password string
}

func (s *Service) scope(operation string) *zap.SugaredLogger {
	return s.logger.With("operation", operation)
}

// Register 校验入参与邮箱唯一性，保存用户并签发令牌。
func (s *Service) Register(ctx context.Context, params RegisterParams) (*domain.User, TokenPair, error) {
	email := NormalizeEmail(params.Email)
	log := s.scope("register").With("email", email)

	if err := ValidateIdentity(params.Name, email); err != nil {
		return nil, TokenPair{}, err
	}
	if err := ValidatePassword(params.Password); err != nil {
		return nil, TokenPair{}, err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		log.Warnw("email already registered")
		return nil, TokenPair{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Errorw("check email unique failed", "error", err)
		return nil, TokenPair{}, fmt.Errorf("check email unique: %w", err)
	}

	hash, err := HashPassword(params.Password)
	if err != nil {
		log.Errorw("hash password failed", "error", err)
		return nil, TokenPair{}, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(params.Name),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		log.Errorw("create user failed", "error", err)
		return nil, TokenPair{}, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.issueAndStoreTokens(ctx, user)
	if err != nil {
		return nil, TokenPair{}, err
	}

	log.Infow("user registered", "user_id", user.ID)
	return user, tokens, nil
}

// Login 校验凭证，更新登录时间，签发令牌并记录一次 login 活动。
func (s *Service) Login(ctx context.Context, params LoginParams) (*domain.User, TokenPair, error) {
	email := NormalizeEmail(params.Email)
	log := s.scope("login").With("email", email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnw("login email not found")
			return nil, TokenPair{}, ErrInvalidLogin
		}
		log.Errorw("find user failed", "error", err)
		return nil, TokenPair{}, fmt.Errorf("find user: %w", err)
	}

	if !CheckPassword(user.PasswordHash, params.Password) {
		log.Warnw("password mismatch", "user_id", user.ID)
		return nil, TokenPair{}, ErrInvalidLogin
	}

	now := s.now()
	user.LastLoginAt = &now
	if err := s.users.Update(ctx, user); err != nil {
		log.Errorw("update last login failed", "error", err, "user_id", user.ID)
		return nil, TokenPair{}, fmt.Errorf("update last login: %w", err)
	}

	tokens, err := s.issueAndStoreTokens(ctx, user)
	if err != nil {
		return nil, TokenPair{}, err
	}

	s.recordActivity(ctx, log, user.ID, wellnessdomain.ActivityLogin, &now, nil)
	log.Infow("login success", "user_id", user.ID)
	return user, tokens, nil
}

// Me 返回当前登录用户。
func (s *Service) Me(ctx context.Context, userID uint) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// Refresh 使用刷新令牌换取新的令牌对。
//
// 链路说明：
//  1. 解析 refresh token，得到 userID、jti、过期时间。
//  2. 过期返回 ErrRefreshTokenExpired，前端需要重新登录。
//  3. 到 RefreshTokenStore 查 jti，确认没有被吊销或重复使用。
//  4. 删除旧 jti，重新签发并写回新的 jti。
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	log := s.scope("refresh")

	claims, err := s.parseRefresh(log, refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	if claims.ExpiresAt.IsZero() {
		log.Warnw("refresh token missing expiry", "user_id", claims.UserID)
		return TokenPair{}, ErrRefreshTokenInvalid
	}
	if s.now().After(claims.ExpiresAt) {
		log.Warnw("refresh token expired", "user_id", claims.UserID)
		return TokenPair{}, ErrRefreshTokenExpired
	}

	ok, err := s.refreshStore.Exists(ctx, claims.UserID, claims.TokenID)
	if err != nil {
		log.Errorw("refresh store check failed", "error", err)
		return TokenPair{}, fmt.Errorf("check refresh token: %w", err)
	}
	if !ok {
		log.Warnw("refresh token revoked", "user_id", claims.UserID)
		return TokenPair{}, ErrRefreshTokenRevoked
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnw("refresh token owner no longer exists", "user_id", claims.UserID)
			return TokenPair{}, ErrRefreshTokenRevoked
		}
		log.Errorw("load user failed", "error", err, "user_id", claims.UserID)
		return TokenPair{}, fmt.Errorf("load user: %w", err)
	}

	if err := s.refreshStore.Delete(ctx, claims.UserID, claims.TokenID); err != nil {
		log.Errorw("delete old refresh token failed", "error", err, "token_id", claims.TokenID)
		return TokenPair{}, fmt.Errorf("delete refresh token: %w", err)
	}

	return s.issueAndStoreTokens(ctx, user)
}

// Logout 吊销刷新令牌并记录 logout 活动，闭合当天最近一次登录会话。
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	log := s.scope("logout")

	claims, err := s.parseRefresh(log, refreshToken)
	if err != nil {
		return err
	}

	if err := s.refreshStore.Delete(ctx, claims.UserID, claims.TokenID); err != nil {
		log.Errorw("delete refresh token failed", "error", err, "token_id", claims.TokenID)
		return fmt.Errorf("delete refresh token: %w", err)
	}

	now := s.now()
	s.recordActivity(ctx, log, claims.UserID, wellnessdomain.ActivityLogout, nil, &now)
	log.Infow("logout success", "user_id", claims.UserID)
	return nil
}

// RevokeAll 吊销用户全部刷新令牌，修改密码后调用。
func (s *Service) RevokeAll(ctx context.Context, userID uint) error {
	if err := s.refreshStore.RevokeAll(ctx, userID); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}
	return nil
}

func (s *Service) parseRefresh(log *zap.SugaredLogger, raw string) (RefreshTokenClaims, error) {
	if strings.TrimSpace(raw) == "" {
		log.Warn("missing refresh token")
		return RefreshTokenClaims{}, ErrRefreshTokenRequired
	}
	claims, err := s.tokenManager.ParseRefreshToken(raw)
	if err != nil {
		log.Warnw("parse refresh token failed", "error", err)
		return RefreshTokenClaims{}, ErrRefreshTokenInvalid
	}
	return claims, nil
}

// recordActivity 活动日志失败只记日志，不影响鉴权结果。
func (s *Service) recordActivity(ctx context.Context, log *zap.SugaredLogger, userID uint, activityType wellnessdomain.ActivityType, loginTime, logoutTime *time.Time) {
	if s.activities == nil {
		return
	}
	if _, err := s.activities.LogActivity(ctx, userID, string(activityType), loginTime, logoutTime); err != nil {
		log.Warnw("record activity failed", "activity_type", activityType, "user_id", userID, "error", err)
	}
}

// issueAndStoreTokens 签发令牌并把刷新令牌指纹写入存储；写入失败时不返回令牌。
func (s *Service) issueAndStoreTokens(ctx context.Context, user *domain.User) (TokenPair, error) {
	log := s.scope("issue_tokens").With("user_id", user.ID)

	tokens, err := s.tokenManager.GenerateTokens(ctx, user)
	if err != nil {
		log.Errorw("generate tokens failed", "error", err)
		return TokenPair{}, fmt.Errorf("generate tokens: %w", err)
	}
	if tokens.RefreshTokenID == "" || tokens.RefreshTokenExpiresAt.IsZero() {
		return TokenPair{}, errors.New("refresh token metadata missing")
	}
	if err := s.refreshStore.Save(ctx, user.ID, tokens.RefreshTokenID, tokens.RefreshTokenExpiresAt); err != nil {
		log.Errorw("save refresh token failed", "error", err)
		return TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}
	return tokens, nil
}

// NormalizeEmail 去空白并转小写。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateIdentity 姓名非空且邮箱格式正确。
func ValidateIdentity(name, email string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}
	return nil
}

// ValidatePassword 校验密码长度。
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLength)
	}
	return nil
}

// HashPassword bcrypt 加盐哈希。
func HashPassword(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// CheckPassword 比较哈希与明文。
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
