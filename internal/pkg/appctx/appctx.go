// Package appctx 提供当前请求的身份上下文：用户、资料与角色。
// Provider 在启动时创建一次，通过依赖注入交给各个 handler；
// 服务层的每个用例都显式接收 *Session，而不是从全局状态读取。
package appctx

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("admin role required")
)

const (
	RoleAdmin = "admin"
	TierFree  = "free"
)

// Profile 是 profiles 表中与工作流相关的字段
type Profile struct {
	UserID             string `json:"id"`
	FullName           string `json:"full_name"`
	Email              string `json:"email"`
	SubscriptionTier   string `json:"subscription_tier"`
	SubscriptionStatus string `json:"subscription_status"`
}

// ProfileSource 读取用户资料与角色，由存储适配器实现
type ProfileSource interface {
	LoadProfile(ctx context.Context, userID string) (Profile, error)
	LoadRoles(ctx context.Context, userID string) ([]string, error)
}

// Session 是一次请求中的身份快照
type Session struct {
	UserID   string
	Email    string
	Profile  Profile
	Roles    []string
	LoadedAt time.Time
}

// IsAdmin 判断是否拥有管理员角色
func (s *Session) IsAdmin() bool {
	if s == nil {
		return false
	}
	for _, r := range s.Roles {
		if strings.EqualFold(r, RoleAdmin) {
			return true
		}
	}
	return false
}

// Tier 返回订阅等级，未订阅时为 free
func (s *Session) Tier() string {
	if s == nil || s.Profile.SubscriptionTier == "" {
		return TierFree
	}
	return strings.ToLower(s.Profile.SubscriptionTier)
}

// RequireUser 校验存在已登录用户
func RequireUser(s *Session) error {
	if s == nil || s.UserID == "" {
		return ErrUnauthenticated
	}
	return nil
}

// RequireAdmin 校验管理员身份
func RequireAdmin(s *Session) error {
	if err := RequireUser(s); err != nil {
		return err
	}
	if !s.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

type identity struct {
	profile  Profile
	roles    []string
	loadedAt time.Time
}

// Provider 负责鉴权和加载身份，带一个短 TTL 的缓存
type Provider struct {
	verifier *TokenVerifier
	source   ProfileSource
	ttl      time.Duration
	now      func() time.Time

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]identity
}

// NewProvider 创建 Provider，ttl 为 0 时每次请求都重新加载
func NewProvider(verifier *TokenVerifier, source ProfileSource, ttl time.Duration) *Provider {
	return &Provider{
		verifier: verifier,
		source:   source,
		ttl:      ttl,
		now:      time.Now,
		cache:    make(map[string]identity),
	}
}

// Authenticate 校验 bearer token 并返回会话
func (p *Provider) Authenticate(ctx context.Context, bearer string) (*Session, error) {
	claims, err := p.verifier.Verify(bearer)
	if err != nil {
		return nil, err
	}

	p.mu.RLock()
	cached, ok := p.cache[claims.Subject]
	p.mu.RUnlock()
	if !ok || p.now().Sub(cached.loadedAt) >= p.ttl {
		if cached, err = p.load(ctx, claims.Subject); err != nil {
			return nil, err
		}
	}
	return newSession(claims.Subject, claims.Email, cached), nil
}

// Refresh 强制重新加载资料与角色，并原地更新 session。
// 同一用户的并发刷新只会触发一次查询。
func (p *Provider) Refresh(ctx context.Context, s *Session) error {
	if err := RequireUser(s); err != nil {
		return err
	}
	fresh, err := p.load(ctx, s.UserID)
	if err != nil {
		return err
	}
	*s = *newSession(s.UserID, s.Email, fresh)
	return nil
}

// Invalidate 丢弃某个用户的缓存身份，下一次请求会重新加载。
// 服务端改写了订阅或角色之后调用。
func (p *Provider) Invalidate(userID string) {
	p.mu.Lock()
	delete(p.cache, userID)
	p.mu.Unlock()
}

// CachedUsers 返回缓存中的用户数
func (p *Provider) CachedUsers() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.cache)
}

// evictExpiredLocked 在写入新条目时顺带清理过期条目，调用方需持有写锁
func (p *Provider) evictExpiredLocked(now time.Time) {
	for id, cached := range p.cache {
		if now.Sub(cached.loadedAt) >= p.ttl {
			delete(p.cache, id)
		}
	}
}

func (p *Provider) load(ctx context.Context, userID string) (identity, error) {
	v, err, _ := p.group.Do(userID, func() (interface{}, error) {
		profile, err := p.source.LoadProfile(ctx, userID)
		if err != nil {
			return identity{}, err
		}
		roles, err := p.source.LoadRoles(ctx, userID)
		if err != nil {
			return identity{}, err
		}
		id := identity{profile: profile, roles: roles, loadedAt: p.now()}

		p.mu.Lock()
		p.evictExpiredLocked(id.loadedAt)
		p.cache[userID] = id
		p.mu.Unlock()
		return id, nil
	})
	if err != nil {
		return identity{}, err
	}
	return v.(identity), nil
}

func newSession(userID, email string, id identity) *Session {
	if email == "" {
		email = id.profile.Email
	}
	roles := make([]string, len(id.roles))
	copy(roles, id.roles)
	return &Session{
		UserID:   userID,
		Email:    email,
		Profile:  id.profile,
		Roles:    roles,
		LoadedAt: id.loadedAt,
	}
}

type sessionKey struct{}

// WithSession 把会话放进请求 context
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom 取出请求 context 中的会话
func SessionFrom(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}
