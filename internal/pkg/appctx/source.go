package appctx

import (
	"context"
	"time"

	"fundgate/internal/pkg/supabase"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	profilesTable  = "profiles"
	userRolesTable = "user_roles"
)

// SupabaseProfileSource 从 PostgREST 读取 profiles 与 user_roles
type SupabaseProfileSource struct {
	client *supabase.Client
}

func NewSupabaseProfileSource(client *supabase.Client) *SupabaseProfileSource {
	return &SupabaseProfileSource{client: client}
}

// LoadProfile 资料行不存在时返回只有 UserID 的空资料
func (s *SupabaseProfileSource) LoadProfile(ctx context.Context, userID string) (Profile, error) {
	var rows []Profile
	err := s.client.From(profilesTable).
		Select("id,full_name,email,subscription_tier,subscription_status").
		Eq("id", userID).
		Limit(1).
		ExecuteInto(ctx, &rows)
	if err != nil {
		return Profile{}, errors.Wrap(err, "load profile")
	}
	if len(rows) == 0 {
		return Profile{UserID: userID}, nil
	}
	return rows[0], nil
}

func (s *SupabaseProfileSource) LoadRoles(ctx context.Context, userID string) ([]string, error) {
	var rows []struct {
		Role string `json:"role"`
	}
	if err := s.client.From(userRolesTable).Select("role").Eq("user_id", userID).ExecuteInto(ctx, &rows); err != nil {
		return nil, errors.Wrap(err, "load roles")
	}
	roles := make([]string, 0, len(rows))
	for _, r := range rows {
		roles = append(roles, r.Role)
	}
	return roles, nil
}

// ProfileModel 对应自建后端的 profiles 表
type ProfileModel struct {
	ID                    string `gorm:"primaryKey;type:char(36)"`
	FullName              string
	Email                 string
	SubscriptionTier      *string `gorm:"type:varchar(32)"`
	SubscriptionStatus    *string `gorm:"type:varchar(32)"`
	SubscriptionExpiresAt *time.Time
}

func (ProfileModel) TableName() string {
	return profilesTable
}

// UserRoleModel 对应 user_roles 表
type UserRoleModel struct {
	UserID string `gorm:"primaryKey;type:char(36)"`
	Role   string `gorm:"primaryKey;type:varchar(32)"`
}

func (UserRoleModel) TableName() string {
	return userRolesTable
}

// GormProfileSource 是 ProfileSource 的 GORM 实现
type GormProfileSource struct {
	db *gorm.DB
}

func NewGormProfileSource(db *gorm.DB) *GormProfileSource {
	return &GormProfileSource{db: db}
}

func (s *GormProfileSource) LoadProfile(ctx context.Context, userID string) (Profile, error) {
	var models []ProfileModel
	if err := s.db.WithContext(ctx).Where("id = ?", userID).Limit(1).Find(&models).Error; err != nil {
		return Profile{}, errors.Wrap(err, "load profile")
	}
	if len(models) == 0 {
		return Profile{UserID: userID}, nil
	}
	m := models[0]
	return Profile{
		UserID:             m.ID,
		FullName:           m.FullName,
		Email:              m.Email,
		SubscriptionTier:   deref(m.SubscriptionTier),
		SubscriptionStatus: deref(m.SubscriptionStatus),
	}, nil
}

func (s *GormProfileSource) LoadRoles(ctx context.Context, userID string) ([]string, error) {
	var roles []string
	err := s.db.WithContext(ctx).Model(&UserRoleModel{}).Where("user_id = ?", userID).Pluck("role", &roles).Error
	if err != nil {
		return nil, errors.Wrap(err, "load roles")
	}
	return roles, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
