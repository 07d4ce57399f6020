/*
 * @Author: NEFU AB-IN
 * @Date: 2026-03-02 14:20:51
 * @FilePath: \employee-portal\backend\internal\domain\user\entity.go
 * @LastEditTime: 2026-03-06 16:02:33
 */
package user

import (
	"strings"
	"time"
)

// User 员工账号，同时承载职业画像（岗位、年限、技能、兴趣），供课程推荐使用。
type User struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`                       // 自增主键
	Name               string     `gorm:"size:128;not null" json:"name"`              // 姓名（展示用，取首个单词作为称呼）
	Email              string     `gorm:"size:255;uniqueIndex;not null" json:"email"` // 登录邮箱（唯一）
	PasswordHash       string     `gorm:"size:255;not null" json:"-"`                 // bcrypt 哈希，不对外输出
	IsAdmin            bool       `gorm:"default:false" json:"is_admin"`              // 管理员标记
	MustChangePassword bool       `gorm:"default:false" json:"must_change_password"`  // 管理员代建账号首次登录需改密
	Role               string     `gorm:"size:128" json:"role"`                       // 岗位，如 Software Engineer
	Experience         int        `gorm:"default:0" json:"experience"`                // 工作年限（年）
	Skills             string     `gorm:"type:text" json:"skills"`                    // 逗号分隔的技能列表
	AreaOfInterest     string     `gorm:"type:text" json:"area_of_interest"`          // 逗号分隔的兴趣方向
	LastLoginAt        *time.Time `json:"last_login_at"`                              // 上次登录时间
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// TableName 固定表名。
func (User) TableName() string {
	return "users"
}

// FirstName 返回姓名的第一个单词，姓名为空时返回空串。
func (u *User) FirstName() string {
	if u == nil {
		return ""
	}
	fields := strings.Fields(u.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// SplitList 把逗号分隔字段拆成去空白、转小写的集合，忽略空项。
func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.ToLower(strings.TrimSpace(part)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
