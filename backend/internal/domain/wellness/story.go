package wellness

import (
	"time"

	"gorm.io/datatypes"
)

// Story 用于反思问卷的情景故事，同一时间只取第一条 active 记录。
type Story struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	StoryText string    `gorm:"type:text;not null" json:"story_text"`
	Active    bool      `gorm:"index;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 固定表名。
func (Story) TableName() string {
	return "wellbeing_stories"
}

// Response 一次问卷提交：原始答案 + 识别出的情绪。
type Response struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"index;not null" json:"user_id"`
	StoryID      uint           `gorm:"index;not null" json:"story_id"`
	Answers      datatypes.JSON `gorm:"column:answers_json" json:"answers"` // 题号 -> 回答
	DetectedMood string         `gorm:"size:32" json:"detected_mood"`
	MoodReason   string         `gorm:"type:text" json:"mood_reason"`
	CreatedAt    time.Time      `json:"created_at"`
}

// TableName 固定表名。
func (Response) TableName() string {
	return "wellbeing_responses"
}
