/*
 * @Author: NEFU AB-IN
 * @Date: 2026-03-05 15:40:22
 * @FilePath: \employee-portal\backend\internal\service\learning\service.go
 * @LastEditTime: 2026-03-06 16:20:09
 */
package learning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	userdomain "employee-portal/backend/internal/domain/user"
	appLogger "employee-portal/backend/internal/infra/logger"
	"employee-portal/backend/internal/infra/metrics"
	"employee-portal/backend/internal/infra/model/textgen"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FeatureCourseRecommendations 指标与额度使用的功能名。
const FeatureCourseRecommendations = "course_recommendations"

const (
	recommendationLimit = 5
	fallbackReason      = "Recommended based on how well this course matches your role, skills, interests and experience level."
)

// ErrUserNotFound 当前用户不存在。
var ErrUserNotFound = errors.New("user not found")

// UserFinder 读取员工画像。
type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*userdomain.User, error)
}

// Recommendation 一条课程推荐。
type Recommendation struct {
	Title     string   `json:"title"`
	Skills    []string `json:"skills"`
	Category  string   `json:"category"`
	Level     string   `json:"level"`
	CourseURL string   `json:"course_url"`
	Priority  int      `json:"priority"`
	Reason    string   `json:"reason"`
}

// Result 推荐接口返回体。
type Result struct {
	EmployeeName         string           `json:"employee_name"`
	EmployeeRole         string           `json:"employee_role"`
	Recommendations      []Recommendation `json:"recommendations"`
	TotalCoursesAnalyzed int              `json:"total_courses_analyzed"`
	Source               string           `json:"source"` // ai / fallback
}

// Service 课程推荐：规则预筛选 + 文本生成排序，后者失败时直接用预筛选结果。
type Service struct {
	users     UserFinder
	catalog   []Course
	generator textgen.Generator
	logger    *zap.SugaredLogger
}

// NewService catalog 由 LoadCatalog 读取。
func NewService(users UserFinder, catalog []Course, generator textgen.Generator) *Service {
	if generator == nil {
		generator = textgen.Disabled{}
	}
	return &Service{
		users:     users,
		catalog:   catalog,
		generator: generator,
		logger:    appLogger.Component("learning.service"),
	}
}

// Recommend 为用户推荐最多 5 门课程。
func (s *Service) Recommend(ctx context.Context, userID uint) (Result, error) {
	log := s.logger.With("operation", "recommend", "user_id", userID)

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Result{}, ErrUserNotFound
		}
		return Result{}, fmt.Errorf("find user: %w", err)
	}

	result := Result{EmployeeName: u.Name, EmployeeRole: u.Role, Recommendations: []Recommendation{}}
	if len(s.catalog) == 0 {
		result.Source = "fallback"
		return result, nil
	}

	candidates := Candidates(s.catalog, ProfileFromUser(u))
	result.TotalCoursesAnalyzed = len(candidates)

	recs, err := s.rank(textgen.ContextWithUser(ctx, userID), u, candidates)
	if err != nil {
		log.Warnw("course ranking failed, using rule-based order", "error", err)
		metrics.RecordFallback(FeatureCourseRecommendations)
		result.Recommendations = fallbackRecommendations(candidates)
		result.Source = "fallback"
		return result, nil
	}
	result.Recommendations = recs
	result.Source = "ai"
	return result, nil
}

func (s *Service) rank(ctx context.Context, u *userdomain.User, candidates []Course) ([]Recommendation, error) {
	coursesJSON, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode candidates: %w", err)
	}

	out, err := s.generator.Generate(ctx, textgen.Prompt{
		System:      rankingSystemPrompt,
		User:        rankingUserPrompt(u, string(coursesJSON)),
		MaxTokens:   2000,
		Temperature: 0.7,
		JSON:        true,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Recommendations []struct {
			Title    string `json:"title"`
			Priority int    `json:"priority"`
			Reason   string `json:"reason"`
		} `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		return nil, fmt.Errorf("decode ranking: %w", err)
	}

	byTitle := make(map[string]Course, len(s.catalog))
	for _, c := range s.catalog {
		if _, ok := byTitle[c.Title]; !ok {
			byTitle[c.Title] = c
		}
	}

	recs := make([]Recommendation, 0, recommendationLimit)
	for i, item := range payload.Recommendations {
		if i >= recommendationLimit {
			break
		}
		course, ok := byTitle[item.Title]
		if !ok {
			continue
		}
		recs = append(recs, toRecommendation(course, item.Priority, item.Reason))
	}
	if len(recs) == 0 {
		return nil, errors.New("ranking matched no catalog course")
	}
	return recs, nil
}

func fallbackRecommendations(candidates []Course) []Recommendation {
	recs := make([]Recommendation, 0, recommendationLimit)
	for i, c := range candidates {
		if i >= recommendationLimit {
			break
		}
		recs = append(recs, toRecommendation(c, i+1, fallbackReason))
	}
	return recs
}

func toRecommendation(c Course, priority int, reason string) Recommendation {
	skills := make([]string, len(c.Skills))
	copy(skills, c.Skills)
	return Recommendation{
		Title:     c.Title,
		Skills:    skills,
		Category:  c.Category,
		Level:     c.Level,
		CourseURL: c.CourseURL,
		Priority:  priority,
		Reason:    reason,
	}
}

const rankingSystemPrompt = `You are an expert career development advisor specializing in employee learning and development.
Your task is to analyze an employee's profile and recommend the most relevant courses from a provided list.

Your recommendations should:
1. Address skill gaps relevant to their role
2. Support career growth and advancement
3. Match their experience level
4. Align with their areas of interest
5. Provide clear, actionable reasoning

Return ONLY valid JSON in this exact format:
{
  "recommendations": [
    {
      "title": "Course Title",
      "priority": 1,
      "reason": "Brief explanation (2-3 sentences)"
    }
  ]
}`

func rankingUserPrompt(u *userdomain.User, coursesJSON string) string {
	var b strings.Builder
	b.WriteString("Employee Profile:\n")
	fmt.Fprintf(&b, "- Name: %s\n", orDefault(u.Name, "Unknown"))
	fmt.Fprintf(&b, "- Role: %s\n", orDefault(u.Role, "Not specified"))
	fmt.Fprintf(&b, "- Experience: %d years\n", u.Experience)
	fmt.Fprintf(&b, "- Current Skills: %s\n", orDefault(u.Skills, "None specified"))
	fmt.Fprintf(&b, "- Areas of Interest: %s\n\n", orDefault(u.AreaOfInterest, "None specified"))
	b.WriteString("Available Courses:\n")
	b.WriteString(coursesJSON)
	b.WriteString("\n\nPlease analyze this employee's profile and recommend the TOP 5 most relevant courses from the provided list.\n")
	b.WriteString("Rank them by priority (1 being highest) and explain why each course is recommended.\n\n")
	b.WriteString("Return your response as valid JSON only.")
	return b.String()
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
