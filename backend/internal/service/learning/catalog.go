package learning

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	userdomain "employee-portal/backend/internal/domain/user"
)

//go:embed default_courses.json
var defaultCatalogJSON []byte

// 预筛选保留的课程数。
const candidateLimit = 15

// Course 课程目录中的一门课。
type Course struct {
	Title     string   `json:"title"`
	Skills    []string `json:"skills"`
	Category  string   `json:"category"`
	Level     string   `json:"level"`
	CourseURL string   `json:"course_url"`
}

// LoadCatalog path 为空时使用内置目录。
func LoadCatalog(path string) ([]Course, error) {
	raw := defaultCatalogJSON
	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read course catalog: %w", err)
		}
		raw = data
	}
	var courses []Course
	if err := json.Unmarshal(raw, &courses); err != nil {
		return nil, fmt.Errorf("decode course catalog: %w", err)
	}
	if len(courses) == 0 {
		return nil, errors.New("course catalog is empty")
	}
	return courses, nil
}

type scoredCourse struct {
	Course
	score int
}

// Profile 参与打分的员工画像，字段已规范化为小写。
type Profile struct {
	Name       string
	Role       string
	Experience int
	Skills     map[string]struct{}
	Interests  []string
}

// ProfileFromUser 从用户资料构造画像。
func ProfileFromUser(u *userdomain.User) Profile {
	p := Profile{Skills: map[string]struct{}{}}
	if u == nil {
		return p
	}
	p.Name = u.Name
	p.Role = strings.ToLower(strings.TrimSpace(u.Role))
	p.Experience = u.Experience
	for _, s := range userdomain.SplitList(u.Skills) {
		p.Skills[s] = struct{}{}
	}
	seen := map[string]struct{}{}
	for _, i := range userdomain.SplitList(u.AreaOfInterest) {
		if _, ok := seen[i]; ok {
			continue
		}
		seen[i] = struct{}{}
		p.Interests = append(p.Interests, i)
	}
	return p
}

// Score 课程与画像的相关度：
// 技能缺口每项 +2，技能重合每项 +1，岗位出现在分类中 +3，
// 每个兴趣出现在分类或标题中 +2，难度与年限匹配 +2。
func Score(c Course, p Profile) int {
	courseSkills := map[string]struct{}{}
	for _, s := range c.Skills {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			courseSkills[s] = struct{}{}
		}
	}

	score := 0
	for s := range courseSkills {
		if _, ok := p.Skills[s]; ok {
			score++
		} else {
			score += 2
		}
	}

	category := strings.ToLower(c.Category)
	title := strings.ToLower(c.Title)
	if p.Role != "" && strings.Contains(category, p.Role) {
		score += 3
	}
	for _, interest := range p.Interests {
		if strings.Contains(category, interest) || strings.Contains(title, interest) {
			score += 2
		}
	}

	level := strings.ToLower(c.Level)
	switch {
	case p.Experience < 2 && strings.Contains(level, "beginner"):
		score += 2
	case p.Experience >= 2 && p.Experience < 5 && strings.Contains(level, "intermediate"):
		score += 2
	case p.Experience >= 5 && strings.Contains(level, "advanced"):
		score += 2
	}
	return score
}

// Candidates 保留得分 > 0 的课程，按得分降序稳定排序后取前 15；全部为 0 时取目录前 15。
func Candidates(catalog []Course, p Profile) []Course {
	scored := make([]scoredCourse, 0, len(catalog))
	for _, c := range catalog {
		if s := Score(c, p); s > 0 {
			scored = append(scored, scoredCourse{Course: c, score: s})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	var out []Course
	if len(scored) == 0 {
		out = append(out, catalog[:min(candidateLimit, len(catalog))]...)
		return out
	}
	for i := 0; i < len(scored) && i < candidateLimit; i++ {
		out = append(out, scored[i].Course)
	}
	return out
}
