package mood

// Resource 推荐的单个资源。
type Resource struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Recommendation 某种情绪对应的一组资源。
type Recommendation struct {
	Title     string     `json:"title"`
	Resources []Resource `json:"resources"`
}

// RecommendationsFor 返回情绪对应的资源，未知情绪按 CALM 处理。每次调用返回新值，调用方可随意修改。
func RecommendationsFor(m Mood) Recommendation {
	switch m {
	case Motivated:
		return Recommendation{
			Title: "Channel Your Energy Wisely",
			Resources: []Resource{
				{"Power Hour Planning", "Activity", "Dedicate your peak energy hours to most important tasks", "https://www.todoist.com/productivity-methods/time-blocking"},
				{"Sustainable Pace", "Reminder", "Remember to take short breaks every 90 minutes to avoid burnout", "https://www.calm.com/blog/pomodoro-technique"},
				{"Goal Setting Workshop", "Course", "Set clear, achievable goals to direct your motivation effectively", "https://www.linkedin.com/learning/"},
			},
		}
	case Stressed:
		return Recommendation{
			Title: "Stress Relief Activities",
			Resources: []Resource{
				{"4-7-8 Breathing Exercise", "Exercise", "Breathe in for 4 seconds, hold for 7, exhale for 8. Repeat 4 times to calm your nervous system", "https://www.healthline.com/health/4-7-8-breathing"},
				{"5-Minute Desk Yoga", "Exercise", "Simple stretches you can do at your desk to release tension", "https://www.youtube.com/results?search_query=5+minute+desk+yoga"},
				{"Take a Mindful Walk", "Activity", "Step outside for 10 minutes. Focus on your surroundings, not your tasks", "https://www.headspace.com/meditation/walking-meditation"},
				{"Time Management Tips", "Article", "Learn to prioritize tasks and set realistic boundaries", "https://www.mindtools.com/pages/article/newHTE_00.htm"},
			},
		}
	case Overwhelmed:
		return Recommendation{
			Title: "Immediate Relief & Support",
			Resources: []Resource{
				{"Box Breathing (4-4-4-4)", "Exercise", "Breathe in for 4, hold for 4, exhale for 4, hold for 4. Reduces anxiety immediately", "https://www.healthline.com/health/box-breathing"},
				{"Progressive Muscle Relaxation", "Exercise", "Tense and release each muscle group to release physical stress", "https://www.anxietycanada.com/articles/how-to-do-progressive-muscle-relaxation/"},
				{"Take a Mental Health Break", "Action", "Step away from work for 15-30 minutes. Listen to calming music or meditate", "https://www.calm.com/"},
				{"Talk to Your Manager", "Action", "Schedule a 1-on-1 to discuss workload and get support. It's okay to ask for help", "#"},
				{"Guided Meditation for Stress", "Exercise", "10-minute guided meditation to calm your mind and restore balance", "https://www.headspace.com/meditation/stress"},
			},
		}
	case Disengaged:
		return Recommendation{
			Title: "Reconnect & Recharge",
			Resources: []Resource{
				{`Identify Your "Why"`, "Activity", "Journal about what originally excited you about this role. Reconnect with purpose", "https://www.calm.com/blog/finding-purpose"},
				{"Try Something New", "Activity", "Take on a small project outside your usual tasks to spark interest", "#"},
				{"Connect with Colleagues", "Social", "Schedule a casual coffee chat with a teammate to rebuild connection", "#"},
				{"Morning Energizing Routine", "Exercise", "5-minute morning stretches or light exercise to boost energy", "https://www.youtube.com/results?search_query=morning+energizing+yoga"},
				{"Career Reflection Exercise", "Activity", "Assess if your role aligns with your goals and interests", "https://www.linkedin.com/learning/"},
			},
		}
	default:
		return Recommendation{
			Title: "Keep Your Balance",
			Resources: []Resource{
				{"Daily Mindfulness Practice", "Activity", "Continue your 5-minute daily mindfulness meditation to maintain inner peace", "https://www.headspace.com/meditation"},
				{"Gratitude Journaling", "Habit", "Write down 3 things you're grateful for each day to stay positive", "https://www.calm.com/blog/gratitude-journaling"},
				{"Learning & Growth", "Course", "Explore new skills to keep yourself engaged and growing", "https://www.linkedin.com/learning/"},
			},
		}
	}
}
