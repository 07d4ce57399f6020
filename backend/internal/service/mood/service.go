/*
 * @Author: NEFU AB-IN
 * @Date: 2026-03-04 14:12:09
 * @FilePath: \employee-portal\backend\internal\service\mood\service.go
 * @LastEditTime: 2026-03-06 15:20:41
 */
package mood

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	domain "employee-portal/backend/internal/domain/wellness"
	appLogger "employee-portal/backend/internal/infra/logger"
	"employee-portal/backend/internal/infra/model/textgen"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// RequiredAnswers 一次提交必须回答的题目数。
const RequiredAnswers = 5

// ErrAnswerCount 回答数量不是 5。
var ErrAnswerCount = errors.New("all 5 questions must be answered")

// WellbeingStore 故事与提交记录的持久化，repository.WellbeingRepository 实现该接口。
type WellbeingStore interface {
	FindActiveStory(ctx context.Context) (*domain.Story, error)
	CreateStory(ctx context.Context, story *domain.Story) error
	CreateResponse(ctx context.Context, resp *domain.Response) error
}

// StoryView GET /api/wellness/story 的返回体。
type StoryView struct {
	Story     StoryInfo  `json:"story"`
	Questions []Question `json:"questions"`
}

// StoryInfo 故事基本信息。
type StoryInfo struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	StoryText string `json:"story_text"`
}

// Submission 提交后的返回体。
type Submission struct {
	Mood                 Mood           `json:"mood"`
	Reason               string         `json:"reason"`
	RecommendedResources Recommendation `json:"recommended_resources"`
}

// Service 反思问卷流程：取故事、提交回答、识别情绪、推荐资源。
type Service struct {
	store      WellbeingStore
	source     StorySource
	classifier *Classifier
	logger     *zap.SugaredLogger
}

// NewService source 为空时使用内置故事。
func NewService(store WellbeingStore, source StorySource, generator textgen.Generator) *Service {
	if source == nil {
		source = StorySourceFunc(DefaultStory)
	}
	logger := appLogger.Component("mood.service")
	return &Service{
		store:      store,
		source:     source,
		classifier: NewClassifier(generator, logger),
		logger:     logger,
	}
}

func (s *Service) scope(operation string) *zap.SugaredLogger {
	return s.logger.With("operation", operation)
}

// activeStory 取当前故事，库中没有时按故事文件创建一条。
func (s *Service) activeStory(ctx context.Context) (*domain.Story, StoryDocument, error) {
	doc, err := s.source.Load()
	if err != nil {
		return nil, StoryDocument{}, fmt.Errorf("load story: %w", err)
	}

	story, err := s.store.FindActiveStory(ctx)
	if err != nil {
		return nil, StoryDocument{}, fmt.Errorf("find active story: %w", err)
	}
	if story != nil {
		return story, doc, nil
	}

	story = &domain.Story{
		Title:     doc.Story.Title,
		StoryText: doc.Story.StoryText,
		Active:    true,
	}
	if err := s.store.CreateStory(ctx, story); err != nil {
		return nil, StoryDocument{}, fmt.Errorf("create story: %w", err)
	}
	s.scope("active_story").Infow("wellbeing story created", "story_id", story.ID, "title", story.Title)
	return story, doc, nil
}

// CurrentStory 返回当前故事与题目。题目始终来自故事文件。
func (s *Service) CurrentStory(ctx context.Context) (StoryView, error) {
	story, doc, err := s.activeStory(ctx)
	if err != nil {
		s.scope("current_story").Errorw("load story failed", "error", err)
		return StoryView{}, err
	}
	questions := make([]Question, len(doc.Questions))
	copy(questions, doc.Questions)
	return StoryView{
		Story:     StoryInfo{ID: story.ID, Title: story.Title, StoryText: story.StoryText},
		Questions: questions,
	}, nil
}

// Submit 校验回答数量后识别情绪并保存记录。
func (s *Service) Submit(ctx context.Context, userID uint, displayName string, answers map[string]string) (Submission, error) {
	if len(answers) != RequiredAnswers {
		return Submission{}, ErrAnswerCount
	}
	log := s.scope("submit").With("user_id", userID)

	story, _, err := s.activeStory(ctx)
	if err != nil {
		log.Errorw("load story failed", "error", err)
		return Submission{}, err
	}

	result := s.classifier.Classify(textgen.ContextWithUser(ctx, userID), answers, firstName(displayName))
	recommendation := RecommendationsFor(result.Mood)

	payload, err := json.Marshal(answers)
	if err != nil {
		return Submission{}, fmt.Errorf("encode answers: %w", err)
	}
	record := &domain.Response{
		UserID:       userID,
		StoryID:      story.ID,
		Answers:      datatypes.JSON(payload),
		DetectedMood: string(result.Mood),
		MoodReason:   result.Reason,
	}
	if err := s.store.CreateResponse(ctx, record); err != nil {
		log.Errorw("save response failed", "error", err)
		return Submission{}, fmt.Errorf("save response: %w", err)
	}

	log.Infow("wellbeing response saved", "response_id", record.ID, "mood", result.Mood, "source", result.Source)
	return Submission{
		Mood:                 result.Mood,
		Reason:               result.Reason,
		RecommendedResources: recommendation,
	}, nil
}

func firstName(displayName string) string {
	fields := strings.Fields(displayName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
