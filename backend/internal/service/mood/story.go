package mood

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_story.yaml
var defaultStoryYAML []byte

// Question 问卷中的一道反思题。
type Question struct {
	ID       int    `json:"id" yaml:"id"`
	Question string `json:"question" yaml:"question"`
}

// StoryContent 故事正文。
type StoryContent struct {
	Title     string `json:"title" yaml:"title"`
	StoryText string `json:"story_text" yaml:"story_text"`
}

// StoryDocument 故事文件的整体结构，JSON 与 YAML 共用同一套字段名。
type StoryDocument struct {
	Story     StoryContent `json:"story" yaml:"story"`
	Questions []Question   `json:"questions" yaml:"questions"`
}

// StorySource 提供故事与题目。
type StorySource interface {
	Load() (StoryDocument, error)
}

// StorySourceFunc 函数适配器。
type StorySourceFunc func() (StoryDocument, error)

// Load 实现 StorySource。
func (f StorySourceFunc) Load() (StoryDocument, error) { return f() }

// DefaultStory 返回内置故事。
func DefaultStory() (StoryDocument, error) {
	return decodeStory(defaultStoryYAML, ".yaml")
}

// FileStorySource path 为空时使用内置故事；每次调用都重新读取文件，修改后无需重启。
func FileStorySource(path string) StorySource {
	path = strings.TrimSpace(path)
	if path == "" {
		return StorySourceFunc(DefaultStory)
	}
	return StorySourceFunc(func() (StoryDocument, error) {
		raw, err := os.ReadFile(path)
		if err != nil {
			return StoryDocument{}, fmt.Errorf("read story file: %w", err)
		}
		return decodeStory(raw, strings.ToLower(filepath.Ext(path)))
	})
}

func decodeStory(raw []byte, ext string) (StoryDocument, error) {
	var doc StoryDocument
	switch ext {
	case ".json":
		if err := json.Unmarshal(raw, &doc); err != nil {
			return StoryDocument{}, fmt.Errorf("decode story json: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return StoryDocument{}, fmt.Errorf("decode story yaml: %w", err)
		}
	default:
		return StoryDocument{}, fmt.Errorf("unsupported story file extension %q", ext)
	}
	if err := doc.validate(); err != nil {
		return StoryDocument{}, err
	}
	return doc, nil
}

func (d StoryDocument) validate() error {
	if strings.TrimSpace(d.Story.Title) == "" || strings.TrimSpace(d.Story.StoryText) == "" {
		return errors.New("story title and text are required")
	}
	if len(d.Questions) != RequiredAnswers {
		return fmt.Errorf("story must define exactly %d questions, got %d", RequiredAnswers, len(d.Questions))
	}
	return nil
}
