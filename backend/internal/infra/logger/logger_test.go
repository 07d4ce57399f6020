package logger

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuildWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "portal.log")
	l, err := Build(Options{Level: "debug", Encoding: "json", FilePath: path, MaxSize: 1, MaxBackups: 1, MaxAge: 1})
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}
	l.Info("hello", zap.String("component", "test"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected log file to contain an entry")
	}
}

func TestBuildRejectsUnknownLevel(t *testing.T) {
	if _, err := Build(Options{Level: "loud", FilePath: "-"}); err == nil {
		t.Fatalf("expected invalid level error")
	}
}

func TestComponentAddsField(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	restore := Replace(zap.New(core))
	defer restore()

	Component("wellness.service").Infow("assessed", "user_id", 3)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["component"] != "wellness.service" {
		t.Fatalf("expected component field, got %v", fields)
	}
}
