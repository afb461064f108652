package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew_JSONFormatAndLevel(t *testing.T) {
	log := New(LoggingConfig{Level: "debug", Format: "json"})
	var buf bytes.Buffer
	log.Entry.Logger.SetOutput(&buf)

	log.Component("tasks").WithField("task_id", "t-1").Debug("task created")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v (%q)", err, buf.String())
	}
	if entry["component"] != "tasks" {
		t.Errorf("component = %v, want tasks", entry["component"])
	}
	if entry["task_id"] != "t-1" {
		t.Errorf("task_id = %v, want t-1", entry["task_id"])
	}
	if entry["msg"] != "task created" {
		t.Errorf("msg = %v", entry["msg"])
	}
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	log := New(LoggingConfig{Level: "chatty"})
	if log.Entry.Logger.GetLevel() != logrus.InfoLevel {
		t.Errorf("level = %v, want info", log.Entry.Logger.GetLevel())
	}
}

func TestSetExitFunc(t *testing.T) {
	log := NewNop()
	code := -1
	log.SetExitFunc(func(c int) { code = c })

	log.Fatal("store poisoned")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
}
