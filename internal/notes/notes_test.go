// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notes

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pdiddy/lecture-engine/pkg/types"
)

type fakeBackend struct {
	system string
	user   string
	out    string
	err    error
}

func (f *fakeBackend) Complete(_ context.Context, system, user string) (string, error) {
	f.system = system
	f.user = user
	return f.out, f.err
}

func TestSummarize(t *testing.T) {
	backend := &fakeBackend{out: "# Notes"}
	cfg := types.NotesConfig{Title: "Event Loop"}

	out, err := Summarize(context.Background(), backend, cfg, "extracted body")
	if err != nil {
		t.Fatal(err)
	}
	if out != "# Notes" {
		t.Errorf("out = %q", out)
	}
	if !strings.Contains(backend.user, "Title: Event Loop") {
		t.Errorf("prompt missing title: %q", backend.user)
	}
	if !strings.Contains(backend.user, "extracted body") {
		t.Errorf("prompt missing text: %q", backend.user)
	}
	if !strings.Contains(backend.system, "note maker") {
		t.Errorf("unexpected system prompt: %q", backend.system)
	}
}

func TestSummarizeWithoutTitle(t *testing.T) {
	backend := &fakeBackend{out: "notes"}

	_, err := Summarize(context.Background(), backend, types.NotesConfig{}, "body")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(backend.user, "Title:") {
		t.Errorf("empty title must not appear in prompt: %q", backend.user)
	}
}

func TestGenerateQA(t *testing.T) {
	backend := &fakeBackend{out: "Q1 ..."}
	cfg := types.NotesConfig{Questions: 15}

	out, err := GenerateQA(context.Background(), backend, cfg, "lecture text")
	if err != nil {
		t.Fatal(err)
	}
	if out != "Q1 ..." {
		t.Errorf("out = %q", out)
	}
	if !strings.Contains(backend.user, "Generate 15 conceptual questions") {
		t.Errorf("prompt missing question count: %q", backend.user)
	}
	if !strings.Contains(backend.user, "lecture text") {
		t.Errorf("prompt missing text: %q", backend.user)
	}
}

func TestGenerateQADefaultCount(t *testing.T) {
	backend := &fakeBackend{out: "qa"}

	_, err := GenerateQA(context.Background(), backend, types.NotesConfig{}, "text")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(backend.user, "Generate 10 conceptual questions") {
		t.Errorf("default count not applied: %q", backend.user)
	}
}

func TestBackendErrorsPropagate(t *testing.T) {
	backend := &fakeBackend{err: errors.New("api down")}

	if _, err := Summarize(context.Background(), backend, types.NotesConfig{}, "t"); err == nil {
		t.Error("Summarize: expected error")
	}
	if _, err := GenerateQA(context.Background(), backend, types.NotesConfig{}, "t"); err == nil {
		t.Error("GenerateQA: expected error")
	}
}
