package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"autoapply-engine/internal/config"
)

type fakeModel struct {
	reply    string
	err      error
	got      []llms.MessageContent
	deadline bool
}

func (f *fakeModel) GenerateContent(ctx context.Context, msgs []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	f.got = msgs
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, _ ...llms.CallOption) (string, error) {
	return f.reply, f.err
}

func TestGenerateSendsSystemAndUser(t *testing.T) {
	m := &fakeModel{reply: "  a sharp hook \n"}
	c := NewWithModel(m, "fake", time.Minute)

	out, err := c.Generate(context.Background(), "sys", "usr")
	if err != nil {
		t.Fatal(err)
	}
	if out != "a sharp hook" {
		t.Fatalf("out = %q", out)
	}
	if len(m.got) != 2 || m.got[0].Role != schema.ChatMessageTypeSystem || m.got[1].Role != schema.ChatMessageTypeHuman {
		t.Fatalf("messages = %+v", m.got)
	}
	if !m.deadline {
		t.Fatalf("timeout not applied")
	}
}

func TestGenerateErrors(t *testing.T) {
	boom := errors.New("connection refused")
	if _, err := NewWithModel(&fakeModel{err: boom}, "fake", 0).Generate(context.Background(), "", ""); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if _, err := NewWithModel(&fakeModel{reply: "   "}, "fake", 0).Generate(context.Background(), "", ""); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("err = %v", err)
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	if _, err := New(context.Background(), config.LLMConfig{Provider: "gpt-local"}); err == nil {
		t.Fatal("expected error")
	}
	if _, err := New(context.Background(), config.LLMConfig{Provider: "googleai"}); err == nil {
		t.Fatal("expected missing key error")
	}
}
