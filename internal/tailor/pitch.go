package tailor

import (
	"context"
	"fmt"
	"log"

	"autoapply-engine/internal/llm"
)

// PitchFallback is used whenever the pitch could not be generated.
const PitchFallback = "AI Analysis Failed"

// Pitcher writes a one-sentence recruiter hook for a listing title.
type Pitcher struct {
	gen       llm.Generator
	candidate string
}

func NewPitcher(gen llm.Generator, candidate string) *Pitcher {
	return &Pitcher{gen: gen, candidate: candidate}
}

// Pitch never fails; the hook is decoration for the notification only.
func (p *Pitcher) Pitch(ctx context.Context, title string) string {
	if p == nil || p.gen == nil {
		return PitchFallback
	}
	out, err := p.gen.Generate(ctx,
		fmt.Sprintf("You are a career agent for %s. Write a 1-sentence recruiter hook.", p.candidate),
		"Job Title: "+title,
	)
	if err != nil {
		log.Printf("[pitch] %q: %v", title, err)
		return PitchFallback
	}
	return out
}
