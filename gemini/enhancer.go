// Package gemini implements docsynth collaborators backed by Google Gemini.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/docsynth"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Ensure Enhancer implements docsynth.Enhancer at compile time.
var _ docsynth.Enhancer = (*Enhancer)(nil)

// Enhancer implements docsynth.Enhancer using Google Gemini.
type Enhancer struct {
	client *genai.Client
	model  string
}

// Option configures an Enhancer.
type Option func(*Enhancer)

// WithModel sets the model used for generation.
func WithModel(model string) Option {
	return func(e *Enhancer) {
		e.model = model
	}
}

// NewEnhancer creates a new Enhancer.
func NewEnhancer(client *genai.Client, opts ...Option) *Enhancer {
	e := &Enhancer{client: client, model: DefaultModel}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enhance rewrites one rendered entry of a category document. Failed or
// empty generations are reported as ECOLLABORATOR so the caller can keep
// the rule-based rendering.
func (e *Enhancer) Enhance(ctx context.Context, req docsynth.EnhanceRequest) (string, error) {
	if strings.TrimSpace(req.Content) == "" {
		return "", docsynth.Errorf(docsynth.EINVALID, "entry content required")
	}

	result, err := e.client.Models.GenerateContent(ctx, e.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: BuildUserPrompt(req)}},
		}},
		BuildConfig(),
	)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", docsynth.Errorf(docsynth.ECOLLABORATOR, "gemini: %v", err)
	}
	if result == nil {
		return "", docsynth.Errorf(docsynth.ECOLLABORATOR, "gemini returned nil result")
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", docsynth.Errorf(docsynth.ECOLLABORATOR, "gemini returned no text for %q", req.Title)
	}
	return text, nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.2)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are a technical writer editing software library documentation. " +
					"Rewrite the entry you are given as clear, concise markdown. " +
					"Use only facts present in the entry. " +
					"Copy code blocks and conflict warnings verbatim. " +
					"Reply with the rewritten entry only.",
			}},
		},
		Temperature: &temp,
	}
}

// BuildUserPrompt builds the user prompt for one entry.
func BuildUserPrompt(req docsynth.EnhanceRequest) string {
	var sb strings.Builder
	sb.WriteString("<entry>\n")
	fmt.Fprintf(&sb, "<category>%s</category>\n", req.Category)
	fmt.Fprintf(&sb, "<title>%s</title>\n", req.Title)
	fmt.Fprintf(&sb, "<content>\n%s\n</content>\n", req.Content)
	sb.WriteString("</entry>")
	return sb.String()
}
