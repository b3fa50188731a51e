package gemini

import (
	"context"

	"github.com/fwojciec/docsynth"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var _ docsynth.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts tokens locally with the Gemini tokenizer, without
// calling the API.
type TokenCounter struct {
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter creates a TokenCounter for the given model. An unsupported
// model is reported as EINVALID.
func NewTokenCounter(model string) (*TokenCounter, error) {
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, docsynth.Errorf(docsynth.EINVALID, "tokenizer for %q: %v", model, err)
	}
	return &TokenCounter{tok: tok}, nil
}

// CountTokens counts the number of tokens in the given text.
func (tc *TokenCounter) CountTokens(_ context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	result, err := tc.tok.CountTokens([]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, nil)
	if err != nil {
		return 0, docsynth.Errorf(docsynth.ECOLLABORATOR, "count tokens: %v", err)
	}
	return int(result.TotalTokens), nil
}
