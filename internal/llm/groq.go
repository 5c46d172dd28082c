// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm answers research questions from retrieved paper chunks
// through Groq's OpenAI-compatible chat completion API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// groqAPIBase is the OpenAI-compatible API root. Declared as a var so
// tests can substitute an httptest server.
var groqAPIBase = "https://api.groq.com/openai/v1/"

// DefaultTemperature keeps answers close to the retrieved text.
const DefaultTemperature = 0.1

// ErrNoChoices is returned when the API answers without a completion.
var ErrNoChoices = errors.New("no choices returned")

// Answerer produces an answer to question from context passages.
type Answerer interface {
	Answer(ctx context.Context, question string, passages []string) (string, error)
}

// Groq calls the chat completion endpoint with one API key and model.
type Groq struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Answer sends the passages and the question as one completion request
// and returns the trimmed reply.
func (g *Groq) Answer(ctx context.Context, question string, passages []string) (string, error) {
	base := g.BaseURL
	if base == "" {
		base = groqAPIBase
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	temp := g.Temperature
	if temp <= 0 {
		temp = DefaultTemperature
	}

	client := openai.NewClient(
		option.WithAPIKey(g.APIKey),
		option.WithBaseURL(base),
		option.WithMaxRetries(0),
	)

	req := chatRequest{
		Model:       g.Model,
		Temperature: temp,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt(passages)},
			{Role: "user", Content: question},
		},
	}
	var out chatResponse
	if err := client.Post(ctx, "chat/completions", req, &out); err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", ErrNoChoices
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// SystemPrompt frames the passages the model must answer from.
func SystemPrompt(passages []string) string {
	var b strings.Builder
	b.WriteString("Use the following excerpts from research papers to answer the user's question. ")
	b.WriteString("If the excerpts do not contain the answer, say that you don't know instead of making one up.\n\n")
	for i, p := range passages {
		fmt.Fprintf(&b, "[%d] %s\n\n", i+1, strings.TrimSpace(strings.ReplaceAll(p, "\x00", "")))
	}
	return strings.TrimRight(b.String(), "\n")
}
