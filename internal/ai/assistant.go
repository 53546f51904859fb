// Package ai answers questions about the shop with Gemini. The model sees a
// summary of the current snapshot and can call read-only tools over it.
package ai

import (
	"context"
	"errors"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"go-myshop-agent/internal/config"
	"go-myshop-agent/internal/models"
)

// Fallback is the answer for every failure.
const Fallback = "I'm sorry, I'm having trouble processing your request right now. Please try again later."

// maxToolRounds bounds the call/response loop of one question.
const maxToolRounds = 4

var (
	ErrNotConfigured = errors.New("assistant has no API key")
	errNoAnswer      = errors.New("model returned no candidates")
)

// chat is the part of *genai.ChatSession the assistant uses.
type chat interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type Assistant struct {
	client  *genai.Client
	newChat func() chat
	log     *logrus.Logger
	now     func() time.Time
}

// New connects to Gemini. Without an API key the assistant still works but
// answers every question with Fallback.
func New(ctx context.Context, apiKey, modelName string, log *logrus.Logger) (*Assistant, error) {
	a := &Assistant{log: log, now: time.Now}
	if apiKey == "" {
		log.Warn("GEMINI_API_KEY not set, assistant disabled")
		return a, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	a.client = client
	a.newChat = func() chat {
		model := client.GenerativeModel(modelName)
		model.Tools = tools
		return model.StartChat()
	}
	return a, nil
}

func (a *Assistant) Close() error {
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}

// Ask answers question from state. It never fails: errors are logged and
// turned into Fallback.
func (a *Assistant) Ask(ctx context.Context, question string, state models.BusinessState, profile models.Profile) string {
	reply, err := a.ask(ctx, question, state, profile)
	if err != nil {
		config.LogError(a.log, "ai", "Ask", "generate answer", logrus.Fields{"question_length": len(question)}, err)
		return Fallback
	}
	return reply
}

func (a *Assistant) ask(ctx context.Context, question string, state models.BusinessState, profile models.Profile) (string, error) {
	if a.newChat == nil {
		return "", ErrNotConfigured
	}
	session := a.newChat()

	resp, err := session.SendMessage(ctx, genai.Text(BuildPrompt(question, state, profile, a.now())))
	if err != nil {
		return "", err
	}

	for range maxToolRounds {
		parts, err := firstParts(resp)
		if err != nil {
			return "", err
		}

		var answers []genai.Part
		for _, part := range parts {
			if call, ok := part.(genai.FunctionCall); ok {
				answers = append(answers, answerTool(call, state))
			}
		}
		if len(answers) == 0 {
			return printResponse(parts), nil
		}

		resp, err = session.SendMessage(ctx, answers...)
		if err != nil {
			return "", err
		}
	}

	parts, err := firstParts(resp)
	if err != nil {
		return "", err
	}
	return printResponse(parts), nil
}

func firstParts(resp *genai.GenerateContentResponse) ([]genai.Part, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errNoAnswer
	}
	return resp.Candidates[0].Content.Parts, nil
}

func printResponse(parts []genai.Part) string {
	for _, part := range parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I could not find an answer in your data."
}
