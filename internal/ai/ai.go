package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"journalbot/internal/tokens"
	"journalbot/pkg/config"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// Service wraps the OpenAI client behind the gateway contract the rest of the
// bot consumes: plain text in, tagged Result out, token usage recorded.
type Service struct {
	client  *openai.Client
	tracker *tokens.Tracker
	model   string
}

// Part is one element of a generation request: text, a local image file, or
// both. Image files are attached as base64 data URLs.
type Part struct {
	Text      string
	ImageFile string
}

func NewService(cfg *config.Config, tracker *tokens.Tracker) *Service {
	client := openai.NewClient(cfg.OpenAIKey)
	return &Service{
		client:  client,
		tracker: tracker,
		model:   openai.GPT4o,
	}
}

func (s *Service) Generate(ctx context.Context, parts ...Part) Result {
	content, err := buildContent(parts)
	if err != nil {
		logrus.Errorf("Failed to build request content: %v", err)
		return APIError("BadInput")
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: []openai.ChatCompletionMessage{content},
	})
	if err != nil {
		logrus.Errorf("OpenAI request failed: %v", err)
		return APIError(apiErrorKind(err))
	}

	s.recordUsage(resp.Usage)

	if len(resp.Choices) == 0 {
		logrus.Warn("OpenAI returned no choices")
		return Empty()
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		logrus.Warnf("OpenAI response blocked by content filter")
		return Blocked("content_filter")
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		logrus.Warn("OpenAI returned empty content")
		return Empty()
	}

	return OK(choice.Message.Content)
}

// Transcribe runs Whisper over a local audio file.
func (s *Service) Transcribe(ctx context.Context, audioPath string) Result {
	if _, err := os.Stat(audioPath); err != nil {
		logrus.Errorf("Audio file not found: %s", audioPath)
		return APIError("FileNotFound")
	}

	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
	})
	if err != nil {
		logrus.Errorf("Audio transcription failed: %v", err)
		return APIError(apiErrorKind(err))
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		logrus.Warn("Transcription returned no text")
		return Empty()
	}

	logrus.Infof("Transcription successful (%d chars)", len(text))
	return OK(text)
}

// EnhanceTranscript asks the model to add punctuation, capitalization and
// sentence breaks to a raw transcript, preserving the original wording.
func (s *Service) EnhanceTranscript(ctx context.Context, raw string) Result {
	if strings.TrimSpace(raw) == "" {
		return OK(raw)
	}

	prompt := fmt.Sprintf(`Add appropriate punctuation, capitalization, and sentence breaks to the following raw text. Make it read naturally. Preserve original words/meaning.

Raw Text: "%s"

Formatted Text:`, raw)

	result := s.Generate(ctx, Part{Text: prompt})
	if result.IsOK() {
		result.Text = strings.TrimSpace(result.Text)
	}
	return result
}

// ExtractText performs OCR over a local image file.
func (s *Service) ExtractText(ctx context.Context, imagePath string) Result {
	return s.Generate(ctx,
		Part{Text: "Extract text accurately from this image, preserving line breaks if possible."},
		Part{ImageFile: imagePath},
	)
}

func (s *Service) recordUsage(usage openai.Usage) {
	if s.tracker == nil {
		return
	}
	if usage.PromptTokens == 0 && usage.CompletionTokens == 0 {
		return
	}
	if err := s.tracker.Add(usage.PromptTokens, usage.CompletionTokens); err != nil {
		logrus.Errorf("Failed to record token usage: %v", err)
	}
}

func buildContent(parts []Part) (openai.ChatCompletionMessage, error) {
	hasImage := false
	for _, p := range parts {
		if p.ImageFile != "" {
			hasImage = true
		}
	}

	if !hasImage {
		var texts []string
		for _, p := range parts {
			if p.Text != "" {
				texts = append(texts, p.Text)
			}
		}
		return openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: strings.Join(texts, "\n\n"),
		}, nil
	}

	var multi []openai.ChatMessagePart
	for _, p := range parts {
		if p.Text != "" {
			multi = append(multi, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: p.Text,
			})
		}
		if p.ImageFile != "" {
			url, err := imageDataURL(p.ImageFile)
			if err != nil {
				return openai.ChatCompletionMessage{}, err
			}
			multi = append(multi, openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: url},
			})
		}
	}
	return openai.ChatCompletionMessage{
		Role:         openai.ChatMessageRoleUser,
		MultiContent: multi,
	}, nil
}

func imageDataURL(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image %s: %w", path, err)
	}

	mime := "image/jpeg"
	if strings.EqualFold(filepath.Ext(path), ".png") {
		mime = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(raw)), nil
}

func apiErrorKind(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Type != "" {
			return apiErr.Type
		}
		return fmt.Sprintf("HTTP %d", apiErr.HTTPStatusCode)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Timeout"
	}
	return "RequestFailed"
}
