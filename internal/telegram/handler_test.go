package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestInboundMessage(t *testing.T) {
	text := inboundMessage(&tgbotapi.Message{Text: "hello"})
	if text.Text != "hello" || text.VoiceFileID != "" || text.PhotoFileID != "" {
		t.Errorf("text message: %+v", text)
	}

	voice := inboundMessage(&tgbotapi.Message{Voice: &tgbotapi.Voice{FileID: "v1"}})
	if voice.VoiceFileID != "v1" {
		t.Errorf("voice message: %+v", voice)
	}

	audio := inboundMessage(&tgbotapi.Message{Audio: &tgbotapi.Audio{FileID: "a1"}})
	if audio.VoiceFileID != "a1" {
		t.Errorf("audio message: %+v", audio)
	}

	photo := inboundMessage(&tgbotapi.Message{Photo: []tgbotapi.PhotoSize{
		{FileID: "small"}, {FileID: "large"},
	}})
	if photo.PhotoFileID != "large" {
		t.Errorf("photo message picked %q, want largest size", photo.PhotoFileID)
	}
}

func TestUpdateChatID(t *testing.T) {
	msg := tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 11}}}
	if got := updateChatID(msg); got != 11 {
		t.Errorf("message update: got %d", got)
	}

	cb := tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 22}},
	}}
	if got := updateChatID(cb); got != 22 {
		t.Errorf("callback update: got %d", got)
	}

	if got := updateChatID(tgbotapi.Update{}); got != 0 {
		t.Errorf("empty update: got %d", got)
	}
}
