package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// SendMessage sends plain text to a chat. Also serves the daily prompt
// scheduler's sender contract.
func (h *Handler) SendMessage(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}
	return nil
}

// SendFormatted sends MarkdownV2 text, escaping it first and falling back to
// plain text when Telegram rejects the formatting.
func (h *Handler) SendFormatted(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, text))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := h.bot.Send(msg); err != nil {
		logrus.Warnf("MarkdownV2 send rejected, falling back to plain text: %v", err)
		return h.SendMessage(ctx, chatID, text)
	}
	return nil
}

// sendFormattedRaw sends text that already contains MarkdownV2 markup the
// caller wants rendered (e.g. bold headers), escaping nothing. Falls back to
// plain text on rejection.
func (h *Handler) sendFormattedRaw(ctx context.Context, chatID int64, markup, plain string) {
	msg := tgbotapi.NewMessage(chatID, markup)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := h.bot.Send(msg); err != nil {
		logrus.Warnf("MarkdownV2 send rejected, falling back to plain text: %v", err)
		if err := h.SendMessage(ctx, chatID, plain); err != nil {
			logrus.Errorf("Plain text fallback failed for chat %d: %v", chatID, err)
		}
	}
}

// SendStatus posts a transient progress message and returns its id so it can
// be edited or deleted later.
func (h *Handler) SendStatus(ctx context.Context, chatID int64, text string) (int, error) {
	sent, err := h.bot.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return 0, fmt.Errorf("failed to send status to chat %d: %w", chatID, err)
	}
	return sent.MessageID, nil
}

func (h *Handler) EditStatus(ctx context.Context, chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := h.bot.Send(edit); err != nil {
		return fmt.Errorf("failed to edit message %d in chat %d: %w", messageID, chatID, err)
	}
	return nil
}

// EditFormatted edits a message into escaped MarkdownV2 content, retrying as
// plain text when the formatting is rejected.
func (h *Handler) EditFormatted(ctx context.Context, chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, text))
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := h.bot.Send(edit); err != nil {
		logrus.Warnf("MarkdownV2 edit rejected, falling back to plain text: %v", err)
		return h.EditStatus(ctx, chatID, messageID, text)
	}
	return nil
}

func (h *Handler) SendPlain(ctx context.Context, chatID int64, text string) error {
	return h.SendMessage(ctx, chatID, text)
}

func (h *Handler) SendPhoto(ctx context.Context, chatID int64, imagePath, caption string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(imagePath))
	photo.Caption = caption
	if _, err := h.bot.Send(photo); err != nil {
		return fmt.Errorf("failed to send photo to chat %d: %w", chatID, err)
	}
	return nil
}

func (h *Handler) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if _, err := h.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("failed to delete message %d in chat %d: %w", messageID, chatID, err)
	}
	return nil
}

// sendMonospaceChunks delivers pre-chunked text wrapped in code fences for
// fixed-width display, chunk by chunk with plain fallback.
func (h *Handler) sendMonospaceChunks(ctx context.Context, chatID int64, chunks []string) {
	for i, chunk := range chunks {
		markup := fmt.Sprintf("```\n%s\n```", tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, chunk))
		msg := tgbotapi.NewMessage(chatID, markup)
		msg.ParseMode = tgbotapi.ModeMarkdownV2
		if _, err := h.bot.Send(msg); err != nil {
			logrus.Errorf("Failed to send chunk %d as monospace, sending plain: %v", i+1, err)
			if err := h.SendMessage(ctx, chatID, chunk); err != nil {
				logrus.Errorf("Failed to send chunk %d: %v", i+1, err)
			}
		}
	}
}

// Download fetches a Telegram file by id into destPath, serving the input
// normalizer's downloader contract.
func (h *Handler) Download(ctx context.Context, fileID, destPath string) error {
	fileURL, err := h.bot.GetFileDirectURL(fileID)
	if err != nil {
		return fmt.Errorf("failed to resolve file %s: %w", fileID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build download request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download file %s: HTTP %d", fileID, resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write %s: %w", destPath, err)
	}
	logrus.Infof("File downloaded: %s", destPath)
	return nil
}
