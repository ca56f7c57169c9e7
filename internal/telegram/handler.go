package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"journalbot/internal/ai"
	"journalbot/internal/conversation"
	"journalbot/internal/feedback"
	"journalbot/internal/input"
	"journalbot/internal/journal"
	"journalbot/internal/tokens"
	"journalbot/internal/users"
	"journalbot/pkg/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	bot          *tgbotapi.BotAPI
	cfg          *config.Config
	modes        *conversation.Store
	userService  *users.Service
	feedbackRepo *feedback.Repository
	tracker      *tokens.Tracker
	aiService    *ai.Service

	// set after construction: the normalizer and pipeline need the handler
	// itself as downloader/messenger.
	normalizer *input.Normalizer
	pipeline   *journal.Pipeline
}

func NewHandler(
	cfg *config.Config,
	modes *conversation.Store,
	userService *users.Service,
	feedbackRepo *feedback.Repository,
	tracker *tokens.Tracker,
	aiService *ai.Service,
) (*Handler, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %v", err)
	}

	logrus.Infof("Telegram bot started: %s", bot.Self.UserName)

	return &Handler{
		bot:          bot,
		cfg:          cfg,
		modes:        modes,
		userService:  userService,
		feedbackRepo: feedbackRepo,
		tracker:      tracker,
		aiService:    aiService,
	}, nil
}

// Attach wires the components that depend on the handler's transport methods.
func (h *Handler) Attach(normalizer *input.Normalizer, pipeline *journal.Pipeline) {
	h.normalizer = normalizer
	h.pipeline = pipeline
}

func (h *Handler) SetupWebhook() error {
	webhookURL := fmt.Sprintf("https://%s:%s/webhook", h.cfg.ServerHost, h.cfg.ServerPort)

	webhookConfig, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return fmt.Errorf("failed to build webhook config: %w", err)
	}

	if _, err := h.bot.Request(webhookConfig); err != nil {
		return fmt.Errorf("failed to set webhook: %v", err)
	}

	return nil
}

// RegisterCommands publishes the bot command menu.
func (h *Handler) RegisterCommands() error {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Start / Select Mode"},
		tgbotapi.BotCommand{Command: "mode", Description: "Re-select Mode"},
		tgbotapi.BotCommand{Command: "changemode", Description: "Re-select Mode"},
		tgbotapi.BotCommand{Command: "setusername", Description: "Set display name"},
		tgbotapi.BotCommand{Command: "tokens", Description: "Check AI token usage"},
		tgbotapi.BotCommand{Command: "feedback", Description: "Provide feedback about the bot"},
		tgbotapi.BotCommand{Command: "enableprompts", Description: "Enable daily journal prompts"},
		tgbotapi.BotCommand{Command: "disableprompts", Description: "Disable daily journal prompts"},
		tgbotapi.BotCommand{Command: "end", Description: "End current session"},
		tgbotapi.BotCommand{Command: "help", Description: "Show help"},
		tgbotapi.BotCommand{Command: "cancel", Description: "Cancel action / New Mode"},
	)
	if _, err := h.bot.Request(commands); err != nil {
		return fmt.Errorf("failed to set bot commands: %v", err)
	}
	logrus.Info("Bot commands menu set")
	return nil
}

func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := h.bot.HandleUpdate(r)
	if err != nil {
		logrus.Errorf("Failed to parse update: %v", err)
		return
	}

	h.handleUpdate(*update)
}

func (h *Handler) handleUpdate(update tgbotapi.Update) {
	ctx := context.Background()

	chatID := updateChatID(update)
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("Panic while handling update: %v", r)
			if chatID != 0 {
				h.sendOrLog(ctx, chatID, "Sorry, something went wrong on my side. Please try again.")
			}
		}
	}()

	if update.CallbackQuery != nil {
		h.handleModeCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		return
	}

	from := update.Message.From
	username := from.UserName
	if username == "" {
		username = strconv.FormatInt(from.ID, 10)
	}
	user, err := h.userService.EnsureUser(ctx, from.ID, username, from.FirstName)
	if err != nil {
		logrus.Errorf("Failed to store user %d: %v", from.ID, err)
	}
	displayName := username
	if user != nil {
		displayName = user.Name(username)
	}

	if update.Message.IsCommand() {
		h.handleCommand(ctx, update.Message, displayName)
		return
	}

	h.handleContent(ctx, update.Message, displayName)
}

func (h *Handler) handleCommand(ctx context.Context, message *tgbotapi.Message, displayName string) {
	userID := message.From.ID
	chatID := message.Chat.ID
	args := message.CommandArguments()

	switch message.Command() {
	case "start", "mode", "changemode":
		h.applyTransition(ctx, userID, chatID, displayName, conversation.Event{Kind: conversation.EventStart})

	case "cancel":
		h.applyTransition(ctx, userID, chatID, displayName, conversation.Event{Kind: conversation.EventCancel})

	case "end":
		h.applyTransition(ctx, userID, chatID, displayName, conversation.Event{Kind: conversation.EventEnd})

	case "help":
		h.sendOrLog(ctx, chatID, helpText)

	case "setusername":
		h.handleSetUsername(ctx, userID, chatID, args)

	case "tokens":
		h.handleTokens(ctx, chatID)

	case "feedback":
		h.handleFeedback(ctx, userID, chatID, args)

	case "enableprompts":
		if err := h.userService.EnableDailyPrompts(ctx, userID); err != nil {
			logrus.Errorf("Failed to enable daily prompts for user %d: %v", userID, err)
			h.sendOrLog(ctx, chatID, "Sorry, there was an issue enabling daily prompts. Please try again.")
			return
		}
		h.sendOrLog(ctx, chatID, "Daily journal prompts have been enabled! You'll receive a prompt around 09:00 UTC (or your set time). The first prompt might arrive tomorrow.")

	case "disableprompts":
		if err := h.userService.DisableDailyPrompts(ctx, userID); err != nil {
			logrus.Errorf("Failed to disable daily prompts for user %d: %v", userID, err)
			h.sendOrLog(ctx, chatID, "Sorry, there was an issue disabling daily prompts. Please try again.")
			return
		}
		h.sendOrLog(ctx, chatID, "Daily journal prompts have been disabled.")

	default:
		h.sendOrLog(ctx, chatID, "Unknown command. Use /help to see what I can do.")
	}
}

// applyTransition feeds a global command through the state machine and
// carries out the resulting effect.
func (h *Handler) applyTransition(ctx context.Context, userID, chatID int64, displayName string, ev conversation.Event) {
	current := h.modes.Get(userID)
	next, effect := conversation.Next(current, ev)
	h.modes.Set(userID, next)

	switch effect {
	case conversation.EffectPresentModes:
		h.presentModes(ctx, chatID, displayName)
	case conversation.EffectCancelled:
		logrus.Infof("User %d cancelled (mode: %s), returning to mode selection", userID, current)
		h.sendOrLog(ctx, chatID, "Operation cancelled.")
		h.presentModes(ctx, chatID, displayName)
	case conversation.EffectEnded:
		logrus.Infof("User %d ended session (mode: %s)", userID, current)
		h.sendOrLog(ctx, chatID, "✅ Session ended. Use /start to begin a new one.")
	}
}

func (h *Handler) presentModes(ctx context.Context, chatID int64, displayName string) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💬 Chatbot Mode", string(conversation.ModeChat)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📓 Journal Mode", string(conversation.ModeJournal)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 OCR Mode", string(conversation.ModeOCR)),
		),
	)

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Hi %s! Please choose a mode:", displayName))
	msg.ReplyMarkup = keyboard
	if _, err := h.bot.Send(msg); err != nil {
		logrus.Errorf("Failed to send mode selection to chat %d: %v", chatID, err)
	}
}

func (h *Handler) handleModeCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		logrus.Warnf("Failed to answer callback query: %v", err)
	}
	if query.Message == nil {
		return
	}

	userID := query.From.ID
	chatID := query.Message.Chat.ID
	chosen := conversation.Mode(query.Data)

	current := h.modes.Get(userID)
	next, effect := conversation.Next(current, conversation.Event{Kind: conversation.EventSelect, Mode: chosen})
	h.modes.Set(userID, next)

	switch effect {
	case conversation.EffectModeInstructions:
		logrus.Infof("User %d entered %s mode", userID, next.Title())
		markup := fmt.Sprintf("Mode set to: *%s*\n%s",
			tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, next.Title()),
			tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, next.Instructions()))
		edit := tgbotapi.NewEditMessageText(chatID, query.Message.MessageID, markup)
		edit.ParseMode = tgbotapi.ModeMarkdownV2
		if _, err := h.bot.Send(edit); err != nil {
			logrus.Errorf("Failed to edit mode message with MarkdownV2, falling back to plain: %v", err)
			if err := h.EditStatus(ctx, chatID, query.Message.MessageID, fmt.Sprintf("Mode set to: %s. Please send input.", next.Title())); err != nil {
				logrus.Errorf("Plain text fallback edit failed: %v", err)
			}
		}
	case conversation.EffectInvalidSelection:
		if err := h.EditStatus(ctx, chatID, query.Message.MessageID, "Invalid mode selected. Use /start again."); err != nil {
			logrus.Errorf("Failed to report invalid mode selection: %v", err)
		}
	}
}

func (h *Handler) handleContent(ctx context.Context, message *tgbotapi.Message, displayName string) {
	userID := message.From.ID
	chatID := message.Chat.ID

	mode := h.modes.Get(userID)
	next, effect := conversation.Next(mode, conversation.Event{Kind: conversation.EventContent})
	h.modes.Set(userID, next)

	if effect == conversation.EffectAskSelect {
		h.sendOrLog(ctx, chatID, "Please select a mode first using /start.")
		return
	}

	msg := inboundMessage(message)

	// OCR mode only accepts images; reject before any download or model
	// call happens.
	if mode == conversation.ModeOCR && msg.PhotoFileID == "" {
		h.sendOrLog(ctx, chatID, "OCR mode requires an image.")
		return
	}

	normalized, err := h.normalizer.Normalize(ctx, userID, msg)
	if err != nil {
		h.sendOrLog(ctx, chatID, err.Error())
		return
	}

	if normalized.Type == input.TypeAudio && len(normalized.DisplayChunks) > 0 {
		h.sendFormattedRaw(ctx, chatID,
			tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, "*Audio Transcript* (AI Enhanced):"),
			"Audio Transcript (AI Enhanced):")
		h.sendMonospaceChunks(ctx, chatID, normalized.DisplayChunks)
	}

	switch mode {
	case conversation.ModeChat:
		h.handleChat(ctx, chatID, normalized.Text)
	case conversation.ModeJournal:
		if err := h.pipeline.Process(ctx, userID, chatID, displayName, normalized.Text, string(normalized.Type)); err != nil {
			logrus.Errorf("Journal pipeline failed for user %d: %v", userID, err)
		}
	case conversation.ModeOCR:
		h.handleOCR(ctx, chatID, normalized.Text)
	}
}

func (h *Handler) handleChat(ctx context.Context, chatID int64, text string) {
	statusID, err := h.SendStatus(ctx, chatID, "🤔 Thinking...")
	if err != nil {
		logrus.Errorf("Failed to send thinking status to chat %d: %v", chatID, err)
	}

	result := h.aiService.Generate(ctx, ai.Part{Text: text})
	var reply string
	switch result.Kind {
	case ai.KindOK:
		reply = result.Text
	case ai.KindBlocked:
		reply = "My response was blocked: " + result.Tag()
	default:
		reply = "Sorry, there was an error communicating with the AI. " + result.Tag()
	}

	if statusID != 0 {
		if err := h.EditStatus(ctx, chatID, statusID, reply); err != nil {
			logrus.Errorf("Failed to deliver chat reply to chat %d: %v", chatID, err)
		}
		return
	}
	h.sendOrLog(ctx, chatID, reply)
}

func (h *Handler) handleOCR(ctx context.Context, chatID int64, text string) {
	logrus.Infof("OCR mode sending extracted text (%d chars) to chat %d", len(text), chatID)
	h.sendFormattedRaw(ctx, chatID,
		tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, "*Extracted Text (AI Vision OCR):*"),
		"Extracted Text (AI Vision OCR):")
	h.sendMonospaceChunks(ctx, chatID, input.ChunkText(text, input.MaxChunkLen))
}

func (h *Handler) handleSetUsername(ctx context.Context, userID, chatID int64, args string) {
	if args == "" {
		h.sendOrLog(ctx, chatID, "Usage: /setusername Your Name Here")
		return
	}

	if err := h.userService.SetDisplayName(ctx, userID, args); err != nil {
		if errors.Is(err, users.ErrInvalidDisplayName) {
			h.sendOrLog(ctx, chatID, "Invalid username (1-50 chars).")
			return
		}
		logrus.Errorf("Failed to set display name for user %d: %v", userID, err)
		h.sendOrLog(ctx, chatID, "Error saving username. Please try again.")
		return
	}
	logrus.Infof("User %d updated display name", userID)
	h.sendOrLog(ctx, chatID, "Username set to: "+args)
}

func (h *Handler) handleTokens(ctx context.Context, chatID int64) {
	usage, err := h.tracker.Snapshot()
	if err != nil {
		logrus.Errorf("Failed to read token usage: %v", err)
		h.sendOrLog(ctx, chatID, "Sorry, token usage is unavailable right now.")
		return
	}

	plain := fmt.Sprintf("Token Usage:\n• Session (since start): %d\n• Today (%s): %d\n• Total (all time): %d",
		usage.Session, usage.Daily.Date, usage.Daily.Count, usage.Total)
	markup := fmt.Sprintf("*Token Usage:*\n• Session \\(since start\\): %d\n• Today \\(%s\\): %d\n• Total \\(all time\\): %d",
		usage.Session, tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, usage.Daily.Date), usage.Daily.Count, usage.Total)
	h.sendFormattedRaw(ctx, chatID, markup, plain)
}

func (h *Handler) handleFeedback(ctx context.Context, userID, chatID int64, args string) {
	if args == "" {
		h.sendOrLog(ctx, chatID, "Please provide your feedback after the /feedback command. For example: /feedback I love this bot!")
		return
	}

	if err := h.feedbackRepo.Add(ctx, userID, args); err != nil {
		logrus.Errorf("Failed to save feedback from user %d: %v", userID, err)
		h.sendOrLog(ctx, chatID, "Sorry, there was an issue saving your feedback. Please try again later.")
		return
	}
	logrus.Infof("Feedback received from user %d", userID)
	h.sendOrLog(ctx, chatID, "Thank you for your feedback! It has been recorded.")
}

func (h *Handler) sendOrLog(ctx context.Context, chatID int64, text string) {
	if err := h.SendMessage(ctx, chatID, text); err != nil {
		logrus.Errorf("Failed to send message to chat %d: %v", chatID, err)
	}
}

func inboundMessage(message *tgbotapi.Message) input.Message {
	msg := input.Message{Text: message.Text}
	if message.Voice != nil {
		msg.VoiceFileID = message.Voice.FileID
	} else if message.Audio != nil {
		msg.VoiceFileID = message.Audio.FileID
	}
	if len(message.Photo) > 0 {
		// Telegram lists photo sizes smallest first.
		msg.PhotoFileID = message.Photo[len(message.Photo)-1].FileID
	}
	return msg
}

func updateChatID(update tgbotapi.Update) int64 {
	if update.Message != nil {
		return update.Message.Chat.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.Message != nil {
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}

const helpText = `Multi-Mode Bot Help

Use /start or /mode to select a mode:
• Chatbot: General conversation.
• Journal: Personal notes with AI analysis & mind maps.
• OCR: Extract text directly from images.

Other Commands:
/setusername <name> - Set display name
/tokens - Check AI token usage
/feedback <your message> - Send feedback to the developers
/enableprompts - Enable daily journal prompts
/disableprompts - Disable daily journal prompts
/end - End current session/mode
/cancel - Cancel current action & return to mode select
/help - Show this message

Send text, voice, or image after selecting a mode. Commands like /end or /cancel work anytime.`
