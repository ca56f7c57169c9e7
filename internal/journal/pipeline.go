package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"journalbot/internal/ai"

	"github.com/sirupsen/logrus"
)

// Store is the persistence surface the pipeline writes through.
type Store interface {
	AddEntry(ctx context.Context, userID int64, rawText, inputType string, wordCount int) (int64, error)
	UpdateAnalysis(ctx context.Context, entryID int64, upd AnalysisUpdate) error
	RecentEntries(ctx context.Context, userID int64, limit int) ([]Entry, error)
}

// Gateway is the model call the pipeline depends on.
type Gateway interface {
	Generate(ctx context.Context, parts ...ai.Part) ai.Result
}

// Renderer turns a DOT description into an image file; it returns an empty
// path when the description is malformed or the rendering tool fails.
type Renderer interface {
	Render(ctx context.Context, dot, outID string) (string, error)
}

// Messenger is the outbound surface of the chat transport. Edit and status
// calls address an earlier status message by id. SendFormatted must fall back
// to plain text when rich-text formatting is rejected.
type Messenger interface {
	SendStatus(ctx context.Context, chatID int64, text string) (int, error)
	EditStatus(ctx context.Context, chatID int64, messageID int, text string) error
	EditFormatted(ctx context.Context, chatID int64, messageID int, text string) error
	SendPlain(ctx context.Context, chatID int64, text string) error
	SendPhoto(ctx context.Context, chatID int64, imagePath, caption string) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

type Pipeline struct {
	store        Store
	gateway      Gateway
	renderer     Renderer
	messenger    Messenger
	historyLimit int
	now          func() time.Time
}

func NewPipeline(store Store, gateway Gateway, renderer Renderer, messenger Messenger, historyLimit int) *Pipeline {
	return &Pipeline{
		store:        store,
		gateway:      gateway,
		renderer:     renderer,
		messenger:    messenger,
		historyLimit: historyLimit,
		now:          time.Now,
	}
}

// Process runs the full journal flow for one normalized entry: persist,
// categorize, analyze against recent history, reply with the analysis, render
// the mind map, and acknowledge. Only a persistence failure aborts the flow;
// every later failure is reported to the user and the remaining steps adapt.
func (p *Pipeline) Process(ctx context.Context, userID, chatID int64, displayName, text, inputType string) error {
	statusID, err := p.messenger.SendStatus(ctx, chatID, "💾 Saving your thoughts...")
	if err != nil {
		logrus.Errorf("Failed to send status message to chat %d: %v", chatID, err)
	}

	wordCount := len(strings.Fields(text))
	entryID, err := p.store.AddEntry(ctx, userID, text, inputType, wordCount)
	if err != nil {
		logrus.Errorf("Failed to save journal entry for user %d: %v", userID, err)
		p.editStatus(ctx, chatID, statusID, "❌ Oops! There was an error saving your journal entry. Please try again.")
		return err
	}

	p.editStatus(ctx, chatID, statusID, "📊 Analyzing your entry...")
	cat := p.categorize(ctx, chatID, entryID, displayName, text)

	p.editStatus(ctx, chatID, statusID, "🧠 Thinking about your entry...")
	analysisText, dotCode := p.analyze(ctx, userID, entryID, displayName, text, inputType, cat)

	if statusID != 0 {
		if err := p.messenger.EditFormatted(ctx, chatID, statusID, analysisText); err != nil {
			logrus.Errorf("Failed to deliver analysis for entry %d: %v", entryID, err)
		}
	} else {
		p.sendPlain(ctx, chatID, analysisText)
	}

	p.sendMindMap(ctx, userID, chatID, entryID, dotCode)

	if err := p.messenger.SendPlain(ctx, chatID, "✅ Your journal entry has been fully processed!"); err != nil {
		logrus.Errorf("Failed to send completion notice to chat %d: %v", chatID, err)
	}
	return nil
}

func (p *Pipeline) categorize(ctx context.Context, chatID, entryID int64, displayName, text string) Categorization {
	prompt := fmt.Sprintf(`Analyze the following journal entry for user %s:
---
%s
---
Provide:
1. Sentiment: (e.g., Positive, Negative, Neutral, Mixed, Anxious, Hopeful, etc. - be specific if possible)
2. Topics: (e.g., Work, Family, Personal Growth, Hobbies, Current Events - list up to 3 comma-separated topics, or 'None' if not applicable)
3. Categories: (Choose up to 3 relevant categories from this list: %s. If none seem to fit well, suggest 'Other' or a more specific category if evident from the text. List as comma-separated.)

Format your response *exactly* as follows, with each item on a new line, and do not add any extra text or explanations:
Sentiment: [Identified Sentiment]
Topics: [Identified Topics]
Categories: [Chosen Categories]`, displayName, text, strings.Join(Categories, ", "))

	result := p.gateway.Generate(ctx, ai.Part{Text: prompt})
	if !result.IsOK() {
		logrus.Warnf("Categorization failed for entry %d: %s", entryID, result.Tag())
		p.sendPlain(ctx, chatID, "⚠️ AI categorization of your entry encountered an issue. It's saved, but some insights might be missing. Details: "+result.Tag())
		return Categorization{Sentiment: "N/A", Topics: "N/A", Categories: "N/A"}
	}

	cat := ParseCategorization(result.Text)
	logrus.Infof("Categorization for entry %d: Sentiment=%s, Topics=%s, Categories=%s",
		entryID, cat.Sentiment, cat.Topics, cat.Categories)

	if err := p.store.UpdateAnalysis(ctx, entryID, AnalysisUpdate{
		Sentiment:  &cat.Sentiment,
		Topics:     &cat.Topics,
		Categories: &cat.Categories,
	}); err != nil {
		logrus.Errorf("Failed to store categorization for entry %d: %v", entryID, err)
	}
	return cat
}

func (p *Pipeline) analyze(ctx context.Context, userID, entryID int64, displayName, text, inputType string, cat Categorization) (analysisText, dotCode string) {
	history := p.historyContext(ctx, userID, entryID, displayName)

	currentSummary := fmt.Sprintf(
		"User's name: %s\nThe user's latest journal entry (submitted on %s with input type '%s', AI-detected sentiment '%s', AI-detected topics '%s', and AI-detected categories '%s') is:\n---\n%s\n---",
		displayName, p.now().UTC().Format("2006-01-02 15:04:05 MST"), inputType,
		cat.Sentiment, cat.Topics, cat.Categories, text,
	)

	prompt := fmt.Sprintf(`Act as a thoughtful and empathetic journaling assistant. The user, %[1]s, has provided the following journal entry:

%[2]s

%[3]s

Considering the current entry and any available history, please provide a concise (2-3 paragraphs), empathetic, and insightful analysis. Focus on potential patterns, underlying feelings, or themes. Offer 1-2 gentle, actionable suggestions or reflective questions that might help %[1]s. Avoid giving direct medical advice. Address the user as %[1]s.

Also, generate a DOT language representation for a mind map visualizing the key themes and connections in the *current* entry. The mind map should be simple and clear. Format this DOT code *exactly* between '--- DOT START ---' and '--- DOT END ---' markers. Ensure the DOT code is valid and self-contained.

**Analysis for %[1]s:**
[Your insightful analysis here]

--- DOT START ---
digraph JournalMap {
    rankdir=LR;
    bgcolor="transparent";
    node [shape=box, style="rounded,filled", fillcolor=lightblue, fontname="Arial", fontsize=10];
    edge [arrowhead=none, color="#555555"];
    main [label="%[4]s..."];
    senti [label="Sentiment: %[5]s"];
    main -> senti;
    %[6]s
    %[7]s
}
--- DOT END ---
`, displayName, currentSummary, history,
		summarize(text, 30), cleanInline(cat.Sentiment),
		topicNodes(cat.Topics), categoryNodes(cat.Categories))

	result := p.gateway.Generate(ctx, ai.Part{Text: prompt})
	if !result.IsOK() {
		logrus.Warnf("AI analysis failed for entry %d: %s", entryID, result.Tag())
		analysisText = "AI analysis was blocked or encountered an error: " + result.Tag()
		if err := p.store.UpdateAnalysis(ctx, entryID, AnalysisUpdate{AnalysisText: &analysisText}); err != nil {
			logrus.Errorf("Failed to store failed-analysis note for entry %d: %v", entryID, err)
		}
		return analysisText, ""
	}

	analysisText, dotCode = SplitAnalysis(result.Text)
	if analysisText == "" {
		analysisText = "Sorry, I couldn't generate an analysis for this entry."
	}
	if dotCode == "" {
		logrus.Warnf("DOT markers not found in AI analysis for entry %d", entryID)
	}

	upd := AnalysisUpdate{AnalysisText: &analysisText}
	if dotCode != "" {
		upd.DotCode = &dotCode
	}
	if err := p.store.UpdateAnalysis(ctx, entryID, upd); err != nil {
		logrus.Errorf("Failed to store analysis for entry %d: %v", entryID, err)
	}
	return analysisText, dotCode
}

// historyContext summarizes the user's recent entries, oldest first and
// excluding the entry currently being processed.
func (p *Pipeline) historyContext(ctx context.Context, userID, currentEntryID int64, displayName string) string {
	recent, err := p.store.RecentEntries(ctx, userID, p.historyLimit)
	if err != nil {
		logrus.Errorf("Failed to load recent entries for user %d: %v", userID, err)
		recent = nil
	}

	var lines []string
	for i := len(recent) - 1; i >= 0; i-- {
		entry := recent[i]
		if entry.ID == currentEntryID {
			continue
		}
		excerpt := entry.RawText
		if runes := []rune(excerpt); len(runes) > 100 {
			excerpt = string(runes[:100])
		}
		lines = append(lines, fmt.Sprintf("- On %s: %s... (Sentiment: %s, Topics: %s)",
			entry.CreatedAt.Format("2006-01-02 15:04"), excerpt,
			nullOr(entry.Sentiment), nullOr(entry.Topics)))
	}

	if len(lines) == 0 {
		return "This seems to be one of your first entries, or I couldn't retrieve recent history."
	}
	return fmt.Sprintf("Here are summaries of some of your recent entries, %s:\n%s",
		displayName, strings.Join(lines, "\n"))
}

func (p *Pipeline) sendMindMap(ctx context.Context, userID, chatID, entryID int64, dotCode string) {
	if dotCode == "" {
		p.sendPlain(ctx, chatID, "(Mind map could not be generated for this entry.)")
		return
	}

	mapStatusID, err := p.messenger.SendStatus(ctx, chatID, "🗺️ Generating mind map...")
	if err != nil {
		logrus.Errorf("Failed to send mind map status to chat %d: %v", chatID, err)
	}

	outID := fmt.Sprintf("%d_jmap_%s", userID, p.now().UTC().Format("20060102150405"))
	imagePath, err := p.renderer.Render(ctx, dotCode, outID)
	if err != nil || imagePath == "" {
		logrus.Errorf("Mind map rendering failed for entry %d: %v", entryID, err)
		p.editStatus(ctx, chatID, mapStatusID, "⚠️ Could not generate the mind map from the provided data.")
		return
	}
	defer func() {
		if err := os.Remove(imagePath); err != nil {
			logrus.Errorf("Failed to delete mind map image %s: %v", imagePath, err)
		}
	}()

	if err := p.messenger.SendPhoto(ctx, chatID, imagePath, "Mind map of your entry."); err != nil {
		logrus.Errorf("Failed to send mind map for entry %d: %v", entryID, err)
		p.editStatus(ctx, chatID, mapStatusID, "⚠️ Error sending the mind map image.")
		return
	}
	if err := p.messenger.DeleteMessage(ctx, chatID, mapStatusID); err != nil {
		logrus.Warnf("Failed to delete mind map status in chat %d: %v", chatID, err)
	}
}

func (p *Pipeline) editStatus(ctx context.Context, chatID int64, messageID int, text string) {
	if messageID == 0 {
		return
	}
	if err := p.messenger.EditStatus(ctx, chatID, messageID, text); err != nil {
		logrus.Errorf("Failed to edit status message %d in chat %d: %v", messageID, chatID, err)
	}
}

func (p *Pipeline) sendPlain(ctx context.Context, chatID int64, text string) {
	if err := p.messenger.SendPlain(ctx, chatID, text); err != nil {
		logrus.Errorf("Failed to send message to chat %d: %v", chatID, err)
	}
}

func nullOr(v sql.NullString) string {
	if v.Valid && v.String != "" {
		return v.String
	}
	return "N/A"
}
