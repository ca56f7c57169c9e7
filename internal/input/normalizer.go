package input

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"journalbot/internal/ai"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MaxChunkLen is the transport's message size ceiling; longer text is split
// before sending.
const MaxChunkLen = 4000

// Type tags where a normalized text came from.
type Type string

const (
	TypeText  Type = "text"
	TypeAudio Type = "audio"
	TypeImage Type = "image"
)

// Gateway is the slice of the model gateway the normalizer needs.
type Gateway interface {
	Transcribe(ctx context.Context, audioPath string) ai.Result
	EnhanceTranscript(ctx context.Context, raw string) ai.Result
	ExtractText(ctx context.Context, imagePath string) ai.Result
}

// Downloader fetches a platform file by id into a local path.
type Downloader interface {
	Download(ctx context.Context, fileID, destPath string) error
}

// Message is one inbound item. Exactly one field must be set.
type Message struct {
	Text        string
	VoiceFileID string
	PhotoFileID string
}

// Result is a normalized input: the text to process, its origin, and any
// transcript chunks that should be echoed back to the user in fixed-width
// formatting.
type Result struct {
	Text          string
	Type          Type
	DisplayChunks []string
}

// ErrUnsupported is returned when the message carries none of the supported
// content kinds. Its text is shown to the user as-is.
var ErrUnsupported = errors.New("Unsupported message type.")

type Normalizer struct {
	gateway Gateway
	files   Downloader
	tempDir string
}

func NewNormalizer(gateway Gateway, files Downloader, tempDir string) *Normalizer {
	return &Normalizer{gateway: gateway, files: files, tempDir: tempDir}
}

// Normalize turns one inbound message into plain text, calling the gateway
// for transcription or OCR as needed. Errors carry user-facing messages.
func (n *Normalizer) Normalize(ctx context.Context, userID int64, msg Message) (*Result, error) {
	switch {
	case msg.Text != "":
		return &Result{Text: msg.Text, Type: TypeText}, nil
	case msg.VoiceFileID != "":
		return n.normalizeVoice(ctx, userID, msg.VoiceFileID)
	case msg.PhotoFileID != "":
		return n.normalizeImage(ctx, userID, msg.PhotoFileID)
	default:
		return nil, ErrUnsupported
	}
}

func (n *Normalizer) normalizeVoice(ctx context.Context, userID int64, fileID string) (*Result, error) {
	path := n.tempPath(userID, ".ogg")
	if err := n.files.Download(ctx, fileID, path); err != nil {
		logrus.Errorf("Failed to download voice clip for user %d: %v", userID, err)
		return nil, errors.New("Could not download the audio file.")
	}
	defer removeTemp(path)

	transcript := n.gateway.Transcribe(ctx, path)
	if !transcript.IsOK() {
		return nil, errors.New(transcript.Tag())
	}

	text := transcript.Text
	if enhanced := n.gateway.EnhanceTranscript(ctx, text); enhanced.IsOK() {
		text = enhanced.Text
	} else {
		logrus.Warnf("Transcript enhancement failed for user %d, using raw transcript", userID)
	}

	return &Result{
		Text:          text,
		Type:          TypeAudio,
		DisplayChunks: ChunkText(text, MaxChunkLen),
	}, nil
}

func (n *Normalizer) normalizeImage(ctx context.Context, userID int64, fileID string) (*Result, error) {
	path := n.tempPath(userID, ".jpg")
	if err := n.files.Download(ctx, fileID, path); err != nil {
		logrus.Errorf("Failed to download image for user %d: %v", userID, err)
		return nil, errors.New("Could not download the image file.")
	}
	defer removeTemp(path)

	extracted := n.gateway.ExtractText(ctx, path)
	switch extracted.Kind {
	case ai.KindOK:
		return &Result{Text: extracted.Text, Type: TypeImage}, nil
	case ai.KindBlocked:
		return nil, fmt.Errorf("Text extraction was blocked (%s).", extracted.Reason)
	case ai.KindEmpty:
		return nil, errors.New("No text found in the image.")
	default:
		return nil, errors.New(extracted.Tag())
	}
}

func (n *Normalizer) tempPath(userID int64, ext string) string {
	return filepath.Join(n.tempDir, fmt.Sprintf("%d_%s%s", userID, uuid.NewString(), ext))
}

func removeTemp(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("Failed to remove temp file %s: %v", path, err)
	}
}

// ChunkText splits s into rune-safe segments no longer than max characters.
func ChunkText(s string, max int) []string {
	if s == "" {
		return nil
	}
	runes := []rune(s)
	var chunks []string
	for len(runes) > max {
		chunks = append(chunks, string(runes[:max]))
		runes = runes[max:]
	}
	return append(chunks, string(runes))
}
