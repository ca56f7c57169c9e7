package input

import (
	"context"
	"os"
	"strings"
	"testing"

	"journalbot/internal/ai"
)

type fakeGateway struct {
	transcribe ai.Result
	enhance    ai.Result
	extract    ai.Result
}

func (f *fakeGateway) Transcribe(ctx context.Context, audioPath string) ai.Result {
	return f.transcribe
}

func (f *fakeGateway) EnhanceTranscript(ctx context.Context, raw string) ai.Result {
	return f.enhance
}

func (f *fakeGateway) ExtractText(ctx context.Context, imagePath string) ai.Result {
	return f.extract
}

type fakeDownloader struct {
	err   error
	paths []string
}

func (f *fakeDownloader) Download(ctx context.Context, fileID, destPath string) error {
	if f.err != nil {
		return f.err
	}
	f.paths = append(f.paths, destPath)
	return os.WriteFile(destPath, []byte("payload"), 0o644)
}

func TestNormalizeTextPassesThrough(t *testing.T) {
	n := NewNormalizer(&fakeGateway{}, &fakeDownloader{}, t.TempDir())

	res, err := n.Normalize(context.Background(), 1, Message{Text: "hello there"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "hello there" || res.Type != TypeText {
		t.Errorf("got (%q, %q)", res.Text, res.Type)
	}
}

func TestNormalizeEmptyMessageUnsupported(t *testing.T) {
	n := NewNormalizer(&fakeGateway{}, &fakeDownloader{}, t.TempDir())

	_, err := n.Normalize(context.Background(), 1, Message{})
	if err != ErrUnsupported {
		t.Fatalf("got %v, want ErrUnsupported", err)
	}
}

func TestNormalizeVoiceEnhancedAndChunked(t *testing.T) {
	gw := &fakeGateway{
		transcribe: ai.OK("raw words no punctuation"),
		enhance:    ai.OK("Raw words, no punctuation."),
	}
	dl := &fakeDownloader{}
	n := NewNormalizer(gw, dl, t.TempDir())

	res, err := n.Normalize(context.Background(), 7, Message{VoiceFileID: "v1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Type != TypeAudio {
		t.Errorf("type = %q, want audio", res.Type)
	}
	if res.Text != "Raw words, no punctuation." {
		t.Errorf("text = %q", res.Text)
	}
	if len(res.DisplayChunks) != 1 || res.DisplayChunks[0] != res.Text {
		t.Errorf("chunks = %v", res.DisplayChunks)
	}
	if len(dl.paths) != 1 {
		t.Fatalf("expected one download, got %d", len(dl.paths))
	}
	if _, err := os.Stat(dl.paths[0]); !os.IsNotExist(err) {
		t.Errorf("temp file %s not removed", dl.paths[0])
	}
}

func TestNormalizeVoiceFallsBackToRawTranscript(t *testing.T) {
	gw := &fakeGateway{
		transcribe: ai.OK("just the raw transcript"),
		enhance:    ai.APIError("RequestFailed"),
	}
	n := NewNormalizer(gw, &fakeDownloader{}, t.TempDir())

	res, err := n.Normalize(context.Background(), 7, Message{VoiceFileID: "v1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "just the raw transcript" {
		t.Errorf("text = %q, want raw transcript", res.Text)
	}
}

func TestNormalizeVoiceTranscriptionFailureIsTerminal(t *testing.T) {
	gw := &fakeGateway{transcribe: ai.Empty()}
	dl := &fakeDownloader{}
	n := NewNormalizer(gw, dl, t.TempDir())

	_, err := n.Normalize(context.Background(), 7, Message{VoiceFileID: "v1"})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "[No text content received]" {
		t.Errorf("error = %q", err.Error())
	}
	if _, statErr := os.Stat(dl.paths[0]); !os.IsNotExist(statErr) {
		t.Errorf("temp file not removed on failure")
	}
}

func TestNormalizeImageOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		extract ai.Result
		wantErr string
	}{
		{"ok", ai.OK("extracted words"), ""},
		{"blocked", ai.Blocked("safety"), "Text extraction was blocked (safety)."},
		{"empty", ai.Empty(), "No text found in the image."},
		{"api error", ai.APIError("Timeout"), "[API ERROR: Timeout]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNormalizer(&fakeGateway{extract: tt.extract}, &fakeDownloader{}, t.TempDir())
			res, err := n.Normalize(context.Background(), 3, Message{PhotoFileID: "p1"})
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if res.Text != "extracted words" || res.Type != TypeImage {
					t.Errorf("got (%q, %q)", res.Text, res.Type)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestChunkText(t *testing.T) {
	long := strings.Repeat("a", MaxChunkLen) + strings.Repeat("b", 10)
	chunks := ChunkText(long, MaxChunkLen)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if len(chunks[0]) != MaxChunkLen || chunks[1] != strings.Repeat("b", 10) {
		t.Errorf("bad chunk boundaries: %d, %q", len(chunks[0]), chunks[1])
	}
	if got := ChunkText("", 10); got != nil {
		t.Errorf("empty input: got %v", got)
	}
}
