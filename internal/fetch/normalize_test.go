package fetch

import (
	"context"
	"testing"

	"github.com/gotd/td/tg"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tgrelay/relaybot/internal/core/domain"
)

func TestNormalize_TextOnly(t *testing.T) {
	logger := zerolog.Nop()
	snap := &Snapshot{Msg: &tg.Message{Message: "just text"}}

	rec := Normalize(context.Background(), snap, NormalizeOptions{}, &logger)
	require.Equal(t, "just text", rec.Text)
	require.False(t, rec.HasMedia())
}

func TestNormalize_WebPage(t *testing.T) {
	logger := zerolog.Nop()
	snap := &Snapshot{Msg: &tg.Message{
		Message: "check this out",
		Media: &tg.MessageMediaWebPage{
			Webpage: &tg.WebPage{
				Title:       "Example",
				Description: "An example page",
				URL:         "https://example.com",
			},
		},
	}}

	rec := Normalize(context.Background(), snap, NormalizeOptions{}, &logger)
	require.Equal(t, "check this out\n\n🔗 Example\nAn example page\nhttps://example.com", rec.Text)
	require.False(t, rec.HasMedia())
}

func TestNormalize_WebPageEmpty(t *testing.T) {
	logger := zerolog.Nop()
	snap := &Snapshot{Msg: &tg.Message{
		Message: "bare preview",
		Media:   &tg.MessageMediaWebPage{Webpage: &tg.WebPageEmpty{}},
	}}

	rec := Normalize(context.Background(), snap, NormalizeOptions{}, &logger)
	require.Equal(t, "bare preview", rec.Text)
}

func TestNormalize_DocumentOverLimit(t *testing.T) {
	logger := zerolog.Nop()
	snap := &Snapshot{Msg: &tg.Message{
		Message: "big file",
		Media: &tg.MessageMediaDocument{
			Document: &tg.Document{Size: 1 << 30, MimeType: "video/mp4"},
		},
	}}

	rec := Normalize(context.Background(), snap, NormalizeOptions{MaxDownloadBytes: 1 << 20}, &logger)
	require.Equal(t, "big file", rec.Text)
	require.False(t, rec.HasMedia())
}

func TestDocumentKind(t *testing.T) {
	tests := []struct {
		mime string
		want domain.MediaKind
	}{
		{"video/mp4", domain.MediaVideo},
		{"audio/mpeg", domain.MediaAudio},
		{"application/pdf", domain.MediaDocument},
		{"", domain.MediaDocument},
	}

	for _, tt := range tests {
		if got := documentKind(tt.mime); got != tt.want {
			t.Errorf("documentKind(%q) = %v, want %v", tt.mime, got, tt.want)
		}
	}
}

func TestDocumentFileName(t *testing.T) {
	attrs := []tg.DocumentAttributeClass{
		&tg.DocumentAttributeVideo{},
		&tg.DocumentAttributeFilename{FileName: "report.pdf"},
	}
	require.Equal(t, "report.pdf", documentFileName(attrs))
	require.Equal(t, "", documentFileName(nil))
}

func TestLargestPhotoSize(t *testing.T) {
	sizes := []tg.PhotoSizeClass{
		&tg.PhotoSize{Type: "s", W: 90, H: 90},
		&tg.PhotoSize{Type: "x", W: 800, H: 600},
		&tg.PhotoSize{Type: "m", W: 320, H: 240},
	}
	require.Equal(t, "x", largestPhotoSize(sizes))
	require.Equal(t, "", largestPhotoSize(nil))
}
