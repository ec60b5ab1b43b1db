package fetch

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"
	"github.com/rs/zerolog"

	"github.com/tgrelay/relaybot/internal/core/domain"
	"github.com/tgrelay/relaybot/internal/platform/observability"
)

// NormalizeOptions bound what Normalize is willing to pull over the wire.
type NormalizeOptions struct {
	MaxDownloadBytes int64
}

// Normalize turns a fetched message into a relayable content record.
//
// Plain text fills only Text. Photos and documents are downloaded through the
// snapshot's own session; documents are upgraded to video or audio based on
// their declared media type, and the file name is taken from the first
// attribute carrying one. Web-page previews become additional descriptive
// text rather than a media payload. When a media download fails or exceeds
// the size cap the record degrades to its text content.
func Normalize(ctx context.Context, snap *Snapshot, opts NormalizeOptions, logger *zerolog.Logger) domain.ContentRecord {
	rec := domain.ContentRecord{Text: snap.Msg.Message}

	if snap.Msg.Media == nil {
		return rec
	}

	switch m := snap.Msg.Media.(type) {
	case *tg.MessageMediaPhoto:
		data, err := downloadPhoto(ctx, snap.api, m)
		if err != nil || data == nil {
			logger.Warn().Err(err).Msg("photo download failed, relaying text only")

			return rec
		}

		observability.MediaDownloadBytes.Observe(float64(len(data)))

		rec.Kind = domain.MediaPhoto
		rec.Media = data
		rec.Caption = snap.Msg.Message
		rec.MIME = "image/jpeg"

	case *tg.MessageMediaDocument:
		doc, ok := m.Document.(*tg.Document)
		if !ok {
			return rec
		}

		if doc.Size > opts.MaxDownloadBytes {
			logger.Warn().Int64("size", doc.Size).Int64("limit", opts.MaxDownloadBytes).Msg("document exceeds download limit, relaying text only")

			return rec
		}

		data, err := downloadDocument(ctx, snap.api, doc)
		if err != nil {
			logger.Warn().Err(err).Msg("document download failed, relaying text only")

			return rec
		}

		observability.MediaDownloadBytes.Observe(float64(len(data)))

		rec.Kind = documentKind(doc.MimeType)
		rec.Media = data
		rec.Caption = snap.Msg.Message
		rec.FileName = documentFileName(doc.Attributes)
		rec.MIME = doc.MimeType

	case *tg.MessageMediaWebPage:
		rec.Text = appendWebPage(rec.Text, m)
	}

	return rec
}

// documentKind upgrades a generic document to video or audio from its
// declared media type prefix.
func documentKind(mimeType string) domain.MediaKind {
	switch {
	case strings.HasPrefix(mimeType, "video/"):
		return domain.MediaVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return domain.MediaAudio
	default:
		return domain.MediaDocument
	}
}

func documentFileName(attrs []tg.DocumentAttributeClass) string {
	for _, attr := range attrs {
		if fn, ok := attr.(*tg.DocumentAttributeFilename); ok {
			return fn.FileName
		}
	}

	return ""
}

func appendWebPage(text string, media *tg.MessageMediaWebPage) string {
	webpage, ok := media.Webpage.(*tg.WebPage)
	if !ok {
		return text
	}

	if webpage.Title != "" {
		text += "\n\n🔗 " + webpage.Title
	}

	if webpage.Description != "" {
		text += "\n" + webpage.Description
	}

	if webpage.URL != "" {
		text += "\n" + webpage.URL
	}

	return text
}

func downloadPhoto(ctx context.Context, api *tg.Client, media *tg.MessageMediaPhoto) ([]byte, error) {
	photo, ok := media.Photo.(*tg.Photo)
	if !ok {
		return nil, nil
	}

	thumbSize := largestPhotoSize(photo.Sizes)
	if thumbSize == "" {
		return nil, nil
	}

	return download(ctx, api, &tg.InputPhotoFileLocation{
		ID:            photo.ID,
		AccessHash:    photo.AccessHash,
		FileReference: photo.FileReference,
		ThumbSize:     thumbSize,
	})
}

func largestPhotoSize(sizes []tg.PhotoSizeClass) string {
	var thumbSize string

	maxSize := 0

	for _, size := range sizes {
		switch s := size.(type) {
		case *tg.PhotoSize:
			if s.W*s.H > maxSize {
				maxSize = s.W * s.H
				thumbSize = s.Type
			}
		case *tg.PhotoSizeProgressive:
			if s.W*s.H > maxSize {
				maxSize = s.W * s.H
				thumbSize = s.Type
			}
		}
	}

	return thumbSize
}

func downloadDocument(ctx context.Context, api *tg.Client, doc *tg.Document) ([]byte, error) {
	return download(ctx, api, &tg.InputDocumentFileLocation{
		ID:            doc.ID,
		AccessHash:    doc.AccessHash,
		FileReference: doc.FileReference,
	})
}

func download(ctx context.Context, api *tg.Client, location tg.InputFileLocationClass) ([]byte, error) {
	buf := new(bytes.Buffer)

	_, err := downloader.NewDownloader().Download(api, location).Stream(ctx, buf)
	if err != nil {
		return nil, fmt.Errorf("failed to download media: %w", err)
	}

	return buf.Bytes(), nil
}
