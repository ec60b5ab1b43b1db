// Package domain contains the core types shared across the relay pipeline.
package domain

// MediaKind classifies the media payload of a relayed message.
type MediaKind int

const (
	MediaNone MediaKind = iota
	MediaPhoto
	MediaVideo
	MediaAudio
	MediaDocument
)

func (k MediaKind) String() string {
	switch k {
	case MediaPhoto:
		return "photo"
	case MediaVideo:
		return "video"
	case MediaAudio:
		return "audio"
	case MediaDocument:
		return "document"
	case MediaNone:
		return "none"
	default:
		return "unknown"
	}
}

// ContentRecord is the normalized payload of a fetched message.
// Invariant: Kind != MediaNone implies Media is non-empty.
type ContentRecord struct {
	Text     string
	Media    []byte
	Kind     MediaKind
	Caption  string
	FileName string
	MIME     string
}

// HasMedia reports whether the record carries a media payload.
func (r ContentRecord) HasMedia() bool {
	return r.Kind != MediaNone
}
