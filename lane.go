package casepipe

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Lane is the extraction branch an uploaded item is routed to.
type Lane int

const (
	LaneUnsupported Lane = iota
	LaneImage
	LaneAudio
	LaneDocument
)

// laneOrder fixes the order lanes contribute to flattened aggregate lists.
var laneOrder = []Lane{LaneImage, LaneAudio, LaneDocument}

func (l Lane) String() string {
	switch l {
	case LaneImage:
		return "image"
	case LaneAudio:
		return "audio"
	case LaneDocument:
		return "document"
	default:
		return "unsupported"
	}
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".bmp": true, ".webp": true,
}

var audioExts = map[string]bool{
	".mp3": true, ".wav": true, ".m4a": true, ".flac": true,
	".ogg": true, ".aac": true, ".webm": true,
}

var documentExts = map[string]bool{
	".docx": true,
}

// mediaTypeExts maps a declared media type to a file extension for items
// uploaded without one.
var mediaTypeExts = map[string]string{
	"audio/mp4":  ".m4a",
	"audio/mpeg": ".mp3",
	"audio/wav":  ".wav",
	"audio/webm": ".webm",
	"audio/flac": ".flac",
	"audio/ogg":  ".ogg",
	"audio/aac":  ".aac",
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/bmp":  ".bmp",
	"image/webp": ".webp",
}

// Classify assigns an item to exactly one lane based on its name extension,
// case-insensitive. Items with no usable extension fall back to the declared
// media type, then to content sniffing when bytes are present. Anything else
// is LaneUnsupported.
func Classify(item UploadedItem) Lane {
	ext := itemExt(item)
	switch {
	case imageExts[ext]:
		return LaneImage
	case audioExts[ext]:
		return LaneAudio
	case documentExts[ext]:
		return LaneDocument
	default:
		return LaneUnsupported
	}
}

// itemExt resolves the effective extension of an item.
func itemExt(item UploadedItem) string {
	ext := strings.ToLower(filepath.Ext(item.Name))
	if ext != "" {
		return ext
	}
	if item.MediaType != "" {
		if mapped, ok := mediaTypeExts[item.MediaType]; ok {
			return mapped
		}
	}
	if len(item.Data) > 0 {
		return strings.ToLower(mimetype.Detect(item.Data).Extension())
	}
	return ""
}
