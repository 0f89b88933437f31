package library

import (
	"path/filepath"
	"strings"
)

// Content subtypes assigned to indexed entries.
const (
	SubtypeVideo = "video"
	SubtypeAudio = "audio"
	SubtypeImage = "image"
	SubtypeText  = "text"
)

var subtypeByExt = map[string]string{}

func init() {
	register := func(subtype string, exts ...string) {
		for _, ext := range exts {
			subtypeByExt[ext] = subtype
		}
	}
	register(SubtypeVideo, ".mp4", ".avi", ".mkv", ".mov", ".wmv", ".webm", ".flv")
	register(SubtypeAudio, ".mp3", ".wav", ".flac", ".aac", ".ogg", ".wma")
	register(SubtypeImage, ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".svg", ".webp")
	register(SubtypeText, ".txt", ".md", ".pdf", ".docx", ".rtf", ".html", ".json", ".csv")
}

// Subtype maps a file path to a coarse content subtype by extension.
// Unknown extensions and extension-less names are treated as text.
func Subtype(path string) string {
	if subtype, ok := subtypeByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return subtype
	}
	return SubtypeText
}
