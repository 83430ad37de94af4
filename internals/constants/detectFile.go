package constants

import (
	"path/filepath"
	"strings"
)

type FileKind int

const (
	FileKindUnknown FileKind = iota
	FileKindImage
	FileKindPDF
)

const MaxUploadSize = 5 * 1024 * 1024 // 5MB

func DetectFileKindFromExt(filename string) FileKind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png":
		return FileKindImage
	case ".pdf":
		return FileKindPDF
	default:
		return FileKindUnknown
	}
}

// Ekstensi yang boleh diunggah per keperluan.
var (
	ProofAllowedExt      = []string{".jpg", ".jpeg", ".png", ".pdf"}
	AttachmentAllowedExt = []string{".jpg", ".jpeg", ".png"}
)

func IsAllowedExt(filename string, allowed []string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}
