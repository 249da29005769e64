package wizard

import (
	"path/filepath"
	"strings"
)

// DocumentKind is the accepted file category of an uploaded resume.
type DocumentKind string

const (
	KindPDF  DocumentKind = "pdf"
	KindDOC  DocumentKind = "doc"
	KindDOCX DocumentKind = "docx"
)

var mimeKinds = map[string]DocumentKind{
	"application/pdf":    KindPDF,
	"application/msword": KindDOC,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": KindDOCX,
}

var extKinds = map[string]DocumentKind{
	".pdf":  KindPDF,
	".doc":  KindDOC,
	".docx": KindDOCX,
}

// Document is the opaque handle of the resume picked by the user. Only
// metadata is kept; the wizard never reads the file content.
type Document struct {
	Name      string       `json:"name"`
	Size      int64        `json:"size"`
	MimeType  string       `json:"mime_type"`
	Kind      DocumentKind `json:"kind"`
	PageCount int          `json:"page_count,omitempty"`
}

// DetectKind resolves the document category from the mime type first and
// falls back to the file extension. ok is false for anything that is not a
// PDF, DOC or DOCX file.
func DetectKind(name, mimeType string) (DocumentKind, bool) {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if kind, ok := mimeKinds[mt]; ok {
		return kind, true
	}
	kind, ok := extKinds[strings.ToLower(filepath.Ext(name))]
	return kind, ok
}
