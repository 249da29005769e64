package services

import (
	"mime/multipart"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"alfredoptarigan/resumeai/internal/wizard"
)

// ErrDocumentRejected marks an upload that did not pass the one-file,
// PDF/DOC/DOCX, size-limited filter.
var ErrDocumentRejected = errors.New("document rejected")

// DocumentInspector turns an upload into the wizard's document handle. File
// bytes are only held in memory for the page count and never stored.
type DocumentInspector interface {
	Inspect(files []*multipart.FileHeader) (wizard.Document, error)
}

type documentInspector struct {
	pdfParser   PDFParserService
	maxFileSize int64
	log         *zap.SugaredLogger
}

func NewDocumentInspector(pdfParser PDFParserService, maxFileSize int64) DocumentInspector {
	return &documentInspector{
		pdfParser:   pdfParser,
		maxFileSize: maxFileSize,
		log:         zap.S().Named("intake"),
	}
}

func (d *documentInspector) Inspect(files []*multipart.FileHeader) (wizard.Document, error) {
	if len(files) != 1 {
		return wizard.Document{}, errors.Wrapf(ErrDocumentRejected, "expected exactly one file, got %d", len(files))
	}
	file := files[0]

	if file.Size > d.maxFileSize {
		return wizard.Document{}, errors.Wrapf(ErrDocumentRejected, "file too large: %d bytes, max %d", file.Size, d.maxFileSize)
	}

	mimeType := file.Header.Get("Content-Type")
	kind, ok := wizard.DetectKind(file.Filename, mimeType)
	if !ok {
		return wizard.Document{}, errors.Wrapf(ErrDocumentRejected, "unsupported file %q (%s)", file.Filename, mimeType)
	}

	doc := wizard.Document{
		Name:     file.Filename,
		Size:     file.Size,
		MimeType: mimeType,
		Kind:     kind,
	}

	if kind == wizard.KindPDF {
		doc.PageCount = d.pageCount(file)
	}
	return doc, nil
}

// pageCount is best effort: an unreadable PDF is still a PDF to the demo.
func (d *documentInspector) pageCount(file *multipart.FileHeader) int {
	src, err := file.Open()
	if err != nil {
		d.log.Warnw("failed to open uploaded file", "file", file.Filename, "error", err)
		return 0
	}
	defer src.Close()

	r, err := readerAt(src)
	if err != nil {
		d.log.Warnw("failed to buffer uploaded file", "file", file.Filename, "error", err)
		return 0
	}

	pages, err := d.pdfParser.PageCount(r, r.Size())
	if err != nil {
		d.log.Debugw("could not count PDF pages", "file", file.Filename, "error", err)
		return 0
	}
	return pages
}
