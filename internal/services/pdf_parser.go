package services

import (
	"bytes"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ledongthuc/pdf"
)

type PDFParserService interface {
	PageCount(r io.ReaderAt, size int64) (int, error)
	ExtractText(r io.ReaderAt, size int64) (*PDFContent, error)
}

type PDFContent struct {
	Text      string
	PageCount int
}

type pdfParserService struct{}

func NewPDFParserService() PDFParserService {
	return &pdfParserService{}
}

func (p *pdfParserService) PageCount(r io.ReaderAt, size int64) (count int, err error) {
	// the pdf reader panics on some malformed cross reference tables
	defer func() {
		if rec := recover(); rec != nil {
			count, err = 0, errors.Newf("malformed PDF: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return 0, errors.Wrap(err, "failed to open PDF")
	}
	return reader.NumPage(), nil
}

func (p *pdfParserService) ExtractText(r io.ReaderAt, size int64) (content *PDFContent, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			content, err = nil, errors.Newf("malformed PDF: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PDF")
	}

	var textBuilder strings.Builder
	totalPage := reader.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// skip unreadable pages
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	text := CleanText(textBuilder.String())
	if text == "" {
		return nil, errors.New("no text content found in PDF")
	}

	return &PDFContent{
		Text:      text,
		PageCount: totalPage,
	}, nil
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}

// readerAt buffers r so the PDF reader can seek in it.
func readerAt(r io.Reader) (*bytes.Reader, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read upload")
	}
	return bytes.NewReader(raw), nil
}
