package services

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrNoPDFText = errors.New("no text content found in PDF")

type PDFParserService interface {
	ExtractText(filePath string) (string, error)
	ExtractTextFromBytes(data []byte) (string, error)
	ExtractTextWithMetaData(filePath string) (*PDFContent, error)
}

type PDFContent struct {
	Text      string
	PageCount int
	FilePath  string
}

type pdfParserService struct{}

func NewPDFParserService() PDFParserService {
	return &pdfParserService{}
}

func (p *pdfParserService) ExtractText(filePath string) (string, error) {
	content, err := p.ExtractTextWithMetaData(filePath)
	if err != nil {
		return "", err
	}
	return content.Text, nil
}

func (p *pdfParserService) ExtractTextFromBytes(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrNoPDFText
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	text, _ := readPages(r)
	if text == "" {
		return "", ErrNoPDFText
	}
	return text, nil
}

func (p *pdfParserService) ExtractTextWithMetaData(filePath string) (*PDFContent, error) {
	// Check if file exists
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	text, pages := readPages(r)
	if text == "" {
		return nil, ErrNoPDFText
	}

	return &PDFContent{
		Text:      text,
		PageCount: pages,
		FilePath:  filePath,
	}, nil
}

// readPages concatenates the plain text of every readable page.
// Pages that fail to decode are skipped.
func readPages(r *pdf.Reader) (string, int) {
	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	return CleanText(textBuilder.String()), totalPage
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	cleanedLines := make([]string, 0, len(lines))

	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
