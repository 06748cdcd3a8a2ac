package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/UWFms/docling-chat-bot/internal/domain/docModel"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

type rawPage struct {
	Number  int
	Content string
}

func getDocType(docPath string) docModel.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return docModel.PDF
	case ".docx", ".txt", ".rtf", ".odt":
		return docModel.DOCX
	default:
		return docModel.ERR
	}
}

func extractText(path string, contentType docModel.DocType) ([]rawPage, error) {
	switch contentType {
	case docModel.PDF:
		return extractPDF(path)
	case docModel.DOCX:
		return extractDocLike(path)
	default:
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}
}

func (p *Processor) extractTextLogged(path string, contentType docModel.DocType) ([]rawPage, error) {
	pages, err := extractText(path, contentType)
	if err != nil {
		p.logger.Error("Error extracting document content", "path", path, "error", err)
	}
	return pages, err
}

func extractPDF(path string) ([]rawPage, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []rawPage
	numPages := f.NumPage()
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// a broken page should not sink the whole document
			continue
		}

		pages = append(pages, rawPage{
			Number:  i,
			Content: content,
		})
	}
	return pages, nil
}

// extractDocLike reads a .docx, .odt, .rtf or plaintext file. The
// extractor flattens the document, so everything lands on one page and
// heading structure is recovered from the text itself.
func extractDocLike(path string) ([]rawPage, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract document text: %w", err)
	}

	return []rawPage{
		{
			Number:  1,
			Content: text,
		},
	}, nil
}

// protectExtract guards against pdf pages whose content stream makes
// the parser spin.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(10 * time.Second):
		return "", errors.New("page extraction timeout")
	}
}
