// -----------------------------------------------------------------------
// PDF Extractor Service - Extract per-page text from PDF documents
// Uses pdfcpu for Go-native PDF processing
// -----------------------------------------------------------------------

package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scholar/internal/interfaces"
	"github.com/ternarybob/scholar/internal/models"
	"github.com/ternarybob/scholar/internal/services/processing"
)

// Extractor implements the PDFExtractor interface using pdfcpu.
type Extractor struct {
	logger  arbor.ILogger
	tempDir string
}

// Compile-time interface assertion
var _ interfaces.PDFExtractor = (*Extractor)(nil)

// NewExtractor creates a PDF extractor. Extraction scratch space lives under
// tempDir; pass "" to use the system temp directory.
func NewExtractor(tempDir string, logger arbor.ILogger) *Extractor {
	if tempDir == "" {
		tempDir = filepath.Join(os.TempDir(), "scholar-pdf")
	}
	os.MkdirAll(tempDir, 0755)

	return &Extractor{
		logger:  logger,
		tempDir: tempDir,
	}
}

// ExtractPages extracts text page by page. The whole-document pass is tried
// first; if it fails or yields nothing, pages are extracted one at a time so
// a single bad page cannot sink the document. Both strategies failing is a
// recoverable no-content outcome: empty slice, nil error.
func (e *Extractor) ExtractPages(ctx context.Context, filePath string) ([]models.Page, error) {
	pdfCtx, err := api.ReadContextFile(filePath)
	if err != nil {
		e.logger.Warn().Str("file", filePath).Err(err).Msg("Unreadable PDF")
		return nil, nil
	}
	pageCount := pdfCtx.PageCount

	pages, err := e.extractAllPages(filePath, pageCount)
	if err != nil || len(pages) == 0 {
		if err != nil {
			e.logger.Warn().Str("file", filePath).Err(err).Msg("Whole-document extraction failed, extracting page by page")
		}
		pages = e.extractPageByPage(ctx, filePath, pageCount)
	}

	e.logger.Debug().
		Str("file", filepath.Base(filePath)).
		Int("page_count", pageCount).
		Int("pages_with_text", len(pages)).
		Msg("Extracted PDF pages")

	return pages, nil
}

// extractAllPages runs one extraction pass over the whole document.
func (e *Extractor) extractAllPages(filePath string, pageCount int) ([]models.Page, error) {
	outDir, err := os.MkdirTemp(e.tempDir, "pages_")
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(filePath, outDir, nil, conf); err != nil {
		return nil, err
	}

	return e.collectPages(outDir, pageCount), nil
}

// extractPageByPage extracts each page independently, skipping pages that
// fail with a logged warning.
func (e *Extractor) extractPageByPage(ctx context.Context, filePath string, pageCount int) []models.Page {
	var pages []models.Page

	conf := model.NewDefaultConfiguration()
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		if ctx.Err() != nil {
			break
		}

		outDir, err := os.MkdirTemp(e.tempDir, "page_")
		if err != nil {
			e.logger.Warn().Int("page", pageNum).Err(err).Msg("Failed to create extraction dir")
			continue
		}

		err = api.ExtractContentFile(filePath, outDir, []string{strconv.Itoa(pageNum)}, conf)
		if err != nil {
			e.logger.Warn().Int("page", pageNum).Err(err).Msg("Page extraction failed, skipping")
			os.RemoveAll(outDir)
			continue
		}

		for _, page := range e.collectPages(outDir, pageCount) {
			if page.PageNumber == pageNum {
				pages = append(pages, page)
			}
		}
		os.RemoveAll(outDir)
	}

	return pages
}

// collectPages reads the content files pdfcpu wrote into outDir, decodes
// their text and drops pages whose text is empty after trimming.
func (e *Extractor) collectPages(outDir string, pageCount int) []models.Page {
	files, _ := os.ReadDir(outDir)

	pageTexts := make(map[int]string)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			continue
		}

		pageNum, ok := pageNumberFromName(file.Name())
		if !ok {
			continue
		}
		pageTexts[pageNum] = decodeContentText(content)
	}

	var pages []models.Page
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		text := strings.TrimSpace(pageTexts[pageNum])
		if text == "" {
			continue
		}
		pages = append(pages, models.Page{
			PageNumber: pageNum,
			Text:       text,
			HasMath:    processing.DetectMath(text),
		})
	}

	return pages
}

// pageNumberFromName parses the page number out of a pdfcpu content file
// name. pdfcpu prefixes the files with the source basename
// ("<name>_Content_page_<n>.txt"), so only the trailing page_<n> component
// is significant.
func pageNumberFromName(name string) (int, bool) {
	idx := strings.LastIndex(name, "page_")
	if idx < 0 {
		return 0, false
	}

	var pageNum int
	if _, err := fmt.Sscanf(name[idx:], "page_%d", &pageNum); err != nil {
		return 0, false
	}
	return pageNum, true
}

// decodeContentText pulls literal text out of a raw PDF content stream.
// It walks the stream, collecting string operands of the Tj and TJ show
// operators, and maps text-positioning operators (Td, TD, T*) to newlines.
// This handles the simple encodings produced by common PDF generators; text
// behind custom CMaps comes out garbled and is tolerated as noise.
func decodeContentText(content []byte) string {
	var out strings.Builder
	var pending []string

	flush := func(sep string) {
		if len(pending) == 0 {
			return
		}
		out.WriteString(strings.Join(pending, ""))
		out.WriteString(sep)
		pending = nil
	}

	i := 0
	for i < len(content) {
		c := content[i]
		switch {
		case c == '(':
			s, next := readLiteralString(content, i)
			pending = append(pending, s)
			i = next
		case c == 'T' && i+1 < len(content):
			switch content[i+1] {
			case 'j', 'J':
				flush(" ")
				i += 2
			case 'd', 'D', '*':
				flush("\n")
				i += 2
			default:
				i++
			}
		case c == '\'' || c == '"':
			// Move-and-show operators also imply a line break.
			flush("\n")
			i++
		default:
			i++
		}
	}
	flush("")

	return out.String()
}

// readLiteralString reads a PDF literal string starting at the opening
// parenthesis, honoring escapes and balanced nested parentheses. It returns
// the decoded text and the index just past the closing parenthesis.
func readLiteralString(content []byte, start int) (string, int) {
	var b strings.Builder
	depth := 0
	i := start

	for i < len(content) {
		c := content[i]
		switch c {
		case '\\':
			if i+1 >= len(content) {
				return b.String(), i + 1
			}
			switch content[i+1] {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case '(', ')', '\\':
				b.WriteByte(content[i+1])
			case '0', '1', '2', '3', '4', '5', '6', '7':
				// Octal escape, up to three digits.
				val := 0
				n := 0
				for n < 3 && i+1+n < len(content) && content[i+1+n] >= '0' && content[i+1+n] <= '7' {
					val = val*8 + int(content[i+1+n]-'0')
					n++
				}
				b.WriteByte(byte(val))
				i += n - 1
			}
			i += 2
		case '(':
			if depth > 0 {
				b.WriteByte(c)
			}
			depth++
			i++
		case ')':
			depth--
			if depth == 0 {
				return b.String(), i + 1
			}
			b.WriteByte(c)
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}

	return b.String(), i
}
