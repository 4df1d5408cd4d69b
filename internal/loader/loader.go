// Package loader turns raw uploads into Documents. Document kinds form a
// closed set with one handler per kind; kinds without an in-process handler
// terminate in Unsupported rather than an implicit default.
package loader

import (
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/asheesh07/Production-Grade-RAG-System/internal/domain"
)

// Kind is a supported document kind.
type Kind string

const (
	KindText        Kind = "text"
	KindPDF         Kind = "pdf"
	KindHTML        Kind = "html"
	KindUnsupported Kind = "unsupported"
)

const maxTitleLen = 100

var titleSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_\- ]`)

// Loader builds Documents from raw input.
type Loader struct {
	logger *zap.Logger
}

// New creates a Loader.
func New(logger *zap.Logger) *Loader {
	return &Loader{logger: logger}
}

// DetectKind classifies input by filename extension, falling back to
// content sniffing when the extension is unknown.
func DetectKind(filename string, data []byte) Kind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md", ".text":
		return KindText
	case ".pdf":
		return KindPDF
	case ".html", ".htm":
		return KindHTML
	}

	mime := http.DetectContentType(data)
	switch {
	case strings.HasPrefix(mime, "text/html"):
		return KindHTML
	case strings.HasPrefix(mime, "application/pdf"):
		return KindPDF
	case strings.HasPrefix(mime, "text/"):
		return KindText
	}
	return KindUnsupported
}

// Load routes input to the handler for its kind. PDF and HTML extraction
// run out of process, so those kinds are rejected here alongside
// Unsupported.
func (l *Loader) Load(filename string, data []byte, title string) (domain.Document, error) {
	kind := DetectKind(filename, data)

	switch kind {
	case KindText:
		return l.loadText(string(data), title, filename)
	case KindPDF, KindHTML, KindUnsupported:
		return domain.Document{}, fmt.Errorf("%w: %s (%s)", domain.ErrUnsupportedDocument, kind, filename)
	default:
		return domain.Document{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedDocument, kind)
	}
}

// LoadText builds a Document from user-supplied plain text.
func (l *Loader) LoadText(text, title string) (domain.Document, error) {
	return l.loadText(text, title, "")
}

func (l *Loader) loadText(text, title, filename string) (domain.Document, error) {
	collapsed := strings.Join(strings.Fields(text), " ")
	if collapsed == "" {
		return domain.Document{}, fmt.Errorf("%w: empty text", domain.ErrUnsupportedDocument)
	}

	const source = "user_text"
	now := time.Now().UTC().Format(time.RFC3339)

	doc := domain.Document{
		ID:      newDocID(source),
		Title:   safeTitle(title),
		Source:  source,
		RawText: collapsed,
		Metadata: map[string]string{
			"upload_time": now,
			"char_count":  fmt.Sprintf("%d", len(collapsed)),
		},
	}
	if doc.Title == "" {
		doc.Title = source + "_" + now
	}
	if filename != "" {
		doc.Metadata["filename"] = filename
	}

	l.logger.Info("Loaded text input",
		zap.String("doc_id", doc.ID),
		zap.Int("chars", len(collapsed)),
	)
	return doc, nil
}

// newDocID assigns a fresh id per ingest. Re-ingesting identical text gets
// a new id: the index is append-only and dedup is the operator's concern.
func newDocID(source string) string {
	return source + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func safeTitle(title string) string {
	clean := titleSanitizer.ReplaceAllString(title, "")
	if len(clean) > maxTitleLen {
		clean = clean[:maxTitleLen]
	}
	return strings.TrimSpace(clean)
}
