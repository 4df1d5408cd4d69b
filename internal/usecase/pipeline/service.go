// Package pipeline orchestrates the ingest and query flows, applying
// caching and the partial-failure policy around each stage.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/asheesh07/Production-Grade-RAG-System/internal/chunker"
	"github.com/asheesh07/Production-Grade-RAG-System/internal/domain"
	"github.com/asheesh07/Production-Grade-RAG-System/internal/loader"
	"github.com/asheesh07/Production-Grade-RAG-System/internal/metrics"
)

// FallbackAnswer is the canned response for a query that retrieves zero
// documents. A defined terminal state, not an error.
const FallbackAnswer = "I don't know based on the provided information."

// Options holds the pipeline tuning knobs.
type Options struct {
	Chunking        chunker.Config
	TopK            int
	TopN            int
	ScoreThreshold  *float64
	MaxContextChars int
}

// Answer is the query flow outcome.
type Answer struct {
	Text    string
	Cached  bool
	Sources []domain.RankedResult
}

// IngestReport summarizes one document's ingest. Zero chunks with a nil
// error means the document fell below min_chars after cleaning; counted
// and logged, not failed.
type IngestReport struct {
	DocID   string
	Chunks  int
	Indexed int
}

// Service orchestrates both flows. It holds only read-only handles; every
// invocation is independent, so concurrent requests interleave freely.
type Service struct {
	embedder  domain.BatchEmbedder
	retriever Retriever
	reranker  Reranker
	generator Generator
	responses ResponseCache
	index     Indexer
	chunks    ChunkWriter
	opts      Options
	logger    *zap.Logger
}

// New creates the pipeline orchestrator.
func New(
	embedder domain.BatchEmbedder,
	retriever Retriever,
	reranker Reranker,
	generator Generator,
	responses ResponseCache,
	index Indexer,
	chunks ChunkWriter,
	opts Options,
	logger *zap.Logger,
) *Service {
	return &Service{
		embedder:  embedder,
		retriever: retriever,
		reranker:  reranker,
		generator: generator,
		responses: responses,
		index:     index,
		chunks:    chunks,
		opts:      opts,
		logger:    logger,
	}
}

// Query runs the query flow: cache lookup, retrieve, rerank, generate,
// cache store. Any stage failure surfaces as a single ErrGenerationFailed;
// a failed turn is never cached.
func (s *Service) Query(ctx context.Context, query string) (Answer, error) {
	q := strings.TrimSpace(query)

	answer, payload, hit, err := s.responses.GetOrCompute(ctx, q, func() (string, any, bool, error) {
		text, srcs, err := s.answer(ctx, q)
		if err != nil {
			metrics.QueriesTotal.WithLabelValues("failed").Inc()
			return "", nil, false, err
		}

		// The fallback is a terminal state, not an answer worth caching:
		// the next ingest may make the same query answerable.
		if text == FallbackAnswer {
			metrics.QueriesTotal.WithLabelValues("fallback").Inc()
			return text, srcs, false, nil
		}

		metrics.QueriesTotal.WithLabelValues("answered").Inc()
		return text, srcs, true, nil
	})
	if err != nil {
		return Answer{}, err
	}

	if hit {
		metrics.QueriesTotal.WithLabelValues("cached").Inc()
	}

	// Callers collapsed onto another caller's compute share its sources.
	sources, _ := payload.([]domain.RankedResult)
	return Answer{Text: answer, Cached: hit, Sources: sources}, nil
}

// answer is the cache-miss path: retrieve, rerank, generate.
func (s *Service) answer(ctx context.Context, query string) (string, []domain.RankedResult, error) {
	candidates, err := s.retriever.Retrieve(ctx, query, s.opts.TopK, s.opts.ScoreThreshold)
	if err != nil {
		return "", nil, fmt.Errorf("%w: retrieve: %w", domain.ErrGenerationFailed, err)
	}

	if len(candidates) == 0 {
		s.logger.Info("No documents retrieved for query")
		return FallbackAnswer, nil, nil
	}

	ranked, err := s.reranker.Rerank(ctx, query, candidates, s.opts.TopN)
	if err != nil {
		return "", nil, fmt.Errorf("%w: rerank: %w", domain.ErrGenerationFailed, err)
	}

	prompt := buildPrompt(query, buildContext(ranked, s.opts.MaxContextChars))

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", nil, fmt.Errorf("%w: generate: %w", domain.ErrGenerationFailed, err)
	}

	return text, ranked, nil
}

// Ingest runs one document through clean, chunk, embed, index_add. Stages
// are strictly sequential; a stage failure aborts the rest for this
// document. The embed batch is added to the index in a single all-or-
// nothing call.
func (s *Service) Ingest(ctx context.Context, doc domain.Document) (IngestReport, error) {
	report := IngestReport{DocID: doc.ID}

	cleaned := loader.Clean(doc.RawText)

	chunks, err := chunker.Split(cleaned, doc.ID, doc.Title, s.opts.Chunking)
	if err != nil {
		metrics.IngestDocumentsTotal.WithLabelValues("failed").Inc()
		return report, fmt.Errorf("%w: chunk: %w", domain.ErrIngestFailed, err)
	}

	if len(chunks) == 0 {
		metrics.IngestDocumentsTotal.WithLabelValues("empty").Inc()
		s.logger.Info("Document produced no chunks",
			zap.String("doc_id", doc.ID),
			zap.Int("chars", len(cleaned)),
		)
		return report, nil
	}
	report.Chunks = len(chunks)

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embRes, err := s.embedder.BatchEmbed(ctx, texts)
	if err != nil {
		metrics.IngestDocumentsTotal.WithLabelValues("failed").Inc()
		return report, fmt.Errorf("%w: embed: %w", domain.ErrIngestFailed, err)
	}

	// An untrained index bootstraps on the first embedded batch; Train is
	// a no-op once the index is trained.
	if err := s.index.Train(embRes.Embeddings); err != nil {
		metrics.IngestDocumentsTotal.WithLabelValues("failed").Inc()
		return report, fmt.Errorf("%w: index train: %w", domain.ErrIngestFailed, err)
	}

	ids, err := s.index.Add(embRes.Embeddings)
	if err != nil {
		metrics.IngestDocumentsTotal.WithLabelValues("failed").Inc()
		return report, fmt.Errorf("%w: index add: %w", domain.ErrIngestFailed, err)
	}

	if err := s.chunks.PutChunks(ctx, ids, chunks); err != nil {
		metrics.IngestDocumentsTotal.WithLabelValues("failed").Inc()
		return report, fmt.Errorf("%w: store chunks: %w", domain.ErrIngestFailed, err)
	}

	report.Indexed = len(ids)
	metrics.IngestDocumentsTotal.WithLabelValues("indexed").Inc()
	metrics.IngestChunksTotal.Add(float64(len(ids)))

	s.logger.Info("Ingested document",
		zap.String("doc_id", doc.ID),
		zap.Int("chunks", len(chunks)),
		zap.Int("tokens", embRes.TotalTokens),
	)
	return report, nil
}

// IngestBatch ingests documents with per-document isolation: one failing
// document does not abort the others. Reports line up with docs; failed
// positions carry the error in errs.
func (s *Service) IngestBatch(ctx context.Context, docs []domain.Document) ([]IngestReport, []error) {
	reports := make([]IngestReport, len(docs))
	errs := make([]error, len(docs))

	for i, doc := range docs {
		reports[i], errs[i] = s.Ingest(ctx, doc)
		if errs[i] != nil {
			s.logger.Error("Document ingest failed",
				zap.String("doc_id", doc.ID),
				zap.Error(errs[i]),
			)
		}
	}
	return reports, errs
}
