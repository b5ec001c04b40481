package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driven"
	"github.com/custodia-labs/zenji/internal/core/ports/driving"
	"github.com/custodia-labs/zenji/internal/logger"
	"github.com/custodia-labs/zenji/internal/postprocessors/batcher"
	"github.com/custodia-labs/zenji/internal/postprocessors/chunker"
)

// Ensure IngestionPipeline implements the interface.
var _ driving.IngestService = (*IngestionPipeline)(nil)

// extractConcurrency bounds how many folder documents are read and
// extracted ahead of the sequential embed/upsert stage.
const extractConcurrency = 4

// IngestionPipeline composes chunking, batched embedding, duplicate
// suppression and upsert. Within one call chunk order is preserved end to
// end, so an embedding is never paired with another chunk's text.
type IngestionPipeline struct {
	extractor  driven.TextExtractor
	embedder   driven.EmbeddingService
	store      driven.VectorStore
	chunker    *chunker.Chunker
	batcher    *batcher.Batcher
	dedup      *DuplicateFilter
	extensions []string
	now        func() time.Time
}

// NewIngestionPipeline creates a pipeline from its collaborators and settings.
func NewIngestionPipeline(
	extractor driven.TextExtractor,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	counter driven.TokenCounter,
	settings domain.IngestSettings,
) *IngestionPipeline {
	exts := make([]string, 0, len(settings.Extensions))
	for _, e := range settings.Extensions {
		exts = append(exts, normaliseExt(e))
	}

	return &IngestionPipeline{
		extractor: extractor,
		embedder:  embedder,
		store:     store,
		chunker: chunker.New(
			chunker.WithChunkSize(settings.ChunkSize),
			chunker.WithOverlap(settings.ChunkOverlap),
		),
		batcher:    batcher.New(counter, settings.MaxBatchTokens),
		dedup:      NewDuplicateFilter(store),
		extensions: exts,
		now:        time.Now,
	}
}

// Supports reports whether a file name can be ingested on its own.
// Folder runs additionally restrict to the configured extensions.
func (p *IngestionPipeline) Supports(filename string) bool {
	return p.extractor.Supports(filename)
}

func (p *IngestionPipeline) acceptsInFolder(filename string) bool {
	if !p.extractor.Supports(filename) {
		return false
	}
	if len(p.extensions) == 0 {
		return true
	}
	return slices.Contains(p.extensions, strings.ToLower(filepath.Ext(filename)))
}

// IngestDocument runs the per-document flow on raw bytes.
//
// A document with no extractable text yields status 400 and an error wrapping
// domain.ErrNoExtractableText. A document whose chunks are all indexed already
// yields status 200 with domain.MsgAllDuplicates and no error.
func (p *IngestionPipeline) IngestDocument(ctx context.Context, raw []byte, filename string) (domain.IngestResult, error) {
	start := p.now()
	source := filepath.Base(filename)

	logger.Event("ingest.pdf.start", "filename", source, "size_kb", math.Round(float64(len(raw))/1024*100)/100)

	pages, err := p.extract(ctx, raw, source)
	if err != nil {
		return failed(source, err), err
	}

	res, err := p.ingestPages(ctx, source, pages)
	if err != nil {
		if errors.Is(err, domain.ErrNoExtractableText) {
			logger.WarnEvent("ingest.pdf.no_text", "filename", source)
		}
		return res, err
	}
	if res.Duplicate() {
		logger.Event("ingest.pdf.duplicates", "filename", source)
		return res, nil
	}

	res.Elapsed = p.now().Sub(start)
	logger.Event("ingest.pdf.done", "filename", source, "chunks", res.Accepted, "seconds", res.Seconds())
	return res, nil
}

// IngestFolder ingests every supported document under path, recursively and
// in lexical order. Per-document failures are logged and skipped.
func (p *IngestionPipeline) IngestFolder(ctx context.Context, path string) (domain.IngestResult, error) {
	start := p.now()

	files, err := p.enumerate(path)
	if err != nil {
		return failed(path, err), err
	}

	logger.Section("Folder Ingestion")
	logger.Event("ingest.folder.start", "path", path, "doc_count", len(files))

	total := domain.IngestResult{StatusCode: http.StatusOK}
	var failures []error

	for window := range slices.Chunk(files, extractConcurrency) {
		extracted := make([][]domain.Page, len(window))
		readErrs := make([]error, len(window))

		g, gctx := errgroup.WithContext(ctx)
		for i, file := range window {
			g.Go(func() error {
				raw, err := os.ReadFile(file)
				if err != nil {
					readErrs[i] = err
					return nil
				}
				extracted[i], readErrs[i] = p.extract(gctx, raw, filepath.Base(file))
				return nil
			})
		}
		_ = g.Wait()

		for i, file := range window {
			if err := ctx.Err(); err != nil {
				return total, err
			}

			name := filepath.Base(file)
			if readErrs[i] != nil {
				logger.WarnEvent("ingest.folder.failed", "filename", file, "error", readErrs[i].Error())
				failures = append(failures, fmt.Errorf("%s: %w", file, readErrs[i]))
				continue
			}

			res, err := p.ingestPages(ctx, name, extracted[i])
			switch {
			case errors.Is(err, domain.ErrNoExtractableText):
				logger.WarnEvent("ingest.folder.no_text", "filename", name)
				continue
			case err != nil:
				logger.WarnEvent("ingest.folder.failed", "filename", file, "error", err.Error())
				failures = append(failures, fmt.Errorf("%s: %w", file, err))
				continue
			case res.Duplicate():
				logger.Event("ingest.folder.duplicates", "filename", name)
				continue
			}

			total.Accepted += res.Accepted
			total.Files++
			logger.Event("ingest.folder.file_done", "filename", name, "chunks", res.Accepted)
		}
	}

	if len(failures) > 0 {
		logger.Debug("Folder ingestion skipped %d documents: %v", len(failures), errors.Join(failures...))
	}

	total.Elapsed = p.now().Sub(start)
	logger.Event("ingest.folder.done", "files_done", total.Files, "total_chunks", total.Accepted, "seconds", total.Seconds())
	return total, nil
}

// enumerate lists ingestible files under path. A path that cannot be read is fatal.
func (p *IngestionPipeline) enumerate(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, path)
	}

	var files []string
	err = filepath.WalkDir(path, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !p.acceptsInFolder(d.Name()) {
			return nil
		}
		files = append(files, file)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", path, err)
	}

	slices.Sort(files)
	return files, nil
}

// extract reads pages, logging and blanking pages that failed.
func (p *IngestionPipeline) extract(ctx context.Context, raw []byte, source string) ([]domain.Page, error) {
	pages, err := p.extractor.Extract(ctx, raw, source)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", source, err)
	}
	for i := range pages {
		if pages[i].Err != nil {
			logger.WarnEvent("ingest.page.failed", "filename", source, "page", pages[i].Number, "error", pages[i].Err.Error())
			pages[i].Text = ""
		}
	}
	return pages, nil
}

// ingestPages runs chunk, embed, dedup and upsert for one document.
func (p *IngestionPipeline) ingestPages(ctx context.Context, source string, pages []domain.Page) (domain.IngestResult, error) {
	// 1. Chunk every page
	chunks := p.chunker.ChunkPages(source, pages)
	if len(chunks) == 0 {
		return domain.IngestResult{
			File:       source,
			Error:      domain.MsgNoExtractableText,
			StatusCode: http.StatusBadRequest,
		}, fmt.Errorf("%s: %w", source, domain.ErrNoExtractableText)
	}

	// 2. Embed in token-budgeted batches
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	embeddings, err := p.embed(ctx, texts)
	if err != nil {
		return failed(source, err), err
	}

	// 3. Drop chunks already indexed for this source
	kept, keptEmbeddings, err := p.dedup.Filter(ctx, chunks, embeddings)
	if err != nil {
		return failed(source, err), err
	}
	if len(kept) == 0 {
		return domain.IngestResult{
			File:       source,
			Error:      domain.MsgAllDuplicates,
			StatusCode: http.StatusOK,
		}, nil
	}

	// 4. Upsert survivors in one call
	if err := p.store.Upsert(ctx, kept, keptEmbeddings); err != nil {
		err = fmt.Errorf("upsert %s: %w", source, err)
		return failed(source, err), err
	}

	logger.Debug("Indexed %d of %d chunks from %s", len(kept), len(chunks), source)
	return domain.IngestResult{
		File:       source,
		Accepted:   len(kept),
		StatusCode: http.StatusOK,
	}, nil
}

// embed sends batches in order and checks one vector comes back per text.
func (p *IngestionPipeline) embed(ctx context.Context, texts []string) ([][]float32, error) {
	if p.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	out := make([][]float32, 0, len(texts))
	for i, batch := range p.batcher.Batch(texts) {
		vecs, err := p.embedder.EmbedBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("embed batch %d: %w", i+1, err)
		}
		if len(vecs) != len(batch) {
			return nil, fmt.Errorf("%w: embed batch %d returned %d vectors for %d texts",
				domain.ErrExternalService, i+1, len(vecs), len(batch))
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func failed(file string, err error) domain.IngestResult {
	return domain.IngestResult{
		File:       file,
		Error:      err.Error(),
		StatusCode: domain.StatusFor(err),
	}
}

func normaliseExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
