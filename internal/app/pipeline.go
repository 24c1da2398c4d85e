package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/parentbud/carecards/internal/card"
	"github.com/parentbud/carecards/internal/cleaner"
	"github.com/parentbud/carecards/internal/extract"
	"github.com/parentbud/carecards/internal/fetch"
	"github.com/parentbud/carecards/internal/store"
	"github.com/parentbud/carecards/internal/topics"
)

// docCache deduplicates source documents across topics within one run, so a
// URL shared by two topics is fetched and extracted once. Negative results
// are cached too; a URL that failed once is not retried in the same run.
type docCache struct {
	mu      sync.Mutex
	entries map[string]docEntry
}

type docEntry struct {
	doc extract.SourceDocument
	ok  bool
}

func newDocCache() *docCache {
	return &docCache{entries: make(map[string]docEntry)}
}

func (c *docCache) get(url string) (docEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, seen := c.entries[url]
	return e, seen
}

func (c *docCache) put(url string, e docEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[url] = e
}

// Run processes every selected topic and writes the combined output. A
// topic's sources failing never aborts the run: the summarizer's template
// floor guarantees cards. Only cancellation and output write errors count as
// topic failures.
func (a *App) Run(ctx context.Context) error {
	selected, err := a.selectedTopics()
	if err != nil {
		return err
	}

	type topicResult struct {
		cards []card.Card
		err   error
		topic topics.Topic
	}
	results := make([]topicResult, len(selected))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers())
	for i, t := range selected {
		i, t := i, t
		g.Go(func() error {
			cards, err := a.processTopic(gctx, t)
			results[i] = topicResult{cards: cards, err: err, topic: t}
			// Only cancellation propagates; per-topic errors are recorded.
			if gctx.Err() != nil {
				return gctx.Err()
			}
			return nil
		})
	}
	runErr := g.Wait()

	var all []card.Card
	var failed []string
	for _, r := range results {
		if r.err != nil {
			log.Error().Err(r.err).Str("topic", r.topic.ID).Msg("topic failed")
			failed = append(failed, r.topic.ID)
			continue
		}
		all = append(all, r.cards...)
	}

	if len(all) > 0 {
		if err := a.writer.WriteAll(all); err != nil {
			return err
		}
	}
	if err := a.writer.WriteSummary(store.NewSummary(all, failed)); err != nil {
		return err
	}
	log.Info().Int("cards", len(all)).Int("topics", len(selected)-len(failed)).Msg("run complete")
	return runErr
}

// processTopic gathers the topic's sources, summarizes them and writes the
// topic file. The returned error is either cancellation or a write failure.
func (a *App) processTopic(ctx context.Context, topic topics.Topic) ([]card.Card, error) {
	docs := a.gatherDocuments(ctx, topic)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := a.summarizer.Summarize(ctx, topic, docs)
	log.Info().
		Str("topic", topic.ID).
		Int("sources", len(docs)).
		Int("cards", len(res.Sets)).
		Str("method", string(res.Method)).
		Msg("topic summarized")

	cards, err := a.assembler.Build(topic.ID, res, docs)
	if err != nil {
		return nil, err
	}
	if err := a.writer.WriteTopic(topic, cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// gatherDocuments fetches and extracts every configured source for the topic.
// Each URL fails independently; duplicate content across URLs is dropped by
// fingerprint.
func (a *App) gatherDocuments(ctx context.Context, topic topics.Topic) []extract.SourceDocument {
	var docs []extract.SourceDocument
	seen := make(map[string]bool)

	add := func(doc extract.SourceDocument, ok bool) {
		if !ok {
			return
		}
		if seen[doc.Fingerprint] {
			log.Debug().Str("url", doc.URL).Msg("duplicate content skipped")
			return
		}
		seen[doc.Fingerprint] = true
		docs = append(docs, doc)
	}

	for _, url := range topic.URLs {
		if ctx.Err() != nil {
			return docs
		}
		add(a.sourceDocument(ctx, url, false))
	}
	for _, url := range topic.PDFs {
		if ctx.Err() != nil {
			return docs
		}
		add(a.sourceDocument(ctx, url, true))
	}
	return docs
}

// sourceDocument resolves one URL into a cleaned document, consulting the
// run-level cache first.
func (a *App) sourceDocument(ctx context.Context, url string, isPDF bool) (extract.SourceDocument, bool) {
	if e, cached := a.docs.get(url); cached {
		return e.doc, e.ok
	}

	doc, ok := a.fetchAndExtract(ctx, url, isPDF)
	if ctx.Err() == nil {
		// Cancelled fetches are not cached as failures; a later run attempt
		// within the same process may still succeed.
		a.docs.put(url, docEntry{doc: doc, ok: ok})
	}
	return doc, ok
}

func (a *App) fetchAndExtract(ctx context.Context, url string, isPDF bool) (extract.SourceDocument, bool) {
	raw, err := a.fetcher.Get(ctx, url)
	if err != nil {
		if fetch.IsBlocked(err) {
			log.Warn().Str("url", url).Msg("skipped: disallowed by robots.txt")
		} else {
			log.Warn().Err(err).Str("url", url).Msg("fetch failed")
		}
		return extract.SourceDocument{}, false
	}

	if isPDF || isPDFContent(raw, url) {
		text, ok := extract.PDFText(raw.Body)
		if !ok {
			log.Warn().Str("url", url).Msg("pdf yielded no usable text")
			return extract.SourceDocument{}, false
		}
		text = cleaner.Clean(text)
		doc, ok := pdfDocument(url, text)
		if !ok {
			log.Warn().Str("url", url).Msg("pdf text too short after cleaning")
		}
		return doc, ok
	}

	doc, ok := a.chain.Extract(url, raw.Body)
	if !ok {
		log.Warn().Str("url", url).Msg("no extraction strategy produced enough text")
		return extract.SourceDocument{}, false
	}
	doc.Text = cleaner.Clean(doc.Text)
	doc.Fingerprint = extract.Fingerprint(doc.Text)
	log.Debug().Str("url", url).Str("method", doc.Method).Int("chars", len(doc.Text)).Msg("source extracted")
	return doc, true
}

// pdfDocument wraps salvaged PDF text as a source document. The floor is
// looser than the HTML threshold since salvage already proved the text is
// prose-like.
func pdfDocument(url, text string) (extract.SourceDocument, bool) {
	if len(text) < 100 {
		return extract.SourceDocument{}, false
	}
	return extract.SourceDocument{
		URL:         url,
		Title:       "PDF document",
		Text:        text,
		Method:      "pdf",
		Fingerprint: extract.Fingerprint(text),
		FetchedAt:   time.Now().UTC(),
	}, true
}

func isPDFContent(raw fetch.RawContent, url string) bool {
	if strings.Contains(strings.ToLower(raw.ContentType), "application/pdf") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(url), ".pdf")
}
