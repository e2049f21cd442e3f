package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fiction-occupations/enricher/internal/models"
)

// ErrMalformedResponse is returned when a knowledge source answer cannot be
// decoded into a SourceResult.
var ErrMalformedResponse = errors.New("malformed knowledge source response")

// Grounding is the extra context handed to a knowledge source. The zero
// value means direct recall.
type Grounding struct {
	Snippets    []string
	Summary     string
	Description string
}

// KnowledgeSource answers structured questions about a book.
type KnowledgeSource interface {
	Query(ctx context.Context, title, author string, g Grounding) (*models.SourceResult, error)
}

// WebSearch returns short text snippets for a free-text query. A search that
// found nothing returns no snippets and a nil error.
type WebSearch interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// SearchQuery is the web search issued for a book.
func SearchQuery(q models.BookQuery) string {
	return fmt.Sprintf("%s by %s main characters and professions", q.Title, q.Author)
}

// QueryTwoSources asks the knowledge source twice: once from memory alone
// (A) and once grounded in web search results, summary and description (B).
func QueryTwoSources(ctx context.Context, ks KnowledgeSource, ws WebSearch, q models.BookQuery) (*models.SourceResult, *models.SourceResult, error) {
	direct, err := ks.Query(ctx, q.Title, q.Author, Grounding{})
	if err != nil {
		return nil, nil, fmt.Errorf("direct recall failed: %w", err)
	}

	var snippets []string
	if ws != nil {
		snippets, err = ws.Search(ctx, SearchQuery(q))
		if err != nil {
			return nil, nil, fmt.Errorf("web search failed: %w", err)
		}
	}
	slog.Debug("Web search complete", "title", q.Title, "author", q.Author, "snippets", len(snippets))

	grounded, err := ks.Query(ctx, q.Title, q.Author, Grounding{
		Snippets:    snippets,
		Summary:     q.Summary,
		Description: q.Description,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("grounded recall failed: %w", err)
	}

	return direct, grounded, nil
}
