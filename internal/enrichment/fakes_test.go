package enrichment

import (
	"context"
	"fmt"

	"github.com/fiction-occupations/enricher/internal/models"
)

type knowledgeCall struct {
	Title     string
	Author    string
	Grounding Grounding
}

// fakeKnowledge answers from fixed direct and grounded results per title.
type fakeKnowledge struct {
	direct   map[string]models.SourceResult
	grounded map[string]models.SourceResult
	fail     map[string]error
	calls    []knowledgeCall
}

func newFakeKnowledge() *fakeKnowledge {
	return &fakeKnowledge{
		direct:   make(map[string]models.SourceResult),
		grounded: make(map[string]models.SourceResult),
		fail:     make(map[string]error),
	}
}

func (f *fakeKnowledge) Query(_ context.Context, title, author string, g Grounding) (*models.SourceResult, error) {
	f.calls = append(f.calls, knowledgeCall{Title: title, Author: author, Grounding: g})
	if err, ok := f.fail[title]; ok {
		return nil, err
	}
	isGrounded := len(g.Snippets) > 0 || g.Summary != "" || g.Description != ""
	if isGrounded {
		if r, ok := f.grounded[title]; ok {
			return &r, nil
		}
	}
	r := f.direct[title]
	return &r, nil
}

func (f *fakeKnowledge) titles() []string {
	var titles []string
	for _, c := range f.calls {
		titles = append(titles, c.Title)
	}
	return titles
}

type fakeSearch struct {
	queries  []string
	snippets []string
	err      error
}

func (f *fakeSearch) Search(_ context.Context, query string) ([]string, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.snippets, nil
}

// memoryStore is an in-memory Store that keeps every appended row.
type memoryStore struct {
	keys    map[models.Key]struct{}
	header  []string
	rows    [][]string
	failErr error
}

func newMemoryStore(keys ...models.Key) *memoryStore {
	s := &memoryStore{keys: make(map[models.Key]struct{})}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return s
}

func (s *memoryStore) CompletedKeys() map[models.Key]struct{} {
	out := make(map[models.Key]struct{}, len(s.keys))
	for k := range s.keys {
		out[k] = struct{}{}
	}
	return out
}

func (s *memoryStore) CountColumns(string) int { return 0 }

func (s *memoryStore) Append(header, row []string) error {
	if s.failErr != nil {
		return s.failErr
	}
	if len(header) != len(row) {
		return fmt.Errorf("header/row mismatch")
	}
	s.header = append([]string(nil), header...)
	s.rows = append(s.rows, append([]string(nil), row...))
	return nil
}

func cast(names ...string) models.SourceResult {
	r := models.SourceResult{Genre: "Fiction", Protagonists: names}
	for range names {
		r.Professions = append(r.Professions, models.Careers{"Nurse"})
		r.Codes = append(r.Codes, []models.Code{"2221"})
	}
	return r
}
