// Package knowledge holds the college FAQ used to ground answers.
package knowledge

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// tagCutoff is the minimum similarity ratio for a fuzzy tag match.
const tagCutoff = 0.5

// Entry is one FAQ record.
type Entry struct {
	QuestionPatterns []string       `json:"question_patterns"`
	Tags             []string       `json:"tags"`
	AnswerFacts      map[string]any `json:"answer_facts"`
}

// Facts renders the answer facts as "key: value" lines in key order.
func (e Entry) Facts() string {
	keys := make([]string, 0, len(e.AnswerFacts))
	for k := range e.AnswerFacts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %v", k, e.AnswerFacts[k]))
	}
	return strings.Join(lines, "\n")
}

// FAQ is an immutable set of entries, safe for concurrent lookups.
type FAQ struct {
	entries []Entry
}

// NewFAQ wraps already decoded entries.
func NewFAQ(entries []Entry) *FAQ {
	return &FAQ{entries: entries}
}

// LoadFAQ reads a JSON array of entries from path, falling back to data/<path>.
// A missing file yields an empty FAQ and fs.ErrNotExist.
func LoadFAQ(path string) (*FAQ, error) {
	candidates := []string{path}
	if !filepath.IsAbs(path) {
		candidates = append(candidates, filepath.Join("data", path))
	}

	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return NewFAQ(nil), fmt.Errorf("failed to read %s: %w", candidate, err)
		}

		var entries []Entry
		if err := json.Unmarshal(data, &entries); err != nil {
			return NewFAQ(nil), fmt.Errorf("failed to parse %s: %w", candidate, err)
		}
		return NewFAQ(entries), nil
	}

	return NewFAQ(nil), fmt.Errorf("knowledge base %s: %w", path, fs.ErrNotExist)
}

// Len returns the number of entries.
func (f *FAQ) Len() int {
	return len(f.entries)
}

// Lookup finds the entry most relevant to query. Question patterns that
// contain or are contained in the query win first; otherwise the tag most
// similar to the whole query is used if it clears the cutoff.
func (f *FAQ) Lookup(query string) (Entry, bool) {
	if len(f.entries) == 0 {
		return Entry{}, false
	}

	q := normalize(query)
	if q == "" {
		return Entry{}, false
	}

	for _, entry := range f.entries {
		for _, pattern := range entry.QuestionPatterns {
			p := normalize(pattern)
			if p == "" {
				continue
			}
			if strings.Contains(q, p) || strings.Contains(p, q) {
				return entry, true
			}
		}
	}

	qChars := strings.Split(q, "")
	best, bestScore := -1, 0.0
	for i, entry := range f.entries {
		for _, tag := range entry.Tags {
			t := normalize(tag)
			if t == "" {
				continue
			}
			score := difflib.NewMatcher(strings.Split(t, ""), qChars).Ratio()
			if score >= tagCutoff && score > bestScore {
				best, bestScore = i, score
			}
		}
	}
	if best < 0 {
		return Entry{}, false
	}
	return f.entries[best], true
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
