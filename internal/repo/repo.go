// Package repo provides the static question repository for answerbank.
//
// The repository is a read-only collection of previously answered questions,
// loaded once at startup from a JSON file or a SQLite database produced by
// the corpus builder. Records are never mutated after load, so the
// repository is safe for unsynchronized concurrent reads.
package repo

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Record is one previously answered question.
// (GroupID, ItemID) pairs are assigned deterministically at corpus-build
// time but are not required to be globally unique.
type Record struct {
	GroupID      int      `json:"assignment_number"`
	ItemID       int      `json:"question_number"`
	QuestionText string   `json:"question_text"`
	AnswerText   string   `json:"answer_text"`
	Keywords     []string `json:"keywords"`
}

// KeywordSet materializes the record's keyword list as a set.
func (r *Record) KeywordSet() map[string]struct{} {
	set := make(map[string]struct{}, len(r.Keywords))
	for _, kw := range r.Keywords {
		set[strings.ToLower(kw)] = struct{}{}
	}
	return set
}

// Repository holds the loaded records plus source provenance.
type Repository struct {
	records []Record
	source  string
}

// NewRepository wraps an in-memory record slice. Used by tests and by
// callers that build records programmatically.
func NewRepository(records []Record) *Repository {
	return &Repository{records: records, source: "memory"}
}

// LoadJSON loads the repository from a serialized JSON list.
// A missing file is not an error: the repository operates empty and
// matching always reports no match.
func LoadJSON(path string) (*Repository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Repository{source: path}, nil
		}
		return nil, fmt.Errorf("reading corpus %s: %w", path, err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing corpus %s: %w", path, err)
	}

	return &Repository{records: records, source: path}, nil
}

// Records returns the loaded records. Callers must not mutate the slice.
func (r *Repository) Records() []Record {
	return r.records
}

// Len returns the number of loaded records.
func (r *Repository) Len() int {
	return len(r.records)
}

// Source returns where the repository was loaded from.
func (r *Repository) Source() string {
	return r.source
}

// Stats summarizes the repository for the stats command and MCP resource.
type Stats struct {
	Records  int         `json:"records"`
	Groups   []GroupStat `json:"groups"`
	Keywords int         `json:"keywords"`
	Source   string      `json:"source"`
}

// GroupStat counts records within one topic group.
type GroupStat struct {
	GroupID int `json:"group_id"`
	Records int `json:"records"`
}

// Stats computes aggregate repository statistics.
func (r *Repository) Stats() Stats {
	byGroup := map[int]int{}
	keywords := 0
	for _, rec := range r.records {
		byGroup[rec.GroupID]++
		keywords += len(rec.Keywords)
	}

	groups := make([]GroupStat, 0, len(byGroup))
	for id, n := range byGroup {
		groups = append(groups, GroupStat{GroupID: id, Records: n})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].GroupID < groups[j].GroupID })

	return Stats{
		Records:  len(r.records),
		Groups:   groups,
		Keywords: keywords,
		Source:   r.source,
	}
}
