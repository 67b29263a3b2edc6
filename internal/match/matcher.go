// Package match implements the heuristic question-matching engine.
//
// A query is matched against a static repository of previously answered
// questions by combining keyword overlap, critical-term extraction, fuzzy
// text similarity and contextual signals. The scoring formula is selected
// per record by question type (embedding > command > specialized > general)
// and the best candidate above its threshold wins. On a miss the caller
// falls back to an external completion API; a miss is a legitimate outcome
// here, never an error.
package match

import (
	"fmt"
	"os"
	"sort"

	"github.com/answerbank/answerbank/internal/repo"
)

// Config configures a Matcher. The zero value selects the built-in topic
// table, default weights and the default cache size.
type Config struct {
	Topics    []Topic
	Weights   *Weights
	CacheSize int
	Verbose   bool
}

// Matcher orchestrates extraction and scoring across the repository and
// owns the bounded result cache. The repository and topic tables are
// read-only after construction; the cache serializes its own access, so a
// single Matcher is safe for concurrent use.
type Matcher struct {
	records []indexedRecord
	topics  []Topic
	byGroup map[int]Topic
	weights Weights
	cache   *resultCache
	verbose bool
}

// New builds a Matcher over the given repository.
func New(repository *repo.Repository, cfg Config) *Matcher {
	topics := cfg.Topics
	if topics == nil {
		topics = DefaultTopics()
	}
	weights := DefaultWeights()
	if cfg.Weights != nil {
		weights = *cfg.Weights
	}

	recs := repository.Records()
	indexed := make([]indexedRecord, 0, len(recs))
	for _, rec := range recs {
		indexed = append(indexed, indexRecord(rec))
	}

	return &Matcher{
		records: indexed,
		topics:  topics,
		byGroup: topicTable(topics),
		weights: weights,
		cache:   newResultCache(cfg.CacheSize),
		verbose: cfg.Verbose,
	}
}

// Match scores the query against every repository record and returns the
// stored answer of the best candidate clearing its threshold. Results are
// cached by normalized query prefix. An empty repository always reports
// no match.
func (m *Matcher) Match(query string) (bool, string) {
	if len(m.records) == 0 {
		return false, ""
	}

	key := cacheKey(query)
	if r, ok := m.cache.get(key); ok {
		return r.Matched, r.Answer
	}

	q := ExtractQuery(query, m.topics)
	if m.verbose && q.AssignmentHint != 0 {
		fmt.Fprintf(os.Stderr, "[match] assignment hint: %d\n", q.AssignmentHint)
	}

	bestScore := 0.0
	bestIdx := -1
	for i := range m.records {
		ir := &m.records[i]
		if q.AssignmentHint != 0 && ir.rec.GroupID != q.AssignmentHint {
			continue
		}
		s, ok := scoreRecord(q, ir, m.byGroup, m.weights)
		if !ok {
			continue
		}
		if s.Value > bestScore && s.WouldMatch() {
			bestScore = s.Value
			bestIdx = i
		}
	}

	result := cachedResult{}
	if bestIdx >= 0 {
		result = cachedResult{Matched: true, Answer: m.records[bestIdx].rec.AnswerText}
		if m.verbose {
			rec := m.records[bestIdx].rec
			fmt.Fprintf(os.Stderr, "[match] matched %d.%d score=%.3f\n", rec.GroupID, rec.ItemID, bestScore)
		}
	} else if m.verbose {
		fmt.Fprintf(os.Stderr, "[match] no match, best score %.3f\n", bestScore)
	}
	m.cache.put(key, result)

	return result.Matched, result.Answer
}

// Ranked is one entry of a Rank result.
type Ranked struct {
	QuestionText string  `json:"question_text"`
	Score        float64 `json:"score"`
	AnswerText   string  `json:"answer_text"`
	GroupID      int     `json:"group_id"`
	ItemID       int     `json:"item_id"`
}

// Rank returns the top matching records by descending score. Every record
// clearing its gate is ranked; the single-winner threshold tracking of
// Match does not apply.
func (m *Matcher) Rank(query string, limit int) []Ranked {
	if len(m.records) == 0 || limit <= 0 {
		return nil
	}

	q := ExtractQuery(query, m.topics)

	var ranked []Ranked
	for i := range m.records {
		ir := &m.records[i]
		if q.AssignmentHint != 0 && ir.rec.GroupID != q.AssignmentHint {
			continue
		}
		s, ok := scoreRecord(q, ir, m.byGroup, m.weights)
		if !ok {
			continue
		}
		ranked = append(ranked, Ranked{
			QuestionText: ir.rec.QuestionText,
			Score:        s.Value,
			AnswerText:   ir.rec.AnswerText,
			GroupID:      ir.rec.GroupID,
			ItemID:       ir.rec.ItemID,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].GroupID != ranked[j].GroupID {
			return ranked[i].GroupID < ranked[j].GroupID
		}
		return ranked[i].ItemID < ranked[j].ItemID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Explanation reports the full diagnostic picture for one query: what the
// extractor derived and how each candidate record scored. Used for tuning
// the weights, not for correctness.
type Explanation struct {
	FirstParagraph string   `json:"query_first_para"`
	Commands       []string `json:"commands_detected,omitempty"`
	CriticalTerms  []string `json:"critical_terms,omitempty"`
	EmbeddingTerms []string `json:"embedding_terms,omitempty"`
	HexRuns        []string `json:"hex_patterns,omitempty"`
	AssignmentHint int      `json:"assignment_context,omitempty"`
	CompanyHint    string   `json:"company_context,omitempty"`
	ActiveContexts []string `json:"contexts,omitempty"`

	// Note flags conditions that make the candidate list vacuous, like an
	// empty repository.
	Note string `json:"note,omitempty"`

	Candidates []Candidate `json:"top_matches"`
}

// Candidate is one record's diagnostic entry within an Explanation.
type Candidate struct {
	QuestionText string `json:"question"`
	GroupID      int    `json:"assignment"`
	ItemID       int    `json:"question_number"`
	Score
	WouldMatch bool `json:"would_match"`
}

// Explain runs the same pipeline as Match and reports per-record scoring
// diagnostics for every gate-clearing record, sorted by descending score.
func (m *Matcher) Explain(query string) *Explanation {
	q := ExtractQuery(query, m.topics)

	ex := &Explanation{
		FirstParagraph: q.CleanedFirstPara,
		Commands:       q.Commands,
		CriticalTerms:  sortedSet(q.CriticalTerms),
		EmbeddingTerms: sortedSet(q.EmbeddingTerms),
		HexRuns:        q.HexRuns,
		AssignmentHint: q.AssignmentHint,
		CompanyHint:    q.CompanyHint,
		ActiveContexts: q.ActiveContexts(),
	}
	if len(m.records) == 0 {
		ex.Note = "no questions loaded"
		return ex
	}

	for i := range m.records {
		ir := &m.records[i]
		if q.AssignmentHint != 0 && ir.rec.GroupID != q.AssignmentHint {
			continue
		}
		s, ok := scoreRecord(q, ir, m.byGroup, m.weights)
		if !ok {
			continue
		}
		if len(s.CommonKeywords) > 10 {
			s.CommonKeywords = s.CommonKeywords[:10]
		}
		ex.Candidates = append(ex.Candidates, Candidate{
			QuestionText: ir.rec.QuestionText,
			GroupID:      ir.rec.GroupID,
			ItemID:       ir.rec.ItemID,
			Score:        s,
			WouldMatch:   s.WouldMatch(),
		})
	}

	sort.SliceStable(ex.Candidates, func(i, j int) bool {
		return ex.Candidates[i].Value > ex.Candidates[j].Value
	})

	return ex
}

// CacheLen reports the current number of cached results.
func (m *Matcher) CacheLen() int {
	return m.cache.len()
}
