package match

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/answerbank/answerbank/internal/repo"
)

// QuestionType classifies which weighting formula applies to a record.
// Checked in priority order: embedding > command > specialized > general.
type QuestionType string

const (
	TypeEmbedding   QuestionType = "embedding"
	TypeCommand     QuestionType = "command"
	TypeSpecialized QuestionType = "specialized"
	TypeGeneral     QuestionType = "general"
)

// Formula is one weighted-sum configuration plus its match threshold.
type Formula struct {
	Keyword   float64
	Critical  float64
	Para      float64
	Query     float64
	Threshold float64
}

// Weights collects every tunable scoring constant. The values are
// hand-tuned; treat them as configuration rather than derived quantities.
type Weights struct {
	Embedding   Formula
	Command     Formula
	Specialized Formula
	General     Formula

	ImportantKeywordBonus float64 // per repeated-token keyword match
	ContextPerFlag        float64 // per active context flag with topic overlap
	CommandPerMatch       float64 // per command found verbatim in record text

	KeywordFloor         float64 // effective-keyword gate
	RelaxedKeywordFloor  float64 // gate under a specialized context
	CriticalFloor        int     // critical-term gate
	RelaxedCriticalFloor int

	ExplicitGroupBoost float64 // assignment hint matches record group
	ImplicitGroupBoost float64 // inferred topic matches record group
	ThresholdCut       float64 // image-processing / transcription questions
	CompanyBonus       float64 // company hint appears in record text

	QueryWindow int // chars of cleaned query compared for similarity
}

// DefaultWeights returns the tuned scoring configuration.
func DefaultWeights() Weights {
	return Weights{
		Embedding:   Formula{Keyword: 0.25, Critical: 0.45, Para: 0.15, Query: 0.15, Threshold: 0.35},
		Command:     Formula{Keyword: 0.3, Critical: 0.4, Para: 0.1, Query: 0.1, Threshold: 0.35},
		Specialized: Formula{Keyword: 0.4, Critical: 0.3, Para: 0.1, Query: 0.1, Threshold: 0.33},
		General:     Formula{Keyword: 0.4, Critical: 0.2, Para: 0.2, Query: 0.2, Threshold: 0.4},

		ImportantKeywordBonus: 0.5,
		ContextPerFlag:        0.3,
		CommandPerMatch:       0.2,

		KeywordFloor:         3,
		RelaxedKeywordFloor:  2,
		CriticalFloor:        2,
		RelaxedCriticalFloor: 1,

		ExplicitGroupBoost: 1.2,
		ImplicitGroupBoost: 1.15,
		ThresholdCut:       0.9,
		CompanyBonus:       0.05,

		QueryWindow: 300,
	}
}

// indexedRecord caches the per-record derived text forms so a repository
// scan does not re-tokenize every record on every query.
type indexedRecord struct {
	rec            repo.Record
	textLower      string
	textChars      []string
	textTokens     map[string]struct{}
	keywordSet     map[string]struct{}
	keywordsJoined string
}

func indexRecord(rec repo.Record) indexedRecord {
	textLower := strings.ToLower(rec.QuestionText)
	keywordSet := rec.KeywordSet()

	joined := make([]string, 0, len(keywordSet))
	for kw := range keywordSet {
		joined = append(joined, kw)
	}
	sort.Strings(joined)

	return indexedRecord{
		rec:            rec,
		textLower:      textLower,
		textChars:      splitChars(textLower),
		textTokens:     tokenSet(strings.Fields(cleanText(rec.QuestionText))),
		keywordSet:     keywordSet,
		keywordsJoined: strings.Join(joined, " "),
	}
}

// Score holds the computed relevance of one record for one query, plus
// the diagnostics surfaced by Explain.
type Score struct {
	Type      QuestionType `json:"question_type"`
	Value     float64      `json:"score"`
	Threshold float64      `json:"threshold"`

	CriticalMatches   []string `json:"critical_terms_matched,omitempty"`
	CommandMatches    []string `json:"command_matches,omitempty"`
	CommonKeywords    []string `json:"common_keywords,omitempty"`
	EmbeddingMatches  int      `json:"embedding_term_matches"`
	FirstParaOverlap  int      `json:"first_para_overlap"`
	ImportantBonus    float64  `json:"important_keyword_bonus"`
	ContextScore      float64  `json:"context_score"`
	CommandScore      float64  `json:"command_score"`
	EffectiveKeywords float64  `json:"effective_keyword_count"`
	ParaSimilarity    float64  `json:"first_para_similarity"`
	QuerySimilarity   float64  `json:"full_query_similarity"`
	KeywordRatio      float64  `json:"keyword_ratio"`
	CriticalRatio     float64  `json:"critical_ratio"`
	GroupBoost        float64  `json:"group_boost"`
	CompanyBonus      float64  `json:"company_bonus"`
	ThresholdCut      bool     `json:"threshold_cut"`
}

// WouldMatch reports whether this score clears its own threshold.
func (s Score) WouldMatch() bool {
	return s.Value > s.Threshold
}

// scoreRecord computes the composite score for one record. The boolean
// result is false when the record fails every gate; gated records are
// skipped without computing similarities.
func scoreRecord(q *QueryContext, ir *indexedRecord, topics map[int]Topic, w Weights) (Score, bool) {
	var s Score

	// Critical and embedding term matches count substring hits in the
	// record text as well as exact keyword-set membership.
	for _, term := range sortedSet(q.CriticalTerms) {
		if termHits(ir, term) {
			s.CriticalMatches = append(s.CriticalMatches, term)
		}
	}
	for term := range q.EmbeddingTerms {
		if termHits(ir, term) {
			s.EmbeddingMatches++
		}
	}
	criticalMatches := len(s.CriticalMatches)

	var common []string
	for tok := range q.Tokens {
		if _, ok := ir.keywordSet[tok]; ok {
			common = append(common, tok)
		} else if _, ok := ir.textTokens[tok]; ok {
			common = append(common, tok)
		}
	}
	sort.Strings(common)
	s.CommonKeywords = common

	for tok := range q.FirstParaTokens {
		if recordHasKeyword(ir, tok) {
			s.FirstParaOverlap++
		}
	}

	for tok := range q.ImportantTokens {
		if recordHasKeyword(ir, tok) {
			s.ImportantBonus += w.ImportantKeywordBonus
		}
	}

	for _, cmd := range q.Commands {
		if strings.Contains(ir.textLower, strings.ToLower(cmd)) {
			s.CommandMatches = append(s.CommandMatches, cmd)
			s.CommandScore += w.CommandPerMatch
		}
	}

	// Context score: each active flag contributes when the record's topic
	// vocabulary overlaps the record's own keywords (joined-string test).
	topic, hasTopic := topics[ir.rec.GroupID]
	topicShares := false
	if hasTopic {
		for _, term := range topic.Terms {
			if strings.Contains(ir.keywordsJoined, term) {
				topicShares = true
				break
			}
		}
	}
	if topicShares {
		for _, rule := range contextRules {
			if q.Contexts[rule.Name] {
				s.ContextScore += w.ContextPerFlag
			}
		}
	}

	s.EffectiveKeywords = float64(len(common)+s.FirstParaOverlap) +
		2*float64(criticalMatches) + s.ImportantBonus

	isEmbedding := s.EmbeddingMatches >= 2
	isCommand := len(q.Commands) > 0 && criticalMatches >= 1
	isSpecialized := s.ContextScore > 0

	// Gates. Floors relax under a specialized context.
	keywordFloor := w.KeywordFloor
	criticalFloor := w.CriticalFloor
	if isSpecialized {
		keywordFloor = w.RelaxedKeywordFloor
		criticalFloor = w.RelaxedCriticalFloor
	}
	if !(s.EffectiveKeywords > keywordFloor ||
		criticalMatches >= criticalFloor ||
		isEmbedding || isCommand || isSpecialized) {
		return s, false
	}

	s.ParaSimilarity = ratio(q.CleanedFirstPara, ir.textChars)
	s.QuerySimilarity = ratio(truncateRunes(q.Cleaned, w.QueryWindow), ir.textChars)

	s.KeywordRatio = s.EffectiveKeywords / float64(max(1, len(q.Tokens)))
	if len(q.CriticalTerms) > 0 {
		s.CriticalRatio = float64(criticalMatches) / float64(len(q.CriticalTerms))
	}

	var f Formula
	var extra float64
	switch {
	case isEmbedding:
		s.Type = TypeEmbedding
		f = w.Embedding
	case isCommand:
		s.Type = TypeCommand
		f = w.Command
		extra = s.CommandScore
	case isSpecialized:
		s.Type = TypeSpecialized
		f = w.Specialized
		extra = s.ContextScore
	default:
		s.Type = TypeGeneral
		f = w.General
	}

	s.Value = f.Keyword*s.KeywordRatio + f.Critical*s.CriticalRatio +
		f.Para*s.ParaSimilarity + f.Query*s.QuerySimilarity + extra
	s.Threshold = f.Threshold

	// Group boosts: an explicit assignment hint outranks an inferred one.
	s.GroupBoost = 1.0
	if q.AssignmentHint != 0 {
		if ir.rec.GroupID == q.AssignmentHint {
			s.GroupBoost = w.ExplicitGroupBoost
		}
	} else if hasTopic {
		shared := 0
		for _, term := range topic.Terms {
			if _, ok := q.CriticalTerms[term]; ok {
				shared++
			}
		}
		if shared >= 2 {
			s.GroupBoost = w.ImplicitGroupBoost
		}
	}
	s.Value *= s.GroupBoost

	if q.Contexts[ContextImageProcessing] || strings.Contains(q.Cleaned, "transcribe") {
		s.Threshold *= w.ThresholdCut
		s.ThresholdCut = true
	}

	if q.CompanyHint != "" && strings.Contains(ir.textLower, strings.ToLower(q.CompanyHint)) {
		s.CompanyBonus = w.CompanyBonus
		s.Value += s.CompanyBonus
	}

	return s, true
}

// termHits reports whether a critical term appears in the record's
// question text or keyword set.
func termHits(ir *indexedRecord, term string) bool {
	if strings.Contains(ir.textLower, term) {
		return true
	}
	_, ok := ir.keywordSet[term]
	return ok
}

// recordHasKeyword checks the union of precomputed keywords and question
// text tokens.
func recordHasKeyword(ir *indexedRecord, tok string) bool {
	if _, ok := ir.keywordSet[tok]; ok {
		return true
	}
	_, ok := ir.textTokens[tok]
	return ok
}

// ratio computes the 2*M/T sequence-similarity ratio over characters,
// matching difflib's SequenceMatcher normalization.
func ratio(s string, chars []string) float64 {
	return difflib.NewMatcher(splitChars(s), chars).Ratio()
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
