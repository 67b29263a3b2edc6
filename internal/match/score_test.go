package match

import (
	"testing"

	"github.com/answerbank/answerbank/internal/repo"
)

func commandRecord() repo.Record {
	return repo.Record{
		GroupID: 1, ItemID: 1,
		QuestionText: "What command shows hidden files in the terminal? Use `ls -a` to list all files.",
		AnswerText:   "ls -a",
		Keywords:     []string{"command", "shows", "hidden", "files", "terminal", "list"},
	}
}

func embeddingRecord() repo.Record {
	return repo.Record{
		GroupID: 3, ItemID: 2,
		QuestionText: "Write a python function to calculate cosine similarity between embedding vector pairs and return the highest.",
		AnswerText:   "use the dot product over normalized vectors",
		Keywords:     []string{"python", "function", "cosine", "similarity", "embedding", "vector", "pairs", "highest"},
	}
}

func scrapeRecord() repo.Record {
	return repo.Record{
		GroupID: 4, ItemID: 1,
		QuestionText: "Scrape the IMDB rating for the top movies and output JSON.",
		AnswerText:   "fetch the IMDB page and parse the rating span",
		Keywords:     []string{"scrape", "imdb", "rating", "movies", "json"},
	}
}

func scoreOne(t *testing.T, query string, rec repo.Record) (Score, bool) {
	t.Helper()
	q := ExtractQuery(query, DefaultTopics())
	ir := indexRecord(rec)
	return scoreRecord(q, &ir, topicTable(DefaultTopics()), DefaultWeights())
}

func TestScoreCommandClassification(t *testing.T) {
	s, ok := scoreOne(t, "What command shows hidden files? Use `ls -a`", commandRecord())
	if !ok {
		t.Fatalf("record should clear the gate")
	}
	if s.Type != TypeCommand {
		t.Fatalf("expected command classification, got %s", s.Type)
	}
	if s.CommandScore <= 0 {
		t.Fatalf("expected nonzero command score, got %.3f", s.CommandScore)
	}
	if !s.WouldMatch() {
		t.Fatalf("expected score %.3f to clear threshold %.3f", s.Value, s.Threshold)
	}
}

func TestScoreEmbeddingPriority(t *testing.T) {
	// The query carries a command AND enough embedding vocabulary; the
	// embedding formula must win the classification.
	query := "Use `python` to write a function to calculate cosine similarity between embedding pairs"
	s, ok := scoreOne(t, query, embeddingRecord())
	if !ok {
		t.Fatalf("record should clear the gate")
	}
	if s.Type != TypeEmbedding {
		t.Fatalf("embedding outranks command classification, got %s", s.Type)
	}
	if s.EmbeddingMatches < 2 {
		t.Fatalf("expected >=2 embedding term matches, got %d", s.EmbeddingMatches)
	}
}

func TestScoreGateRejectsNoOverlap(t *testing.T) {
	_, ok := scoreOne(t, "completely unrelated words here", embeddingRecord())
	if ok {
		t.Fatalf("record with no matching signal must fail the gate")
	}
}

func TestScoreCriticalTermMonotonicity(t *testing.T) {
	rec := repo.Record{
		GroupID: 1, ItemID: 9,
		QuestionText: "alpha beta gamma delta",
		AnswerText:   "x",
		Keywords:     []string{"alpha", "beta", "gamma", "delta"},
	}
	ir := indexRecord(rec)
	topics := topicTable(DefaultTopics())
	w := DefaultWeights()

	base := &QueryContext{
		Cleaned:          "alpha beta gamma",
		CleanedFirstPara: "alpha beta gamma",
		Tokens:           tokenSet([]string{"alpha", "beta", "gamma"}),
		FirstParaTokens:  tokenSet([]string{"alpha", "beta", "gamma"}),
		ImportantTokens:  map[string]struct{}{},
		EmbeddingTerms:   map[string]struct{}{},
		Contexts:         map[string]bool{},
	}

	// Same number of critical terms, one more of them matching the record.
	base.CriticalTerms = map[string]struct{}{"alpha": {}, "zzz": {}}
	low, ok := scoreRecord(base, &ir, topics, w)
	if !ok {
		t.Fatalf("low-match query should still clear the gate")
	}

	base.CriticalTerms = map[string]struct{}{"alpha": {}, "beta": {}}
	high, ok := scoreRecord(base, &ir, topics, w)
	if !ok {
		t.Fatalf("high-match query should clear the gate")
	}

	if high.Value < low.Value {
		t.Fatalf("more critical matches must never lower the score: %.4f < %.4f", high.Value, low.Value)
	}
}

func TestScoreExplicitAssignmentBoost(t *testing.T) {
	s, ok := scoreOne(t, "Assignment 4: scrape the imdb rating", scrapeRecord())
	if !ok {
		t.Fatalf("record should clear the gate")
	}
	if s.GroupBoost != 1.2 {
		t.Fatalf("expected explicit group boost 1.2, got %.2f", s.GroupBoost)
	}
}

func TestScoreImplicitTopicBoost(t *testing.T) {
	s, ok := scoreOne(t, "scrape the imdb rating please", scrapeRecord())
	if !ok {
		t.Fatalf("record should clear the gate")
	}
	if s.GroupBoost != 1.15 {
		t.Fatalf("expected implicit group boost 1.15, got %.2f", s.GroupBoost)
	}
}

func TestScoreThresholdCutForImageQuestions(t *testing.T) {
	rec := repo.Record{
		GroupID: 5, ItemID: 3,
		QuestionText: "Reconstruct the scrambled image from its pieces.",
		AnswerText:   "reassemble by offsets",
		Keywords:     []string{"reconstruct", "scrambled", "image", "pieces"},
	}
	s, ok := scoreOne(t, "Transcribe the scrambled image pieces", rec)
	if !ok {
		t.Fatalf("record should clear the gate")
	}
	if !s.ThresholdCut {
		t.Fatalf("image-processing context must cut the threshold")
	}
}

func TestScoreCompanyBonus(t *testing.T) {
	rec := repo.Record{
		GroupID: 5, ItemID: 7,
		QuestionText: "RetailFlow is analyzing sales margins. Clean the excel sheet of sales data.",
		AnswerText:   "normalize the margin column",
		Keywords:     []string{"retailflow", "sales", "margin", "clean", "excel"},
	}
	s, ok := scoreOne(t, "RetailFlow is a retailer. Clean the excel sales margin data.", rec)
	if !ok {
		t.Fatalf("record should clear the gate")
	}
	if s.CompanyBonus != 0.05 {
		t.Fatalf("expected company bonus 0.05, got %.3f", s.CompanyBonus)
	}
}

func TestScoreContextScorePerFlag(t *testing.T) {
	rec := scrapeRecord()
	// "scrape ... html ... url" fires web_scraping; "json parse" fires
	// json_processing. The record's topic vocabulary overlaps its own
	// keywords, so each active flag contributes 0.3.
	s, ok := scoreOne(t, "scrape the html from the url and parse the json", rec)
	if !ok {
		t.Fatalf("record should clear the gate")
	}
	if s.ContextScore < 0.6 {
		t.Fatalf("expected at least two context flags contributing, got %.2f", s.ContextScore)
	}
}
