// Package corpus builds the question repository from assignment markdown
// files. Each "## " section holding a **Question:** / **Answer:** pair
// becomes one record; the assignment number comes from the filename. The
// builder also flags near-duplicate questions so curation mistakes surface
// at build time instead of as flaky matches later.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/answerbank/answerbank/internal/repo"
)

var (
	assignmentFileRE = regexp.MustCompile(`(?i)assignment(\d+)`)
	nonWordRE        = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	sectionRE        = regexp.MustCompile(`(?m)^## `)
)

// Questions closer than this are probably the same question pasted twice.
const nearDuplicateThreshold = 0.92

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "if": {},
	"on": {}, "in": {}, "with": {}, "to": {}, "from": {}, "is": {}, "are": {},
	"what": {}, "how": {}, "when": {}, "where": {}, "why": {}, "who": {},
}

// Warning flags a near-duplicate question pair found during a build.
type Warning struct {
	GroupA, ItemA int
	GroupB, ItemB int
	Similarity    float64
}

func (w Warning) String() string {
	return fmt.Sprintf("questions %d.%d and %d.%d are %.0f%% similar",
		w.GroupA, w.ItemA, w.GroupB, w.ItemB, w.Similarity*100)
}

// Build parses the given markdown files into repository records. Missing
// files are skipped with a warning on stderr, matching the rest of the
// pipeline's tolerance for partial corpora.
func Build(paths []string) ([]repo.Record, []Warning, error) {
	var records []repo.Record

	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintf(os.Stderr, "corpus: file not found, skipping: %s\n", path)
				continue
			}
			return nil, nil, fmt.Errorf("reading %s: %w", path, err)
		}

		group := assignmentNumber(path)
		records = append(records, parseMarkdown(string(content), group)...)
	}

	return records, findNearDuplicates(records), nil
}

func assignmentNumber(path string) int {
	m := assignmentFileRE.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// parseMarkdown splits a file into "## " sections and extracts one record
// per section carrying both markers. Item numbering counts every titled
// section, including ones without a usable pair, so numbers stay stable
// when a question is temporarily commented out.
func parseMarkdown(content string, group int) []repo.Record {
	var records []repo.Record

	itemNumber := 0
	for _, section := range sectionRE.Split(content, -1) {
		if strings.TrimSpace(section) == "" {
			continue
		}

		lines := strings.Split(section, "\n")
		if strings.TrimSpace(lines[0]) != "" {
			itemNumber++
		}

		var questionLines, answerLines []string
		inAnswer := false
		for _, line := range lines[1:] {
			switch {
			case strings.HasPrefix(line, "**Question:**"):
				inAnswer = false
				questionLines = append(questionLines, strings.TrimSpace(strings.TrimPrefix(line, "**Question:**")))
			case strings.HasPrefix(line, "**Answer:**"):
				inAnswer = true
			case inAnswer:
				answerLines = append(answerLines, line)
			default:
				questionLines = append(questionLines, line)
			}
		}

		question := strings.TrimSpace(strings.Join(questionLines, "\n"))
		answer := strings.TrimSpace(strings.Join(answerLines, "\n"))
		if question == "" || answer == "" {
			continue
		}

		records = append(records, repo.Record{
			GroupID:      group,
			ItemID:       itemNumber,
			QuestionText: question,
			AnswerText:   answer,
			Keywords:     ExtractKeywords(question),
		})
	}

	return records
}

// ExtractKeywords derives the keyword list stored with each record:
// lowercase tokens with punctuation stripped, stop words and short words
// dropped, deduplicated and sorted.
func ExtractKeywords(text string) []string {
	cleaned := nonWordRE.ReplaceAllString(strings.ToLower(text), " ")

	seen := map[string]struct{}{}
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		seen[word] = struct{}{}
	}

	keywords := make([]string, 0, len(seen))
	for w := range seen {
		keywords = append(keywords, w)
	}
	sort.Strings(keywords)
	return keywords
}

// findNearDuplicates compares every question pair with Jaro-Winkler
// similarity. Quadratic, but corpora are hundreds of questions, not
// millions.
func findNearDuplicates(records []repo.Record) []Warning {
	var warnings []Warning
	cleaned := make([]string, len(records))
	for i, rec := range records {
		cleaned[i] = strings.ToLower(strings.TrimSpace(rec.QuestionText))
	}

	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			sim, err := edlib.StringsSimilarity(cleaned[i], cleaned[j], edlib.JaroWinkler)
			if err != nil {
				continue
			}
			if float64(sim) >= nearDuplicateThreshold {
				warnings = append(warnings, Warning{
					GroupA: records[i].GroupID, ItemA: records[i].ItemID,
					GroupB: records[j].GroupID, ItemB: records[j].ItemID,
					Similarity: float64(sim),
				})
			}
		}
	}
	return warnings
}
