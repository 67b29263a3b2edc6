package match

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	commandRE      = regexp.MustCompile("`([^`]+)`")
	commandSplitRE = regexp.MustCompile(`[\s@|-]`)
	// Unicode-aware word class: accented and non-Latin letters survive
	// cleaning instead of being blanked into token boundaries.
	nonWordRE = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	assignmentRE   = regexp.MustCompile(`(?i)assignment\s*(\d+)`)
	companyRE      = regexp.MustCompile(`([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*)\s+(?:is|Inc\.|Corp\.|LLC|Ltd\.)`)
	urlRE          = regexp.MustCompile(`https?://\S+`)
	hexRunRE       = regexp.MustCompile(`(?i)[0-9a-f]{10,}`)
)

// firstParagraphLimit caps how much of the leading paragraph is used for
// paragraph-level matching.
const firstParagraphLimit = 300

// QueryContext holds everything derived from one raw query. It is
// recomputed per match call and never persisted.
type QueryContext struct {
	Raw              string
	Cleaned          string
	CleanedFirstPara string

	Tokens          map[string]struct{}
	FirstParaTokens map[string]struct{}
	ImportantTokens map[string]struct{}

	Commands       []string
	CriticalTerms  map[string]struct{}
	EmbeddingTerms map[string]struct{}
	Contexts       map[string]bool
	HexRuns        []string

	AssignmentHint int // 0 = no explicit hint
	CompanyHint    string
}

// ActiveContexts returns the names of fired context flags, sorted.
func (q *QueryContext) ActiveContexts() []string {
	var active []string
	for name, on := range q.Contexts {
		if on {
			active = append(active, name)
		}
	}
	sort.Strings(active)
	return active
}

// ExtractQuery derives a QueryContext from a raw query string.
// Pure text analysis: deterministic, side-effect free, no I/O.
func ExtractQuery(raw string, topics []Topic) *QueryContext {
	lowerRaw := strings.ToLower(raw)

	firstPara := strings.TrimSpace(strings.SplitN(raw, "\n\n", 2)[0])
	firstPara = truncateRunes(firstPara, firstParagraphLimit)

	q := &QueryContext{
		Raw:              raw,
		Cleaned:          cleanText(raw),
		CleanedFirstPara: cleanText(firstPara),
		CriticalTerms:    map[string]struct{}{},
		EmbeddingTerms:   map[string]struct{}{},
		Contexts:         map[string]bool{},
	}

	tokenList := strings.Fields(q.Cleaned)
	q.Tokens = tokenSet(tokenList)
	q.FirstParaTokens = tokenSet(strings.Fields(q.CleanedFirstPara))

	// Tokens repeated in the query carry extra matching weight.
	freq := map[string]int{}
	for _, tok := range tokenList {
		freq[tok]++
	}
	q.ImportantTokens = map[string]struct{}{}
	for tok, n := range freq {
		if n > 1 && len(tok) > 3 {
			q.ImportantTokens[tok] = struct{}{}
		}
	}

	// Inline-code commands, plus their >2-char parts as critical terms.
	for _, m := range commandRE.FindAllStringSubmatch(raw, -1) {
		cmd := m[1]
		q.Commands = append(q.Commands, cmd)
		for _, part := range commandSplitRE.Split(cmd, -1) {
			if len(part) > 2 {
				q.CriticalTerms[strings.ToLower(part)] = struct{}{}
			}
		}
	}

	if m := assignmentRE.FindStringSubmatch(raw); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			q.AssignmentHint = n
		}
	}

	if m := companyRE.FindStringSubmatch(raw); m != nil {
		q.CompanyHint = m[1]
	}

	for _, ext := range fileExtensions {
		if strings.Contains(lowerRaw, "."+ext) {
			q.CriticalTerms[ext] = struct{}{}
		}
	}

	for _, u := range urlRE.FindAllString(raw, -1) {
		parts := strings.Split(u, "/")
		if len(parts) > 2 && parts[2] != "" {
			label := strings.ToLower(strings.SplitN(parts[2], ".", 2)[0])
			if label != "" {
				q.CriticalTerms[label] = struct{}{}
			}
		}
	}

	// Topic vocabulary. An explicit, known assignment hint narrows the scan
	// to that topic; otherwise every topic's list is checked.
	scan := topics
	if q.AssignmentHint != 0 {
		for _, t := range topics {
			if t.ID == q.AssignmentHint {
				scan = []Topic{t}
				break
			}
		}
	}
	for _, t := range scan {
		for _, term := range t.Terms {
			if termPresent(q.Cleaned, tokenList, term) {
				q.CriticalTerms[term] = struct{}{}
			}
		}
	}

	// A long hex run usually means the question quotes a digest output.
	if runs := hexRunRE.FindAllString(raw, -1); len(runs) > 0 {
		q.HexRuns = runs
		q.CriticalTerms["hash"] = struct{}{}
		q.CriticalTerms["checksum"] = struct{}{}
		q.CriticalTerms["sha256sum"] = struct{}{}
	}

	for _, term := range embeddingVocab {
		if strings.Contains(q.Cleaned, term) {
			q.EmbeddingTerms[term] = struct{}{}
			q.CriticalTerms[term] = struct{}{}
		}
	}

	for _, rule := range contextRules {
		fired := false
		for _, term := range rule.Terms {
			if strings.Contains(q.Cleaned, term) {
				fired = true
				break
			}
		}
		q.Contexts[rule.Name] = fired
	}

	return q
}

// cleanText lowercases s and replaces every non-word, non-space character
// with a space.
func cleanText(s string) string {
	return nonWordRE.ReplaceAllString(strings.ToLower(s), " ")
}

// termPresent reports whether a vocabulary term occurs in the cleaned
// query. Single-word terms match as substrings; multi-word terms use a
// relaxed phrase match, requiring the words in order but allowing
// arbitrary text between them.
func termPresent(cleaned string, tokens []string, term string) bool {
	words := strings.Fields(term)
	if len(words) <= 1 {
		return strings.Contains(cleaned, term)
	}
	i := 0
	for _, tok := range tokens {
		if tok == words[i] {
			i++
			if i == len(words) {
				return true
			}
		}
	}
	return false
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
