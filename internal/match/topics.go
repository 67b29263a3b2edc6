package match

// Topic is one assignment group with its domain vocabulary.
// The vocabulary biases both term extraction and scoring toward the
// right group; it is static configuration, never mutated at runtime.
type Topic struct {
	ID    int
	Name  string
	Terms []string
}

// DefaultTopics returns the built-in topic table for the five course
// assignment groups.
func DefaultTopics() []Topic {
	return []Topic{
		{
			ID:   1,
			Name: "Developer Tools",
			Terms: []string{
				"code -s", "vs code", "visual studio", "httpie", "prettier", "google sheets",
				"excel", "devtools", "wednesdays", "zip", "json", "sort", "multi-cursor",
				"div", "css", "unicode", "github", "sha256sum", "file", "sql", "query",
			},
		},
		{
			ID:   2,
			Name: "Deployment & Cloud",
			Terms: []string{
				"markdown", "compress", "github pages", "google colab", "image", "vercel",
				"github action", "docker hub", "fastapi", "llamafile", "llm", "ngrok",
			},
		},
		{
			ID:   3,
			Name: "LLM Integration",
			Terms: []string{
				"sentiment", "httpx", "openai", "token", "response_format", "json_schema",
				"vision", "image_url", "embedding", "cosine", "similarity", "vector",
				"function", "jailbreak", "prompt",
			},
		},
		{
			ID:   4,
			Name: "Web Scraping",
			Terms: []string{
				"scrape", "espn", "imdb", "rating", "wikipedia", "outline", "bbc", "weather",
				"nominatim", "latitude", "hacker news", "github user", "pdf", "extract",
				"convert", "markdown",
			},
		},
		{
			ID:   5,
			Name: "Data Cleaning",
			Terms: []string{
				"clean", "excel", "sales", "margin", "student", "marks", "unique", "apache", "log",
				"request", "download", "bytes", "json", "parse", "nested", "duckdb", "sql",
				"transcribe", "reconstruct", "image",
			},
		},
	}
}

// topicTable indexes topics by group ID for scoring lookups.
func topicTable(topics []Topic) map[int]Topic {
	table := make(map[int]Topic, len(topics))
	for _, t := range topics {
		table[t.ID] = t
	}
	return table
}

// Context flag names. Explain output and tests refer to flags by these
// names, so they are part of the observable surface.
const (
	ContextDeveloperTools  = "developer_tools"
	ContextDataCleaning    = "data_cleaning"
	ContextWebScraping     = "web_scraping"
	ContextLLMIntegration  = "llm_integration"
	ContextLogAnalysis     = "log_analysis"
	ContextJSONProcessing  = "json_processing"
	ContextImageProcessing = "image_processing"
	ContextSQLQuery        = "sql_query"
	ContextCloudDeployment = "cloud_deployment"
)

// contextRules maps each boolean context flag to the keyword list that
// activates it. A flag fires when any keyword appears in the cleaned query.
var contextRules = []struct {
	Name  string
	Terms []string
}{
	{ContextDeveloperTools, []string{"code", "vs code", "command", "terminal", "bash", "shell"}},
	{ContextDataCleaning, []string{"clean", "standardize", "normalize", "extract"}},
	{ContextWebScraping, []string{"scrape", "extract", "web", "html", "url"}},
	{ContextLLMIntegration, []string{"openai", "gpt", "llm", "embedding", "sentiment"}},
	{ContextLogAnalysis, []string{"log", "apache", "request", "get", "ip"}},
	{ContextJSONProcessing, []string{"json", "parse", "nested", "key"}},
	{ContextImageProcessing, []string{"image", "reconstruct", "scrambled"}},
	{ContextSQLQuery, []string{"sql", "duckdb", "query"}},
	{ContextCloudDeployment, []string{"deploy", "vercel", "github pages", "docker"}},
}

// embeddingVocab is the fixed vocabulary that marks a question as being
// about embeddings / similarity computation.
var embeddingVocab = []string{
	"cosine", "similarity", "embedding", "vector", "numpy", "calculate",
	"function", "python", "most_similar", "matrix", "array", "normalize",
	"algorithm", "code", "implementation", "dictionary", "pairs", "highest",
}

// fileExtensions are the attachment formats whose bare names become
// critical terms when ".ext" appears in the query.
var fileExtensions = []string{
	"csv", "json", "txt", "md", "html", "pdf", "xlsx", "db", "sql",
	"py", "js", "css", "svg", "png", "jpg",
}
