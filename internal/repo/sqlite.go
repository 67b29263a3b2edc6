package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

// LoadSQLite loads the repository from a SQLite database written by the
// corpus builder. Like LoadJSON, a missing file yields an empty repository
// rather than an error.
func LoadSQLite(ctx context.Context, path string) (*Repository, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Repository{source: path}, nil
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus db %s: %w", path, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT assignment_number, question_number, question_text, answer_text, keywords
		FROM questions
		ORDER BY assignment_number, question_number`)
	if err != nil {
		return nil, fmt.Errorf("querying corpus db %s: %w", path, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var keywordsJSON string
		if err := rows.Scan(&rec.GroupID, &rec.ItemID, &rec.QuestionText, &rec.AnswerText, &keywordsJSON); err != nil {
			return nil, fmt.Errorf("scanning corpus row: %w", err)
		}
		if keywordsJSON != "" {
			if err := json.Unmarshal([]byte(keywordsJSON), &rec.Keywords); err != nil {
				return nil, fmt.Errorf("parsing keywords for %d.%d: %w", rec.GroupID, rec.ItemID, err)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading corpus rows: %w", err)
	}

	return &Repository{records: records, source: path}, nil
}
