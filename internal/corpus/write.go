package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/answerbank/answerbank/internal/repo"
)

// WriteJSON writes the records as the JSON corpus the repository loader
// reads. Parent directories are created as needed.
func WriteJSON(path string, records []repo.Record) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding corpus: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WriteSQLite writes the records into a questions table, replacing any
// previous contents. The schema matches what repo.LoadSQLite reads.
func WriteSQLite(ctx context.Context, path string, records []repo.Record) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening corpus db %s: %w", path, err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting corpus tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS questions (
			assignment_number INTEGER NOT NULL,
			question_number   INTEGER NOT NULL,
			question_text     TEXT NOT NULL,
			answer_text       TEXT NOT NULL,
			keywords          TEXT NOT NULL DEFAULT '[]'
		)`); err != nil {
		return fmt.Errorf("creating questions table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM questions`); err != nil {
		return fmt.Errorf("clearing questions table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO questions (assignment_number, question_number, question_text, answer_text, keywords)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		keywords, err := json.Marshal(rec.Keywords)
		if err != nil {
			return fmt.Errorf("encoding keywords for %d.%d: %w", rec.GroupID, rec.ItemID, err)
		}
		if _, err := stmt.ExecContext(ctx, rec.GroupID, rec.ItemID, rec.QuestionText, rec.AnswerText, string(keywords)); err != nil {
			return fmt.Errorf("inserting %d.%d: %w", rec.GroupID, rec.ItemID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing corpus: %w", err)
	}
	return nil
}
