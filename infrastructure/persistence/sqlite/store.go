// Package sqlite provides a SQLite-backed StringRepository.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"string-analyzer/domain/core/entities"
	"string-analyzer/domain/core/specifications"
	"string-analyzer/domain/core/valueobjects"
	"string-analyzer/infrastructure/persistence/sqlite/migrations"
	pkgerrors "string-analyzer/pkg/errors"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const selectColumns = `SELECT id, value, length, is_palindrome, unique_characters,
       word_count, character_frequency_map, created_at
  FROM analyzed_strings`

// Store persists analyzed strings in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMicros(value time.Time) int64 {
	return value.UTC().UnixMicro()
}

func fromMicros(value int64) time.Time {
	return time.UnixMicro(value).UTC()
}

// Open opens a SQLite store at path and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	sqlDB, _, err := openMigrated(ctx, path)
	if err != nil {
		return nil, err
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Migrate brings the database at path up to date and returns the names of
// the migrations it applied
func Migrate(ctx context.Context, path string) ([]string, error) {
	sqlDB, applied, err := openMigrated(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Close(); err != nil {
		return applied, fmt.Errorf("close sqlite db: %w", err)
	}
	return applied, nil
}

func openMigrated(ctx context.Context, path string) (*sql.DB, []string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	applied, err := ApplyMigrations(ctx, sqlDB, migrations.FS, ".")
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, applied, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Create inserts one record. A second insert of the same value is a conflict.
func (s *Store) Create(ctx context.Context, str *entities.AnalyzedString) error {
	props := str.Properties()
	freq, err := json.Marshal(props.CharacterFrequencyMap)
	if err != nil {
		return pkgerrors.NewInternalError("failed to encode character frequency map").WithCause(err)
	}

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO analyzed_strings (
		   id, value, length, is_palindrome, unique_characters,
		   word_count, character_frequency_map, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		str.ID().String(),
		str.Value(),
		props.Length,
		props.IsPalindrome,
		props.UniqueCharacters,
		props.WordCount,
		string(freq),
		toMicros(str.CreatedAt()),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return entities.NewStringExistsError(str.ID())
		}
		return pkgerrors.NewDatabaseError("create string", err)
	}
	return nil
}

// GetByID returns one record by its content hash.
func (s *Store) GetByID(ctx context.Context, id valueobjects.StringID) (*entities.AnalyzedString, error) {
	row := s.sqlDB.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id.String())

	str, err := scanString(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.NewStringNotFoundError(id)
		}
		return nil, pkgerrors.NewDatabaseError("get string", err)
	}
	return str, nil
}

// List returns every record matching filter ordered by creation time, then ID.
func (s *Store) List(ctx context.Context, filter specifications.Filter) ([]*entities.AnalyzedString, error) {
	where, args := buildWhere(filter)

	query := selectColumns
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY created_at, id"

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list strings", err)
	}
	defer rows.Close()

	out := make([]*entities.AnalyzedString, 0)
	for rows.Next() {
		str, err := scanString(rows)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("scan string", err)
		}
		out = append(out, str)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError("list strings", err)
	}
	return out, nil
}

// Delete removes one record by its content hash.
func (s *Store) Delete(ctx context.Context, id valueobjects.StringID) error {
	res, err := s.sqlDB.ExecContext(ctx, "DELETE FROM analyzed_strings WHERE id = ?", id.String())
	if err != nil {
		return pkgerrors.NewDatabaseError("delete string", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return pkgerrors.NewDatabaseError("delete string", err)
	}
	if n == 0 {
		return entities.NewStringNotFoundError(id)
	}
	return nil
}

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.sqlDB.PingContext(ctx); err != nil {
		return pkgerrors.NewDatabaseError("ping", err)
	}
	return nil
}

// buildWhere translates filter into a SQL predicate. instr keeps the
// character test case-sensitive, unlike LIKE.
func buildWhere(filter specifications.Filter) (string, []any) {
	var clauses []string
	var args []any

	if filter.IsPalindrome != nil {
		clauses = append(clauses, "is_palindrome = ?")
		args = append(args, *filter.IsPalindrome)
	}
	if filter.MinLength != nil {
		clauses = append(clauses, "length >= ?")
		args = append(args, *filter.MinLength)
	}
	if filter.MaxLength != nil {
		clauses = append(clauses, "length <= ?")
		args = append(args, *filter.MaxLength)
	}
	if filter.WordCount != nil {
		clauses = append(clauses, "word_count = ?")
		args = append(args, *filter.WordCount)
	}
	if filter.ContainsCharacter != nil {
		clauses = append(clauses, "instr(value, ?) > 0")
		args = append(args, *filter.ContainsCharacter)
	}

	return strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanString(row rowScanner) (*entities.AnalyzedString, error) {
	var (
		id        string
		value     string
		props     valueobjects.Properties
		freq      string
		createdAt int64
	)
	if err := row.Scan(
		&id,
		&value,
		&props.Length,
		&props.IsPalindrome,
		&props.UniqueCharacters,
		&props.WordCount,
		&freq,
		&createdAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(freq), &props.CharacterFrequencyMap); err != nil {
		return nil, fmt.Errorf("decode character frequency map: %w", err)
	}

	sid, err := valueobjects.StringIDFromHash(id)
	if err != nil {
		return nil, err
	}
	props.SHA256Hash = sid.String()

	return entities.ReconstructAnalyzedString(sid, value, props, fromMicros(createdAt))
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "analyzed_strings.id")
}
