package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Table provides generic single-row persistence for one entity table. Every
// operation is a single statement; there are no multi-row transactions
// anywhere in the data layer.
type Table[T any] struct {
	db        *sqlx.DB
	name      string
	insert    string
	patchable map[string]struct{}
}

// NewTable binds a generic repository to a table. insert is the named
// INSERT statement for the record type; patchable lists the columns that
// UpdateFields may touch; patch keys outside the set are silently dropped.
func NewTable[T any](db *sqlx.DB, name, insert string, patchable []string) *Table[T] {
	cols := make(map[string]struct{}, len(patchable))
	for _, c := range patchable {
		cols[c] = struct{}{}
	}
	return &Table[T]{db: db, name: name, insert: insert, patchable: cols}
}

// Get fetches a record by id. A malformed or unknown id yields (nil, nil)
// so callers surface a uniform not-found outcome instead of a bad request.
func (t *Table[T]) Get(ctx context.Context, id string) (*T, error) {
	if !ValidID(id) {
		return nil, nil
	}
	var rec T
	err := t.db.GetContext(ctx, &rec, fmt.Sprintf("SELECT * FROM %s WHERE id = $1", t.name), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", t.name, err)
	}
	return &rec, nil
}

// List returns a window of records in insertion order (newest first).
func (t *Table[T]) List(ctx context.Context, offset, limit int) ([]T, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	recs := []T{}
	query := fmt.Sprintf("SELECT * FROM %s ORDER BY created_at DESC LIMIT %d OFFSET %d", t.name, limit, offset)
	if err := t.db.SelectContext(ctx, &recs, query); err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}
	return recs, nil
}

// Create inserts the record using the configured named statement.
func (t *Table[T]) Create(ctx context.Context, rec *T) error {
	if _, err := t.db.NamedExecContext(ctx, t.insert, rec); err != nil {
		return fmt.Errorf("create %s: %w", t.name, err)
	}
	return nil
}

// UpdateFields re-sets only the patch keys that are also patchable columns;
// unknown keys are dropped without error. updated_at is always bumped.
func (t *Table[T]) UpdateFields(ctx context.Context, id string, patch map[string]interface{}) error {
	if !ValidID(id) {
		return nil
	}
	cols := make([]string, 0, len(patch))
	args := map[string]interface{}{"id": id, "updated_at": time.Now().UTC()}
	for k, v := range patch {
		if _, ok := t.patchable[k]; !ok {
			continue
		}
		cols = append(cols, k)
		args[k] = v
	}
	if len(cols) == 0 {
		return nil
	}
	sort.Strings(cols)
	sets := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		sets = append(sets, fmt.Sprintf("%s = :%s", c, c))
	}
	sets = append(sets, "updated_at = :updated_at")
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = :id", t.name, strings.Join(sets, ", "))
	if _, err := t.db.NamedExecContext(ctx, query, args); err != nil {
		return fmt.Errorf("update %s: %w", t.name, err)
	}
	return nil
}

// Delete removes a record and returns the deleted row, or (nil, nil) when
// the id is malformed or unknown.
func (t *Table[T]) Delete(ctx context.Context, id string) (*T, error) {
	rec, err := t.Get(ctx, id)
	if err != nil || rec == nil {
		return nil, err
	}
	if _, err := t.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", t.name), id); err != nil {
		return nil, fmt.Errorf("delete %s: %w", t.name, err)
	}
	return rec, nil
}

// ValidID reports whether id is a well-formed record identifier.
func ValidID(id string) bool {
	return uuid.Validate(id) == nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
