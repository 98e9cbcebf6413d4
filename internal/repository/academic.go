package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/colegio-app/colegio-api/internal/models"
)

// AcademicResolver walks the curriculum hierarchy (mallas -> cursos ->
// estudiantes) as a chain of id-set lookups. Each hop is its own statement;
// an empty intermediate set stops the chain immediately.
type AcademicResolver struct {
	db *sqlx.DB
}

func NewAcademicResolver(db *sqlx.DB) *AcademicResolver {
	return &AcademicResolver{db: db}
}

// SectionIDs resolves the course sections matching the academic filter.
// ok=false means a hop matched nothing and the caller must return an empty
// page without touching the target table.
func (r *AcademicResolver) SectionIDs(ctx context.Context, f models.AcademicFilter) ([]string, bool, error) {
	level := f.Nivel

	var mallaIDs []string
	if f.Grado != "" {
		year, forced, known := f.Grado.SchoolYear()
		if !known {
			return nil, false, nil
		}
		if forced != "" {
			level = forced
		}
		conds := []string{"anio_escolaridad = $1"}
		args := []interface{}{year}
		if level != "" {
			conds = append(conds, fmt.Sprintf("nivel = $%d", len(args)+1))
			args = append(args, level)
		}
		query := "SELECT id FROM mallas WHERE " + strings.Join(conds, " AND ")
		if err := r.db.SelectContext(ctx, &mallaIDs, query, args...); err != nil {
			return nil, false, fmt.Errorf("resolve mallas: %w", err)
		}
		if len(mallaIDs) == 0 {
			return nil, false, nil
		}
	}

	conds := []string{}
	args := []interface{}{}
	add := func(cond string, val interface{}) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if mallaIDs != nil {
		add("malla_id = ANY($%d)", pq.Array(mallaIDs))
	}
	if level != "" {
		add("nivel = $%d", level)
	}
	if f.Turno != "" {
		add("turno = $%d", f.Turno)
	}
	if f.Paralelo != "" {
		add("paralelo = $%d", strings.ToUpper(f.Paralelo))
	}
	if len(conds) == 0 {
		return nil, true, nil
	}

	var ids []string
	query := "SELECT id FROM cursos WHERE " + strings.Join(conds, " AND ")
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, false, fmt.Errorf("resolve cursos: %w", err)
	}
	if len(ids) == 0 {
		return nil, false, nil
	}
	return ids, true, nil
}

// StudentIDs resolves the students enrolled in sections matching the filter.
func (r *AcademicResolver) StudentIDs(ctx context.Context, f models.AcademicFilter) ([]string, bool, error) {
	sectionIDs, ok, err := r.SectionIDs(ctx, f)
	if err != nil || !ok {
		return nil, ok, err
	}
	if sectionIDs == nil {
		return nil, true, nil
	}

	var ids []string
	query := "SELECT id FROM estudiantes WHERE curso_id = ANY($1)"
	if err := r.db.SelectContext(ctx, &ids, query, pq.Array(sectionIDs)); err != nil {
		return nil, false, fmt.Errorf("resolve estudiantes: %w", err)
	}
	if len(ids) == 0 {
		return nil, false, nil
	}
	return ids, true, nil
}

// StudentIDsByText finds students whose names contain the free-text term.
// A purely numeric term is additionally tried as an exact RUDE code.
func (r *AcademicResolver) StudentIDsByText(ctx context.Context, q string) ([]string, error) {
	term := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	conds := []string{
		"LOWER(nombres) LIKE $1",
		"LOWER(apellidos) LIKE $1",
		"LOWER(nombres || ' ' || apellidos) LIKE $1",
	}
	args := []interface{}{term}
	if rude, err := strconv.ParseInt(strings.TrimSpace(q), 10, 64); err == nil {
		args = append(args, rude)
		conds = append(conds, fmt.Sprintf("rude = $%d", len(args)))
	}

	var ids []string
	query := "SELECT id FROM estudiantes WHERE " + strings.Join(conds, " OR ")
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("search estudiantes: %w", err)
	}
	return ids, nil
}
