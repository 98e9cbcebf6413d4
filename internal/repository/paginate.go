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

// ListSpec describes how one entity table participates in filtered listing.
// Empty columns opt the table out of the corresponding phase.
type ListSpec struct {
	Table string

	// TextColumns are matched case-insensitively against the free-text term.
	TextColumns []string

	// NumericColumn is additionally matched when the term parses as an
	// integer (the student RUDE code).
	NumericColumn string

	// SectionColumn references cursos directly (the students table itself).
	SectionColumn string

	// StudentColumn references estudiantes; it carries both academic
	// filtering and parent scoping for per-student documents.
	StudentColumn string

	// ParentColumn restricts rows to the owning parent account.
	ParentColumn string

	// StateColumn is the document-state column forced to PUBLICADA for
	// parent readers.
	StateColumn string

	// OrderBy defaults to newest first.
	OrderBy string
}

// Paginator executes the shared list pipeline: resolve the academic filter
// into id sets, apply the caller's role scope, then count and fetch one page.
type Paginator struct {
	db       *sqlx.DB
	academic *AcademicResolver
}

func NewPaginator(db *sqlx.DB) *Paginator {
	return &Paginator{db: db, academic: NewAcademicResolver(db)}
}

// Academic exposes the hierarchy resolver for callers that need raw id sets.
func (p *Paginator) Academic() *AcademicResolver {
	return p.academic
}

// Paginate computes one page for the listed table. A scope marked Empty, or
// any resolver hop that matches nothing, returns ([], 0) without querying
// the target table at all.
func Paginate[T any](ctx context.Context, p *Paginator, spec ListSpec, req models.PageRequest, f models.AcademicFilter, scope models.RoleScope) ([]T, int, error) {
	req = req.Normalize()
	items := []T{}
	if scope.Empty {
		return items, 0, nil
	}

	conds := []string{}
	args := []interface{}{}
	add := func(cond string, val interface{}) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if scope.ParentID != "" && spec.ParentColumn != "" {
		add(spec.ParentColumn+" = $%d", scope.ParentID)
	}
	if scope.OnlyPublished && spec.StateColumn != "" {
		add(spec.StateColumn+" = $%d", string(models.ReportPublicada))
	}

	// Student id set accumulated from role scope and the academic filter.
	// nil means unconstrained.
	var studentSet []string
	restricted := false
	if scope.StudentIDs != nil && spec.StudentColumn != "" {
		studentSet = scope.StudentIDs
		restricted = true
	}

	if !f.IsZero() {
		switch {
		case spec.SectionColumn != "":
			sectionIDs, ok, err := p.academic.SectionIDs(ctx, f)
			if err != nil {
				return nil, 0, err
			}
			if !ok {
				return items, 0, nil
			}
			if sectionIDs != nil {
				add(spec.SectionColumn+" = ANY($%d)", pq.Array(sectionIDs))
			}
		case spec.StudentColumn != "":
			ids, ok, err := p.academic.StudentIDs(ctx, f)
			if err != nil {
				return nil, 0, err
			}
			if !ok {
				return items, 0, nil
			}
			if ids != nil {
				if restricted {
					studentSet = intersect(studentSet, ids)
					if len(studentSet) == 0 {
						return items, 0, nil
					}
				} else {
					studentSet = ids
					restricted = true
				}
			}
		}
	}

	if q := strings.TrimSpace(req.Query); q != "" {
		or := []string{}
		if len(spec.TextColumns) > 0 {
			args = append(args, "%"+strings.ToLower(q)+"%")
			n := len(args)
			for _, col := range spec.TextColumns {
				or = append(or, fmt.Sprintf("LOWER(%s) LIKE $%d", col, n))
			}
		}
		if spec.NumericColumn != "" {
			if num, err := strconv.ParseInt(q, 10, 64); err == nil {
				args = append(args, num)
				or = append(or, fmt.Sprintf("%s = $%d", spec.NumericColumn, len(args)))
			}
		}
		if spec.StudentColumn != "" {
			nameIDs, err := p.academic.StudentIDsByText(ctx, q)
			if err != nil {
				return nil, 0, err
			}
			if restricted {
				nameIDs = intersect(studentSet, nameIDs)
			}
			if len(nameIDs) > 0 {
				args = append(args, pq.Array(nameIDs))
				or = append(or, fmt.Sprintf("%s = ANY($%d)", spec.StudentColumn, len(args)))
			}
		}
		if len(or) == 0 {
			return items, 0, nil
		}
		conds = append(conds, "("+strings.Join(or, " OR ")+")")
	}

	if restricted && spec.StudentColumn != "" {
		add(spec.StudentColumn+" = ANY($%d)", pq.Array(studentSet))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM " + spec.Table + where
	if err := p.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", spec.Table, err)
	}
	if total == 0 {
		return items, 0, nil
	}

	orderBy := spec.OrderBy
	if orderBy == "" {
		orderBy = "created_at DESC"
	}
	query := fmt.Sprintf("SELECT * FROM %s%s ORDER BY %s LIMIT %d OFFSET %d",
		spec.Table, where, orderBy, req.PerPage, req.Offset())
	if err := p.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("page %s: %w", spec.Table, err)
	}
	return items, total, nil
}

func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	out := []string{}
	for _, v := range b {
		if _, ok := set[v]; ok {
			out = append(out, v)
		}
	}
	return out
}
