package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	appErrors "github.com/colegio-app/colegio-api/pkg/errors"
	"github.com/colegio-app/colegio-api/pkg/export"
)

// ExportService renders section rosters as downloadable CSV or PDF files.
type ExportService struct {
	sections sectionLookup
	roster   rosterLookup
	logger   *zap.Logger
}

func NewExportService(sections sectionLookup, roster rosterLookup, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{sections: sections, roster: roster, logger: logger}
}

// RosterExport carries the rendered bytes plus download metadata.
type RosterExport struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Roster renders one section's student list. format is "csv" or "pdf".
func (s *ExportService) Roster(ctx context.Context, sectionID, format string) (*RosterExport, error) {
	section, err := s.sections.Get(ctx, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load section")
	}
	if section == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
	}
	students, err := s.roster.ListBySection(ctx, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load roster")
	}

	table := export.Table{
		Title:   fmt.Sprintf("%s %s - %s %s", section.Nombre, section.Paralelo, section.Nivel, section.Turno),
		Columns: []string{"RUDE", "Apellidos", "Nombres", "Estado"},
		Rows:    make([][]string, 0, len(students)),
	}
	for _, st := range students {
		table.Rows = append(table.Rows, []string{
			strconv.FormatInt(st.Rude, 10),
			st.Apellidos,
			st.Nombres,
			string(st.Estado),
		})
	}

	base := fmt.Sprintf("roster-%s-%s", section.Nombre, section.Paralelo)
	switch format {
	case "csv":
		data, err := export.CSV(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render csv")
		}
		return &RosterExport{FileName: base + ".csv", ContentType: "text/csv", Data: data}, nil
	case "pdf":
		data, err := export.PDF(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render pdf")
		}
		return &RosterExport{FileName: base + ".pdf", ContentType: "application/pdf", Data: data}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}
