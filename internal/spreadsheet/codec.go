package spreadsheet

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	rosterSheet = "Usuarios"
	statsSheet  = "Estadísticas"
)

var rosterHeaders = []string{
	"ID",
	"Nombre",
	"Usuario",
	"Correo",
	"Equipo",
	"Jefe",
	"Accesos",
	"Comentarios",
	"Fecha Creación",
}

// RosterRow is the codec-level view of one employee for export.
type RosterRow struct {
	ID         uint
	Name       string
	Username   string
	Email      string
	Team       string
	Manager    string
	AccessList string
	Comments   string
	CreatedAt  time.Time
}

// TeamCount feeds the aggregation sheet.
type TeamCount struct {
	Team  string
	Count int64
}

// Parse reads the first worksheet of an uploaded workbook into rows keyed by
// header name. The first row is the header row; anything unreadable fails the
// whole parse.
func Parse(r io.Reader) ([]Row, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no worksheet found")
	}

	raw, err := file.GetRows(sheetName)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("worksheet is empty")
	}

	headers := raw[0]
	rows := make([]Row, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		rows = append(rows, NewRow(headers, cells))
	}

	return rows, nil
}

// Write produces the two-sheet roster report: one row per employee plus the
// per-team aggregation, with the header styling the panel has always used.
func Write(rows []RosterRow, teams []TeamCount) (*bytes.Buffer, error) {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	file.SetSheetName(file.GetSheetName(0), rosterSheet)

	headerStyle, err := file.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1F4E78"}},
		Font:      &excelize.Font{Color: "FFFFFF", Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	if err := writeRosterSheet(file, headerStyle, rows); err != nil {
		return nil, err
	}
	if err := writeStatsSheet(file, headerStyle, teams); err != nil {
		return nil, err
	}

	return file.WriteToBuffer()
}

func writeRosterSheet(file *excelize.File, headerStyle int, rows []RosterRow) error {
	widths := make([]int, len(rosterHeaders))

	for col, h := range rosterHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(rosterSheet, cell, h); err != nil {
			return err
		}
		widths[col] = len(h)
	}

	lastHeader, err := excelize.CoordinatesToCellName(len(rosterHeaders), 1)
	if err != nil {
		return err
	}
	if err := file.SetCellStyle(rosterSheet, "A1", lastHeader, headerStyle); err != nil {
		return err
	}

	for i, row := range rows {
		createdAt := ""
		if !row.CreatedAt.IsZero() {
			createdAt = row.CreatedAt.Format("2006-01-02 15:04")
		}
		cells := []any{
			row.ID,
			row.Name,
			row.Username,
			row.Email,
			row.Team,
			row.Manager,
			row.AccessList,
			row.Comments,
			createdAt,
		}
		for col, v := range cells {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := file.SetCellValue(rosterSheet, cell, v); err != nil {
				return err
			}
			if l := len(fmt.Sprint(v)); l > widths[col] {
				widths[col] = l
			}
		}
	}

	return applyWidths(file, rosterSheet, widths)
}

func writeStatsSheet(file *excelize.File, headerStyle int, teams []TeamCount) error {
	if _, err := file.NewSheet(statsSheet); err != nil {
		return err
	}

	if err := file.SetCellValue(statsSheet, "A1", "Equipo"); err != nil {
		return err
	}
	if err := file.SetCellValue(statsSheet, "B1", "Cantidad de Usuarios"); err != nil {
		return err
	}
	if err := file.SetCellStyle(statsSheet, "A1", "B1", headerStyle); err != nil {
		return err
	}

	widths := []int{len("Equipo"), len("Cantidad de Usuarios")}
	for i, t := range teams {
		if err := file.SetCellValue(statsSheet, fmt.Sprintf("A%d", i+2), t.Team); err != nil {
			return err
		}
		if err := file.SetCellValue(statsSheet, fmt.Sprintf("B%d", i+2), t.Count); err != nil {
			return err
		}
		if len(t.Team) > widths[0] {
			widths[0] = len(t.Team)
		}
	}

	return applyWidths(file, statsSheet, widths)
}

func applyWidths(file *excelize.File, sheet string, widths []int) error {
	for col, w := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := file.SetColWidth(sheet, name, name, float64(w+2)); err != nil {
			return err
		}
	}
	return nil
}
