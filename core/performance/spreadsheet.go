package performance

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/scola/core"
)

const statsSheet = "Statistics"

var (
	ErrUnsupportedFile = core.NewFieldError("file", "only .xlsx and .csv files are supported")
	ErrEmptyFile       = core.NewFieldError("file", "the file does not contain any row")
	ErrNoStats         = core.NewValidationError(errors.New("No stats available"))

	// columns: {field: normalized header aliases}
	columns = map[string][]string{
		"studentName":   {"studentname", "student", "name"},
		"studentNumber": {"studentnumber", "studentno", "number"},
		"subject":       {"subject"},
		"topic":         {"topic"},
		"score":         {"score", "mark"},
		"term":          {"term"},
		"year":          {"year"},
		"date":          {"date"},
	}
)

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

// ReadRows returns the rows of the first sheet of a .xlsx file, or of a .csv file.
func ReadRows(r io.Reader, filename string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, core.NewFieldError("file", fmt.Sprintf("could not read spreadsheet: %v", err))
		}
		defer func() { _ = f.Close() }()

		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptyFile
		}
		rows, err := f.GetRows(sheets[0])
		return rows, errors.Wrap(err, "reading rows")
	case ".csv":
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true
		rows, err := cr.ReadAll()
		if err != nil {
			return nil, core.NewFieldError("file", fmt.Sprintf("could not read csv: %v", err))
		}
		return rows, nil
	default:
		return nil, ErrUnsupportedFile
	}
}

// ParseRecords maps spreadsheet rows to records. The first row is the header; headers are matched
// case-insensitively, ignoring spaces & underscores (`studentName` == `Student Name`).
// Rows without a student name or subject are skipped. Missing or non-finite scores are 0,
// missing years the current year and missing dates today.
func ParseRecords(rows [][]string, grade string) ([]Record, int) {
	if len(rows) < 2 {
		return nil, 0
	}

	colIdx := make(map[string]int)
	for i, h := range rows[0] {
		nh := normalizeHeader(h)
		for field, aliases := range columns {
			if _, found := colIdx[field]; found {
				continue
			}
			for _, a := range aliases {
				if nh == a {
					colIdx[field] = i
					break
				}
			}
		}
	}

	now := core.Now()
	records := make([]Record, 0, len(rows)-1)
	var skipped int
	for _, row := range rows[1:] {
		get := func(field string) string {
			if i, ok := colIdx[field]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}

		rec := Record{
			StudentName:   get("studentName"),
			StudentNumber: get("studentNumber"),
			Subject:       get("subject"),
			Topic:         get("topic"),
			Grade:         grade,
			Term:          get("term"),
			Date:          get("date"),
		}
		if rec.StudentName == "" || rec.Subject == "" {
			skipped++
			continue
		}
		rec.Score = parseScore(get("score"))
		if year, err := strconv.Atoi(get("year")); err == nil {
			rec.Year = year
		} else {
			rec.Year = now.Year()
		}
		if rec.Date == "" {
			rec.Date = now.Format(core.DateLayout)
		}
		records = append(records, rec)
	}
	return records, skipped
}

// parseScore returns 0 for anything but a finite number.
func parseScore(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// WriteStatsWorkbook writes stats as an xlsx workbook: a `Statistics` sheet of Metric/Value rows
// and a `Subjects` sheet with the per subject distribution.
func WriteStatsWorkbook(w io.Writer, stats Stats) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", statsSheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Students", stats.TotalStudents},
		{"Total Records", stats.TotalRecords},
		{"Students Struggling", stats.StrugglingCount},
		{"Top Performers", stats.ExcellingCount},
	}
	if err := writeRows(f, statsSheet, rows); err != nil {
		return err
	}

	if _, err := f.NewSheet("Subjects"); err != nil {
		return errors.Wrap(err, "creating sheet")
	}
	subjRows := [][]interface{}{{"Subject", "Average", "Struggling", "Moderate", "Excelling"}}
	for _, p := range SubjectChart(stats) {
		subjRows = append(subjRows, []interface{}{p.Name, p.Average, p.Struggling, p.Moderate, p.Excelling})
	}
	if err := writeRows(f, "Subjects", subjRows); err != nil {
		return err
	}

	_, err := f.WriteTo(w)
	return errors.Wrap(err, "writing workbook")
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Wrap(err, "computing cell name")
		}
		if err = f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing %s row %d", sheet, i+1)
		}
	}
	return nil
}
