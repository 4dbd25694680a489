package spreadsheet

import (
	"io"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/kokulite/core"
	"github.com/trezcool/kokulite/core/roster"
)

var (
	errUnreadable = errors.New("the file is not a readable .xlsx workbook")
	errNoRows     = errors.New("the sheet has no data rows")
)

// Table is a sheet split into its header row and its data rows.
// Blank rows are dropped; cells keep their raw text.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// ReadXLSX reads the named sheet of an xlsx workbook, or its first sheet when sheet is empty.
// The first non blank row is taken as the header row.
func ReadXLSX(r io.Reader, sheet string) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, core.NewValidationError(errors.Wrap(err, "opening workbook"), core.FieldError{Field: "file", Error: errUnreadable.Error()})
	}
	//goland:noinspection GoUnhandledErrorResult
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return Table{}, core.NewValidationError(errors.Wrapf(err, "reading sheet %q", sheet), core.FieldError{Field: "sheet", Error: err.Error()})
	}

	var tbl Table
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		if tbl.Headers == nil {
			tbl.Headers = row
			continue
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	if len(tbl.Rows) == 0 {
		return Table{}, core.NewValidationError(errNoRows, core.FieldError{Field: "file", Error: errNoRows.Error()})
	}
	return tbl, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// header keywords, malay and english, checked in order
var headerKeywords = map[roster.ColumnRole][]string{
	roster.ColumnStudentName:  {"nama murid", "murid", "pelajar", "student"},
	roster.ColumnTeacherName:  {"guru", "penasihat", "teacher", "advisor"},
	roster.ColumnClass:        {"kelas", "tahun", "tingkatan", "class", "year", "grade"},
	roster.ColumnUnitCategory: {"kategori", "modul", "jenis", "category", "type"},
	roster.ColumnUnitName:     {"nama unit", "unit", "kelab", "persatuan", "sukan", "uniform", "club", "society"},
}

var (
	// a header holding a name token ("Nama Murid", "Student Name") is the name of the entity it mentions
	nameTokens = []string{"nama", "name"}
	namedOrder = []roster.ColumnRole{
		roster.ColumnStudentName, roster.ColumnTeacherName, roster.ColumnClass, roster.ColumnUnitCategory, roster.ColumnUnitName,
	}
	// otherwise an attribute wins over the entity it qualifies: "Kelas Murid" is a class column
	attributeOrder = []roster.ColumnRole{
		roster.ColumnClass, roster.ColumnUnitCategory, roster.ColumnStudentName, roster.ColumnTeacherName, roster.ColumnUnitName,
	}
)

// GuessMapping proposes a column role for each header. Unrecognised headers are ignored.
// The mapping is a suggestion: the uploader confirms or corrects it before importing.
func GuessMapping(headers []string) []roster.ColumnRole {
	mapping := make([]roster.ColumnRole, len(headers))
	for i, h := range headers {
		mapping[i] = guessRole(core.CleanString(h, true /* lower */))
	}
	return mapping
}

func guessRole(header string) roster.ColumnRole {
	if header == "" {
		return roster.ColumnIgnore
	}
	order := attributeOrder
	if hasToken(header, nameTokens...) {
		order = namedOrder
	}
	for _, role := range order {
		for _, w := range headerKeywords[role] {
			if strings.Contains(header, w) {
				return role
			}
		}
	}
	return roster.ColumnIgnore
}

func hasToken(header string, tokens ...string) bool {
	fields := strings.FieldsFunc(header, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, f := range fields {
		for _, tok := range tokens {
			if f == tok {
				return true
			}
		}
	}
	return false
}
