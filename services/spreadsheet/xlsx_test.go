package spreadsheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/kokulite/core"
	"github.com/trezcool/kokulite/core/roster"
)

func newWorkbook(t *testing.T, sheet string, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	if sheet != "" {
		require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet))
	}
	name := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(name, cell, v))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadXLSX(t *testing.T) {
	rows := [][]interface{}{
		{"Nama Murid", "Tahun / Kelas", "Kategori", "Nama Unit", "Guru Penasihat"},
		{"Ali Bin Abu", "4 Merah", "Badan Beruniform", "Pengakap", "Cikgu Ahmad"},
		{},
		{"Siti Binti Ali", "5 Biru", "Kelab & Persatuan", "Persatuan Bahasa Melayu", "Puan Salmah"},
	}

	t.Run("first sheet", func(t *testing.T) {
		tbl, err := ReadXLSX(newWorkbook(t, "", rows), "")
		require.NoError(t, err)
		assert.Equal(t, []string{"Nama Murid", "Tahun / Kelas", "Kategori", "Nama Unit", "Guru Penasihat"}, tbl.Headers)
		if assert.Len(t, tbl.Rows, 2) {
			assert.Equal(t, "Ali Bin Abu", tbl.Rows[0][0])
			assert.Equal(t, "Persatuan Bahasa Melayu", tbl.Rows[1][3])
		}
	})

	t.Run("named sheet", func(t *testing.T) {
		tbl, err := ReadXLSX(newWorkbook(t, "Murid", rows), "Murid")
		require.NoError(t, err)
		assert.Len(t, tbl.Rows, 2)
	})

	t.Run("missing sheet", func(t *testing.T) {
		_, err := ReadXLSX(newWorkbook(t, "", rows), "Nope")
		assert.True(t, core.IsValidationError(err))
	})

	t.Run("headers only", func(t *testing.T) {
		_, err := ReadXLSX(newWorkbook(t, "", rows[:1]), "")
		assert.True(t, core.IsValidationError(err))
	})

	t.Run("not a workbook", func(t *testing.T) {
		_, err := ReadXLSX(strings.NewReader("name,class\nAli,4 Merah\n"), "")
		assert.True(t, core.IsValidationError(err))
	})
}

func TestGuessMapping(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    []roster.ColumnRole
	}{
		{
			name:    "malay template",
			headers: []string{"Nama Murid", "Tahun / Kelas", "Kategori", "Nama Unit", "Guru Penasihat"},
			want: []roster.ColumnRole{
				roster.ColumnStudentName, roster.ColumnClass, roster.ColumnUnitCategory, roster.ColumnUnitName, roster.ColumnTeacherName,
			},
		},
		{
			name:    "english headers",
			headers: []string{"Student Name", "Class", "Unit Category", "Unit Name", "Teacher"},
			want: []roster.ColumnRole{
				roster.ColumnStudentName, roster.ColumnClass, roster.ColumnUnitCategory, roster.ColumnUnitName, roster.ColumnTeacherName,
			},
		},
		{
			name:    "attribute of an entity",
			headers: []string{"Kelas Murid", "Nama Kelas", "Jenis Unit", "Student Class", "Murid", "Nama Guru Kelas"},
			want: []roster.ColumnRole{
				roster.ColumnClass, roster.ColumnClass, roster.ColumnUnitCategory, roster.ColumnClass,
				roster.ColumnStudentName, roster.ColumnTeacherName,
			},
		},
		{
			name:    "unknown and blank",
			headers: []string{"No.", "", "  KELAB  ", "IC Number"},
			want:    []roster.ColumnRole{roster.ColumnIgnore, roster.ColumnIgnore, roster.ColumnUnitName, roster.ColumnIgnore},
		},
		{
			name:    "no headers",
			headers: nil,
			want:    []roster.ColumnRole{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GuessMapping(tc.headers))
		})
	}
}
