package report

import (
	"bytes"
	"testing"

	"github.com/kintai-app/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, ref string) string {
	t.Helper()
	v, err := f.GetCellValue(sheetName, ref)
	require.NoError(t, err)
	return v
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "作業時間報告書_2025年7月_山田 太郎.xlsx", Filename(2025, 7, "山田 太郎"))
	assert.Equal(t, "作業時間報告書_2025年7月_氏名未入力.xlsx", Filename(2025, 7, ""))
}

func TestGenerateEmptyMonth(t *testing.T) {
	data, err := Generate(2025, 7, types.UserAttendance{}, "山田 太郎")
	require.NoError(t, err)

	f := openWorkbook(t, data)

	assert.Equal(t, "作業時間報告書", cell(t, f, "B2"))
	assert.Equal(t, "令和 7", cell(t, f, "B4"))
	assert.Equal(t, "2025", cell(t, f, "C4"))
	assert.Equal(t, "7", cell(t, f, "E4"))
	assert.Equal(t, "山田 太郎", cell(t, f, "J7"))

	// headers on both day tables
	assert.Equal(t, "日付", cell(t, f, "B13"))
	assert.Equal(t, "備考", cell(t, f, "J13"))
	assert.Equal(t, "日付", cell(t, f, "L13"))

	// first day of each table
	assert.Equal(t, "1", cell(t, f, "B14"))
	assert.Equal(t, "17", cell(t, f, "L14"))
	// last day of July lands on the right table
	assert.Equal(t, "31", cell(t, f, "L28"))

	// empty month still carries a zero totals row
	assert.Equal(t, "計", cell(t, f, "O30"))
	assert.Equal(t, "0.00", cell(t, f, "P30"))
	assert.Equal(t, "交通費合計", cell(t, f, "R30"))
	assert.Equal(t, "0", cell(t, f, "S30"))

	// worked-time cells stay blank, never "0.00"
	assert.Equal(t, "", cell(t, f, "F14"))
}

func TestGenerateWithRecords(t *testing.T) {
	attendance := types.UserAttendance{
		"2025-07-01": {CheckIn: "09:00", CheckOut: "18:00", TravelCost: "500", TravelFrom: "新宿", TravelTo: "渋谷"},
		"2025-07-18": {CheckIn: "10:00", CheckOut: "19:30", BreakTime: "0.5", TravelCost: "250", Notes: "客先訪問"},
		"2025-07-02": {CheckIn: "09:00", CheckOut: "09:30"},
	}

	data, err := Generate(2025, 7, attendance, "山田 太郎")
	require.NoError(t, err)

	f := openWorkbook(t, data)

	// July 1 sits on row 14 of the left table
	assert.Equal(t, "09:00", cell(t, f, "D14"))
	assert.Equal(t, "18:00", cell(t, f, "E14"))
	assert.Equal(t, "8.00", cell(t, f, "F14"))
	assert.Equal(t, "500", cell(t, f, "G14"))
	assert.Equal(t, "新宿", cell(t, f, "H14"))
	assert.Equal(t, "渋谷", cell(t, f, "I14"))

	// negative worked time renders blank
	assert.Equal(t, "", cell(t, f, "F15"))

	// July 18 sits on row 15 of the right table
	assert.Equal(t, "10:00", cell(t, f, "N15"))
	assert.Equal(t, "9.00", cell(t, f, "P15"))
	assert.Equal(t, "客先訪問", cell(t, f, "T15"))

	// totals: 8h + 9h worked, 750 yen travel
	assert.Equal(t, "17.00", cell(t, f, "P30"))
	assert.Equal(t, "750", cell(t, f, "S30"))
}

func TestGenerateFebruaryLayout(t *testing.T) {
	data, err := Generate(2025, 2, types.UserAttendance{}, "x")
	require.NoError(t, err)

	f := openWorkbook(t, data)
	assert.Equal(t, "28", cell(t, f, "L25"))
	assert.Equal(t, "", cell(t, f, "L26"))
	assert.Equal(t, "計", cell(t, f, "O30"))
}

func TestGenerateWeekdayLabels(t *testing.T) {
	data, err := Generate(2025, 7, types.UserAttendance{}, "x")
	require.NoError(t, err)

	f := openWorkbook(t, data)
	// 2025-07-01 is a Tuesday, 2025-07-05 a Saturday
	assert.Equal(t, "火", cell(t, f, "C14"))
	assert.Equal(t, "土", cell(t, f, "C18"))
}

func TestWareki(t *testing.T) {
	assert.Equal(t, "令和 7", wareki(2025, 7))
	assert.Equal(t, "令和 1", wareki(2019, 5))
	assert.Equal(t, "平成 31", wareki(2019, 4))
	assert.Equal(t, "平成 1", wareki(1989, 6))
}
