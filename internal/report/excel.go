// Package report renders one user's one-month attendance into the fixed
// 作業時間報告書 spreadsheet layout: two side-by-side day tables (days
// 1-16 left, 17+ right), a monthly totals row and a notes block.
package report

import (
	"fmt"
	"time"

	"github.com/kintai-app/apiserver/internal/holiday"
	"github.com/kintai-app/apiserver/internal/worktime"
	"github.com/kintai-app/apiserver/types"
	"github.com/xuri/excelize/v2"
)

const (
	sheetName = "template"

	headerRow    = 13
	firstDataRow = 14
	leftBlockCol = 2  // columns B-J
	rightColBase = 12 // columns L-T
	leftDayCount = 16
)

var columnHeaders = []string{"日付", "曜日", "出勤時間", "退勤時間", "実働時間", "交通費", "出発駅", "目的駅", "備考"}

var jpWeekdays = map[time.Weekday]string{
	time.Monday:    "月",
	time.Tuesday:   "火",
	time.Wednesday: "水",
	time.Thursday:  "木",
	time.Friday:    "金",
	time.Saturday:  "土",
	time.Sunday:    "日",
}

var columnWidths = []float64{5, 10, 12, 14, 14, 14, 10, 14, 14, 18, 4, 10, 12, 14, 14, 14, 10, 14, 14, 18, 4}

// Filename returns the download name for a generated report.
func Filename(year, month int, displayName string) string {
	if displayName == "" {
		displayName = "氏名未入力"
	}
	return fmt.Sprintf("作業時間報告書_%d年%d月_%s.xlsx", year, month, displayName)
}

type styles struct {
	title    int
	header   int
	normal   int
	cell     int
	cellLeft int
	redCell  int
	sum      int
	notes    int
}

// Generate renders the report workbook and returns the xlsx bytes.
func Generate(year, month int, data types.UserAttendance, displayName string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	for i, w := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheetName, col, col, w)
	}
	for r := 1; r < 60; r++ {
		_ = f.SetRowHeight(sheetName, r, 22)
	}
	_ = f.SetRowHeight(sheetName, 2, 32)

	writeHeading(f, st, year, month, displayName)

	days := worktime.MonthDays(year, month)
	leftDays := days
	var rightDays []time.Time
	if len(days) > leftDayCount {
		leftDays = days[:leftDayCount]
		rightDays = days[leftDayCount:]
	}

	writeDayBlock(f, st, leftBlockCol, leftDays, data)
	writeDayBlock(f, st, rightColBase, rightDays, data)

	totalWorked, totalTravel := worktime.MonthTotals(data, days)
	sumRow := firstDataRow + max(len(leftDays), len(rightDays))
	writeTotals(f, st, sumRow, totalWorked, totalTravel)
	writeFooter(f, st, sumRow, year, month, days[len(days)-1].Day(), totalWorked)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeHeading(f *excelize.File, st styles, year, month int, displayName string) {
	_ = f.MergeCell(sheetName, "B2", "T2")
	_ = f.SetCellValue(sheetName, "B2", "作業時間報告書")
	_ = f.SetCellStyle(sheetName, "B2", "B2", st.title)

	_ = f.SetCellValue(sheetName, "B4", wareki(year, month))
	_ = f.SetCellValue(sheetName, "C4", fmt.Sprintf("%d", year))
	_ = f.SetCellValue(sheetName, "D4", "年")
	_ = f.SetCellValue(sheetName, "E4", fmt.Sprintf("%d", month))
	_ = f.SetCellValue(sheetName, "F4", "月度")
	_ = f.SetCellStyle(sheetName, "B4", "F4", st.header)

	_ = f.SetCellValue(sheetName, "B7", "対応客先名")
	_ = f.SetCellValue(sheetName, "F7", "会社名")
	_ = f.SetCellValue(sheetName, "I7", "氏名")
	_ = f.SetCellValue(sheetName, "J7", displayName)
	_ = f.SetCellStyle(sheetName, "J7", "J7", st.normal)
}

func writeDayBlock(f *excelize.File, st styles, baseCol int, days []time.Time, data types.UserAttendance) {
	for i, h := range columnHeaders {
		cell, _ := excelize.CoordinatesToCellName(baseCol+i, headerRow)
		_ = f.SetCellValue(sheetName, cell, h)
		_ = f.SetCellStyle(sheetName, cell, cell, st.header)
	}

	for idx, d := range days {
		row := firstDataRow + idx
		rec := data[d.Format("2006-01-02")]

		worked := ""
		if min, ok := worktime.WorkedMinutes(rec); ok {
			worked = worktime.FormatHours(min)
		}

		values := []string{
			fmt.Sprintf("%d", d.Day()),
			jpWeekdays[d.Weekday()],
			rec.CheckIn,
			rec.CheckOut,
			worked,
			rec.TravelCost,
			rec.TravelFrom,
			rec.TravelTo,
			rec.Notes,
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(baseCol+i, row)
			_ = f.SetCellValue(sheetName, cell, v)
			style := st.cell
			switch {
			case i == 1 && holiday.IsRestDay(d):
				style = st.redCell
			case i == len(values)-1:
				// notes column is left-aligned
				style = st.cellLeft
			}
			_ = f.SetCellStyle(sheetName, cell, cell, style)
		}
	}
}

func writeTotals(f *excelize.File, st styles, sumRow, totalWorked int, totalTravel float64) {
	set := func(col int, value string) {
		cell, _ := excelize.CoordinatesToCellName(col, sumRow)
		_ = f.SetCellValue(sheetName, cell, value)
		_ = f.SetCellStyle(sheetName, cell, cell, st.sum)
	}
	set(15, "計")
	set(16, worktime.FormatHours(totalWorked))
	set(18, "交通費合計")
	set(19, fmt.Sprintf("%.0f", totalTravel))
}

func writeFooter(f *excelize.File, st styles, sumRow, year, month, lastDay, totalWorked int) {
	notesRow := sumRow + 2
	_ = f.MergeCell(sheetName,
		fmt.Sprintf("B%d", notesRow),
		fmt.Sprintf("H%d", notesRow+7))
	_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", notesRow), "備考")
	_ = f.SetCellStyle(sheetName, fmt.Sprintf("B%d", notesRow), fmt.Sprintf("B%d", notesRow), st.notes)

	_ = f.SetCellValue(sheetName, fmt.Sprintf("M%d", notesRow), "実働時間合計")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("N%d", notesRow), worktime.FormatHours(totalWorked)+" h")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("M%d", notesRow+2), "自")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("N%d", notesRow+2), fmt.Sprintf("%d年%d月1日", year, month))
	_ = f.SetCellValue(sheetName, fmt.Sprintf("M%d", notesRow+3), "至")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("N%d", notesRow+3), fmt.Sprintf("%d年%d月%d日", year, month, lastDay))
}

// wareki renders the Japanese era label for the report heading.
func wareki(year, month int) string {
	if year > 2019 || (year == 2019 && month >= 5) {
		return fmt.Sprintf("令和 %d", year-2018)
	}
	if year >= 1989 {
		return fmt.Sprintf("平成 %d", year-1988)
	}
	return fmt.Sprintf("%d", year)
}

func newStyles(f *excelize.File) (styles, error) {
	thin := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	left := &excelize.Alignment{Horizontal: "left", Vertical: "center"}
	tableFill := excelize.Fill{Type: "pattern", Color: []string{"CCFFCC"}, Pattern: 1}
	headerFill := excelize.Fill{Type: "pattern", Color: []string{"99FF99"}, Pattern: 1}

	var st styles
	var err error

	if st.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "MS Gothic", Size: 16, Bold: true},
		Alignment: center,
	}); err != nil {
		return styles{}, err
	}
	if st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "MS Gothic", Size: 10, Bold: true},
		Alignment: center,
		Fill:      headerFill,
		Border:    thin,
	}); err != nil {
		return styles{}, err
	}
	if st.normal, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "MS Gothic", Size: 9},
		Alignment: left,
	}); err != nil {
		return styles{}, err
	}
	if st.cell, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "MS Gothic", Size: 9},
		Alignment: center,
		Fill:      tableFill,
		Border:    thin,
	}); err != nil {
		return styles{}, err
	}
	if st.cellLeft, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "MS Gothic", Size: 9},
		Alignment: left,
		Fill:      tableFill,
		Border:    thin,
	}); err != nil {
		return styles{}, err
	}
	if st.redCell, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "MS Gothic", Size: 9, Bold: true, Color: "FF0000"},
		Alignment: center,
		Fill:      tableFill,
		Border:    thin,
	}); err != nil {
		return styles{}, err
	}
	if st.sum, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "MS Gothic", Size: 9, Bold: true},
		Alignment: center,
		Fill:      headerFill,
		Border:    thin,
	}); err != nil {
		return styles{}, err
	}
	if st.notes, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "MS Gothic", Size: 10, Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "top"},
		Border:    thin,
	}); err != nil {
		return styles{}, err
	}
	return st, nil
}
