package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// 默认模板的表头文案
const (
	templateTitle        = "MESEM İŞLETMEDE MESLEKİ EĞİTİM DEVAMSIZLIK ÇİZELGESİ"
	templateBusinessText = "İşletme Adı:"
	templatePeriodText   = "Ay / Yıl:"
	templateNameHeader   = "Adı Soyadı"
	templateLegend       = "+ : Geldi   D : Devamsız   İ : İzinli   R : Raporlu"
	templateDefaultSheet = "Devamsızlık"
	templateMaxDay       = 31
)

// BuildTemplate 按给定坐标生成一份空白模板
//
// 生产环境使用学校提供的模板文件；此处生成的模板用于本地开发与测试，
// 坐标与 layout 完全一致
func BuildTemplate(layout Layout) (*excelize.File, error) {
	f := excelize.NewFile()

	sheet := layout.Sheet
	if sheet == "" {
		sheet = templateDefaultSheet
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, err
	}

	headerRow := layout.FirstRow - 1
	if headerRow < 1 {
		f.Close()
		return nil, fmt.Errorf("first_row 必须大于 1，实际: %d", layout.FirstRow)
	}

	boldStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "#000000", Style: 1},
			{Type: "right", Color: "#000000", Style: 1},
			{Type: "top", Color: "#000000", Style: 1},
			{Type: "bottom", Color: "#000000", Style: 1},
		},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	set := func(cell string, value any) error {
		return f.SetCellValue(sheet, cell, value)
	}

	// ── 标题与表头标签 ──
	labelCol, labelRow, err := excelize.CellNameToCoordinates(layout.BusinessCell)
	if err != nil {
		f.Close()
		return nil, err
	}
	periodCol, periodRow, err := excelize.CellNameToCoordinates(layout.PeriodCell)
	if err != nil {
		f.Close()
		return nil, err
	}
	steps := []struct {
		col, row int
		value    any
	}{
		{1, 1, templateTitle},
		{labelCol - 1, labelRow, templateBusinessText},
		{periodCol - 1, periodRow, templatePeriodText},
	}
	for _, s := range steps {
		if s.col < 1 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(s.col, s.row)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := set(cell, s.value); err != nil {
			f.Close()
			return nil, err
		}
	}

	// ── 列头：姓名 + 1..31 日 ──
	nameHeader := fmt.Sprintf("%s%d", layout.NameColumn, headerRow)
	if err := set(nameHeader, templateNameHeader); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetCellStyle(sheet, nameHeader, nameHeader, boldStyle); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetColWidth(sheet, layout.NameColumn, layout.NameColumn, 28); err != nil {
		f.Close()
		return nil, err
	}
	for day := 1; day <= templateMaxDay; day++ {
		cell, err := excelize.CoordinatesToCellName(day+layout.DayColumnOffset, headerRow)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := set(cell, day); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellStyle(sheet, cell, cell, boldStyle); err != nil {
			f.Close()
			return nil, err
		}
		col, _ := excelize.ColumnNumberToName(day + layout.DayColumnOffset)
		if err := f.SetColWidth(sheet, col, col, 4); err != nil {
			f.Close()
			return nil, err
		}
	}

	legendCell := fmt.Sprintf("%s%d", layout.NameColumn, labelRow-1)
	if labelRow > 1 && legendCell != layout.BusinessCell && legendCell != layout.PeriodCell {
		if err := set(legendCell, templateLegend); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}
