package report

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/xuri/excelize/v2"

	"mesem-yoklama/config"
)

// Layout 模板中的固定坐标
type Layout struct {
	Sheet           string // 为空时使用第一个工作表
	BusinessCell    string
	PeriodCell      string
	FirstRow        int
	NameColumn      string
	DayColumnOffset int
}

// LayoutFromConfig 由配置构建模板坐标
func LayoutFromConfig(cfg *config.ReportConfig) Layout {
	return Layout{
		Sheet:           cfg.Sheet,
		BusinessCell:    cfg.BusinessCell,
		PeriodCell:      cfg.PeriodCell,
		FirstRow:        cfg.FirstRow,
		NameColumn:      cfg.NameColumn,
		DayColumnOffset: cfg.DayColumnOffset,
	}
}

// DayCell 第 index 个学生（从 0 开始）第 day 天的单元格
func (l Layout) DayCell(index, day int) (string, error) {
	return excelize.CoordinatesToCellName(day+l.DayColumnOffset, l.FirstRow+index)
}

// NameCell 第 index 个学生的姓名单元格
func (l Layout) NameCell(index int) string {
	return fmt.Sprintf("%s%d", l.NameColumn, l.FirstRow+index)
}

// Projector 将汇总结果写入预制模板
//
// 模板文件只读，每次渲染重新打开，渲染之间不共享可变状态
type Projector struct {
	templatePath   string
	filenameSuffix string
	layout         Layout
}

// NewProjector 创建 Projector
func NewProjector(cfg *config.ReportConfig) *Projector {
	return &Projector{
		templatePath:   cfg.TemplatePath,
		filenameSuffix: cfg.FilenameSuffix,
		layout:         LayoutFromConfig(cfg),
	}
}

// Filename 建议下载文件名：<URL 编码的企业名>_Devamsizlik.xlsx
// 除字母数字与 -_.~ 外全部百分号编码，可直接放入 filename*=UTF-8''
func (p *Projector) Filename(business string) string {
	return strings.ReplaceAll(url.QueryEscape(business), "+", "%20") + p.filenameSuffix
}

// Render 渲染月度缺勤表
//
// 仅写入工作日列；周末列保留模板原有内容。
// 任一步骤失败均不返回部分文件
func (p *Projector) Render(business string, period Period, rows []StudentRow) (*bytes.Buffer, string, error) {
	if err := period.Validate(); err != nil {
		return nil, "", err
	}

	f, err := excelize.OpenFile(p.templatePath)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrTemplateMissing, err)
	}
	defer f.Close()

	sheet := p.layout.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, "", fmt.Errorf("%w: 工作表 %q 不存在", ErrTemplateMissing, sheet)
	}

	// ── 表头 ──
	if err := f.SetCellValue(sheet, p.layout.BusinessCell, business); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrSerializationFailure, err)
	}
	if err := f.SetCellValue(sheet, p.layout.PeriodCell, period.Label()); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrSerializationFailure, err)
	}

	// 所有符号统一居中、黑色字体
	symbolStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Color: "#000000"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrSerializationFailure, err)
	}

	// ── 数据行 ──
	for i, row := range rows {
		if err := f.SetCellValue(sheet, p.layout.NameCell(i), row.Name); err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrSerializationFailure, err)
		}
		for _, mark := range row.Days {
			cell, err := p.layout.DayCell(i, mark.Day)
			if err != nil {
				return nil, "", fmt.Errorf("%w: %w", ErrSerializationFailure, err)
			}
			if err := f.SetCellValue(sheet, cell, string(mark.Symbol)); err != nil {
				return nil, "", fmt.Errorf("%w: %w", ErrSerializationFailure, err)
			}
			if err := f.SetCellStyle(sheet, cell, cell, symbolStyle); err != nil {
				return nil, "", fmt.Errorf("%w: %w", ErrSerializationFailure, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrSerializationFailure, err)
	}
	return buf, p.Filename(business), nil
}
