package report

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"mesem-yoklama/internal/model"
)

// Symbol 报表单元格中的考勤符号
type Symbol string

const (
	SymbolPresent    Symbol = "+"
	SymbolAbsent     Symbol = "D"
	SymbolPermission Symbol = "İ"
	SymbolMedical    Symbol = "R"
)

// SymbolFor 状态 → 符号
func SymbolFor(status model.AttendanceStatus) Symbol {
	switch status {
	case model.StatusAbsent:
		return SymbolAbsent
	case model.StatusExcusedPermission:
		return SymbolPermission
	case model.StatusExcusedMedical:
		return SymbolMedical
	default:
		return SymbolPresent
	}
}

// DayMark 某个工作日的汇总结果
type DayMark struct {
	Day     int    `json:"day"`
	DateKey string `json:"date"`
	Symbol  Symbol `json:"symbol"`
}

// StudentRow 单个学生的月度汇总（Days 按日期升序，仅含工作日）
type StudentRow struct {
	StudentID  string    `json:"student_id"`
	NationalID string    `json:"national_id"`
	Name       string    `json:"name"`
	Days       []DayMark `json:"days"`
}

// SymbolOn 返回第 day 天的符号；非工作日返回 false
func (r StudentRow) SymbolOn(day int) (Symbol, bool) {
	for _, d := range r.Days {
		if d.Day == day {
			return d.Symbol, true
		}
	}
	return "", false
}

// Count 统计某符号出现次数
func (r StudentRow) Count(sym Symbol) int {
	n := 0
	for _, d := range r.Days {
		if d.Symbol == sym {
			n++
		}
	}
	return n
}

// ResolveMonth 将稀疏的考勤记录与当月工作日日历对齐，为每个学生每个工作日确定唯一符号
//
// 规则：
//   - 学生按姓名土耳其语排序（升序），同名再按身份证号、学生 ID，保证结果与输入顺序无关
//   - 某天没有任何记录视为出勤（+）
//   - 同一学生同一天存在多条记录时，created_at 最新者生效；时间相同取读取顺序中的第一条
func ResolveMonth(students []model.Student, records []model.AttendanceRecord, p Period) []StudentRow {
	index := indexRecords(records)
	days := p.BusinessDays()

	sorted := SortStudents(students)
	rows := make([]StudentRow, 0, len(sorted))
	for _, st := range sorted {
		byDate := index[st.NationalID]
		marks := make([]DayMark, 0, len(days))
		for _, d := range days {
			key := p.DateKey(d)
			sym := SymbolPresent
			if rec, ok := byDate[key]; ok {
				sym = SymbolFor(rec.Status)
			}
			marks = append(marks, DayMark{Day: d, DateKey: key, Symbol: sym})
		}
		rows = append(rows, StudentRow{
			StudentID:  st.StudentID,
			NationalID: st.NationalID,
			Name:       st.FullName,
			Days:       marks,
		})
	}
	return rows
}

// indexRecords 构建 身份证号 → 日期键 → 生效记录
func indexRecords(records []model.AttendanceRecord) map[string]map[string]*model.AttendanceRecord {
	index := make(map[string]map[string]*model.AttendanceRecord)
	for i := range records {
		rec := &records[i]
		if rec.NationalID == "" {
			continue
		}
		byDate, ok := index[rec.NationalID]
		if !ok {
			byDate = make(map[string]*model.AttendanceRecord)
			index[rec.NationalID] = byDate
		}
		key := rec.DateKey()
		if cur, ok := byDate[key]; !ok || rec.CreatedAt.After(cur.CreatedAt) {
			byDate[key] = rec
		}
	}
	return index
}

// SortStudents 返回按姓名土耳其语排序后的副本（同名按身份证号、学生 ID）
// collate.Collator 非并发安全，每次调用单独创建
func SortStudents(students []model.Student) []model.Student {
	sorted := make([]model.Student, len(students))
	copy(sorted, students)

	col := collate.New(language.Turkish)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if c := col.CompareString(a.FullName, b.FullName); c != 0 {
			return c < 0
		}
		if a.NationalID != b.NationalID {
			return a.NationalID < b.NationalID
		}
		return a.StudentID < b.StudentID
	})
	return sorted
}
