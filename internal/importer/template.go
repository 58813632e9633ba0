package importer

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// TemplateSheet 模板工作表名
const TemplateSheet = "Digit Data"

// DefaultTemplatePath digitctl template 未指定路径时的输出文件
const DefaultTemplatePath = "sample_data_template.xlsx"

var templateRows = []struct {
	date           string
	digit1, digit2 int
}{
	{"2025-01-01", 45, 123},
	{"2025-01-02", 78, 156},
	{"2025-01-03", 12, 89},
	{"2025-01-04", 167, 34},
	{"2025-01-05", 99, 145},
}

// WriteTemplate 生成带样例数据的导入模板
func WriteTemplate(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), TemplateSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(TemplateSheet, "A1", &[]interface{}{"Date", "Digit1", "Digit2"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range templateRows {
		cellName, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(TemplateSheet, cellName, &[]interface{}{r.date, r.digit1, r.digit2}); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(TemplateSheet, "A", "A", 12); err != nil {
		return err
	}
	if err := f.SetColWidth(TemplateSheet, "B", "C", 10); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	return nil
}
