package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Load 按扩展名读取 CSV 或 XLSX 文件
func Load(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".xlsx":
		return LoadXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

// LoadCSV 读取 CSV 文件，第一行为表头，空单元格视为缺失
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		rows = append(rows, record)
	}

	return fromRows(header, rows)
}

// LoadXLSX 读取 XLSX 文件的第一个 Sheet
func LoadXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	return fromRows(rows[0], rows[1:])
}

// fromRows 将表头与行数据组装为 Table
// excelize 返回的行可能参差不齐，缺少的尾部单元格按缺失处理
func fromRows(header []string, rows [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("table has no columns")
	}

	table := NewTable()
	seen := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		// 重复表头依次改名为 name.1, name.2, ...
		if _, dup := seen[name]; dup {
			base := name
			for suffix := seen[base] + 1; ; suffix++ {
				candidate := fmt.Sprintf("%s.%d", base, suffix)
				if _, exists := seen[candidate]; !exists {
					seen[base] = suffix
					name = candidate
					break
				}
			}
		}
		seen[name] = 0
		col := &Column{Name: name, Cells: make([]Cell, len(rows))}
		for r, row := range rows {
			if i < len(row) && strings.TrimSpace(row[i]) != "" {
				col.Cells[r] = Cell{Value: row[i], Valid: true}
			}
		}
		if err := table.AddColumn(col); err != nil {
			return nil, err
		}
	}
	return table, nil
}
