package dataset

import "fmt"

// Cell 单元格，Valid 为 false 表示缺失值
type Cell struct {
	Value string
	Valid bool
}

// Column 命名列，保持原始字符串形式
type Column struct {
	Name  string
	Cells []Cell
}

// NonMissing 返回非缺失值列表
func (c *Column) NonMissing() []string {
	values := make([]string, 0, len(c.Cells))
	for _, cell := range c.Cells {
		if cell.Valid {
			values = append(values, cell.Value)
		}
	}
	return values
}

// Clone 深拷贝列
func (c *Column) Clone() *Column {
	cells := make([]Cell, len(c.Cells))
	copy(cells, c.Cells)
	return &Column{Name: c.Name, Cells: cells}
}

// Table 内存表格：列有序、同长，单元格可缺失
type Table struct {
	Columns []*Column
}

// NewTable 创建空表
func NewTable() *Table {
	return &Table{}
}

// AddColumn 追加列，要求与现有列等长
func (t *Table) AddColumn(col *Column) error {
	if len(t.Columns) > 0 && len(col.Cells) != t.RowCount() {
		return fmt.Errorf("column %q has %d rows, table has %d", col.Name, len(col.Cells), t.RowCount())
	}
	t.Columns = append(t.Columns, col)
	return nil
}

// Column 按名称查找列
func (t *Table) Column(name string) (*Column, bool) {
	for _, col := range t.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return nil, false
}

// HasColumn 是否存在指定列
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// ColumnNames 按表内顺序返回列名
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// RowCount 行数
func (t *Table) RowCount() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Cells)
}

// Clone 深拷贝整表
func (t *Table) Clone() *Table {
	out := &Table{Columns: make([]*Column, len(t.Columns))}
	for i, col := range t.Columns {
		out.Columns[i] = col.Clone()
	}
	return out
}

// DropColumn 删除指定列，列不存在时为空操作
func (t *Table) DropColumn(name string) {
	for i, col := range t.Columns {
		if col.Name == name {
			t.Columns = append(t.Columns[:i], t.Columns[i+1:]...)
			return
		}
	}
}
