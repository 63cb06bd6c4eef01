package dataset

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestTable_AddColumnLengthMismatch(t *testing.T) {
	t.Parallel()
	table := NewTable()
	if err := table.AddColumn(&Column{Name: "a", Cells: make([]Cell, 3)}); err != nil {
		t.Fatalf("AddColumn(a) error: %v", err)
	}
	if err := table.AddColumn(&Column{Name: "b", Cells: make([]Cell, 2)}); err == nil {
		t.Error("AddColumn with mismatched length succeeded, want error")
	}
}

func TestTable_CloneIsIndependent(t *testing.T) {
	t.Parallel()
	table := NewTable()
	_ = table.AddColumn(&Column{Name: "a", Cells: []Cell{{Value: "1", Valid: true}}})

	clone := table.Clone()
	clone.Columns[0].Cells[0].Value = "changed"
	clone.Columns[0].Name = "renamed"

	if table.Columns[0].Cells[0].Value != "1" || table.Columns[0].Name != "a" {
		t.Errorf("clone mutated original: %+v", table.Columns[0])
	}
}

func TestColumn_NonMissing(t *testing.T) {
	t.Parallel()
	col := &Column{Name: "a", Cells: []Cell{
		{Value: "x", Valid: true},
		{},
		{Value: "y", Valid: true},
	}}
	got := col.NonMissing()
	if !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("NonMissing() = %v", got)
	}
}

func TestLoadCSV(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "orders.csv")
	content := "customer_id,order_date,total_amount\nC001,2023-01-05,120.50\nC002,,15.00\nC003,2023-02-14\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	table, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV() error: %v", err)
	}
	if got := table.ColumnNames(); !reflect.DeepEqual(got, []string{"customer_id", "order_date", "total_amount"}) {
		t.Fatalf("columns = %v", got)
	}
	if table.RowCount() != 3 {
		t.Fatalf("rows = %d, want 3", table.RowCount())
	}

	dates, _ := table.Column("order_date")
	if dates.Cells[1].Valid {
		t.Error("empty cell should be missing")
	}
	// 短行的缺失尾部单元格按缺失处理
	amounts, _ := table.Column("total_amount")
	if amounts.Cells[2].Valid {
		t.Error("ragged row tail should be missing")
	}
}

func TestLoadCSV_BlankHeaderNames(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "blank.csv")
	if err := os.WriteFile(path, []byte("a,,c\n1,2,3\n"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	table, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV() error: %v", err)
	}
	if got := table.ColumnNames(); !reflect.DeepEqual(got, []string{"a", "column_2", "c"}) {
		t.Errorf("columns = %v", got)
	}
}

func TestLoadCSV_DuplicateHeaderNames(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "dup.csv")
	if err := os.WriteFile(path, []byte("amount,amount,date,amount\n1,2,2023-01-05,3\n"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	table, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV() error: %v", err)
	}
	if got := table.ColumnNames(); !reflect.DeepEqual(got, []string{"amount", "amount.1", "date", "amount.2"}) {
		t.Fatalf("columns = %v", got)
	}

	// 同名列不再互相遮蔽，各自保留自己的数据
	second, ok := table.Column("amount.1")
	if !ok || second.Cells[0].Value != "2" {
		t.Errorf("amount.1 = %+v", second)
	}
	third, ok := table.Column("amount.2")
	if !ok || third.Cells[0].Value != "3" {
		t.Errorf("amount.2 = %+v", third)
	}
}

func TestLoadXLSX(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "orders.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"customer_id", "order_date", "total_amount"},
		{"C001", "2023-01-05", 120.5},
		{"C002", "2023-02-14", 15},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	_ = f.Close()

	table, err := LoadXLSX(path)
	if err != nil {
		t.Fatalf("LoadXLSX() error: %v", err)
	}
	if table.RowCount() != 2 {
		t.Errorf("rows = %d, want 2", table.RowCount())
	}
	ids, ok := table.Column("customer_id")
	if !ok || ids.Cells[0].Value != "C001" {
		t.Errorf("customer_id column = %+v", ids)
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	t.Parallel()
	if _, err := Load("data.parquet"); err == nil {
		t.Error("Load(.parquet) succeeded, want error")
	}
}
