package schema

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/kamalu-chioma/OpenRFM/internal/dataset"
)

func column(name string, values ...string) *dataset.Column {
	cells := make([]dataset.Cell, len(values))
	for i, v := range values {
		if v != "" {
			cells[i] = dataset.Cell{Value: v, Valid: true}
		}
	}
	return &dataset.Column{Name: name, Cells: cells}
}

func tableOf(t *testing.T, cols ...*dataset.Column) *dataset.Table {
	t.Helper()
	table := dataset.NewTable()
	for _, col := range cols {
		if err := table.AddColumn(col); err != nil {
			t.Fatalf("add column: %v", err)
		}
	}
	return table
}

func strongTable(t *testing.T) *dataset.Table {
	return tableOf(t,
		column("customer_id", "C001", "C002", "C003", "C001", "C004"),
		column("transaction_date", "2023-01-11", "2023-02-05", "2023-03-20", "2023-04-01", "2023-05-18"),
		column("amount", "125.50", "89.90", "42.00", "310.00", "18.25"),
	)
}

func TestInfer_StronglyNamedColumns(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil)
	mapping, _, err := engine.Infer(strongTable(t))
	if err != nil {
		t.Fatalf("infer: %v", err)
	}

	if mapping[RoleCustomerID] != "customer_id" {
		t.Fatalf("CustomerID mapped to %q", mapping[RoleCustomerID])
	}
	if mapping[RoleTransactionDate] != "transaction_date" {
		t.Fatalf("TransactionDate mapped to %q", mapping[RoleTransactionDate])
	}
	if mapping[RoleTransactionAmount] != "amount" {
		t.Fatalf("TransactionAmount mapped to %q", mapping[RoleTransactionAmount])
	}
}

func TestInfer_CurrencyColumnsAndNoise(t *testing.T) {
	t.Parallel()

	table := tableOf(t,
		column("client_identifier", "CUST-001", "CUST-002", "CUST-003"),
		column("sale_date", "2023-01-11", "2023-01-12", "2023-01-13"),
		column("gross_amount", "$ 125", "$ 90", "$ 17.50"),
	)

	engine := NewEngine(nil)
	std, diag, err := engine.InferAndStandardize(table, nil)
	if err != nil {
		t.Fatalf("infer and standardize: %v", err)
	}

	if diag.SourceColumns[RoleCustomerID] != "client_identifier" {
		t.Fatalf("CustomerID mapped to %q", diag.SourceColumns[RoleCustomerID])
	}
	if diag.SourceColumns[RoleTransactionDate] != "sale_date" {
		t.Fatalf("TransactionDate mapped to %q", diag.SourceColumns[RoleTransactionDate])
	}
	if diag.SourceColumns[RoleTransactionAmount] != "gross_amount" {
		t.Fatalf("TransactionAmount mapped to %q", diag.SourceColumns[RoleTransactionAmount])
	}
	if len(diag.Warnings) != 0 {
		t.Fatalf("expected zero warnings, got %v", diag.Warnings)
	}
	if std.Amount[0] != 125 || std.Amount[2] != 17.5 {
		t.Fatalf("currency values not coerced: %v", std.Amount)
	}
}

func TestInfer_UnitsSoldNotPreferredOverCurrency(t *testing.T) {
	t.Parallel()

	table := tableOf(t,
		column("customer_id", "C1", "C2", "C3", "C4"),
		column("order_date", "2023-01-01", "2023-01-02", "2023-01-03", "2023-01-04"),
		column("units_sold", "1", "2", "3", "1"),
		column("total_value", "99.90", "12.00", "55.10", "7.25"),
	)

	engine := NewEngine(nil)
	mapping, _, err := engine.Infer(table)
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	if mapping[RoleTransactionAmount] != "total_value" {
		t.Fatalf("TransactionAmount mapped to %q, want total_value", mapping[RoleTransactionAmount])
	}
}

func TestInfer_MissingAmountFailsWithSuggestion(t *testing.T) {
	t.Parallel()

	table := tableOf(t,
		column("customer_code", "A", "B", "C"),
		column("transaction_dt", "2023-01-01", "2023-01-02", "2023-01-03"),
		column("units_sold", "1", "2", "2"),
	)

	engine := NewEngine(nil)
	_, _, err := engine.Infer(table)
	if err == nil {
		t.Fatalf("expected inference failure")
	}

	var infErr *InferenceError
	if !errors.As(err, &infErr) {
		t.Fatalf("expected *InferenceError, got %T", err)
	}

	found := false
	for _, role := range infErr.Missing {
		if role == RoleTransactionAmount {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing roles %v do not name TransactionAmount", infErr.Missing)
	}

	suggestion, ok := infErr.Suggestions[RoleTransactionAmount]
	if !ok || suggestion == nil {
		t.Fatalf("expected a non-nil suggestion for TransactionAmount")
	}
	if suggestion.BestColumn == "" || len(suggestion.Components) == 0 {
		t.Fatalf("suggestion lacks detail: %+v", suggestion)
	}

	msg := infErr.Error()
	if !strings.Contains(msg, "TransactionAmount") {
		t.Fatalf("error message %q does not name TransactionAmount", msg)
	}
}

func TestInfer_NoColumnMappedTwice(t *testing.T) {
	t.Parallel()

	// 所有列都有点像日期又有点像金额，仍不允许重复占用
	table := tableOf(t,
		column("customer", "C1", "C2", "C3"),
		column("date", "2023-01-01", "2023-01-02", "2023-01-03"),
		column("amount", "10", "20", "30"),
		column("payment_date", "2023-02-01", "2023-02-02", "2023-02-03"),
	)

	engine := NewEngine(nil)
	mapping, _, err := engine.Infer(table)
	if err != nil {
		t.Fatalf("infer: %v", err)
	}

	seen := map[string]Role{}
	for role, col := range mapping {
		if prev, dup := seen[col]; dup {
			t.Fatalf("column %q mapped to both %s and %s", col, prev, role)
		}
		seen[col] = role
	}
}

func TestInfer_Deterministic(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil)
	table := strongTable(t)

	first, firstScores, err := engine.Infer(table)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, secondScores, err := engine.Infer(table)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("mappings differ: %v vs %v", first, second)
	}
	if !reflect.DeepEqual(firstScores, secondScores) {
		t.Fatalf("score details differ between runs")
	}
}

func TestInfer_AllMissingColumnScoresZero(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil)
	empty := column("mystery", "", "", "")
	score := engine.scoreColumn(RoleTransactionAmount, empty)
	if score.Score != 0 {
		t.Fatalf("empty column scored %v", score.Score)
	}
	if _, ok := score.Components["non_null_ratio"]; !ok {
		t.Fatalf("empty column components missing non_null_ratio: %v", score.Components)
	}
}
