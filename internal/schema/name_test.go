package schema

import "testing"

func TestNormalizeColumnName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Customer_ID":     "customer id",
		"  Sale-Date  ":   "sale date",
		"GROSS   AMOUNT":  "gross amount",
		"client__number_": "client number",
	}
	for in, want := range cases {
		if got := normalizeColumnName(in); got != want {
			t.Fatalf("normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPartialRatio_ExactSubstring(t *testing.T) {
	t.Parallel()

	if got := partialRatio("date", "transaction date"); got != 1.0 {
		t.Fatalf("exact substring ratio = %v, want 1.0", got)
	}
	if got := partialRatio("", "anything"); got != 0.0 {
		t.Fatalf("empty string ratio = %v, want 0.0", got)
	}
	if got := partialRatio("amount", "amount"); got != 1.0 {
		t.Fatalf("identical strings ratio = %v, want 1.0", got)
	}
}

func TestRegexBonus(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil)
	cases := []struct {
		name string
		role Role
		want float64
	}{
		{"cust_id", RoleCustomerID, 0.4},
		{"CustomerID", RoleCustomerID, 0.4},
		{"user-id", RoleCustomerID, 0.4},
		{"shipping_city", RoleCustomerID, 0.0},
		{"order_date", RoleTransactionDate, 0.4},
		{"created_timestamp", RoleTransactionDate, 0.4},
		{"date_of_birth", RoleTransactionDate, 0.0},
		{"net_amount", RoleTransactionAmount, 0.4},
		{"payment", RoleTransactionAmount, 0.4},
		{"region", RoleTransactionAmount, 0.0},
	}
	for _, tc := range cases {
		if got := engine.regexBonus(tc.name, tc.role); got != tc.want {
			t.Fatalf("regexBonus(%q, %s) = %v, want %v", tc.name, tc.role, got, tc.want)
		}
	}
}

func TestNameSimilarity_CapsContribution(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil)
	// 完全命中关键词时相似度应为 1.0，贡献封顶 0.3
	if got := engine.nameSimilarity("transaction_date", RoleTransactionDate); got != 1.0 {
		t.Fatalf("nameSimilarity = %v, want 1.0", got)
	}
}
