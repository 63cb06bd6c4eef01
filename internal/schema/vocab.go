package schema

import "regexp"

// MinInferenceScore 目标列入选的最低置信度
const MinInferenceScore = 0.55

// Vocabulary 列名关键词与正则提示表。
// 构造一次后只读，由 Engine 显式持有，不使用包级可变状态。
type Vocabulary struct {
	Keywords       map[Role][]string
	Hints          map[Role][]*regexp.Regexp
	NegativeAmount []string
	MinScore       float64
}

// DefaultVocabulary 内置词表
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		Keywords: map[Role][]string{
			RoleCustomerID: {
				"customer id", "customer", "client", "user",
				"buyer", "account", "member", "subscriber",
			},
			RoleTransactionDate: {
				"transaction date", "date", "order date", "purchase",
				"invoice", "timestamp", "datetime", "sale date",
			},
			RoleTransactionAmount: {
				"amount", "revenue", "sales", "total", "spend",
				"value", "price", "payment", "monetary", "charge",
			},
		},
		Hints: map[Role][]*regexp.Regexp{
			RoleCustomerID: {
				regexp.MustCompile(`(?i)cust(omer)?[_-]?id`),
				regexp.MustCompile(`(?i)client[_-]?id`),
				regexp.MustCompile(`(?i)account[_-]?id`),
				regexp.MustCompile(`(?i)user[_-]?id`),
			},
			RoleTransactionDate: {
				regexp.MustCompile(`(?i)(trans|order|sale|purchase|invoice).*date`),
				regexp.MustCompile(`(?i)date$`),
				regexp.MustCompile(`(?i)timestamp`),
			},
			RoleTransactionAmount: {
				regexp.MustCompile(`(?i)(sales|revenue|total|amount|spend|value|charge)`),
				regexp.MustCompile(`(?i)(net|gross).*amount`),
				regexp.MustCompile(`(?i)payment`),
			},
		},
		// 数量/件数类列即使全是数字也不是金额
		NegativeAmount: []string{"quantity", "qty", "count", "units", "unit", "volume"},
		MinScore:       MinInferenceScore,
	}
}
