// Package chat is the keyword-matched assistant: a stateless responder plus a
// persisted per-account message history.
package chat

import (
	"errors"
	"strings"
	"time"
)

// Category is the closed set of conversation topics a client may select.
type Category string

const (
	CategoryGeneral    Category = "general"
	CategoryLoan       Category = "loan"
	CategoryInvestment Category = "investment"
)

// ValidCategory reports whether c is a known topic.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryGeneral, CategoryLoan, CategoryInvestment:
		return true
	}
	return false
}

// Message is one stored exchange: the customer's message and the generated
// response.
type Message struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Category  Category  `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

var ErrInvalidCategory = errors.New("invalid chat category")

// rule maps a substring to a canned response. Rules are checked in order and
// the first match wins, so more specific keywords must come first.
type rule struct {
	keyword  string
	response string
}

var loanRules = []rule{
	{"home loan", "Our home loans start at 8.5% per annum for tenures up to 30 years. You can apply for a home loan from the Loans section and see your exact EMI before you submit."},
	{"car loan", "Car loans are available at 9.5% per annum for up to 7 years. Apply from the Loans section to see your EMI instantly."},
	{"education", "Education loans carry our lowest rate, 8.0% per annum, with repayment starting after your course ends."},
	{"business", "Business loans are offered at 11.0% per annum. Have your income details ready when you apply."},
	{"personal", "Personal loans at 10.5% per annum need no collateral and are usually decided within a day."},
	{"emi", "Your EMI is fixed for the whole tenure and is shown on each loan application before you submit it."},
	{"rate", "Current annual rates: personal 10.5%, home 8.5%, car 9.5%, education 8.0%, business 11.0%."},
	{"apply", "To apply, open the Loans section, pick a product, and enter the amount and tenure. You will see the EMI before confirming."},
	{"status", "You can check the status of every application in the Loans section; approved loans are credited to your account on disbursement."},
}

const loanDefault = "I can help with loans: we offer personal, home, car, education and business loans. Ask about rates, EMI, or how to apply."

var investmentRules = []rule{
	{"mutual fund", "Mutual funds project around 12% annual growth. You can start from the Investments section with any amount and duration."},
	{"fixed deposit", "Fixed deposits earn a guaranteed 6.5% per annum. Your projected value is shown before you confirm."},
	{"equity", "Equity investments project around 15% annual growth but carry market risk. Invest from the Investments section."},
	{"bond", "Bonds offer stable returns around 7.5% per annum, a good fit for conservative portfolios."},
	{"gold", "Gold investments project around 8% annual growth and hedge against inflation."},
	{"return", "Each investment shows its projected return up front, compounded monthly at the product's annual rate."},
	{"risk", "Fixed deposits and bonds are low risk, mutual funds moderate, and equity the highest risk with the highest projected return."},
	{"option", "Our investment options are mutual funds, fixed deposits, equity, bonds and gold, each with its projected annual return shown before you invest."},
}

const investmentDefault = "I can help with investments: choose from mutual funds, fixed deposits, equity, bonds or gold, and see your projected return before you commit."

var generalRules = []rule{
	{"balance", "Your current balance is shown on the dashboard, and every transaction that changed it appears in your history."},
	{"transfer", "You can transfer money to any account using its account number from the Transfer section. Transfers are instant."},
	{"account number", "Your account number starts with NEX and is shown on your dashboard. Share it to receive transfers."},
	{"loan", "For loan queries, switch to the loan topic or visit the Loans section to see products and rates."},
	{"invest", "For investment queries, switch to the investment topic or visit the Investments section to see products and projected returns."},
	{"service", "We offer instant transfers, five investment products, five loan products with fixed EMIs, and this assistant for your banking questions."},
	{"hello", "Hello! I can answer questions about your account, transfers, investments and loans."},
	{"hi", "Hello! I can answer questions about your account, transfers, investments and loans."},
	{"help", "I can answer questions about your account, transfers, investments and loans. What would you like to know?"},
}

const generalDefault = "I can help with questions about your account, transfers, investments and loans. Could you tell me a bit more about what you need?"

var rulesByCategory = map[Category]struct {
	rules []rule
	def   string
}{
	CategoryGeneral:    {generalRules, generalDefault},
	CategoryLoan:       {loanRules, loanDefault},
	CategoryInvestment: {investmentRules, investmentDefault},
}

// Respond returns the canned answer for a message: the first rule of the
// category whose keyword appears in the lowercased message, or the category's
// default. It is a pure function and safe for concurrent use.
func Respond(message string, category Category) string {
	set, ok := rulesByCategory[category]
	if !ok {
		set = rulesByCategory[CategoryGeneral]
	}
	lower := strings.ToLower(message)
	for _, r := range set.rules {
		if strings.Contains(lower, r.keyword) {
			return r.response
		}
	}
	return set.def
}
