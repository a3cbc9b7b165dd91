package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondKeywordMatching(t *testing.T) {
	cases := []struct {
		name     string
		message  string
		category Category
		contains string
	}{
		{"home loan", "Tell me about home loans", CategoryLoan, "home loan"},
		{"car loan", "what is the CAR LOAN rate", CategoryLoan, "9.5%"},
		{"emi question", "how is my emi calculated", CategoryLoan, "EMI"},
		{"loan rates", "what are your rates", CategoryLoan, "10.5%"},
		{"mutual fund", "should I buy a mutual fund", CategoryInvestment, "12%"},
		{"fixed deposit", "fixed deposit rates please", CategoryInvestment, "6.5%"},
		{"investment options", "What investment options do you have?", CategoryInvestment, "investment"},
		{"balance", "what is my balance", CategoryGeneral, "balance"},
		{"transfer", "how do I transfer money", CategoryGeneral, "transfer"},
		{"greeting", "hello there", CategoryGeneral, "Hello"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Respond(tc.message, tc.category)
			assert.Contains(t, strings.ToLower(got), strings.ToLower(tc.contains))
		})
	}
}

func TestRespondFirstMatchWins(t *testing.T) {
	// "home loan" contains "loan" keywords of lower priority too; the
	// specific rule must win.
	got := Respond("home loan personal emi", CategoryLoan)
	assert.Contains(t, strings.ToLower(got), "home loan")
}

func TestRespondDefaults(t *testing.T) {
	assert.Equal(t, loanDefault, Respond("xyzzy", CategoryLoan))
	assert.Equal(t, investmentDefault, Respond("xyzzy", CategoryInvestment))
	assert.Equal(t, generalDefault, Respond("xyzzy", CategoryGeneral))

	// Unknown category falls back to the general table.
	assert.Equal(t, generalDefault, Respond("xyzzy", "weather"))
}

func TestRespondIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, Respond("HOME LOAN", CategoryLoan), Respond("home loan", CategoryLoan))
}

func TestServiceSendAndHistory(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	first, err := svc.Send(ctx, "acc-1", "Tell me about home loans", CategoryLoan)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", first.AccountID)
	assert.Equal(t, CategoryLoan, first.Category)
	assert.Contains(t, strings.ToLower(first.Response), "home loan")

	second, err := svc.Send(ctx, "acc-1", "hello", "")
	require.NoError(t, err)
	assert.Equal(t, CategoryGeneral, second.Category)

	_, err = svc.Send(ctx, "acc-2", "hi", CategoryGeneral)
	require.NoError(t, err)

	history, err := svc.History(ctx, "acc-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)
}

func TestServiceRejectsUnknownCategory(t *testing.T) {
	svc := NewService(NewMemoryStore())

	_, err := svc.Send(context.Background(), "acc-1", "hello", "weather")
	assert.ErrorIs(t, err, ErrInvalidCategory)
}
