package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEMI(t *testing.T) {
	cases := []struct {
		name      string
		principal float64
		rate      float64
		months    int
		want      float64
	}{
		{"personal 100k 24m", 100000, 10.5, 24, 4637.60},
		{"home 2m 240m", 2000000, 8.5, 240, 17356.46},
		{"default rate 50k 12m", 50000, 10.0, 12, 4395.79},
		{"car 300k 48m", 300000, 9.5, 48, 7536.94},
		{"education 500k 60m", 500000, 8.0, 60, 10138.20},
		{"business 1m 36m", 1000000, 11.0, 36, 32738.72},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EMI(tc.principal, tc.rate, tc.months)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 0.005)
		})
	}
}

func TestEMIInvalidTerms(t *testing.T) {
	_, err := EMI(100000, 10.5, 0)
	assert.ErrorIs(t, err, ErrInvalidLoanTerms)

	_, err = EMI(100000, 10.5, -12)
	assert.ErrorIs(t, err, ErrInvalidLoanTerms)

	_, err = EMI(100000, 0, 12)
	assert.ErrorIs(t, err, ErrInvalidLoanTerms)

	_, err = EMI(100000, -5, 12)
	assert.ErrorIs(t, err, ErrInvalidLoanTerms)
}

func TestInvestmentReturn(t *testing.T) {
	cases := []struct {
		name        string
		amount      float64
		invType     string
		months      int
		wantValue   float64
		wantReturn  float64
	}{
		{"mutual fund 5k 12m", 5000, "mutual_fund", 12, 5634.13, 634.13},
		{"fixed deposit 10k 24m", 10000, "fixed_deposit", 24, 11384.29, 1384.29},
		{"equity 2.5k 6m", 2500, "equity", 6, 2693.46, 193.46},
		{"bonds 8k 18m", 8000, "bonds", 18, 8949.44, 949.44},
		{"gold 1k 12m", 1000, "gold", 12, 1083.00, 83.00},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			value, ret, err := InvestmentReturn(tc.amount, tc.invType, tc.months)
			require.NoError(t, err)
			assert.InDelta(t, tc.wantValue, value, 0.005)
			assert.InDelta(t, tc.wantReturn, ret, 0.005)
		})
	}
}

func TestInvestmentReturnInvalidDuration(t *testing.T) {
	_, _, err := InvestmentReturn(1000, "gold", 0)
	assert.ErrorIs(t, err, ErrInvalidLoanTerms)
}

func TestRateTables(t *testing.T) {
	assert.Equal(t, 10.5, LoanAnnualRate("personal"))
	assert.Equal(t, 8.5, LoanAnnualRate("home"))
	assert.Equal(t, 9.5, LoanAnnualRate("car"))
	assert.Equal(t, 8.0, LoanAnnualRate("education"))
	assert.Equal(t, 11.0, LoanAnnualRate("business"))
	assert.Equal(t, 10.0, LoanAnnualRate("something_else"))

	assert.Equal(t, 12.0, InvestmentAnnualRate("mutual_fund"))
	assert.Equal(t, 6.5, InvestmentAnnualRate("fixed_deposit"))
	assert.Equal(t, 15.0, InvestmentAnnualRate("equity"))
	assert.Equal(t, 7.5, InvestmentAnnualRate("bonds"))
	assert.Equal(t, 8.0, InvestmentAnnualRate("gold"))
	assert.Equal(t, 8.0, InvestmentAnnualRate("something_else"))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.2345))
	assert.Equal(t, 1.24, Round2(1.2351))
	assert.Equal(t, -1.24, Round2(-1.2351))
	assert.Equal(t, 100.0, Round2(100.0))
}
