package audit

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainVerifies(t *testing.T) {
	logger := NewChainLogger(nil, nil)

	e1 := logger.Record("acc-1", "auth.login", "")
	e2 := logger.Record("acc-1", "transactions.transfer", "transaction_id=t1")
	e3 := logger.Record("acc-1", "auth.logout", "")

	chain := []*Entry{e1, e2, e3}
	assert.True(t, VerifyChain(chain))
	assert.True(t, VerifyChain(nil))

	assert.Equal(t, e1.Hash, e2.PreviousHash)
	assert.Equal(t, e2.Hash, e3.PreviousHash)
}

func TestChainDetectsTampering(t *testing.T) {
	logger := NewChainLogger(nil, nil)

	e1 := logger.Record("acc-1", "auth.login", "")
	e2 := logger.Record("acc-1", "transactions.transfer", "amount=1000")
	e3 := logger.Record("acc-1", "auth.logout", "")
	chain := []*Entry{e1, e2, e3}

	original := e2.Detail
	e2.Detail = "amount=1"
	assert.False(t, VerifyChain(chain), "edited detail must break the chain")
	e2.Detail = original

	originalHash := e2.Hash
	e2.Hash = "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"
	assert.False(t, VerifyChain(chain), "edited hash must break the chain")
	e2.Hash = originalHash

	e3.PreviousHash = "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"
	assert.False(t, VerifyChain(chain), "broken link must break the chain")
}

func TestChainDetectsDeletion(t *testing.T) {
	logger := NewChainLogger(nil, nil)

	e1 := logger.Record("acc-1", "a", "")
	logger.Record("acc-1", "b", "")
	e3 := logger.Record("acc-1", "c", "")

	assert.False(t, VerifyChain([]*Entry{e1, e3}))
}

func TestSQLiteSinkRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")

	sink, err := OpenSQLiteSink(path)
	require.NoError(t, err)
	defer sink.Close()

	logger := NewChainLogger(sink, func(err error) { t.Fatalf("sink error: %v", err) })
	logger.Record("acc-1", "auth.login", "")
	logger.Record("acc-1", "loans.apply", "loan_id=l1")
	logger.Record("acc-2", "auth.login", "")

	entries, err := sink.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, VerifyChain(entries))
	assert.Equal(t, "loans.apply", entries[1].Action)
}
