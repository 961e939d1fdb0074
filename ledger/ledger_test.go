package ledger

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/holiman/uint256"
	"github.com/mezonai/simledger/config"
	"github.com/mezonai/simledger/keys"
	"github.com/mezonai/simledger/logx"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logx.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// sequenceProvider hands out predictable addresses so tests can reason about order
type sequenceProvider struct {
	mu   sync.Mutex
	next uint64
	// when set, every address is derived from this counter value
	repeat *uint64
	fail   error
}

func addressFor(n uint64) string {
	pub := make([]byte, 32)
	binary.BigEndian.PutUint64(pub[24:], n+1)
	return base58.Encode(pub)
}

func (p *sequenceProvider) GenerateKeyPair() (string, string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return "", "", p.fail
	}
	n := p.next
	if p.repeat != nil {
		n = *p.repeat
	}
	p.next++
	return fmt.Sprintf("priv-%d", n), addressFor(n), nil
}

func (p *sequenceProvider) ValidateAddressFormat(address string) bool {
	return keys.IsValidAddress(address)
}

func newTestLedger(t *testing.T, amount uint64) (*Ledger, *sequenceProvider) {
	t.Helper()
	provider := &sequenceProvider{}
	cfg := &config.LedgerConfig{
		DefaultAmount:       uint256.NewInt(amount),
		DefaultNonce:        0,
		DisplayAccountCount: 10,
	}
	return NewLedger(provider, cfg), provider
}

func firstAddress(t *testing.T, l *Ledger) string {
	t.Helper()
	for view := range l.ListAccounts() {
		return view.Address
	}
	t.Fatal("ledger has no accounts")
	return ""
}

func TestCreateAccounts(t *testing.T) {
	l, _ := newTestLedger(t, 100)

	require.NoError(t, l.CreateAccounts(3))
	assert.Equal(t, 3, l.Count())

	require.NoError(t, l.CreateAccounts(2))
	assert.Equal(t, 5, l.Count())

	for view := range l.ListAccounts() {
		assert.Equal(t, uint64(100), view.Balance.Uint64())
		assert.Equal(t, uint64(0), view.Nonce)
		assert.NotEmpty(t, view.PrivateKey)
	}
}

func TestCreateAccountsUsesConfiguredNonce(t *testing.T) {
	cfg := config.DefaultLedgerConfig()
	cfg.DefaultNonce = 7
	l := NewLedger(&sequenceProvider{}, cfg)

	require.NoError(t, l.CreateAccounts(1))
	_, nonce, err := l.GetBalance(addressFor(0))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), nonce)
}

func TestCreateAccountsInvalidCount(t *testing.T) {
	l, _ := newTestLedger(t, 100)

	for _, count := range []int{0, -1} {
		err := l.CreateAccounts(count)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
	assert.Equal(t, 0, l.Count())
}

func TestCreateAccountsProviderFailure(t *testing.T) {
	l, provider := newTestLedger(t, 100)
	provider.fail = errors.New("no entropy")

	err := l.CreateAccounts(2)
	assert.Error(t, err)
	assert.Equal(t, 0, l.Count())
}

func TestCreateAccountsDuplicateWithinBatch(t *testing.T) {
	l, provider := newTestLedger(t, 100)
	fixed := uint64(42)
	provider.repeat = &fixed

	err := l.CreateAccounts(2)
	assert.ErrorIs(t, err, ErrDuplicateAddress)
	assert.Equal(t, 0, l.Count())
}

func TestCreateAccountsDuplicateOfExisting(t *testing.T) {
	l, provider := newTestLedger(t, 100)
	require.NoError(t, l.CreateAccounts(1))
	addr := firstAddress(t, l)
	require.NoError(t, l.DeductFunds(addr, uint256.NewInt(10)))

	fixed := uint64(0)
	provider.repeat = &fixed
	err := l.CreateAccounts(1)
	assert.ErrorIs(t, err, ErrDuplicateAddress)

	// prior record untouched
	balance, _, err := l.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(90), balance.Uint64())
	assert.Equal(t, 1, l.Count())
}

func TestGetBalanceUnknownAddress(t *testing.T) {
	l, _ := newTestLedger(t, 100)
	unknown := addressFor(999)

	balance, nonce, err := l.GetBalance(unknown)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
	assert.Equal(t, uint64(0), nonce)
	assert.False(t, l.AccountExists(unknown))
	assert.Equal(t, 0, l.Count())
}

func TestGetBalanceInvalidAddress(t *testing.T) {
	l, _ := newTestLedger(t, 100)

	_, _, err := l.GetBalance("not-an-address")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = l.HasSufficientFunds("", uint256.NewInt(1))
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestGetBalanceReturnsCopy(t *testing.T) {
	l, _ := newTestLedger(t, 100)
	require.NoError(t, l.CreateAccounts(1))
	addr := firstAddress(t, l)

	balance, _, err := l.GetBalance(addr)
	require.NoError(t, err)
	balance.SetUint64(0)

	balance, _, err = l.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), balance.Uint64())
}

func TestHasSufficientFunds(t *testing.T) {
	l, _ := newTestLedger(t, 100)
	require.NoError(t, l.CreateAccounts(1))
	addr := firstAddress(t, l)

	tests := []struct {
		amount uint64
		want   bool
	}{
		{0, true},
		{99, true},
		{100, true},
		{101, false},
	}
	for _, tt := range tests {
		ok, err := l.HasSufficientFunds(addr, uint256.NewInt(tt.amount))
		require.NoError(t, err)
		assert.Equal(t, tt.want, ok, "amount %d", tt.amount)
	}

	ok, err := l.HasSufficientFunds(addressFor(500), uint256.NewInt(1))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeductFunds(t *testing.T) {
	l, _ := newTestLedger(t, 100)
	require.NoError(t, l.CreateAccounts(1))
	addr := firstAddress(t, l)

	require.NoError(t, l.DeductFunds(addr, uint256.NewInt(100)))
	balance, _, _ := l.GetBalance(addr)
	assert.True(t, balance.IsZero())

	err := l.DeductFunds(addr, uint256.NewInt(1))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	balance, _, _ = l.GetBalance(addr)
	assert.True(t, balance.IsZero())

	require.NoError(t, l.DeductFunds(addr, nil))
}

func TestMutationsOnUnknownAddress(t *testing.T) {
	l, _ := newTestLedger(t, 100)
	unknown := addressFor(77)

	assert.ErrorIs(t, l.DeductFunds(unknown, uint256.NewInt(0)), ErrAccountNotFound)
	assert.ErrorIs(t, l.AddFunds(unknown, uint256.NewInt(5)), ErrAccountNotFound)
	assert.ErrorIs(t, l.IncrementNonce(unknown), ErrAccountNotFound)

	assert.False(t, l.AccountExists(unknown))
	assert.Equal(t, 0, l.Count())
}

func TestIncrementNonceInvalidAddress(t *testing.T) {
	l, _ := newTestLedger(t, 100)
	assert.ErrorIs(t, l.IncrementNonce("0OIl"), ErrInvalidAddress)
}

func TestIncrementNonceSequence(t *testing.T) {
	l, _ := newTestLedger(t, 100)
	require.NoError(t, l.CreateAccounts(1))
	addr := firstAddress(t, l)

	last := uint64(0)
	for i := 1; i <= 10; i++ {
		require.NoError(t, l.IncrementNonce(addr))
		_, nonce, err := l.GetBalance(addr)
		require.NoError(t, err)
		assert.Equal(t, uint64(i), nonce)
		assert.Greater(t, nonce, last)
		last = nonce
	}
}

func TestAddThenDeductRoundTrip(t *testing.T) {
	l, _ := newTestLedger(t, 100)
	require.NoError(t, l.CreateAccounts(1))
	addr := firstAddress(t, l)

	for _, amount := range []uint64{0, 1, 100, 1 << 40} {
		require.NoError(t, l.AddFunds(addr, uint256.NewInt(amount)))
		require.NoError(t, l.DeductFunds(addr, uint256.NewInt(amount)))
		balance, _, _ := l.GetBalance(addr)
		assert.Equal(t, uint64(100), balance.Uint64())
	}
}

func TestAddFundsOverflow(t *testing.T) {
	l, _ := newTestLedger(t, 1)
	require.NoError(t, l.CreateAccounts(1))
	addr := firstAddress(t, l)

	maxValue := new(uint256.Int).SetAllOne()
	err := l.AddFunds(addr, maxValue)
	assert.ErrorIs(t, err, ErrBalanceOverflow)

	balance, _, _ := l.GetBalance(addr)
	assert.Equal(t, uint64(1), balance.Uint64())
}

func TestConcreteScenario(t *testing.T) {
	l, _ := newTestLedger(t, 100)
	require.NoError(t, l.CreateAccounts(1))
	addr := firstAddress(t, l)

	require.NoError(t, l.DeductFunds(addr, uint256.NewInt(30)))
	balance, _, _ := l.GetBalance(addr)
	assert.Equal(t, uint64(70), balance.Uint64())

	require.NoError(t, l.AddFunds(addr, uint256.NewInt(50)))
	balance, _, _ = l.GetBalance(addr)
	assert.Equal(t, uint64(120), balance.Uint64())

	require.NoError(t, l.IncrementNonce(addr))
	require.NoError(t, l.IncrementNonce(addr))

	err := l.DeductFunds(addr, uint256.NewInt(200))
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	balance, nonce, err := l.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(120), balance.Uint64())
	assert.Equal(t, uint64(2), nonce)
}

func TestConcurrentDeductionsNeverOverdraw(t *testing.T) {
	l, _ := newTestLedger(t, 1000)
	require.NoError(t, l.CreateAccounts(1))
	addr := firstAddress(t, l)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.DeductFunds(addr, uint256.NewInt(7)); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, ErrInsufficientFunds)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000/7, succeeded)
	balance, _, _ := l.GetBalance(addr)
	assert.Equal(t, uint64(1000%7), balance.Uint64())
}

func TestConcurrentNonceIncrements(t *testing.T) {
	l, _ := newTestLedger(t, 100)
	require.NoError(t, l.CreateAccounts(1))
	addr := firstAddress(t, l)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.IncrementNonce(addr))
		}()
	}
	wg.Wait()

	_, nonce, _ := l.GetBalance(addr)
	assert.Equal(t, uint64(100), nonce)
}

func TestListAccountsCreationOrderAndRestartable(t *testing.T) {
	l, _ := newTestLedger(t, 100)
	require.NoError(t, l.CreateAccounts(5))

	collect := func() []string {
		var addrs []string
		for view := range l.ListAccounts() {
			addrs = append(addrs, view.Address)
		}
		return addrs
	}

	first := collect()
	require.Len(t, first, 5)
	for i, addr := range first {
		assert.Equal(t, addressFor(uint64(i)), addr)
	}
	assert.Equal(t, first, collect())
}

func TestListAccountsEarlyStopAndDetachedViews(t *testing.T) {
	l, _ := newTestLedger(t, 100)
	require.NoError(t, l.CreateAccounts(3))

	n := 0
	for view := range l.ListAccounts() {
		view.Balance.SetUint64(0)
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)

	for view := range l.ListAccounts() {
		assert.Equal(t, uint64(100), view.Balance.Uint64())
	}
}

func TestIndependentLedgers(t *testing.T) {
	a, _ := newTestLedger(t, 100)
	b, _ := newTestLedger(t, 100)

	require.NoError(t, a.CreateAccounts(1))
	addr := firstAddress(t, a)

	assert.True(t, a.AccountExists(addr))
	assert.False(t, b.AccountExists(addr))
}

func TestNewLedgerWithEd25519Provider(t *testing.T) {
	l := NewLedger(keys.NewEd25519Provider(), nil)
	require.NoError(t, l.CreateAccounts(2))

	for view := range l.ListAccounts() {
		derived, err := keys.AddressFromPrivateKey(view.PrivateKey)
		require.NoError(t, err)
		assert.Equal(t, view.Address, derived)
		assert.Equal(t, uint64(config.DefaultAmount), view.Balance.Uint64())
	}
}
