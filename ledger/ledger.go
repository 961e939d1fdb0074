package ledger

import (
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/holiman/uint256"
	"github.com/mezonai/simledger/config"
	"github.com/mezonai/simledger/keys"
	"github.com/mezonai/simledger/logx"
	"github.com/mezonai/simledger/monitoring"
	"github.com/mezonai/simledger/types"
)

var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInvalidAddress    = errors.New("invalid address")
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBalanceOverflow   = errors.New("balance overflow")
	ErrDuplicateAddress  = errors.New("duplicate address")

	// ErrInvariantViolation signals a ledger bug, never caller misuse
	ErrInvariantViolation = errors.New("ledger invariant violated")
)

// Ledger holds every simulated account in memory. The zero value is not usable, use NewLedger.
type Ledger struct {
	mu       sync.RWMutex
	accounts map[string]*types.Account
	// creation order, the map has none
	order    []string
	provider keys.Provider
	cfg      *config.LedgerConfig
}

func NewLedger(provider keys.Provider, cfg *config.LedgerConfig) *Ledger {
	if cfg == nil {
		cfg = config.DefaultLedgerConfig()
	}
	return &Ledger{
		accounts: make(map[string]*types.Account),
		order:    make([]string, 0),
		provider: provider,
		cfg:      cfg,
	}
}

// CreateAccounts generates count key pairs and stores a fresh account for each.
// Either all count accounts are added or none are.
func (l *Ledger) CreateAccounts(count int) error {
	if count <= 0 {
		monitoring.RecordRejectedOp(monitoring.OpInvalidArgument)
		return fmt.Errorf("%w: account count must be positive, got %d", ErrInvalidArgument, count)
	}

	// key generation happens outside the lock
	batch := make([]*types.Account, 0, count)
	seen := make(map[string]struct{}, count)
	for i := 0; i < count; i++ {
		privKey, addr, err := l.provider.GenerateKeyPair()
		if err != nil {
			return fmt.Errorf("failed to generate key pair %d: %w", i, err)
		}
		if _, dup := seen[addr]; dup {
			monitoring.RecordRejectedOp(monitoring.OpDuplicateAddress)
			return fmt.Errorf("%w: %s generated twice in one batch", ErrDuplicateAddress, addr)
		}
		seen[addr] = struct{}{}
		batch = append(batch, &types.Account{
			Address:    addr,
			PrivateKey: privKey,
			Balance:    new(uint256.Int).Set(l.cfg.DefaultAmount),
			Nonce:      l.cfg.DefaultNonce,
		})
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, acc := range batch {
		if _, existed := l.accounts[acc.Address]; existed {
			monitoring.RecordRejectedOp(monitoring.OpDuplicateAddress)
			return fmt.Errorf("%w: %s already in ledger", ErrDuplicateAddress, acc.Address)
		}
	}
	for _, acc := range batch {
		l.accounts[acc.Address] = acc
		l.order = append(l.order, acc.Address)
	}

	monitoring.RecordAccountsCreated(count)
	monitoring.SetAccountCount(len(l.order))
	logx.Info("LEDGER", fmt.Sprintf("Created %d accounts with balance %s and nonce %d", count, l.cfg.DefaultAmount.Dec(), l.cfg.DefaultNonce))
	return nil
}

// GetBalance returns balance and nonce for address. Unknown addresses read as (0, 0).
func (l *Ledger) GetBalance(address string) (*uint256.Int, uint64, error) {
	if !l.provider.ValidateAddressFormat(address) {
		monitoring.RecordRejectedOp(monitoring.OpInvalidAddress)
		return uint256.NewInt(0), 0, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	acc, ok := l.accounts[address]
	if !ok {
		return uint256.NewInt(0), 0, nil
	}
	return new(uint256.Int).Set(acc.Balance), acc.Nonce, nil
}

// HasSufficientFunds reports whether the balance of address covers amount
func (l *Ledger) HasSufficientFunds(address string, amount *uint256.Int) (bool, error) {
	amount = orZero(amount)
	logx.Debug("LEDGER", fmt.Sprintf("Checking if %s has %s", address, amount.Dec()))

	balance, _, err := l.GetBalance(address)
	if err != nil {
		return false, err
	}
	if balance.Lt(amount) {
		logx.Debug("LEDGER", "Insufficient funds.")
		return false, nil
	}
	logx.Debug("LEDGER", "Sufficient funds.")
	return true, nil
}

// DeductFunds subtracts amount from an existing account. The sufficiency check and the
// subtraction happen under one lock so concurrent deductions cannot overdraw.
func (l *Ledger) DeductFunds(address string, amount *uint256.Int) error {
	amount = orZero(amount)
	logx.Debug("LEDGER", fmt.Sprintf("Deducting %s from %s", amount.Dec(), address))

	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[address]
	if !ok {
		monitoring.RecordRejectedOp(monitoring.OpAccountNotFound)
		return fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}
	if acc.Balance.Lt(amount) {
		monitoring.RecordRejectedOp(monitoring.OpInsufficientFunds)
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientFunds, address, acc.Balance.Dec(), amount.Dec())
	}

	logx.Debug("LEDGER", fmt.Sprintf("Sender's previous balance: %s", acc.Balance.Dec()))
	newBalance, underflow := new(uint256.Int).SubOverflow(acc.Balance, amount)
	if underflow {
		monitoring.RecordRejectedOp(monitoring.OpInvariantViolation)
		return logx.Errorf("%w: balance of %s would go below zero (%s - %s)", ErrInvariantViolation, address, acc.Balance.Dec(), amount.Dec())
	}
	acc.Balance = newBalance

	monitoring.RecordDebit(amount)
	logx.Debug("LEDGER", fmt.Sprintf("Deduct funds complete. Sender's new balance: %s", acc.Balance.Dec()))
	return nil
}

// AddFunds credits amount to an existing account. Balances are capped at 2^256-1;
// a credit past that fails with ErrBalanceOverflow.
func (l *Ledger) AddFunds(address string, amount *uint256.Int) error {
	amount = orZero(amount)
	logx.Debug("LEDGER", fmt.Sprintf("Adding %s to %s", amount.Dec(), address))

	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[address]
	if !ok {
		monitoring.RecordRejectedOp(monitoring.OpAccountNotFound)
		return fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}

	logx.Debug("LEDGER", fmt.Sprintf("Recipient's previous balance: %s", acc.Balance.Dec()))
	newBalance, overflow := new(uint256.Int).AddOverflow(acc.Balance, amount)
	if overflow {
		monitoring.RecordRejectedOp(monitoring.OpBalanceOverflow)
		return fmt.Errorf("%w: %s + %s", ErrBalanceOverflow, acc.Balance.Dec(), amount.Dec())
	}
	acc.Balance = newBalance

	monitoring.RecordCredit(amount)
	logx.Debug("LEDGER", fmt.Sprintf("Adding funds complete. Recipient's new balance: %s", acc.Balance.Dec()))
	return nil
}

// IncrementNonce advances the nonce of a managed account by one
func (l *Ledger) IncrementNonce(address string) error {
	logx.Debug("LEDGER", fmt.Sprintf("Increasing nonce for %s", address))
	if !l.provider.ValidateAddressFormat(address) {
		monitoring.RecordRejectedOp(monitoring.OpInvalidAddress)
		return fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// phantom nonces would hide caller bugs, so unknown addresses are rejected
	acc, ok := l.accounts[address]
	if !ok {
		monitoring.RecordRejectedOp(monitoring.OpAccountNotFound)
		return fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}
	acc.Nonce++

	monitoring.IncreaseNonceIncrements()
	logx.Debug("LEDGER", fmt.Sprintf("New nonce for %s: %d", address, acc.Nonce))
	return nil
}

// AccountExists checks if an account exists
func (l *Ledger) AccountExists(address string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.accounts[address]
	return ok
}

func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}

// ListAccounts yields a copy of each account in creation order. The sequence is lazy and
// can be ranged over any number of times; each step reads current state.
// The views include private keys and are meant for operator display only.
func (l *Ledger) ListAccounts() iter.Seq[types.AccountView] {
	return func(yield func(types.AccountView) bool) {
		for i := 0; ; i++ {
			view, ok := l.viewAt(i)
			if !ok {
				return
			}
			if !yield(view) {
				return
			}
		}
	}
}

func (l *Ledger) viewAt(i int) (types.AccountView, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i >= len(l.order) {
		return types.AccountView{}, false
	}
	return l.accounts[l.order[i]].View(), true
}

func orZero(amount *uint256.Int) *uint256.Int {
	if amount == nil {
		return uint256.NewInt(0)
	}
	return amount
}
