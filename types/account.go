package types

import (
	"github.com/holiman/uint256"
)

// Account is a ledger record. PrivateKey is kept only because accounts are synthetic.
type Account struct {
	Address    string       `json:"address"`
	PrivateKey string       `json:"-"`
	Balance    *uint256.Int `json:"balance"`
	Nonce      uint64       `json:"nonce"`
}

// AccountView is a detached copy of an Account handed out for display
type AccountView struct {
	Address    string       `json:"address"`
	Balance    *uint256.Int `json:"balance"`
	Nonce      uint64       `json:"nonce"`
	PrivateKey string       `json:"private_key"`
}

func (a *Account) View() AccountView {
	return AccountView{
		Address:    a.Address,
		Balance:    new(uint256.Int).Set(a.Balance),
		Nonce:      a.Nonce,
		PrivateKey: a.PrivateKey,
	}
}
