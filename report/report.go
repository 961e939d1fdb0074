// Package report renders ledger accounts for operators. Output includes private keys
// and must never be fed back into transaction logic.
package report

import (
	"fmt"
	"io"
	"iter"

	"github.com/mezonai/simledger/jsonx"
	"github.com/mezonai/simledger/types"
)

const separator = "============================="

// Take collects at most n views from accounts. n <= 0 yields nothing.
func Take(accounts iter.Seq[types.AccountView], n int) []types.AccountView {
	views := make([]types.AccountView, 0)
	if n <= 0 {
		return views
	}
	for view := range accounts {
		views = append(views, view)
		if len(views) == n {
			break
		}
	}
	return views
}

// Print writes up to n accounts followed by their private keys
func Print(w io.Writer, accounts iter.Seq[types.AccountView], n int) error {
	views := Take(accounts, n)
	if len(views) == 0 {
		_, err := fmt.Fprintln(w, "No wallets generated.")
		return err
	}

	ew := &errWriter{w: w}
	ew.printf("Available Accounts\n%s\n", separator)
	for i, view := range views {
		ew.printf("(%d) %s (Amt: %s) (Nonce: %d)\n", i, view.Address, view.Balance.Dec(), view.Nonce)
	}
	ew.printf("\n Private Keys \n%s\n", separator)
	for i, view := range views {
		ew.printf("(%d) %s\n", i, view.PrivateKey)
	}
	return ew.err
}

// WriteJSON writes up to n accounts as an indented JSON array
func WriteJSON(w io.Writer, accounts iter.Seq[types.AccountView], n int) error {
	return jsonx.NewIndentEncoder(w).Encode(Take(accounts, n))
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
