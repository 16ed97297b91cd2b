package types

import (
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// Entry is a single distribution commitment: `amount` tokens owed to
// `account`, identified by a distribution-unique `index`.
// Entries are immutable once a tree has been built over them.
type Entry struct {
	Index   uint64         `json:"index"`
	Account common.Address `json:"account"`
	Amount  *big.Int       `json:"amount"`
}

// SortEntriesByIndex returns a copy of entries sorted by ascending index.
// Ascending index is the canonical leaf ordering for tree construction,
// so permuting the input entry list never changes the resulting root.
func SortEntriesByIndex(entries []*Entry) []*Entry {
	sorted := make([]*Entry, len(entries))
	copy(sorted, entries)

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Index < sorted[j].Index
	})

	return sorted
}

// TotalAmount sums the amounts of all entries. The sum is the balance the
// distribution pool must be funded with for every claim to succeed.
func TotalAmount(entries []*Entry) *big.Int {
	total := new(big.Int)
	for _, e := range entries {
		if e.Amount != nil {
			total.Add(total, e.Amount)
		}
	}
	return total
}
