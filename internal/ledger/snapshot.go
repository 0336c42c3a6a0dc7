// Package ledger runs the balance pipeline over one snapshot of a group:
// records in, balances and suggested settle-up payments out.
package ledger

import (
	"encoding/binary"
	"encoding/hex"
	"hash"

	"golang.org/x/crypto/blake2b"

	"github.com/mmynk/groupledger/internal/models"
)

// Snapshot is the full input for one evaluation of a group.
type Snapshot struct {
	Members     []models.Member
	Expenses    []models.Expense
	Settlements []models.Settlement
}

// Digest identifies a snapshot by content.
type Digest [blake2b.Size256]byte

// String returns the digest in hex.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Digest hashes every field the pipeline reads. Two snapshots with the same
// digest produce the same Report. Record order is part of the digest.
func (s Snapshot) Digest() Digest {
	h, _ := blake2b.New256(nil) // only errors for oversized keys

	writeInt(h, int64(len(s.Members)))
	for _, m := range s.Members {
		writeString(h, m.UserID)
		writeString(h, m.Name)
	}

	writeInt(h, int64(len(s.Expenses)))
	for _, e := range s.Expenses {
		writeString(h, e.ID)
		writeString(h, e.Amount.String())
		writeString(h, e.PaidBy)
		writeInt(h, int64(len(e.SharedBy)))
		for _, id := range e.SharedBy {
			writeString(h, id)
		}
	}

	writeInt(h, int64(len(s.Settlements)))
	for _, st := range s.Settlements {
		writeString(h, st.ID)
		writeString(h, st.Amount.String())
		writeString(h, st.FromUserID)
		writeString(h, st.ToUserID)
	}

	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

func writeInt(h hash.Hash, n int64) {
	var buf [binary.MaxVarintLen64]byte
	h.Write(buf[:binary.PutVarint(buf[:], n)])
}

// writeString length-prefixes s so that field boundaries are unambiguous.
func writeString(h hash.Hash, s string) {
	writeInt(h, int64(len(s)))
	h.Write([]byte(s))
}
