// internal/ledger/tx.go
package ledger

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/genesis-launchpad/internal/events"
)

// Tx is the unit of work handed to ledger operations. It reads through its
// own writes, remembers the version of every record it read, and captures
// the clock once so every check inside an operation sees the same instant.
type Tx struct {
	store    *Store
	now      int64
	reads    map[solana.PublicKey]uint64
	writes   map[solana.PublicKey][]byte
	events   []events.Event
	readOnly bool
}

// Now returns the transaction timestamp in unix seconds.
func (tx *Tx) Now() int64 { return tx.now }

func (tx *Tx) raw(addr solana.PublicKey) ([]byte, bool) {
	if data, ok := tx.writes[addr]; ok {
		return data, true
	}
	e := tx.store.read(addr)
	if _, seen := tx.reads[addr]; !seen {
		tx.reads[addr] = e.version
	}
	if e.version == 0 {
		return nil, false
	}
	return e.data, true
}

// Exists reports whether a record is stored at addr.
func (tx *Tx) Exists(addr solana.PublicKey) bool {
	_, ok := tx.raw(addr)
	return ok
}

// Get decodes the record at addr into rec.
func (tx *Tx) Get(addr solana.PublicKey, rec Record) error {
	data, ok := tx.raw(addr)
	if !ok {
		return fmt.Errorf("%w: %s %s", ErrNotFound, rec.RecordKind(), addr)
	}
	return Decode(data, rec)
}

// Put stages rec at addr, creating or replacing it.
func (tx *Tx) Put(addr solana.PublicKey, rec Record) error {
	if tx.readOnly {
		return ErrReadOnly
	}
	data, err := Encode(rec)
	if err != nil {
		return err
	}
	// Record the pre-image version so blind writes are validated too.
	if _, seen := tx.reads[addr]; !seen {
		if _, staged := tx.writes[addr]; !staged {
			tx.reads[addr] = tx.store.read(addr).version
		}
	}
	tx.writes[addr] = data
	return nil
}

// Create stages rec at addr and fails if a record already exists there.
func (tx *Tx) Create(addr solana.PublicKey, rec Record) error {
	if tx.Exists(addr) {
		return fmt.Errorf("%w: %s %s", ErrAlreadyExists, rec.RecordKind(), addr)
	}
	return tx.Put(addr, rec)
}

// Emit stages an event for publication after commit.
func (tx *Tx) Emit(ev events.Event) {
	tx.events = append(tx.events, ev)
}
