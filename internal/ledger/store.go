// internal/ledger/store.go
package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/genesis-launchpad/internal/events"
)

type entry struct {
	version uint64
	data    []byte
}

// Store is the keyed record store behind all three ledgers. Each call to
// Atomically is applied as one serializable unit: reads are validated at
// commit and a concurrent change to any record read fails the whole unit
// with ErrConflict. Nothing is visible to other callers before commit.
type Store struct {
	mu        sync.RWMutex
	records   map[solana.PublicKey]entry
	clock     Clock
	publisher events.Publisher
	logger    *zap.Logger

	commits   atomic.Uint64
	conflicts atomic.Uint64
	aborts    atomic.Uint64
}

// NewStore creates an empty store. publisher may be nil.
func NewStore(clock Clock, publisher events.Publisher, logger *zap.Logger) *Store {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Store{
		records:   make(map[solana.PublicKey]entry),
		clock:     clock,
		publisher: publisher,
		logger:    logger.Named("store"),
	}
}

// Clock returns the store's clock.
func (s *Store) Clock() Clock { return s.clock }

// Atomically runs fn as a single all-or-nothing transaction. Events staged
// with Tx.Emit are published only after a successful commit.
func (s *Store) Atomically(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := s.begin(false)
	if err := fn(tx); err != nil {
		s.aborts.Add(1)
		return err
	}
	if err := s.commit(tx); err != nil {
		return err
	}

	s.publish(tx.events)
	return nil
}

// View runs fn against committed state. Writes are rejected with ErrReadOnly
// and staged events are published, which lets read-only queries emit
// advisory events.
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := s.begin(true)
	if err := fn(tx); err != nil {
		return err
	}

	s.publish(tx.events)
	return nil
}

func (s *Store) begin(readOnly bool) *Tx {
	return &Tx{
		store:    s,
		now:      s.clock.Now(),
		reads:    make(map[solana.PublicKey]uint64),
		writes:   make(map[solana.PublicKey][]byte),
		readOnly: readOnly,
	}
}

func (s *Store) commit(tx *Tx) error {
	if len(tx.writes) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for addr, seen := range tx.reads {
		if s.records[addr].version != seen {
			s.conflicts.Add(1)
			return fmt.Errorf("%w: %s", ErrConflict, addr)
		}
	}

	for addr, data := range tx.writes {
		cur := s.records[addr]
		s.records[addr] = entry{version: cur.version + 1, data: data}
	}
	s.commits.Add(1)
	return nil
}

func (s *Store) publish(evs []events.Event) {
	if s.publisher == nil {
		return
	}
	for _, ev := range evs {
		if err := s.publisher.Publish(ev); err != nil {
			s.logger.Warn("Failed to publish event",
				zap.String("event_type", string(ev.Type())),
				zap.Error(err))
		}
	}
}

func (s *Store) read(addr solana.PublicKey) entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[addr]
}

// List returns the addresses of all committed records of a kind, sorted.
func (s *Store) List(kind Kind) []solana.PublicKey {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []solana.PublicKey
	for addr, e := range s.records {
		if k, ok := KindOf(e.data); ok && k == kind {
			out = append(out, addr)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return string(out[i][:]) < string(out[j][:])
	})
	return out
}

// Stats returns commit counters.
func (s *Store) Stats() map[string]uint64 {
	s.mu.RLock()
	n := len(s.records)
	s.mu.RUnlock()
	return map[string]uint64{
		"records":   uint64(n),
		"commits":   s.commits.Load(),
		"conflicts": s.conflicts.Load(),
		"aborts":    s.aborts.Load(),
	}
}
