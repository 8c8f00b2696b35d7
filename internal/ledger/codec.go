// internal/ledger/codec.go
package ledger

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// SchemaVersion is written in front of every record body.
const SchemaVersion uint8 = 1

// Kind tags the record layout stored at an address.
type Kind uint8

const (
	KindMint Kind = iota + 1
	KindTokenAccount
	KindLamports
	KindLaunch
	KindVesting
	KindAffiliate
	KindAnalytics
	KindPool
)

func (k Kind) String() string {
	switch k {
	case KindMint:
		return "mint"
	case KindTokenAccount:
		return "token_account"
	case KindLamports:
		return "lamports"
	case KindLaunch:
		return "launch"
	case KindVesting:
		return "vesting"
	case KindAffiliate:
		return "affiliate"
	case KindAnalytics:
		return "analytics"
	case KindPool:
		return "pool"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Record is a borsh-encodable ledger record. Implementations must be
// pointers to structs with exported fixed-size fields.
type Record interface {
	RecordKind() Kind
}

const headerSize = 2

// Encode serializes a record behind its {version, kind} header.
func Encode(rec Record) ([]byte, error) {
	body, err := bin.MarshalBorsh(rec)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", rec.RecordKind(), err)
	}
	out := make([]byte, 0, headerSize+len(body))
	out = append(out, SchemaVersion, byte(rec.RecordKind()))
	return append(out, body...), nil
}

// Decode deserializes data into rec after checking the header.
func Decode(data []byte, rec Record) error {
	if len(data) < headerSize {
		return fmt.Errorf("%w: short record", ErrSchemaMismatch)
	}
	if data[0] != SchemaVersion {
		return fmt.Errorf("%w: version %d", ErrSchemaMismatch, data[0])
	}
	if Kind(data[1]) != rec.RecordKind() {
		return fmt.Errorf("%w: stored %s, want %s", ErrSchemaMismatch, Kind(data[1]), rec.RecordKind())
	}
	if err := bin.UnmarshalBorsh(rec, data[headerSize:]); err != nil {
		return fmt.Errorf("decode %s: %w", rec.RecordKind(), err)
	}
	return nil
}

// KindOf returns the kind stored in an encoded record.
func KindOf(data []byte) (Kind, bool) {
	if len(data) < headerSize {
		return 0, false
	}
	return Kind(data[1]), true
}
