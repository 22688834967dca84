// Package actfmt persists compiled lexer action tables.
//
// A table file is a fixed preamble followed by a canonical CBOR body:
//
//	MAGIC "LXAT"(4) | VERSION uint16 | FLAGS uint16 | BODY_LEN uint32 | BODY
//
// Integers in the preamble are little-endian. Actions in the body are stored as
// ANTLR ATN triples (type, data1, data2); sequences refer to actions by index. The
// BLAKE2b-256 digest of the body identifies the table: equal tables always encode
// to the same body.
package actfmt

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/opal-lang/lexaction/core/invariant"
	"github.com/opal-lang/lexaction/core/lexaction"
)

const (
	// Magic is the file magic number "LXAT"
	Magic = "LXAT"

	// Version is the file format version
	Version uint16 = 0x0001

	preambleLen = 12

	// MaxBodyLen bounds the body a reader accepts.
	MaxBodyLen = 16 * 1024 * 1024
)

// Flags is a bitmask for optional features. No flags are defined yet.
type Flags uint16

var (
	ErrInvalidMagic       = errors.New("invalid magic")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrUnsupportedFlags   = errors.New("unsupported flags")
	ErrBodyTooLarge       = errors.New("body too large")
)

// Compiled is a grammar's action table together with the grammar name.
type Compiled struct {
	Grammar string
	Table   *lexaction.Table
}

// canonicalTable is the CBOR body.
type canonicalTable struct {
	_         struct{} `cbor:",toarray"`
	Version   uint8
	Grammar   string
	Actions   []canonicalAction
	Sequences [][]canonicalEntry
}

type canonicalAction struct {
	_     struct{} `cbor:",toarray"`
	Type  uint8
	Data1 int64
	Data2 int64
}

type canonicalEntry struct {
	_      struct{} `cbor:",toarray"`
	Action uint32
	Bound  bool
	Offset int64
}

// Write writes c to w and returns the BLAKE2b-256 digest of the body.
func Write(w io.Writer, c *Compiled) ([32]byte, error) {
	body, err := encodeBody(c)
	if err != nil {
		return [32]byte{}, err
	}
	if len(body) > MaxBodyLen {
		return [32]byte{}, fmt.Errorf("%w: %d bytes (max %d)", ErrBodyTooLarge, len(body), MaxBodyLen)
	}

	var preamble [preambleLen]byte
	copy(preamble[0:4], Magic)
	binary.LittleEndian.PutUint16(preamble[4:6], Version)
	binary.LittleEndian.PutUint16(preamble[6:8], 0)
	binary.LittleEndian.PutUint32(preamble[8:12], uint32(len(body)))

	if _, err := w.Write(preamble[:]); err != nil {
		return [32]byte{}, fmt.Errorf("write preamble: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return [32]byte{}, fmt.Errorf("write body: %w", err)
	}
	return blake2b.Sum256(body), nil
}

// Digest returns the digest Write would return for c.
func Digest(c *Compiled) ([32]byte, error) {
	body, err := encodeBody(c)
	if err != nil {
		return [32]byte{}, err
	}
	return blake2b.Sum256(body), nil
}

// Read reads a table file and returns the table and the digest of its body.
func Read(r io.Reader) (*Compiled, [32]byte, error) {
	var preamble [preambleLen]byte
	if _, err := io.ReadFull(r, preamble[:]); err != nil {
		return nil, [32]byte{}, fmt.Errorf("read preamble: %w", err)
	}

	if magic := string(preamble[0:4]); magic != Magic {
		return nil, [32]byte{}, fmt.Errorf("%w: got %q, expected %q", ErrInvalidMagic, magic, Magic)
	}
	if version := binary.LittleEndian.Uint16(preamble[4:6]); version != Version {
		return nil, [32]byte{}, fmt.Errorf("%w: got 0x%04x, expected 0x%04x", ErrUnsupportedVersion, version, Version)
	}
	if flags := Flags(binary.LittleEndian.Uint16(preamble[6:8])); flags != 0 {
		return nil, [32]byte{}, fmt.Errorf("%w: 0x%04x", ErrUnsupportedFlags, uint16(flags))
	}

	bodyLen := binary.LittleEndian.Uint32(preamble[8:12])
	if bodyLen > MaxBodyLen {
		return nil, [32]byte{}, fmt.Errorf("%w: %d bytes (max %d)", ErrBodyTooLarge, bodyLen, MaxBodyLen)
	}

	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, [32]byte{}, fmt.Errorf("read body: %w", err)
	}

	c, err := decodeBody(body)
	if err != nil {
		return nil, [32]byte{}, fmt.Errorf("parse body: %w", err)
	}
	return c, blake2b.Sum256(body), nil
}

// ReadBytes is Read over an in-memory file.
func ReadBytes(data []byte) (*Compiled, [32]byte, error) {
	return Read(bytes.NewReader(data))
}

func encodeBody(c *Compiled) ([]byte, error) {
	invariant.NotNil(c, "compiled table")
	invariant.NotNil(c.Table, "compiled table")

	t := c.Table
	ct := canonicalTable{
		Version:   1,
		Grammar:   c.Grammar,
		Actions:   make([]canonicalAction, t.NumActions()),
		Sequences: make([][]canonicalEntry, t.NumSequences()),
	}

	for i := range ct.Actions {
		typ, d1, d2 := EncodeATN(t.Action(i))
		ct.Actions[i] = canonicalAction{Type: uint8(typ), Data1: int64(d1), Data2: int64(d2)}
	}

	for i := range ct.Sequences {
		seq := t.Sequence(i)
		entries := make([]canonicalEntry, seq.Len())
		for j := range entries {
			e := seq.At(j)
			idx := t.ActionIndex(e.Action)
			invariant.Invariant(idx >= 0, "sequence %d holds action %s missing from the table", i, e.Action)
			entries[j] = canonicalEntry{Action: uint32(idx), Bound: e.Bound, Offset: int64(e.Offset)}
		}
		ct.Sequences[i] = entries
	}

	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("create CBOR encoder: %w", err)
	}
	data, err := encMode.Marshal(ct)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	return data, nil
}

func decodeBody(body []byte) (*Compiled, error) {
	decMode, err := cbor.DecOptions{
		MaxArrayElements: 1 << 20,
		MaxNestedLevels:  8,
	}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("create CBOR decoder: %w", err)
	}

	var ct canonicalTable
	if err := decMode.Unmarshal(body, &ct); err != nil {
		return nil, err
	}
	if ct.Version != 1 {
		return nil, fmt.Errorf("unsupported body version %d", ct.Version)
	}

	b := lexaction.NewBuilder()
	actions := make([]lexaction.Action, len(ct.Actions))
	for i, ca := range ct.Actions {
		if err := checkWord(ca.Data1); err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		if err := checkWord(ca.Data2); err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		a, err := DecodeATN(int(ca.Type), int(ca.Data1), int(ca.Data2))
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		if got := b.InternAction(a); got != i {
			return nil, fmt.Errorf("action %d: duplicate of action %d", i, got)
		}
		actions[i] = a
	}

	for i, stored := range ct.Sequences {
		entries := make([]lexaction.Entry, len(stored))
		for j, ce := range stored {
			if int(ce.Action) >= len(actions) {
				return nil, fmt.Errorf("sequence %d entry %d: action index %d out of range [0, %d)", i, j, ce.Action, len(actions))
			}
			a := actions[ce.Action]
			if ce.Bound {
				if !a.IsPositionDependent() {
					return nil, fmt.Errorf("sequence %d entry %d: %s cannot carry an offset", i, j, a)
				}
				if err := checkWord(ce.Offset); err != nil {
					return nil, fmt.Errorf("sequence %d entry %d: %w", i, j, err)
				}
			}
			entries[j] = lexaction.Entry{Action: a, Offset: int(ce.Offset), Bound: ce.Bound}
		}
		if got := b.InternSequence(lexaction.FromEntries(entries...)); got != i {
			return nil, fmt.Errorf("sequence %d: duplicate of sequence %d", i, got)
		}
	}

	return &Compiled{Grammar: ct.Grammar, Table: b.Build()}, nil
}

func checkWord(v int64) error {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return fmt.Errorf("value %d does not fit in 32 bits", v)
	}
	return nil
}
