// Package codec implements the recursive length-prefixed byte-sequence
// encoding used for BCOS transactions (RLP).
//
// A value is either a byte buffer or an ordered list of values. The wire
// format is canonical, so every logical value has exactly one encoding:
//
//	single byte < 0x80        -> the byte itself
//	buffer of 0..55 bytes     -> 0x80+len || data
//	buffer of 56+ bytes       -> 0xB7+len(len) || len (big-endian, minimal) || data
//	list payload 0..55 bytes  -> 0xC0+len || payload
//	list payload 56+ bytes    -> 0xF7+len(len) || len (big-endian, minimal) || payload
//
// Encoding and the low-level framing checks are delegated to go-ethereum's
// rlp package; this package adds the recursive value type and maps every
// framing failure onto ErrMalformedEncoding.
//
// References:
//   - https://ethereum.org/en/developers/docs/data-structures-and-encoding/rlp/
package codec

import (
	"bytes"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// maxDepth bounds list nesting accepted by Decode.
const maxDepth = 128

// Item is a byte-sequence value: a byte buffer or a list of items.
//
// The zero Item is the empty buffer.
type Item struct {
	data   []byte
	items  []Item
	isList bool
}

// Bytes returns a buffer item. The slice is not copied.
func Bytes(b []byte) Item {
	return Item{data: b}
}

// List returns a list item holding the given children in order.
func List(items ...Item) Item {
	if items == nil {
		items = []Item{}
	}
	return Item{items: items, isList: true}
}

// BigInt returns a buffer item holding the minimal big-endian form of n.
// Zero and nil encode as the empty buffer.
func BigInt(n *big.Int) Item {
	if n == nil || n.Sign() == 0 {
		return Item{}
	}
	return Item{data: n.Bytes()}
}

// IsList reports whether the item is a list.
func (i Item) IsList() bool { return i.isList }

// Bytes returns the buffer content, or nil for a list.
func (i Item) Bytes() []byte {
	if i.isList {
		return nil
	}
	return i.data
}

// Items returns the children of a list item, or nil for a buffer.
func (i Item) Items() []Item {
	if !i.isList {
		return nil
	}
	return i.items
}

// Len returns the number of bytes of a buffer or the number of children of a list.
func (i Item) Len() int {
	if i.isList {
		return len(i.items)
	}
	return len(i.data)
}

// BigInt interprets a buffer item as an unsigned big-endian integer.
//
// Integer buffers are canonical only without leading zero bytes; a buffer
// starting with 0x00 is rejected with ErrMalformedEncoding.
func (i Item) BigInt() (*big.Int, error) {
	if i.isList {
		return nil, errors.Wrap(ErrMalformedEncoding, "expected buffer, got list")
	}
	if len(i.data) > 0 && i.data[0] == 0 {
		return nil, errors.Wrap(ErrMalformedEncoding, "integer has leading zero byte")
	}
	return new(big.Int).SetBytes(i.data), nil
}

// Equal reports whether two items hold the same value.
func (i Item) Equal(other Item) bool {
	if i.isList != other.isList {
		return false
	}
	if !i.isList {
		return bytes.Equal(i.data, other.data)
	}
	if len(i.items) != len(other.items) {
		return false
	}
	for k := range i.items {
		if !i.items[k].Equal(other.items[k]) {
			return false
		}
	}
	return true
}

// EncodeRLP implements rlp.Encoder.
func (i Item) EncodeRLP(w io.Writer) error {
	buf := rlp.NewEncoderBuffer(w)
	i.writeTo(buf)
	return buf.Flush()
}

func (i Item) writeTo(buf rlp.EncoderBuffer) {
	if !i.isList {
		buf.WriteBytes(i.data)
		return
	}
	idx := buf.List()
	for _, child := range i.items {
		child.writeTo(buf)
	}
	buf.ListEnd(idx)
}

// Encode returns the canonical encoding of item.
func Encode(item Item) ([]byte, error) {
	out, err := rlp.EncodeToBytes(item)
	if err != nil {
		return nil, errors.Wrap(err, "rlp encode")
	}
	return out, nil
}

// Decode parses exactly one encoded item from data.
//
// Decode fails with ErrMalformedEncoding when:
//   - a length prefix is not in minimal form or a single byte < 0x80 is
//     wrapped in a length prefix
//   - a declared buffer or list length runs past the available bytes
//   - bytes remain after the item (at top level or inside a list)
//   - lists nest deeper than 128 levels
func Decode(data []byte) (Item, error) {
	item, rest, err := decodeOne(data, 0)
	if err != nil {
		return Item{}, err
	}
	if len(rest) != 0 {
		return Item{}, errors.Wrapf(ErrMalformedEncoding, "%d trailing bytes after value", len(rest))
	}
	return item, nil
}

func decodeOne(data []byte, depth int) (Item, []byte, error) {
	if len(data) == 0 {
		return Item{}, nil, errors.Wrap(ErrMalformedEncoding, "unexpected end of input")
	}
	kind, content, rest, err := rlp.Split(data)
	if err != nil {
		return Item{}, nil, errors.Wrap(ErrMalformedEncoding, err.Error())
	}

	switch kind {
	case rlp.Byte, rlp.String:
		buf := make([]byte, len(content))
		copy(buf, content)
		return Item{data: buf}, rest, nil
	case rlp.List:
		if depth >= maxDepth {
			return Item{}, nil, errors.Wrapf(ErrMalformedEncoding, "list nesting exceeds %d", maxDepth)
		}
		items := []Item{}
		for len(content) > 0 {
			var child Item
			child, content, err = decodeOne(content, depth+1)
			if err != nil {
				return Item{}, nil, errors.WithMessagef(err, "list element %d", len(items))
			}
			items = append(items, child)
		}
		return Item{items: items, isList: true}, rest, nil
	default:
		return Item{}, nil, errors.Wrapf(ErrMalformedEncoding, "unknown kind %v", kind)
	}
}
