// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

package codec

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Codecs for the elementary types contract storage declares most often.
// Each call returns a fresh value but all instances of one type are
// interchangeable.

func Uint8() Codec[uint8]   { return MustForType[uint8]("uint8") }
func Uint16() Codec[uint16] { return MustForType[uint16]("uint16") }
func Uint32() Codec[uint32] { return MustForType[uint32]("uint32") }
func Uint64() Codec[uint64] { return MustForType[uint64]("uint64") }

func Bool() Codec[bool] { return MustForType[bool]("bool") }

func Address() Codec[common.Address] { return MustForType[common.Address]("address") }

// Hash is the codec for a full 32-byte word ("bytes32").
func Hash() Codec[common.Hash] { return MustForType[common.Hash]("bytes32") }

func String() Codec[string] { return MustForType[string]("string") }

func Bytes() Codec[[]byte] { return MustForType[[]byte]("bytes") }

// Uint256 carries arbitrary 256-bit unsigned values as *big.Int. Unlike the
// raw ABI packer, which reduces out-of-range values mod 2^256, encoding a
// nil, negative, or over-wide value fails with ErrOutOfRange.
func Uint256() Codec[*big.Int] {
	return uint256Codec{MustForType[*big.Int]("uint256")}
}

type uint256Codec struct {
	inner Codec[*big.Int]
}

func (c uint256Codec) Encode(value *big.Int) ([]byte, error) {
	if value == nil {
		return nil, fmt.Errorf("%w: nil uint256", ErrOutOfRange)
	}
	if value.Sign() < 0 || value.BitLen() > 256 {
		return nil, fmt.Errorf("%w: %v does not fit uint256", ErrOutOfRange, value)
	}
	return c.inner.Encode(value)
}

func (c uint256Codec) Decode(data []byte) (*big.Int, error) {
	return c.inner.Decode(data)
}

func (c uint256Codec) FixedSize() (int, bool) {
	return c.inner.FixedSize()
}
