// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

package codec

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/go-cmp/cmp"

	"github.com/micalabs/mica/util/testhelpers"
)

func Require(t *testing.T, err error, printables ...interface{}) {
	t.Helper()
	testhelpers.RequireImpl(t, err, printables...)
}

func Fail(t *testing.T, printables ...interface{}) {
	t.Helper()
	testhelpers.FailImpl(t, printables...)
}

func TestElementaryFixedSizes(t *testing.T) {
	checkFixed := func(size int, ok bool, wantSize int) {
		t.Helper()
		if !ok || size != wantSize {
			Fail(t, "wrong size report", size, ok, wantSize)
		}
	}
	size, ok := Uint8().FixedSize()
	checkFixed(size, ok, 32)
	size, ok = Uint64().FixedSize()
	checkFixed(size, ok, 32)
	size, ok = Bool().FixedSize()
	checkFixed(size, ok, 32)
	size, ok = Address().FixedSize()
	checkFixed(size, ok, 32)
	size, ok = Hash().FixedSize()
	checkFixed(size, ok, 32)
	size, ok = Uint256().FixedSize()
	checkFixed(size, ok, 32)
}

func TestDynamicTypesReportNoFixedSize(t *testing.T) {
	if _, ok := String().FixedSize(); ok {
		Fail(t, "string reported a fixed size")
	}
	if _, ok := Bytes().FixedSize(); ok {
		Fail(t, "bytes reported a fixed size")
	}
	if _, ok := MustForType[[]uint64]("uint64[]").FixedSize(); ok {
		Fail(t, "dynamic array reported a fixed size")
	}
}

func TestStaticCompositeSizes(t *testing.T) {
	size, ok := MustForType[[4]uint64]("uint64[4]").FixedSize()
	if !ok || size != 128 {
		Fail(t, "static array size wrong", size, ok)
	}

	type pair struct {
		A uint64
		B common.Address
	}
	c := MustTuple[pair](
		abi.ArgumentMarshaling{Name: "a", Type: "uint64"},
		abi.ArgumentMarshaling{Name: "b", Type: "address"},
	)
	size, ok = c.FixedSize()
	if !ok || size != 64 {
		Fail(t, "static tuple size wrong", size, ok)
	}

	dynamic := MustTuple[struct {
		A uint64
		B []byte
	}](
		abi.ArgumentMarshaling{Name: "a", Type: "uint64"},
		abi.ArgumentMarshaling{Name: "b", Type: "bytes"},
	)
	if _, ok := dynamic.FixedSize(); ok {
		Fail(t, "tuple with dynamic field reported a fixed size")
	}
}

func TestNumericPadding(t *testing.T) {
	enc, err := Uint64().Encode(0xCAFE)
	Require(t, err)
	expected := make([]byte, 32)
	expected[30] = 0xCA
	expected[31] = 0xFE
	if !bytes.Equal(enc, expected) {
		Fail(t, "uint64 not right-aligned big-endian", enc)
	}

	addr := common.HexToAddress("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4")
	enc, err = Address().Encode(addr)
	Require(t, err)
	if !bytes.Equal(enc, common.BytesToHash(addr.Bytes()).Bytes()) {
		Fail(t, "address not right-aligned", enc)
	}
}

func TestElementaryRoundTrips(t *testing.T) {
	u, err := roundTrip(t, Uint64(), uint64(1<<63))
	Require(t, err)
	if u != 1<<63 {
		Fail(t, "uint64 round trip", u)
	}
	b, err := roundTrip(t, Bool(), true)
	Require(t, err)
	if !b {
		Fail(t, "bool round trip", b)
	}
	s, err := roundTrip(t, String(), "typed storage")
	Require(t, err)
	if s != "typed storage" {
		Fail(t, "string round trip", s)
	}
	data, err := roundTrip(t, Bytes(), []byte{0, 1, 2, 255})
	Require(t, err)
	if diff := cmp.Diff([]byte{0, 1, 2, 255}, data); diff != "" {
		Fail(t, "bytes round trip", diff)
	}
	slice, err := roundTrip(t, MustForType[[]uint64]("uint64[]"), []uint64{5, 6, 7})
	Require(t, err)
	if diff := cmp.Diff([]uint64{5, 6, 7}, slice); diff != "" {
		Fail(t, "slice round trip", diff)
	}
}

func roundTrip[T any](t *testing.T, c Codec[T], value T) (T, error) {
	t.Helper()
	enc, err := c.Encode(value)
	if err != nil {
		var zero T
		return zero, err
	}
	return c.Decode(enc)
}

func TestUint256Range(t *testing.T) {
	in := new(big.Int).Lsh(big.NewInt(1), 255)
	out, err := roundTrip(t, Uint256(), in)
	Require(t, err)
	if out.Cmp(in) != 0 {
		Fail(t, "uint256 round trip", out)
	}

	if _, err := Uint256().Encode(nil); !errors.Is(err, ErrOutOfRange) {
		Fail(t, "nil accepted", err)
	}
	if _, err := Uint256().Encode(big.NewInt(-1)); !errors.Is(err, ErrOutOfRange) {
		Fail(t, "negative accepted", err)
	}
	tooWide := new(big.Int).Lsh(big.NewInt(1), 256)
	if _, err := Uint256().Encode(tooWide); !errors.Is(err, ErrOutOfRange) {
		Fail(t, "257-bit value accepted", err)
	}
}

func TestForTypeRejectsMalformed(t *testing.T) {
	if _, err := ForType[uint64]("uint65"); err == nil {
		Fail(t, "malformed type accepted")
	}
	defer func() {
		if recover() == nil {
			Fail(t, "MustForType did not panic")
		}
	}()
	MustForType[uint64]("not-a-type")
}

func TestDecodeRejectsShortInput(t *testing.T) {
	if _, err := Uint64().Decode([]byte{1, 2, 3}); err == nil {
		Fail(t, "short input decoded")
	}
	if _, err := String().Decode(make([]byte, 16)); err == nil {
		Fail(t, "truncated string decoded")
	}
}
