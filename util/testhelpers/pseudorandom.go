// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

package testhelpers

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// PseudoRandomDataSource hands out words that look random but repeat
// across executions, for tests whose inputs must be stable run to run.
// The testing.T param keeps it out of production code.
type PseudoRandomDataSource struct {
	salt  common.Hash
	index int64
}

func NewPseudoRandomDataSource(_ *testing.T, salt int) *PseudoRandomDataSource {
	return &PseudoRandomDataSource{
		salt: crypto.Keccak256Hash([]byte{'s'}, common.BigToHash(big.NewInt(int64(salt))).Bytes()),
	}
}

func (r *PseudoRandomDataSource) GetHash() common.Hash {
	r.index++
	return crypto.Keccak256Hash(r.salt[:], common.BigToHash(big.NewInt(r.index)).Bytes())
}
