// Package state_path derives the tree address of every declared state slot.
//
// An address is the keccak256 of the canonical encoding of the
// (module name, property name, key) triple. Each component is length-prefixed
// before hashing so that no two distinct triples can produce the same hash
// input by shifting bytes between components. Map keys are expected to
// already carry their codec's type tag (see the runtime codecs), which keeps
// differently-typed keys with identical payload bytes on distinct addresses.
//
// Derivation is pure: any caller that knows the triple can recompute the
// address, which is what makes cross-module state access work over the single
// shared tree.
package state_path

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/protokit-stack/protokit-go/protokit/util/bin"
	"github.com/protokit-stack/protokit-go/protokit/util/keccak256"
)

func Derive(module, property string, key ...[]byte) *common.Hash {
	hasher := keccak256.GetHasherFromPool()
	defer keccak256.ReturnHasherToPool(hasher)
	write_component(hasher, bin.BytesView(module))
	write_component(hasher, bin.BytesView(property))
	for _, k := range key {
		write_component(hasher, k)
	}
	return hasher.Hash()
}

func DeriveByValue(module, property string, key ...[]byte) common.Hash {
	return *Derive(module, property, key...)
}

func write_component(hasher *keccak256.Hasher, component []byte) {
	hasher.Write(bin.ENC_b_endian_64(uint64(len(component)))...)
	hasher.Write(component...)
}
