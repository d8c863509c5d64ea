package smt

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/protokit-stack/protokit-go/protokit/util/keccak256"
)

// Proof is a (non-)membership witness for one address: the sibling hash at
// every height on the way down from the root. An all-defaults tail is kept
// verbatim, there is no compression.
type Proof = struct {
	Siblings [Depth]common.Hash
}

// Prove produces a witness for addr against this snapshot's root. For an
// empty slot the witness proves non-membership (the default leaf).
func (self Snapshot) Prove(addr *common.Hash) (ret Proof) {
	self.leaf(addr, ret.Siblings[:])
	return
}

// VerifyProof checks the witness against root. An empty value verifies
// non-membership.
func VerifyProof(root *common.Hash, addr *common.Hash, value []byte, proof *Proof) bool {
	node := leaf_hash(value)
	for height := 1; height <= Depth; height++ {
		sibling := &proof.Siblings[Depth-height]
		if address_bit(addr, Depth-height) == 0 {
			node = keccak256.HashAndReturnByValue(node[:], sibling[:])
		} else {
			node = keccak256.HashAndReturnByValue(sibling[:], node[:])
		}
	}
	return node == *root
}
