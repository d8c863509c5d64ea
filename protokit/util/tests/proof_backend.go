package tests

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/protokit-stack/protokit-go/protokit/proof"
	"github.com/protokit-stack/protokit-go/protokit/util/keccak256"
)

// FakeProofBackend is the deterministic stand-in for the external proof
// system: a proof is "valid" iff its data is the keccak of the expected
// program id and the public inputs, which is what MakeProof produces.
type FakeProofBackend struct{}

func (FakeProofBackend) Verify(p *proof.Proof, expected_program_id *common.Hash, public_inputs []byte) bool {
	return common.BytesToHash(p.Data) == keccak256.HashAndReturnByValue(expected_program_id[:], public_inputs)
}

func MakeProof(program_id common.Hash, public_inputs []byte) proof.Proof {
	return proof.Proof{
		ProgramID:    program_id,
		PublicInputs: public_inputs,
		Data:         keccak256.Hash(program_id[:], public_inputs).Bytes(),
	}
}

func MakeInvalidProof(program_id common.Hash, public_inputs []byte) proof.Proof {
	ret := MakeProof(program_id, public_inputs)
	ret.Data[0] ^= 1
	return ret
}
