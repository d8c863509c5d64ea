// Package proof wraps the external succinct-proof backend. The backend's
// circuits and verifier are trusted black boxes; what this package pins down
// is the discipline around them: each proof-typed transaction argument is
// handed to the backend exactly once, in argument order, and the journal of
// those verifications is what the enclosing execution proof folds over.
package proof

import (
	"github.com/ethereum/go-ethereum/common"
)

type Proof = struct {
	ProgramID    common.Hash
	PublicInputs []byte
	Data         []byte
}

// Backend is the external proof system's verification entry point.
type Backend interface {
	Verify(p *Proof, expected_program_id *common.Hash, public_inputs []byte) bool
}

type VerifiedProof = struct {
	Index     int
	ProgramID common.Hash
	OK        bool
}

type Verifier struct {
	backend Backend
}

func (self *Verifier) Init(backend Backend) *Verifier {
	self.backend = backend
	return self
}

// VerifyAll hands every proof to the backend exactly once, in argument
// order, against the program id its argument position expects. It never
// short-circuits: a mismatched program id or a failed verification is
// recorded and the walk moves on, mirroring the soft-failure model of the
// surrounding execution.
func (self *Verifier) VerifyAll(proofs []Proof, expected_programs []common.Hash) (journal []VerifiedProof) {
	journal = make([]VerifiedProof, len(proofs))
	for i := range proofs {
		p := &proofs[i]
		backend_ok := self.backend.Verify(p, &expected_programs[i], p.PublicInputs)
		ok := backend_ok && p.ProgramID == expected_programs[i]
		journal[i] = VerifiedProof{i, p.ProgramID, ok}
	}
	return
}
