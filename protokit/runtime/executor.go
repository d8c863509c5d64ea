package runtime

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/protokit-stack/protokit-go/protokit/proof"
	"github.com/protokit-stack/protokit-go/protokit/smt"
	"github.com/protokit-stack/protokit-go/protokit/util"
)

// Malformed-transaction errors. These are detected before an
// ExecutionContext exists and are reported to the submitter; they are a
// different failure class from a false assertion.
var ErrBadChainID = util.ErrorString("transaction targets a different chain")
var ErrBadSignature = util.ErrorString("signature does not recover to the sender")
var ErrBadArity = util.ErrorString("argument count or type does not match the method")
var ErrBadProofArity = util.ErrorString("proof argument count does not match the method")
var ErrNotProvable = util.ErrorString("method is internal, not a provable entry point")

type ExecutionResult = struct {
	Accepted       bool
	Writes         []smt.Write
	FailedMessages []string
	Footprint      []common.Hash
	ProofJournal   []proof.VerifiedProof
}

// Executor runs one transaction against one state snapshot. It never
// touches the committed tree: accepted writes come back to the caller, who
// decides when (and whether) to commit them.
type Executor struct {
	chain_id uint64
	registry *Registry
	verifier *proof.Verifier
}

func (self *Executor) Init(chain_id uint64, registry *Registry, verifier *proof.Verifier) *Executor {
	self.chain_id = chain_id
	self.registry = registry
	self.verifier = verifier
	return self
}

func (self *Executor) Registry() *Registry {
	return self.registry
}

// Execute validates the transaction envelope, then runs the method body to
// completion inside a fresh ExecutionContext. A non-nil error means the
// transaction was malformed and nothing ran; with a nil error the result's
// Accepted flag is the conjunction of the assertion ledger and a rejected
// transaction contributes no writes at all.
func (self *Executor) Execute(tx *Transaction, snapshot StateReader) (ret ExecutionResult, err error) {
	if tx.ChainID != self.chain_id {
		err = ErrBadChainID
		return
	}
	_, method, err := self.registry.Resolve(tx.Module, tx.Method)
	if err != nil {
		return
	}
	if !method.Provable {
		err = ErrNotProvable
		return
	}
	if len(tx.Args) != len(method.Args) {
		err = ErrBadArity
		return
	}
	for i, arg := range tx.Args {
		if !method.Args[i].Valid(arg) {
			err = ErrBadArity
			return
		}
	}
	if len(tx.Proofs) != len(method.ProofPrograms) {
		err = ErrBadProofArity
		return
	}
	if sender, rec_err := RecoverSender(tx); rec_err != nil || sender != tx.Sender {
		err = ErrBadSignature
		return
	}
	ctx := new(ExecutionContext).Init(snapshot)
	// Proof arguments are verified before the body runs; a failure is a
	// failed assertion, not a fault, so the attempt stays auditable.
	ret.ProofJournal = self.verifier.VerifyAll(tx.Proofs, method.ProofPrograms)
	for _, entry := range ret.ProofJournal {
		ctx.Assert(entry.OK, fmt.Sprintf("proof argument %d: verification against program %s failed",
			entry.Index, method.ProofPrograms[entry.Index].Hex()))
	}
	method.Call(&CallCtx{ctx, tx.Sender, tx.Args})
	if ret.Accepted = ctx.AllAssertionsHeld(); ret.Accepted {
		ret.Writes = ctx.StagedWrites()
	} else {
		ret.FailedMessages = ctx.FailedMessages()
	}
	ret.Footprint = ctx.Footprint()
	return
}
