package runtime

import (
	"github.com/emirpasic/gods/sets/linkedhashset"
	"github.com/ethereum/go-ethereum/common"

	"github.com/protokit-stack/protokit-go/protokit/smt"
)

// StateReader is the committed-state view a transaction executes against.
// smt.Snapshot satisfies it; so does any overlay the sequencer builds on
// top of one.
type StateReader interface {
	Get(addr *common.Hash) []byte
}

type Assertion = struct {
	Held    bool
	Message string
}

// ExecutionContext is the per-transaction scratch state: the assertion
// ledger and the staged write buffer. Method bodies cannot abort; every
// logical check lands in the ledger and the conjunction of the ledger gates
// acceptance after the body has run to completion. Staged writes are visible
// to the transaction's own later reads and never touch the committed tree.
type ExecutionContext struct {
	snapshot     StateReader
	ledger       []Assertion
	staged       map[common.Hash][]byte
	staged_order *linkedhashset.Set
	footprint    *linkedhashset.Set
}

func (self *ExecutionContext) Init(snapshot StateReader) *ExecutionContext {
	self.snapshot = snapshot
	self.staged = make(map[common.Hash][]byte)
	self.staged_order = linkedhashset.New()
	self.footprint = linkedhashset.New()
	return self
}

// Assert records the condition unconditionally. It never aborts control
// flow.
func (self *ExecutionContext) Assert(condition bool, message string) {
	self.ledger = append(self.ledger, Assertion{condition, message})
}

// AllAssertionsHeld reduces the ledger with logical AND. An empty ledger is
// vacuously true.
func (self *ExecutionContext) AllAssertionsHeld() bool {
	for i := range self.ledger {
		if !self.ledger[i].Held {
			return false
		}
	}
	return true
}

func (self *ExecutionContext) FailedMessages() (ret []string) {
	for i := range self.ledger {
		if !self.ledger[i].Held {
			ret = append(ret, self.ledger[i].Message)
		}
	}
	return
}

func (self *ExecutionContext) Ledger() []Assertion {
	return self.ledger
}

// Get reads through the staged buffer first, then the snapshot.
func (self *ExecutionContext) Get(addr *common.Hash) []byte {
	self.footprint.Add(*addr)
	if v, staged := self.staged[*addr]; staged {
		return v
	}
	return self.snapshot.Get(addr)
}

// Put stages a write; last write per address wins.
func (self *ExecutionContext) Put(addr *common.Hash, value []byte) {
	self.footprint.Add(*addr)
	self.staged[*addr] = value
	self.staged_order.Add(*addr)
}

// StagedWrites returns the buffer in first-staged order, one entry per
// address.
func (self *ExecutionContext) StagedWrites() (ret []smt.Write) {
	ret = make([]smt.Write, 0, self.staged_order.Size())
	self.staged_order.Each(func(_ int, addr interface{}) {
		a := addr.(common.Hash)
		ret = append(ret, smt.Write{Addr: a, Value: self.staged[a]})
	})
	return
}

// Footprint is every address the transaction read or wrote, in first-touch
// order. The sequencer uses it to decide which speculative executions stay
// valid.
func (self *ExecutionContext) Footprint() (ret []common.Hash) {
	ret = make([]common.Hash, 0, self.footprint.Size())
	self.footprint.Each(func(_ int, addr interface{}) {
		ret = append(ret, addr.(common.Hash))
	})
	return
}
