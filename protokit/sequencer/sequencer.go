// Package sequencer orders and commits batches of transactions against the
// shared state tree. Execution is speculative and parallel where address
// footprints allow it; commits are strictly serial in block order, so the
// resulting root is a pure function of (initial root, ordered transactions).
package sequencer

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"

	"github.com/protokit-stack/protokit-go/protokit/chain_config"
	"github.com/protokit-stack/protokit-go/protokit/proof"
	"github.com/protokit-stack/protokit-go/protokit/runtime"
	"github.com/protokit-stack/protokit-go/protokit/smt"
	"github.com/protokit-stack/protokit-go/protokit/util"
	"github.com/protokit-stack/protokit-go/protokit/util/goroutines"
)

type Opts = struct {
	NodeCacheSize  int
	QueryCacheSize int
}

const default_node_cache_size = 1 << 16
const default_query_cache_size = 16 * 1024 * 1024

type BlockProducer struct {
	cfg      chain_config.ChainConfig
	registry *runtime.Registry
	tree     smt.Tree
	executor runtime.Executor
	verifier proof.Verifier
	workers  goroutines.GoroutineGroup
	query    query_cache
	blk_n    uint64
	mu       sync.Mutex
}

// Init assembles the chain: validates the configuration (panicking on a bad
// schema), opens the tree over the given store and applies the genesis
// writes if the tree is still empty.
func (self *BlockProducer) Init(cfg chain_config.ChainConfig, store smt.Store, backend proof.Backend, opts Opts) *BlockProducer {
	if opts.NodeCacheSize == 0 {
		opts.NodeCacheSize = default_node_cache_size
	}
	if opts.QueryCacheSize == 0 {
		opts.QueryCacheSize = default_query_cache_size
	}
	self.cfg = cfg
	self.registry = chain_config.Validate(&self.cfg)
	self.tree.Init(new(smt.CachingStore).Init(store, opts.NodeCacheSize))
	self.verifier.Init(backend)
	self.executor.Init(cfg.ChainID, self.registry, &self.verifier)
	self.workers.InitDefault()
	self.query.Init(opts.QueryCacheSize)
	if len(cfg.GenesisWrites) != 0 && self.tree.Root() == smt.DefaultRoot() {
		_, err := self.tree.Commit(cfg.GenesisWrites)
		util.PanicIfNotNil(err)
	}
	return self
}

func (self *BlockProducer) Close() {
	self.workers.JoinAndClose()
}

func (self *BlockProducer) StateRoot() common.Hash {
	return self.tree.Root()
}

func (self *BlockProducer) Registry() *runtime.Registry {
	return self.registry
}

type speculative_result = struct {
	res runtime.ExecutionResult
	err error
}

// ProduceBlock executes the batch and commits accepted write sets one
// transaction at a time, in batch order. All transactions are first run in
// parallel against the immutable pre-block snapshot; a transaction whose
// footprint overlaps something an earlier transaction in the block wrote is
// re-executed serially against the block's own writes, which keeps the
// result identical to fully serial execution. On an infrastructure failure
// the tree is left at the pre-batch root and no block is produced.
func (self *BlockProducer) ProduceBlock(txs []*runtime.Transaction) (*Block, error) {
	defer util.LockUnlock(&self.mu)()
	pre_root := self.tree.Root()
	snapshot := self.tree.Snapshot()

	speculative := make([]speculative_result, len(txs))
	var wg sync.WaitGroup
	wg.Add(len(txs))
	for i := range txs {
		i := i
		self.workers.Submit(func() {
			defer wg.Done()
			speculative[i] = self.execute_recovered(txs[i], snapshot)
		})
	}
	wg.Wait()

	written := mapset.NewThreadUnsafeSet[common.Hash]()
	overlay := overlay_reader{make(map[common.Hash][]byte), snapshot}
	records := make([]TxRecord, len(txs))
	new_root := pre_root
	for i, tx := range txs {
		r := speculative[i]
		if r.err == nil && written.ContainsAny(r.res.Footprint...) {
			// speculation went stale, replay in order against the
			// block-local state
			r = self.execute_recovered(tx, overlay)
		}
		records[i] = TxRecord{Tx: tx}
		switch {
		case r.err != nil:
			if is_infrastructure_err(r.err) {
				self.tree.ResetTo(pre_root)
				return nil, r.err
			}
			records[i].Status = TxMalformed
			records[i].Error = r.err.Error()
		case !r.res.Accepted:
			records[i].Status = TxSoftRejected
			records[i].FailedMessages = r.res.FailedMessages
		default:
			records[i].Status = TxAccepted
			for _, w := range r.res.Writes {
				overlay.writes[w.Addr] = w.Value
				written.Add(w.Addr)
			}
			root, err := self.tree.Commit(r.res.Writes)
			if err != nil {
				self.tree.ResetTo(pre_root)
				return nil, err
			}
			new_root = root
		}
	}

	self.blk_n++
	self.query.Invalidate()
	return &Block{Number: self.blk_n, StateRoot: new_root, Records: records}, nil
}

type overlay_reader struct {
	writes   map[common.Hash][]byte
	fallback runtime.StateReader
}

func (self overlay_reader) Get(addr *common.Hash) []byte {
	if v, ok := self.writes[*addr]; ok {
		return v
	}
	return self.fallback.Get(addr)
}

// execute_recovered turns an infrastructure panic from the tree walk into
// the error the batch-abort path expects; anything else keeps panicking.
func (self *BlockProducer) execute_recovered(tx *runtime.Transaction, snapshot runtime.StateReader) (ret speculative_result) {
	defer func() {
		if caught := recover(); caught != nil {
			if err, is_err := caught.(error); is_err && is_infrastructure_err(err) {
				ret.err = err
				return
			}
			panic(caught)
		}
	}()
	ret.res, ret.err = self.executor.Execute(tx, snapshot)
	return
}

func is_infrastructure_err(err error) bool {
	switch err {
	case smt.ErrMissingNode, smt.ErrMissingValue:
		return true
	}
	return false
}
