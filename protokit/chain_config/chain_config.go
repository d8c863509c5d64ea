package chain_config

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/protokit-stack/protokit-go/protokit/runtime"
	"github.com/protokit-stack/protokit-go/protokit/smt"
	"github.com/protokit-stack/protokit-go/protokit/util/asserts"
)

// ChainConfig is fixed at chain assembly time. The module list is the whole
// schema of the chain: changing it means a new chain generation.
type ChainConfig = struct {
	ChainID uint64
	Modules []runtime.ModuleDescriptor
	// Applied once, when the tree is still at its default (empty) root.
	GenesisWrites []smt.Write
}

// Validate panics on a bad configuration; the chain must not start.
func Validate(cfg *ChainConfig) *runtime.Registry {
	asserts.Holds(cfg.ChainID != 0, "chain id must be non-zero")
	seen := make(map[common.Hash]bool, len(cfg.GenesisWrites))
	for i := range cfg.GenesisWrites {
		w := &cfg.GenesisWrites[i]
		asserts.Holds(len(w.Value) != 0, "empty genesis write")
		asserts.Holds(!seen[w.Addr], "duplicate genesis write for one address")
		seen[w.Addr] = true
	}
	return new(runtime.Registry).Init(cfg.Modules...)
}
