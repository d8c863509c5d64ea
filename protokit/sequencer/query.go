package sequencer

import (
	"github.com/coocood/freecache"
	"github.com/ethereum/go-ethereum/common"

	"github.com/protokit-stack/protokit-go/protokit/state_path"
	"github.com/protokit-stack/protokit-go/protokit/util"
)

// query_cache caches committed reads between blocks. Entries are keyed by
// (root, tree address): a query that raced a block commit can only ever
// populate the slot of the root it actually read, so it can never shadow a
// later root's value. The per-block Clear just evicts dead-root entries.
type query_cache struct {
	cache *freecache.Cache
}

func (self *query_cache) Init(size_bytes int) *query_cache {
	self.cache = freecache.NewCache(size_bytes)
	return self
}

func (self *query_cache) Invalidate() {
	self.cache.Clear()
}

func query_cache_key(root *common.Hash, addr *common.Hash) []byte {
	ret := make([]byte, 0, 2*common.HashLength)
	ret = append(ret, root[:]...)
	return append(ret, addr[:]...)
}

const query_tag_absent = byte(0)
const query_tag_present = byte(1)

// QueryState reads one state slot at the latest committed root, without
// mutating anything. The key (for map properties) must be in its codec's
// tagged encoding, exactly as accessors derive it. present is false when
// the slot is empty; value is then nil.
func (self *BlockProducer) QueryState(module, property string, key ...[]byte) (value []byte, present bool, err error) {
	prop, err := self.registry.Property(module, property)
	if err != nil {
		return
	}
	if prop.IsMap != (len(key) != 0) {
		err = runtime_key_arity_err(prop.IsMap)
		return
	}
	addr := state_path.Derive(module, property, key...)
	snapshot := self.tree.Snapshot()
	root := snapshot.Root()
	cache_key := query_cache_key(&root, addr)
	if cached, cache_err := self.query.cache.Get(cache_key); cache_err == nil {
		if present = cached[0] == query_tag_present; present {
			value = cached[1:]
		}
		return
	}
	value = snapshot.Get(addr)
	present = len(value) != 0
	tagged := make([]byte, 1, 1+len(value))
	tagged[0] = query_tag_absent
	if present {
		tagged[0] = query_tag_present
		tagged = append(tagged, value...)
	}
	self.query.cache.Set(cache_key, tagged, 0)
	return
}

func runtime_key_arity_err(is_map bool) error {
	if is_map {
		return ErrQueryNeedsKey
	}
	return ErrQueryUnexpectedKey
}

var ErrQueryNeedsKey = util.ErrorString("map property queried without a key")
var ErrQueryUnexpectedKey = util.ErrorString("single-value property queried with a key")
