package runtime

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/protokit-stack/protokit-go/protokit/state_path"
)

// State is a typed view of a single-value property. It is bound to the
// (module, property) pair at declaration; any module that can name the pair
// gets the same view, which is how cross-module state access works.
type State[V any] struct {
	module   string
	property string
	codec    Codec[V]
}

func DeclareState[V any](module, property string, codec Codec[V]) State[V] {
	return State[V]{module, property, codec}
}

func (self State[V]) Path() common.Hash {
	return state_path.DeriveByValue(self.module, self.property)
}

func (self State[V]) Get(ctx *ExecutionContext) Option[V] {
	addr := self.Path()
	if enc := ctx.Get(&addr); len(enc) != 0 {
		return Some(self.codec.Decode(enc))
	}
	return None(self.codec.Dummy())
}

func (self State[V]) Set(ctx *ExecutionContext, v V) {
	addr := self.Path()
	ctx.Put(&addr, self.codec.Encode(v))
}

// StateMap is the keyed-map counterpart of State.
type StateMap[K any, V any] struct {
	module   string
	property string
	key      Codec[K]
	value    Codec[V]
}

func DeclareStateMap[K any, V any](module, property string, key Codec[K], value Codec[V]) StateMap[K, V] {
	return StateMap[K, V]{module, property, key, value}
}

func (self StateMap[K, V]) PathOf(k K) common.Hash {
	return state_path.DeriveByValue(self.module, self.property, self.key.EncodeTagged(k))
}

func (self StateMap[K, V]) Get(ctx *ExecutionContext, k K) Option[V] {
	addr := self.PathOf(k)
	if enc := ctx.Get(&addr); len(enc) != 0 {
		return Some(self.value.Decode(enc))
	}
	return None(self.value.Dummy())
}

func (self StateMap[K, V]) Set(ctx *ExecutionContext, k K, v V) {
	addr := self.PathOf(k)
	ctx.Put(&addr, self.value.Encode(v))
}
