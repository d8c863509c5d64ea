package runtime

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/protokit-stack/protokit-go/protokit/util/tests"
)

type map_reader map[common.Hash][]byte

func (self map_reader) Get(addr *common.Hash) []byte {
	return self[*addr]
}

func TestAssertionLedger(t *testing.T) {
	tc := tests.NewTestCtx(t)
	ctx := new(ExecutionContext).Init(map_reader{})
	tc.Assert.True(ctx.AllAssertionsHeld(), "empty ledger is vacuously true")

	ctx.Assert(true, "fine")
	ctx.Assert(false, "broken")
	ctx.Assert(true, "fine again")
	ctx.Assert(false, "broken again")
	tc.Assert.False(ctx.AllAssertionsHeld())
	tc.Assert.Equal([]string{"broken", "broken again"}, ctx.FailedMessages())
	tc.Assert.Len(ctx.Ledger(), 4)
}

func TestReadYourWrites(t *testing.T) {
	tc := tests.NewTestCtx(t)
	backing := addr_of("committed")
	snapshot := map_reader{backing: []byte("old")}
	ctx := new(ExecutionContext).Init(snapshot)

	tc.Assert.Equal([]byte("old"), ctx.Get(&backing))
	ctx.Put(&backing, []byte("new"))
	tc.Assert.Equal([]byte("new"), ctx.Get(&backing))

	// staged writes are invisible to the committed view
	tc.Assert.Equal([]byte("old"), snapshot.Get(&backing))
}

func TestStagedWritesOrderAndLastWriteWins(t *testing.T) {
	tc := tests.NewTestCtx(t)
	ctx := new(ExecutionContext).Init(map_reader{})
	a, b := addr_of("a"), addr_of("b")
	ctx.Put(&a, []byte("1"))
	ctx.Put(&b, []byte("2"))
	ctx.Put(&a, []byte("3"))
	writes := ctx.StagedWrites()
	tc.Assert.Len(writes, 2)
	tc.Assert.Equal(a, writes[0].Addr)
	tc.Assert.Equal([]byte("3"), writes[0].Value)
	tc.Assert.Equal(b, writes[1].Addr)
}

func TestFootprintCoversReadsAndWrites(t *testing.T) {
	tc := tests.NewTestCtx(t)
	ctx := new(ExecutionContext).Init(map_reader{})
	a, b := addr_of("a"), addr_of("b")
	ctx.Get(&a)
	ctx.Put(&b, []byte("x"))
	tc.Assert.Equal([]common.Hash{a, b}, ctx.Footprint())
}

func TestAccessorOptionSemantics(t *testing.T) {
	tc := tests.NewTestCtx(t)
	ctx := new(ExecutionContext).Init(map_reader{})
	balances := DeclareStateMap("Balances", "balances", AddressCodec(), Uint256Codec())
	alice, bob := tests.Addr(1), tests.Addr(2)

	balances.Set(ctx, alice, uint256.NewInt(100))
	got := balances.Get(ctx, alice)
	tc.Assert.True(got.Present)
	tc.Assert.Equal(uint256.NewInt(100), got.Value)

	absent := balances.Get(ctx, bob)
	tc.Assert.False(absent.Present)
	tc.Assert.True(absent.Value.IsZero(), "absent option still carries a well-formed dummy")
}

func TestSingleValueAccessor(t *testing.T) {
	tc := tests.NewTestCtx(t)
	ctx := new(ExecutionContext).Init(map_reader{})
	total := DeclareState("Balances", "total", Uint64Codec())

	tc.Assert.False(total.Get(ctx).Present)
	tc.Assert.Equal(uint64(0), total.Get(ctx).Value)
	total.Set(ctx, 42)
	tc.Assert.True(total.Get(ctx).Present)
	tc.Assert.Equal(uint64(42), total.Get(ctx).Value)
}

func addr_of(s string) common.Hash {
	return common.BytesToHash(append([]byte("test_addr_"), s...))
}
