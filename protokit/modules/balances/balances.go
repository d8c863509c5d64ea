// Package balances is the token module registered on every chain built from
// this core: a keyed balance map with provable transfer and mint entry
// points. Besides being useful on its own it is the reference example of how
// a module declares state, decodes arguments and records assertions.
package balances

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/protokit-stack/protokit-go/protokit/runtime"
	"github.com/protokit-stack/protokit-go/protokit/smt"
)

const ModuleName = "Balances"
const PropBalances = "balances"
const MethodTransfer = "transfer"
const MethodMint = "mint"

var address_codec = runtime.AddressCodec()
var amount_codec = runtime.Uint256Codec()

// Balances is addressable by any module (and the query boundary) through
// the (module, property, key) triple; this package just owns the methods
// that mutate it.
var Balances = runtime.DeclareStateMap(ModuleName, PropBalances, address_codec, amount_codec)

// Descriptor declares the module. Mints are restricted to the admin address
// fixed at chain assembly.
func Descriptor(admin common.Address) runtime.ModuleDescriptor {
	return runtime.ModuleDescriptor{
		Name: ModuleName,
		Properties: []runtime.PropertyDescriptor{{
			Name:  PropBalances,
			IsMap: true,
			Key:   address_codec.Info(),
			Value: amount_codec.Info(),
		}},
		Methods: []runtime.MethodDescriptor{
			{
				Name:     MethodTransfer,
				Provable: true,
				Args:     []runtime.ArgSpec{address_codec.ArgSpec(), amount_codec.ArgSpec()},
				Call:     transfer,
			},
			{
				Name:     MethodMint,
				Provable: true,
				Args:     []runtime.ArgSpec{address_codec.ArgSpec(), amount_codec.ArgSpec()},
				Call:     mint(admin),
			},
		},
	}
}

func transfer(ctx *runtime.CallCtx) {
	to := address_codec.Decode(ctx.Args[0])
	amount := amount_codec.Decode(ctx.Args[1])
	from_balance := Balances.Get(ctx.Exec, ctx.Sender)
	ctx.Exec.Assert(from_balance.Value.Cmp(amount) >= 0, "transfer: insufficient balance")
	ctx.Exec.Assert(to != ctx.Sender, "transfer: sender and recipient are the same account")
	to_balance := Balances.Get(ctx.Exec, to)
	new_to_balance, overflow := new(uint256.Int).AddOverflow(to_balance.Value, amount)
	ctx.Exec.Assert(!overflow, "transfer: recipient balance overflow")
	// The body runs to completion even after a failed assertion, so the
	// staged balance must stay well-formed; clamp instead of underflowing.
	new_from_balance := new(uint256.Int)
	if from_balance.Value.Cmp(amount) >= 0 {
		new_from_balance.Sub(from_balance.Value, amount)
	}
	Balances.Set(ctx.Exec, ctx.Sender, new_from_balance)
	Balances.Set(ctx.Exec, to, new_to_balance)
}

func mint(admin common.Address) runtime.MethodFn {
	return func(ctx *runtime.CallCtx) {
		to := address_codec.Decode(ctx.Args[0])
		amount := amount_codec.Decode(ctx.Args[1])
		ctx.Exec.Assert(ctx.Sender == admin, "mint: sender is not the chain admin")
		balance := Balances.Get(ctx.Exec, to)
		new_balance, overflow := new(uint256.Int).AddOverflow(balance.Value, amount)
		ctx.Exec.Assert(!overflow, "mint: balance overflow")
		Balances.Set(ctx.Exec, to, new_balance)
	}
}

// GenesisWrite pre-funds an account in the chain's genesis state.
func GenesisWrite(addr common.Address, amount *uint256.Int) smt.Write {
	return smt.Write{Addr: Balances.PathOf(addr), Value: amount_codec.Encode(amount)}
}

// TransferArgs encodes the transfer argument list.
func TransferArgs(to common.Address, amount *uint256.Int) [][]byte {
	return [][]byte{address_codec.Encode(to), amount_codec.Encode(amount)}
}
