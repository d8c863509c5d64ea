package runtime

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/protokit-stack/protokit-go/protokit/util"
	"github.com/protokit-stack/protokit-go/protokit/util/asserts"
)

// Modules are registered as plain descriptors: the declared properties and
// the method table are data, assembled once at chain assembly time and
// immutable afterwards. There is no dispatch hierarchy; extending a base
// module means merging descriptors (see MergeDescriptors).

const MaxProofArgs = 2

type CallCtx = struct {
	Exec   *ExecutionContext
	Sender common.Address
	Args   [][]byte
}

type MethodFn = func(ctx *CallCtx)

type PropertyDescriptor = struct {
	Name  string
	IsMap bool
	Value CodecInfo
	Key   CodecInfo // zero unless IsMap
}

type MethodDescriptor = struct {
	Name     string
	Provable bool
	Args     []ArgSpec
	// Expected program id per proof-typed argument, at most MaxProofArgs.
	ProofPrograms []common.Hash
	Call          MethodFn
}

type ModuleDescriptor = struct {
	Name       string
	Properties []PropertyDescriptor
	Methods    []MethodDescriptor
}

// MergeDescriptors assembles a module from a base descriptor and an
// override: same-name properties and methods from the override replace the
// base's, new ones are appended in override order. This replaces
// inheritance-shaped module composition.
func MergeDescriptors(base, override ModuleDescriptor) (ret ModuleDescriptor) {
	ret.Name = base.Name
	if len(override.Name) != 0 {
		ret.Name = override.Name
	}
	ret.Properties = append(ret.Properties, base.Properties...)
	for _, p := range override.Properties {
		if at := index_of(ret.Properties, p.Name, func(x PropertyDescriptor) string { return x.Name }); at != -1 {
			ret.Properties[at] = p
		} else {
			ret.Properties = append(ret.Properties, p)
		}
	}
	ret.Methods = append(ret.Methods, base.Methods...)
	for _, m := range override.Methods {
		if at := index_of(ret.Methods, m.Name, func(x MethodDescriptor) string { return x.Name }); at != -1 {
			ret.Methods[at] = m
		} else {
			ret.Methods = append(ret.Methods, m)
		}
	}
	return
}

func index_of[T any](list []T, name string, name_of func(T) string) int {
	for i := range list {
		if name_of(list[i]) == name {
			return i
		}
	}
	return -1
}

var ErrUnknownModule = util.ErrorString("unknown module")
var ErrUnknownMethod = util.ErrorString("unknown method")
var ErrUnknownProperty = util.ErrorString("unknown property")

// Registry is the frozen set of registered modules. Init panics on any
// malformed registration: the chain must not start from a bad schema.
type Registry struct {
	modules         []ModuleDescriptor
	modules_by_name map[string]int
}

func (self *Registry) Init(descriptors ...ModuleDescriptor) *Registry {
	self.modules = descriptors
	self.modules_by_name = make(map[string]int, len(descriptors))
	for i := range self.modules {
		m := &self.modules[i]
		asserts.Holds(len(m.Name) != 0, "module with empty name")
		_, dup := self.modules_by_name[m.Name]
		asserts.Holds(!dup, "duplicate module", m.Name)
		self.modules_by_name[m.Name] = i
		validate_module(m)
	}
	return self
}

func validate_module(m *ModuleDescriptor) {
	seen_props := make(map[string]bool, len(m.Properties))
	for i := range m.Properties {
		p := &m.Properties[i]
		asserts.Holds(len(p.Name) != 0, m.Name, ": property with empty name")
		asserts.Holds(!seen_props[p.Name], m.Name, ": duplicate property", p.Name)
		seen_props[p.Name] = true
		validate_codec_info(m.Name, p.Name, p.Value)
		if p.IsMap {
			validate_codec_info(m.Name, p.Name, p.Key)
		} else {
			asserts.Holds(p.Key == CodecInfo{}, m.Name, ":", p.Name, ": key codec on a non-map property")
		}
	}
	seen_methods := make(map[string]bool, len(m.Methods))
	for i := range m.Methods {
		meth := &m.Methods[i]
		asserts.Holds(len(meth.Name) != 0, m.Name, ": method with empty name")
		asserts.Holds(!seen_methods[meth.Name], m.Name, ": duplicate method", meth.Name)
		seen_methods[meth.Name] = true
		asserts.Holds(meth.Call != nil, m.Name, ":", meth.Name, ": no body")
		asserts.Holds(len(meth.ProofPrograms) <= MaxProofArgs, m.Name, ":", meth.Name, ": too many proof arguments")
		for _, arg := range meth.Args {
			validate_codec_info(m.Name, meth.Name, arg.Info)
			asserts.Holds(arg.Valid != nil, m.Name, ":", meth.Name, ": argument without validator")
		}
	}
}

func validate_codec_info(module, owner string, info CodecInfo) {
	asserts.Holds(info.Tag != TagInvalid && info.Tag <= TagRecord, module, ":", owner, ": unknown codec category")
	asserts.Holds(len(info.Name) != 0, module, ":", owner, ": codec without a name")
}

func (self *Registry) Modules() []ModuleDescriptor {
	return self.modules
}

func (self *Registry) Module(name string) (*ModuleDescriptor, error) {
	at, ok := self.modules_by_name[name]
	if !ok {
		return nil, ErrUnknownModule
	}
	return &self.modules[at], nil
}

func (self *Registry) Resolve(module, method string) (*ModuleDescriptor, *MethodDescriptor, error) {
	m, err := self.Module(module)
	if err != nil {
		return nil, nil, err
	}
	for i := range m.Methods {
		if m.Methods[i].Name == method {
			return m, &m.Methods[i], nil
		}
	}
	return m, nil, ErrUnknownMethod
}

func (self *Registry) Property(module, property string) (*PropertyDescriptor, error) {
	m, err := self.Module(module)
	if err != nil {
		return nil, err
	}
	for i := range m.Properties {
		if m.Properties[i].Name == property {
			return &m.Properties[i], nil
		}
	}
	return nil, ErrUnknownProperty
}
