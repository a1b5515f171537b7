package cfgcore

import "github.com/hsiuhsiu/cfgcore-go/internal/abi"

// Interface summarizes the interface description the wrapper was built
// against.
type Interface struct {
	Library      string
	ABIVersion   string
	Contract     uint32
	ThreadSafety string
	MaxKeyLen    int
	MaxValueLen  int
	Functions    []FunctionInfo
}

// FunctionInfo is one native function of the interface.
type FunctionInfo struct {
	Name      string
	Signature string
	Checksum  uint32
}

// Describe returns the embedded interface description.
func Describe() (Interface, error) {
	d, err := abi.Builtin()
	if err != nil {
		return Interface{}, err
	}
	out := Interface{
		Library:      d.Library,
		ABIVersion:   d.ABIVersion,
		Contract:     d.Contract,
		ThreadSafety: string(d.ThreadSafety),
		MaxKeyLen:    d.Limits.MaxKeyLen,
		MaxValueLen:  d.Limits.MaxValueLen,
		Functions:    make([]FunctionInfo, 0, len(d.Functions)),
	}
	for _, f := range d.Functions {
		out.Functions = append(out.Functions, FunctionInfo{
			Name:      f.Name,
			Signature: f.Signature(),
			Checksum:  f.Checksum(),
		})
	}
	return out, nil
}

// InterfaceYAML returns the raw interface description shipped with the
// native library.
func InterfaceYAML() []byte {
	return abi.Raw()
}

// Serialized reports whether the library admits one native call at a time.
func (l *Library) Serialized() bool {
	return l.adapter.Serialized()
}
