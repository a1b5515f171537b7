package abi

import (
	_ "embed"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed interface.yaml
var interfaceYAML []byte

// Ownership annotations used by the interface description.
const (
	Borrowed      = "borrowed"
	Consumed      = "consumed"
	ReturnedOwned = "returned-owned"
)

// ThreadSafety is the concurrency class the native library documents.
type ThreadSafety string

const (
	// Serialized libraries are not reentrant; every call must be serialized.
	Serialized ThreadSafety = "serialized"
	// Concurrent libraries accept concurrent calls on distinct handles.
	Concurrent ThreadSafety = "concurrent"
)

// Value describes one parameter or result.
type Value struct {
	Name      string `yaml:"name,omitempty"`
	Type      string `yaml:"type"`
	Ownership string `yaml:"ownership,omitempty"`
}

func (v Value) signature() string {
	if v.Ownership == "" {
		return v.Type
	}
	return v.Type + ":" + v.Ownership
}

// Function describes one native entry point.
type Function struct {
	Name    string   `yaml:"name"`
	Params  []Value  `yaml:"params,omitempty"`
	Returns *Value   `yaml:"returns,omitempty"`
	Errors  []string `yaml:"errors,omitempty"`
}

// Signature renders the canonical signature the checksum is computed over.
// Parameter names are not part of it: renaming a parameter does not change
// the ABI.
func (f Function) Signature() string {
	var b strings.Builder
	b.WriteString(f.Name)
	b.WriteByte('(')
	for i, p := range f.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.signature())
	}
	b.WriteString(")->")
	if f.Returns == nil {
		b.WriteString("void")
	} else {
		b.WriteString(f.Returns.signature())
	}
	return b.String()
}

// Checksum is the FNV-1a 32 hash of Signature.
func (f Function) Checksum() uint32 {
	return Checksum(f.Signature())
}

// Checksum hashes a canonical signature string.
func Checksum(signature string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(signature))
	return h.Sum32()
}

// Limits are marshaling bounds the native side enforces. The adapter checks
// them before a call so violations never cross the boundary.
type Limits struct {
	MaxKeyLen   int `yaml:"max_key_len"`
	MaxValueLen int `yaml:"max_value_len"`
}

// Description is the machine-readable interface description shipped with
// the native library.
type Description struct {
	Library      string       `yaml:"library"`
	ABIVersion   string       `yaml:"abi_version"`
	Contract     uint32       `yaml:"contract"`
	ThreadSafety ThreadSafety `yaml:"thread_safety"`
	Limits       Limits       `yaml:"limits"`
	Functions    []Function   `yaml:"functions"`
}

// Function looks up a function by name.
func (d *Description) Function(name string) (Function, bool) {
	for _, f := range d.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return Function{}, false
}

// Validate checks the description for internal consistency.
func (d *Description) Validate() error {
	if d.Library == "" {
		return errors.New("abi: description has no library name")
	}
	if d.ABIVersion == "" {
		return errors.New("abi: description has no abi_version")
	}
	switch d.ThreadSafety {
	case Serialized, Concurrent:
	default:
		return fmt.Errorf("abi: unknown thread_safety %q", d.ThreadSafety)
	}
	if d.Limits.MaxKeyLen <= 0 || d.Limits.MaxValueLen <= 0 {
		return errors.New("abi: limits must be positive")
	}
	seen := make(map[string]struct{}, len(d.Functions))
	for _, f := range d.Functions {
		if f.Name == "" {
			return errors.New("abi: function without a name")
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("abi: duplicate function %q", f.Name)
		}
		seen[f.Name] = struct{}{}
		for _, p := range f.Params {
			if err := checkOwnership(f.Name, p.Ownership, false); err != nil {
				return err
			}
		}
		if f.Returns != nil {
			if err := checkOwnership(f.Name, f.Returns.Ownership, true); err != nil {
				return err
			}
		}
		for _, e := range f.Errors {
			if _, ok := ParseCode(e); !ok {
				return fmt.Errorf("abi: %s: unknown error kind %q", f.Name, e)
			}
		}
	}
	return nil
}

func checkOwnership(fn, own string, result bool) error {
	switch own {
	case "":
		return nil
	case Borrowed, Consumed:
		if !result {
			return nil
		}
	case ReturnedOwned:
		if result {
			return nil
		}
	}
	return fmt.Errorf("abi: %s: ownership %q not valid here", fn, own)
}

// Parse decodes and validates an interface description.
func Parse(data []byte) (*Description, error) {
	var d Description
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("abi: parse interface description: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

var (
	builtinOnce sync.Once
	builtin     *Description
	builtinErr  error
)

// Builtin returns the interface description the adapter was built against.
func Builtin() (*Description, error) {
	builtinOnce.Do(func() {
		builtin, builtinErr = Parse(interfaceYAML)
	})
	return builtin, builtinErr
}

// MustBuiltin is Builtin for package initialisation and tests.
func MustBuiltin() *Description {
	d, err := Builtin()
	if err != nil {
		panic(err)
	}
	return d
}

// Raw returns the embedded description bytes.
func Raw() []byte {
	out := make([]byte, len(interfaceYAML))
	copy(out, interfaceYAML)
	return out
}

// Mismatch lists every difference found by Verify.
type Mismatch struct {
	Field string
	Want  string
	Got   string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: want %s, got %s", m.Field, m.Want, m.Got)
}

// Verify compares the native side reported by s against d. wantVersion
// overrides d.ABIVersion when non-empty. It returns every mismatch in a
// stable order; an empty result means the ABI is compatible.
func Verify(d *Description, s Shim, wantVersion string) []Mismatch {
	if wantVersion == "" {
		wantVersion = d.ABIVersion
	}
	var out []Mismatch
	if got := s.ContractVersion(); got != d.Contract {
		out = append(out, Mismatch{Field: "contract", Want: fmt.Sprint(d.Contract), Got: fmt.Sprint(got)})
	}
	if got := s.ABIVersion(); got != wantVersion {
		out = append(out, Mismatch{Field: "abi_version", Want: wantVersion, Got: got})
	}
	fns := append([]Function(nil), d.Functions...)
	sort.Slice(fns, func(i, j int) bool { return fns[i].Name < fns[j].Name })
	for _, f := range fns {
		want := f.Checksum()
		if got := s.Checksum(f.Name); got != want {
			out = append(out, Mismatch{
				Field: "checksum " + f.Name,
				Want:  fmt.Sprintf("%08x", want),
				Got:   fmt.Sprintf("%08x", got),
			})
		}
	}
	return out
}
