package layout

import "sort"

// Target describes the ABI properties that decide C layout.
type Target struct {
	Triple   string // e.g. "x86_64-linux-gnu"
	PtrSize  int    // bytes
	PtrAlign int    // bytes
	// Alignment of 8-byte scalars inside aggregates; i386 SysV uses 4.
	Int64Align   int
	Float64Align int
	// CharSigned is the signedness of plain char.
	CharSigned bool
}

func X86_64LinuxGNU() Target {
	return Target{
		Triple:       "x86_64-linux-gnu",
		PtrSize:      8,
		PtrAlign:     8,
		Int64Align:   8,
		Float64Align: 8,
		CharSigned:   true,
	}
}

func I386LinuxGNU() Target {
	return Target{
		Triple:       "i386-linux-gnu",
		PtrSize:      4,
		PtrAlign:     4,
		Int64Align:   4,
		Float64Align: 4,
		CharSigned:   true,
	}
}

func AArch64LinuxGNU() Target {
	return Target{
		Triple:       "aarch64-linux-gnu",
		PtrSize:      8,
		PtrAlign:     8,
		Int64Align:   8,
		Float64Align: 8,
		CharSigned:   false,
	}
}

var targets = map[string]func() Target{
	"x86_64-linux-gnu":  X86_64LinuxGNU,
	"i386-linux-gnu":    I386LinuxGNU,
	"aarch64-linux-gnu": AArch64LinuxGNU,
}

// TargetByTriple looks up a known target.
func TargetByTriple(triple string) (Target, bool) {
	mk, ok := targets[triple]
	if !ok {
		return Target{}, false
	}
	return mk(), true
}

// KnownTriples lists supported triples, sorted.
func KnownTriples() []string {
	out := make([]string, 0, len(targets))
	for k := range targets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
