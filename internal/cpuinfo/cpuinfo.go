// Package cpuinfo reports the host's SIMD-relevant CPU features.
package cpuinfo

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// Report describes the host CPU as seen by the kernel dispatch.
type Report struct {
	GoArch   string          `json:"go_arch"`
	CPUs     int             `json:"cpus"`
	Features map[string]bool `json:"features"`
}

// Detect collects the vector extensions relevant to the integer kernels.
// Features of other architectures report false.
func Detect() Report {
	features := map[string]bool{
		"SSSE3":      cpu.X86.HasSSSE3,
		"SSE41":      cpu.X86.HasSSE41,
		"AVX":        cpu.X86.HasAVX,
		"AVX2":       cpu.X86.HasAVX2,
		"AVX512F":    cpu.X86.HasAVX512F,
		"AVX512BW":   cpu.X86.HasAVX512BW,
		"AVX512VNNI": cpu.X86.HasAVX512VNNI,
		"NEON":       cpu.ARM64.HasASIMD,
		"DOTPROD":    cpu.ARM64.HasASIMDDP,
	}

	return Report{
		GoArch:   runtime.GOARCH,
		CPUs:     runtime.NumCPU(),
		Features: features,
	}
}
