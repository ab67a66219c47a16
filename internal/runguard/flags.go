package runguard

import (
	"fmt"

	"github.com/programme-lv/coderun/internal/sandbox"
)

type Flags struct {
	User            string
	TimeSec         int
	MemoryKB        int64
	FileSizeBytes   int64
	Processes       int
	StreamSizeBytes int64
	NoCore          bool
}

// FlagsFor derives the enforcer flags from the execution context.
func FlagsFor(ctx *sandbox.Context) Flags {
	return Flags{
		User:            ctx.RunAs(),
		TimeSec:         ctx.CPUTimeSec(),
		MemoryKB:        ctx.MemoryKB(),
		FileSizeBytes:   ctx.DiskBytes(),
		Processes:       ctx.MaxProcs(),
		StreamSizeBytes: ctx.DiskBytes(),
		NoCore:          true,
	}
}

func (f *Flags) ToArgs() []string {
	args := []string{
		f.UserArg(),
		f.TimeArg(),
		f.MemSizeArg(),
		f.FileSizeArg(),
		f.NProcArg(),
	}
	if f.NoCore {
		args = append(args, "--no-core")
	}
	args = append(args, f.StreamSizeArg())
	return args
}

func (f *Flags) UserArg() string {
	return fmt.Sprintf("--user=%s", f.User)
}

func (f *Flags) TimeArg() string {
	return fmt.Sprintf("--time=%d", f.TimeSec)
}

func (f *Flags) MemSizeArg() string {
	return fmt.Sprintf("--memsize=%d", f.MemoryKB)
}

func (f *Flags) FileSizeArg() string {
	return fmt.Sprintf("--filesize=%d", f.FileSizeBytes)
}

func (f *Flags) NProcArg() string {
	return fmt.Sprintf("--nproc=%d", f.Processes)
}

func (f *Flags) StreamSizeArg() string {
	return fmt.Sprintf("--streamsize=%d", f.StreamSizeBytes)
}

// Command assembles the full argument vector: the enforcer, its flags, then the
// program it should run. Empty target entries are dropped.
func Command(enforcer string, f Flags, target ...string) []string {
	argv := make([]string, 0, 8+len(target))
	argv = append(argv, enforcer)
	argv = append(argv, f.ToArgs()...)
	for _, t := range target {
		if t != "" {
			argv = append(argv, t)
		}
	}
	return argv
}
