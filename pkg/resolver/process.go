package resolver

import (
	"debug/elf"
	"fmt"

	"github.com/golang/glog"
	"github.com/vietanhduong/symcore/pkg/elfsym"
	"github.com/vietanhduong/symcore/pkg/proc"
)

// LoadOptions configures how process images are symbolized.
type LoadOptions struct {
	Demangle elfsym.DemangleType
	// UseDebugFile prefers a separate debug-info file (by build id or
	// .gnu_debuglink) over the mapped image when one exists.
	UseDebugFile bool
	// Kernel also loads /proc/kallsyms as the "[kernel]" image.
	Kernel bool
}

// ForProcess builds a resolver over the executable mappings of pid. Images
// that cannot be parsed are skipped, not fatal; attaching to a process with
// no symbolizable mapping yields an empty resolver, which is a valid state.
func ForProcess(pid int, opts *LoadOptions) (*Resolver, error) {
	if opts == nil {
		opts = &LoadOptions{}
	}
	maps, err := proc.LoadMaps(pid)
	if err != nil {
		return nil, fmt.Errorf("load maps pid %d: %w", pid, err)
	}

	r := New()
	for _, m := range maps {
		if m.IsVDSO() {
			// No file behind the mapping; would need a memory dump.
			continue
		}
		loadModule(r, pid, m, opts)
	}
	if opts.Kernel {
		table, err := proc.KernelTable()
		if err != nil {
			glog.Warningf("Failed to load kernel symbols: %v", err)
		} else {
			r.LoadImage("[kernel]", table)
		}
	}
	return r, nil
}

// ForFile builds a resolver over a single on-disk image at its link-time
// addresses, the core-dump/offline analysis entry point.
func ForFile(path string, opts *LoadOptions) (*Resolver, error) {
	if opts == nil {
		opts = &LoadOptions{}
	}
	mf, err := elfsym.NewImageFile(path)
	if err != nil {
		return nil, err
	}
	defer mf.Close()
	table, err := mf.NewSymbolTable(&elfsym.SymbolOptions{
		DemangleOpts: opts.Demangle.ToOptions(),
	})
	if err != nil {
		return nil, err
	}
	r := New()
	r.LoadImage(path, table)
	return r, nil
}

func loadModule(r *Resolver, pid int, m *proc.Map, opts *LoadOptions) {
	path := proc.RootPath(pid, m.Pathname)
	if !proc.Accessible(path) {
		glog.V(3).Infof("Skip unreadable mapping %s", m.Pathname)
		return
	}
	mf, err := elfsym.NewImageFile(path)
	if err != nil {
		glog.V(3).Infof("Skip mapping %s: %v", m.Pathname, err)
		return
	}
	defer mf.Close()

	base, ok := findBase(mf, m)
	if !ok {
		glog.Warningf("Unable to determine base of image %s", m.Pathname)
		return
	}
	symopts := &elfsym.SymbolOptions{
		DemangleOpts: opts.Demangle.ToOptions(),
		Bias:         base,
	}

	if opts.UseDebugFile {
		if debugfile := mf.FindDebugFile(proc.RootPath(pid)); debugfile != "" {
			debugmf, err := elfsym.NewImageFile(proc.RootPath(pid, debugfile))
			if err != nil {
				glog.Errorf("Failed to open debug file %s: %v", debugfile, err)
				return
			}
			defer debugmf.Close()
			mf = debugmf
		}
	}

	table, err := mf.NewSymbolTable(symopts)
	if err != nil {
		glog.V(3).Infof("No symbols in %s: %v", m.Pathname, err)
		return
	}
	r.LoadImage(m.Pathname, table)
}

// findBase computes the load bias of a mapping: zero for fixed-address
// executables, start minus the matching PT_LOAD vaddr for shared objects.
func findBase(mf *elfsym.ImageFile, m *proc.Map) (uint64, bool) {
	if mf.FileHeader.Type == elf.ET_EXEC {
		return 0, true
	}
	for _, prog := range mf.Progs {
		if prog.Type == elf.PT_LOAD && (prog.Flags&elf.PF_X != 0) {
			if m.FileOffset == prog.Off {
				return m.StartAddr - prog.Vaddr, true
			}
		}
	}
	return 0, false
}
