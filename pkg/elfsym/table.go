package elfsym

import (
	"debug/elf"
	"fmt"
	"math"

	"github.com/golang/glog"
	"github.com/vietanhduong/symcore/pkg/symbol"
)

// NewSymbolTable extracts the image's symtab and dynsym sections into a
// sealed per-image table, in section order (symtab first). The table owns
// plain value records, so the caller may Close the file afterwards.
func (f *ImageFile) NewSymbolTable(opts *SymbolOptions) (*symbol.Table, error) {
	if opts == nil {
		opts = &SymbolOptions{}
	}
	sym, err := f.getSymbols(elf.SHT_SYMTAB)
	if err != nil {
		glog.V(3).Infof("No %s in %s: %v", elf.SHT_SYMTAB.String(), f.path, err)
		sym = &sectionSymbols{}
	}
	dynsym, err := f.getSymbols(elf.SHT_DYNSYM)
	if err != nil {
		glog.V(3).Infof("No %s in %s: %v", elf.SHT_DYNSYM.String(), f.path, err)
		dynsym = &sectionSymbols{}
	}
	if len(sym.symbols)+len(dynsym.symbols) == 0 {
		return nil, fmt.Errorf("no symbol section in %s", f.path)
	}

	var links [2]elf.SectionHeader
	if sym.data != nil {
		links[symtabLink] = f.Sections[sym.data.Header.Link]
	}
	if dynsym.data != nil {
		links[dynsymLink] = f.Sections[dynsym.data.Header.Link]
	}

	table := symbol.NewTable()
	for _, sec := range []*sectionSymbols{sym, dynsym} {
		for i := range sec.symbols {
			f.appendRecord(table, &sec.symbols[i], &links, opts)
		}
	}
	table.Seal()
	return table, nil
}

func (f *ImageFile) appendRecord(table *symbol.Table, raw *rawSym, links *[2]elf.SectionHeader, opts *SymbolOptions) {
	strtab := &links[raw.name.Link()]
	name := f.getString(int(raw.name.Offset())+int(strtab.Offset), opts.DemangleOpts...)
	if name == "" {
		return
	}

	addr := raw.value
	if opts.Bias > math.MaxUint64-addr {
		glog.Warningf("Symbol %s at 0x%x: bias 0x%x overflows, skipped", name, addr, opts.Bias)
		return
	}
	addr += opts.Bias

	// Malformed entries whose extent would wrap are clamped, per the
	// construction contract.
	size := raw.size
	if size > math.MaxUint64-addr {
		glog.Warningf("Symbol %s at 0x%x: size 0x%x wraps address space, clamped", name, addr, size)
		size = math.MaxUint64 - addr
	}

	rec, err := symbol.New(name, addr, size, bindingOf(raw.info), kindOf(raw.info))
	if err != nil {
		glog.Warningf("Skip malformed symbol %s: %v", name, err)
		return
	}
	if err := table.Append(rec); err != nil {
		glog.Errorf("Append %s to sealed table: %v", name, err)
	}
}

// bindingOf maps an st_info binding nibble to the closed Binding set.
// Codes this package does not recognize become BindingUnknown so newer
// toolchain output stays loadable.
func bindingOf(info uint8) symbol.Binding {
	switch elf.ST_BIND(info) {
	case elf.STB_LOCAL:
		return symbol.BindingLocal
	case elf.STB_GLOBAL:
		return symbol.BindingGlobal
	case elf.STB_WEAK:
		return symbol.BindingWeak
	case elf.STB_LOOS: // STB_GNU_UNIQUE
		return symbol.BindingUnique
	}
	return symbol.BindingUnknown
}

// kindOf maps an st_info type nibble to the closed Kind set, with the same
// unknown fallback as bindingOf.
func kindOf(info uint8) symbol.Kind {
	switch elf.ST_TYPE(info) {
	case elf.STT_NOTYPE:
		return symbol.KindNotype
	case elf.STT_OBJECT:
		return symbol.KindObject
	case elf.STT_FUNC:
		return symbol.KindFunc
	case elf.STT_SECTION:
		return symbol.KindSection
	case elf.STT_FILE:
		return symbol.KindFile
	case elf.STT_COMMON:
		return symbol.KindCommon
	case elf.STT_TLS:
		return symbol.KindTLS
	case elf.STT_LOOS: // STT_GNU_IFUNC
		return symbol.KindIfunc
	}
	return symbol.KindUnknown
}
