package elfsym

import (
	"debug/elf"
	"fmt"
	"unsafe"
)

func (f *ImageFile) getSymbols(styp elf.SectionType) (*sectionSymbols, error) {
	if styp != elf.SHT_DYNSYM && styp != elf.SHT_SYMTAB {
		return nil, fmt.Errorf("unsupported elf section type %s", styp.String())
	}
	section := f.FindSectionByType(styp)
	if section == nil {
		return nil, fmt.Errorf("not found section %s", styp.String())
	}
	sd, err := f.GetSectionData(section.Name)
	if err != nil {
		return nil, fmt.Errorf("get section data: %w", err)
	}
	if sd == nil {
		return nil, fmt.Errorf("no data in section %s", section.Name)
	}

	link := symtabLink
	if styp == elf.SHT_DYNSYM {
		link = dynsymLink
	}

	var symbols []rawSym
	switch f.Class {
	case elf.ELFCLASS64:
		symbols, err = parseSymbols64(sd.Data, link)
	case elf.ELFCLASS32:
		symbols, err = parseSymbols32(sd.Data, link)
	default:
		return nil, fmt.Errorf("unsupported elf class %s", f.Class.String())
	}
	if err != nil {
		return nil, fmt.Errorf("parse section %s: %w", section.Name, err)
	}
	return &sectionSymbols{sd, symbols}, nil
}

func parseSymbols64(data []byte, link SectionLinkIndex) ([]rawSym, error) {
	size := int(unsafe.Sizeof(elf.Sym64{}))
	// A valid section is a whole number of entries, starting with the
	// reserved null symbol.
	if len(data) < size || len(data)%size != 0 {
		return nil, fmt.Errorf("invalid section data size %d", len(data))
	}
	data = data[size:]
	symbols := make([]rawSym, 0, len(data)/size)
	for len(data) > 0 {
		raw := data[:size]
		data = data[size:]
		sym := (*elf.Sym64)(unsafe.Pointer(&raw[0]))
		if !wantSymbol(sym.Name, sym.Shndx) {
			continue
		}
		if sym.Name >= 0x7fffffff {
			return nil, fmt.Errorf("invalid symbol name offset 0x%x", sym.Name)
		}
		symbols = append(symbols, rawSym{
			name:  newNameRef(sym.Name, link),
			value: sym.Value,
			size:  sym.Size,
			info:  sym.Info,
		})
	}
	return symbols, nil
}

func parseSymbols32(data []byte, link SectionLinkIndex) ([]rawSym, error) {
	size := int(unsafe.Sizeof(elf.Sym32{}))
	if len(data) < size || len(data)%size != 0 {
		return nil, fmt.Errorf("invalid section data size %d", len(data))
	}
	data = data[size:]
	symbols := make([]rawSym, 0, len(data)/size)
	for len(data) > 0 {
		raw := data[:size]
		data = data[size:]
		sym := (*elf.Sym32)(unsafe.Pointer(&raw[0]))
		if !wantSymbol(sym.Name, sym.Shndx) {
			continue
		}
		if sym.Name >= 0x7fffffff {
			return nil, fmt.Errorf("invalid symbol name offset 0x%x", sym.Name)
		}
		symbols = append(symbols, rawSym{
			name:  newNameRef(sym.Name, link),
			value: uint64(sym.Value),
			size:  uint64(sym.Size),
			info:  sym.Info,
		})
	}
	return symbols, nil
}

// wantSymbol keeps defined, named entries. Undefined symbols (imports) have
// no address in this image; nameless entries cannot become records.
func wantSymbol(nameOff uint32, shndx uint16) bool {
	return nameOff != 0 && shndx != uint16(elf.SHN_UNDEF)
}
