package elfsym

import (
	"debug/elf"

	"github.com/ianlancetaylor/demangle"
)

type BuildType string

const (
	GNU BuildType = "GNU"
	GO  BuildType = "GO"
)

type BuildId struct {
	Id   string
	Type BuildType
}

func GoBuildId(id string) BuildId { return BuildId{id, GO} }

func GnuBuildId(id string) BuildId { return BuildId{id, GNU} }

func (id BuildId) GNU() bool { return id.Type == GNU }

type SectionData struct {
	Data   []byte
	Header *elf.SectionHeader
}

// nameRef packs a string-table offset with the section link index of the
// symbol section it belongs to, so merged symtab/dynsym entries remember
// which string table resolves them.
type (
	nameRef          uint32
	SectionLinkIndex uint8
)

const (
	symtabLink SectionLinkIndex = 0
	dynsymLink SectionLinkIndex = 1
)

func newNameRef(off uint32, index SectionLinkIndex) nameRef {
	return nameRef((off & 0x7fffffff) | uint32(index)<<31)
}

func (n nameRef) Offset() uint32         { return uint32(n) & 0x7fffffff }
func (n nameRef) Link() SectionLinkIndex { return SectionLinkIndex(n >> 31) }

// rawSym is one symbol-section entry before name resolution.
type rawSym struct {
	name  nameRef
	value uint64
	size  uint64
	info  uint8
}

type sectionSymbols struct {
	data    *SectionData
	symbols []rawSym
}

// SymbolOptions controls how an image's symbol table is extracted.
type SymbolOptions struct {
	// DemangleOpts, when non-empty, filters every resolved name.
	DemangleOpts []demangle.Option
	// Bias is added to every symbol address, mapping link-time addresses
	// to the image's runtime load location.
	Bias uint64
}

type DemangleType string

const (
	DemangleNone       DemangleType = "NONE"
	DemangleSimplified DemangleType = "SIMPLIFIED"
	DemangleTemplates  DemangleType = "TEMPLATES"
	DemangleFull       DemangleType = "FULL"
)

func (dt DemangleType) ToOptions() []demangle.Option {
	switch dt {
	case DemangleNone:
		return nil
	case DemangleSimplified:
		return []demangle.Option{demangle.NoParams, demangle.NoEnclosingParams, demangle.NoTemplateParams}
	case DemangleTemplates:
		return []demangle.Option{demangle.NoParams, demangle.NoEnclosingParams}
	default:
		return []demangle.Option{demangle.NoClones}
	}
}
