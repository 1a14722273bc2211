package elfsym

import (
	"bytes"
	"debug/elf"
	"fmt"
	"os"
	"runtime"
	"strings"

	bufra "github.com/avvmoto/buf-readerat"
	"github.com/ianlancetaylor/demangle"
)

// ImageFile caches an ELF image's headers and serves section/string reads.
// It keeps the file handle open lazily; Close releases it. Header slices
// stay valid after Close.
type ImageFile struct {
	elf.FileHeader
	Sections []elf.SectionHeader
	Progs    []elf.ProgHeader

	path        string
	f           *os.File
	r           *bufra.BufReaderAt
	stringCache map[int]string
}

func NewImageFile(path string) (*ImageFile, error) {
	this := &ImageFile{path: path}
	if err := this.open(); err != nil {
		this.Close()
		return nil, err
	}

	e, err := elf.NewFile(this.f)
	if err != nil {
		this.Close()
		return nil, fmt.Errorf("elf new file: %w", err)
	}
	this.Progs = make([]elf.ProgHeader, 0, len(e.Progs))
	this.Sections = make([]elf.SectionHeader, 0, len(e.Sections))
	for i := range e.Progs {
		this.Progs = append(this.Progs, e.Progs[i].ProgHeader)
	}
	for i := range e.Sections {
		this.Sections = append(this.Sections, e.Sections[i].SectionHeader)
	}
	this.FileHeader = e.FileHeader
	runtime.SetFinalizer(this, (*ImageFile).Close)
	return this, nil
}

func (f *ImageFile) FindSection(name string) *elf.SectionHeader {
	for i := range f.Sections {
		if s := f.Sections[i]; s.Name == name {
			return &s
		}
	}
	return nil
}

func (f *ImageFile) FindSectionByType(styp elf.SectionType) *elf.SectionHeader {
	for i := range f.Sections {
		if s := &f.Sections[i]; s.Type == styp {
			return s
		}
	}
	return nil
}

func (f *ImageFile) GetSectionData(name string) (*SectionData, error) {
	section := f.FindSection(name)
	if section == nil {
		return nil, nil
	}
	if err := f.open(); err != nil {
		return nil, fmt.Errorf("image open: %w", err)
	}

	data := make([]byte, section.Size)
	if _, err := f.r.ReadAt(data, int64(section.Offset)); err != nil {
		return nil, fmt.Errorf("section %s read at: %w", name, err)
	}
	return &SectionData{data, section}, nil
}

func (f *ImageFile) FilePath() string { return f.path }

func (f *ImageFile) Close() {
	if f.f != nil {
		f.f.Close()
		f.f = nil
		f.r = nil
	}
	f.stringCache = nil
}

func (f *ImageFile) IsDead() bool {
	_, err := os.Stat(f.path)
	return err != nil
}

const stringReadBufSize = 4096

func (f *ImageFile) open() error {
	if f.f != nil {
		return nil
	}
	var err error
	if f.f, err = os.OpenFile(f.path, os.O_RDONLY, 0); err != nil {
		return fmt.Errorf("open elf file %s: %w", f.path, err)
	}
	f.r = bufra.NewBufReaderAt(f.f, stringReadBufSize)
	return nil
}

// getString reads a NUL-terminated string starting at file offset start,
// optionally demangling it. Resolved strings are cached per offset.
func (f *ImageFile) getString(start int, opts ...demangle.Option) string {
	if err := f.open(); err != nil {
		return ""
	}
	if s, ok := f.stringCache[start]; ok {
		return s
	}
	const bufsize = 128
	var buf [bufsize]byte
	var builder strings.Builder
	for i := 0; i < 10; i++ {
		n, err := f.r.ReadAt(buf[:], int64(start+i*bufsize))
		if n == 0 && err != nil {
			return ""
		}
		index := bytes.IndexByte(buf[:n], 0)
		if index < 0 {
			if err != nil {
				return "" // unterminated string at EOF
			}
			builder.Write(buf[:n])
			continue
		}
		builder.Write(buf[:index])
		s := builder.String()
		if len(opts) > 0 {
			s = demangle.Filter(s, opts...)
		}
		if f.stringCache == nil {
			f.stringCache = make(map[int]string)
		}
		f.stringCache[start] = s
		return s
	}
	return ""
}
