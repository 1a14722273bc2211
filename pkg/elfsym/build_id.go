package elfsym

import (
	"bytes"
	"encoding/hex"
)

// note section layout: a 12-byte header (namesz, descsz, type), the name,
// then the descriptor. Both parsers below work on the raw section bytes so
// the formats stay checkable without an image on disk.
const (
	gnuNoteDescOffset = 16 // header + "GNU\0"
	goNoteDescOffset  = 16 // header + "Go\0\0" + padding
)

// BuildId identifies an image build, either a GNU note hash or a Go
// toolchain build id.
func (f *ImageFile) BuildId() *BuildId {
	if id := f.GnuBuildId(); id != nil {
		return id
	}
	return f.GoBuildId()
}

func (f *ImageFile) GnuBuildId() *BuildId {
	sd, err := f.GetSectionData(".note.gnu.build-id")
	if err != nil || sd == nil {
		return nil
	}
	return parseGnuBuildId(sd.Data)
}

func (f *ImageFile) GoBuildId() *BuildId {
	sd, err := f.GetSectionData(".note.go.buildid")
	if err != nil || sd == nil {
		return nil
	}
	return parseGoBuildId(sd.Data)
}

// parseGnuBuildId accepts 20-byte (sha1) and 8-byte (xxhash, seen on
// Container-Optimized OS) descriptors and renders them as hex.
func parseGnuBuildId(data []byte) *BuildId {
	if len(data) < gnuNoteDescOffset {
		return nil
	}
	if !bytes.Equal([]byte("GNU"), data[12:15]) {
		return nil
	}
	raw := data[gnuNoteDescOffset:]
	if len(raw) != 20 && len(raw) != 8 {
		return nil
	}
	id := GnuBuildId(hex.EncodeToString(raw))
	return &id
}

// parseGoBuildId takes the NUL-terminated descriptor as-is. Real ids are
// slash-separated actionID/contentID tuples; anything shorter, or the
// "redacted" placeholder written by -buildid=, is not usable for lookup.
func parseGoBuildId(data []byte) *BuildId {
	if len(data) <= goNoteDescOffset {
		return nil
	}
	raw := data[goNoteDescOffset : len(data)-1]
	if len(raw) < 40 || bytes.Count(raw, []byte(`/`)) < 2 || string(raw) == "redacted" {
		return nil
	}
	id := GoBuildId(string(raw))
	return &id
}
