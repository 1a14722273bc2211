package elfsym

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// FindDebugFile locates a separate debug-info file for a stripped image,
// first through its GNU build id, then through .gnu_debuglink. The returned
// path is relative to root ("" when nothing was found); root is usually "/"
// or a /proc/<pid>/root prefix.
func (f *ImageFile) FindDebugFile(root string) string {
	id := f.BuildId()
	if id == nil {
		id = &BuildId{}
	}
	if p := buildIdDebugPath(*id); p != "" && statFirst(root, p) != "" {
		return p
	}
	return f.findDebugFileViaLink(root)
}

// buildIdDebugPath is the distro convention: the first two hex digits name
// the directory, the rest the file. Only GNU ids participate.
func buildIdDebugPath(id BuildId) string {
	if len(id.Id) < 3 || !id.GNU() {
		return ""
	}
	return fmt.Sprintf("/usr/lib/debug/.build-id/%s/%s.debug", id.Id[:2], id.Id[2:])
}

func (f *ImageFile) findDebugFileViaLink(root string) string {
	data, err := f.GetSectionData(".gnu_debuglink")
	if err != nil || data == nil || len(data.Data) < 6 {
		return ""
	}
	debuglink := cstring(data.Data)
	return statFirst(root, debugLinkCandidates(filepath.Dir(f.FilePath()), debuglink)...)
}

// debugLinkCandidates lists the places gdb would look for a debuglink
// target, in order.
func debugLinkCandidates(dir, debuglink string) []string {
	return []string{
		// /usr/bin/ls.debug
		filepath.Join(dir, debuglink),
		// /usr/bin/.debug/ls.debug
		filepath.Join(dir, ".debug", debuglink),
		// /usr/lib/debug/usr/bin/ls.debug
		filepath.Join("/usr/lib/debug", dir, debuglink),
	}
}

// statFirst returns the first of paths that exists under root.
func statFirst(root string, paths ...string) string {
	for _, p := range paths {
		if _, err := os.Stat(filepath.Join(root, p)); err == nil {
			return p
		}
	}
	return ""
}

func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
