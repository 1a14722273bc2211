package proc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/glog"
	"golang.org/x/sys/unix"
)

// Map is one executable mapping from /proc/<pid>/maps: a candidate image
// contributing symbols.
type Map struct {
	Pathname   string
	StartAddr  uint64
	EndAddr    uint64
	FileOffset uint64
	DevMajor   uint32
	DevMinor   uint32
	Inode      uint64
}

func (m *Map) String() string {
	if m == nil {
		return ""
	}
	return fmt.Sprintf("%s 0x%016x-0x%016x 0x%016x %x:%x %d",
		m.Pathname, m.StartAddr, m.EndAddr, m.FileOffset,
		m.DevMajor, m.DevMinor, m.Inode)
}

// Dev is the combined device number of the backing file.
func (m *Map) Dev() uint64 { return unix.Mkdev(m.DevMajor, m.DevMinor) }

// IsVDSO reports whether the mapping is the kernel-provided vDSO image.
func (m *Map) IsVDSO() bool { return m.Pathname == "[vdso]" }

// LoadMaps parses the executable mappings of pid.
func LoadMaps(pid int) ([]*Map, error) {
	mapfile := HostPath(fmt.Sprintf("%d", pid), "maps")
	f, err := os.Open(mapfile)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", mapfile, err)
	}
	defer f.Close()

	ret, err := ParseMaps(f)
	if err != nil {
		glog.Warningf("Failed to parse proc map %s: %v", mapfile, err)
	}
	return ret, err
}

// ParseMaps reads maps-format lines, keeping executable, file-backed
// entries. Each line is parsed on its own, so one malformed or decorated
// entry (" (deleted)" suffixes and the like) never hides the rest.
func ParseMaps(r io.Reader) ([]*Map, error) {
	var ret []*Map
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if m := parseMapLine(scanner.Text()); m != nil {
			ret = append(ret, m)
		}
	}
	if err := scanner.Err(); err != nil {
		return ret, fmt.Errorf("scan maps: %w", err)
	}
	return ret, nil
}

func parseMapLine(line string) *Map {
	var m Map
	var perm, buf string
	n, _ := fmt.Sscanf(line, "%x-%x %4s %x %x:%x %d %s",
		&m.StartAddr,
		&m.EndAddr,
		&perm,
		&m.FileOffset,
		&m.DevMajor,
		&m.DevMinor,
		&m.Inode,
		&buf)
	if n < 7 {
		return nil
	}
	if len(perm) != 4 || perm[2] != 'x' { // executable only
		return nil
	}
	m.Pathname = strings.TrimSpace(buf)
	if isAnonymous(m.Pathname) {
		return nil
	}
	return &m
}

// isAnonymous filters mappings that cannot be opened as images.
func isAnonymous(mapname string) bool {
	return mapname == "" ||
		strings.HasPrefix(mapname, "//anon") ||
		strings.HasPrefix(mapname, "/dev/zero") ||
		strings.HasPrefix(mapname, "/anon_hugepage") ||
		strings.HasPrefix(mapname, "/memfd:") ||
		strings.HasPrefix(mapname, "[stack") ||
		strings.HasPrefix(mapname, "/SYSV") ||
		strings.HasPrefix(mapname, "[heap]") ||
		strings.HasPrefix(mapname, "[vsyscall]")
}
