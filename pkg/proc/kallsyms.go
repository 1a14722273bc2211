package proc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/vietanhduong/symcore/pkg/symbol"
)

// KernelTable parses /proc/kallsyms into a sealed per-image table for the
// running kernel. Kernel symbols carry no size, so every record relies on
// the index's zero-size containment rule.
func KernelTable() (*symbol.Table, error) {
	kallsyms := HostPath("kallsyms")
	f, err := os.Open(kallsyms)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", kallsyms, err)
	}
	defer f.Close()
	return ParseKallsyms(f)
}

// ParseKallsyms reads kallsyms-format lines ("addr type name [module]").
// Entries at address 0 are hidden from unprivileged readers and skipped.
func ParseKallsyms(r io.Reader) (*symbol.Table, error) {
	table := symbol.NewTable()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 3 {
			continue
		}
		addr, err := strconv.ParseUint(parts[0], 16, 64)
		if err != nil || addr == 0 {
			continue
		}
		typ := parts[1]
		if len(typ) != 1 {
			continue
		}
		rec, err := symbol.New(parts[2], addr, 0, ksymBinding(typ[0]), ksymKind(typ[0]))
		if err != nil {
			glog.V(3).Infof("Skip kallsyms entry %s: %v", parts[2], err)
			continue
		}
		if err := table.Append(rec); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan kallsyms: %w", err)
	}
	table.Seal()
	return table, nil
}

// ksymBinding follows nm(1) conventions: lowercase types are local,
// uppercase global, with 'w'/'W'/'v'/'V' marking weak symbols.
func ksymBinding(typ byte) symbol.Binding {
	switch typ {
	case 'w', 'W', 'v', 'V':
		return symbol.BindingWeak
	}
	if typ >= 'a' && typ <= 'z' {
		return symbol.BindingLocal
	}
	return symbol.BindingGlobal
}

func ksymKind(typ byte) symbol.Kind {
	switch typ {
	case 't', 'T', 'w', 'W':
		return symbol.KindFunc
	case 'd', 'D', 'b', 'B', 'r', 'R', 'v', 'V':
		return symbol.KindObject
	case 'a', 'A':
		return symbol.KindNotype
	}
	return symbol.KindUnknown
}
