package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/samber/lo"
	"github.com/vietanhduong/symcore/pkg/elfsym"
	"github.com/vietanhduong/symcore/pkg/resolver"
)

func main() {
	var pid int
	var elfPath string
	var addrs string
	var names string
	var kernel bool
	var demangleType string
	flag.IntVar(&pid, "pid", -1, "Target process id")
	flag.StringVar(&elfPath, "elf", "", "Resolve against a single ELF file instead of a process")
	flag.StringVar(&addrs, "addr", "", "Comma separated hex addresses to resolve")
	flag.StringVar(&names, "name", "", "Comma separated symbol names to resolve")
	flag.BoolVar(&kernel, "kernel", false, "Also load /proc/kallsyms")
	flag.StringVar(&demangleType, "demangle", string(elfsym.DemangleFull), "Demangle mode: NONE, SIMPLIFIED, TEMPLATES, FULL")
	flag.Parse()

	if pid == -1 && elfPath == "" {
		glog.Errorf("No pid or elf path is specified")
		os.Exit(1)
	}

	opts := &resolver.LoadOptions{
		Demangle: elfsym.DemangleType(demangleType),
		Kernel:   kernel,
	}

	var r *resolver.Resolver
	var err error
	if elfPath != "" {
		r, err = resolver.ForFile(elfPath, opts)
	} else {
		r, err = resolver.ForProcess(pid, opts)
	}
	if err != nil {
		glog.Errorf("Failed to build resolver: %v", err)
		os.Exit(1)
	}

	glog.Infof("Loaded %d images, %d symbols", len(r.Images()), r.NumSymbols())

	for _, raw := range splitList(addrs) {
		addr, err := strconv.ParseUint(strings.TrimPrefix(raw, "0x"), 16, 64)
		if err != nil {
			glog.Errorf("Bad address %q: %v", raw, err)
			continue
		}
		if m, ok := r.ResolveAddress(addr); ok {
			fmt.Printf("0x%x -> %s (%s)\n", addr, m.Sym, m.Image)
		} else {
			fmt.Printf("0x%x -> not found\n", addr)
		}
	}

	for _, name := range splitList(names) {
		matches := r.ResolveName(name)
		if len(matches) == 0 {
			fmt.Printf("%s -> not found\n", name)
			continue
		}
		for _, m := range matches {
			fmt.Printf("%s -> %s (%s)\n", name, m.Sym, m.Image)
		}
	}
}

func splitList(s string) []string {
	items := lo.Map(strings.Split(s, ","), func(item string, _ int) string {
		return strings.TrimSpace(item)
	})
	return lo.Filter(items, func(item string, _ int) bool { return item != "" })
}
