package proc

import (
	"flag"
	"fmt"
	"path"

	"golang.org/x/sys/unix"
)

var (
	procPath = flag.String("proc-path", "/proc", "Path to proc directory")
	hostPath = flag.String("host-path", "/", "The host directory. Useful in container.")
)

func Path(paths ...string) string {
	p := append([]string{*procPath}, paths...)
	return path.Join(p...)
}

func HostPath(paths ...string) string {
	if *hostPath == "" || *hostPath == "/" {
		return Path(paths...)
	}
	p := append([]string{*hostPath, *procPath}, paths...)
	return path.Join(p...)
}

// RootPath resolves a path inside a process's root filesystem, which may
// differ from ours when the target runs in a container.
func RootPath(pid int, paths ...string) string {
	p := append([]string{fmt.Sprintf("%d/root", pid)}, paths...)
	return HostPath(p...)
}

// Accessible reports whether path exists and is readable by this process.
func Accessible(path string) bool {
	return unix.Access(path, unix.R_OK) == nil
}
