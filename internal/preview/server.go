// Package preview serves a generated project over NFSv3 so it can be
// mounted and browsed before anything is written to disk.
package preview

import (
	"errors"
	"fmt"
	"net"
	"os/exec"
	"runtime"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	nfs "github.com/willscott/go-nfs"
	nfshelper "github.com/willscott/go-nfs/helpers"

	"github.com/agentic-research/stackgen/internal/materialize"
	"github.com/agentic-research/stackgen/internal/vfs"
)

// Server is a running NFS export of one generated tree. The export is
// an in-memory copy; edits made through a mount are discarded on Close.
type Server struct {
	listener net.Listener
	fs       billy.Filesystem
	done     chan error
}

// Serve copies tree into a memory filesystem and exports it on addr
// ("127.0.0.1:0" picks a free port).
func Serve(tree *vfs.Tree, addr string) (*Server, error) {
	fs := memfs.New()
	if res := materialize.ToFilesystem(tree, fs); !res.Success {
		return nil, fmt.Errorf("copy tree: %s", res.Error)
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("nfs listen: %w", err)
	}

	handler := nfshelper.NewNullAuthHandler(fs)
	cacheHelper := nfshelper.NewCachingHandler(handler, 4096)

	s := &Server{listener: listener, fs: fs, done: make(chan error, 1)}
	go func() {
		s.done <- nfs.Serve(listener, cacheHelper)
	}()
	return s, nil
}

// Addr returns the listen address.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Port returns the TCP port the NFS server is listening on.
func (s *Server) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

// Filesystem returns the exported filesystem.
func (s *Server) Filesystem() billy.Filesystem { return s.fs }

// Close stops the server and waits for the accept loop to exit.
func (s *Server) Close() error {
	err := s.listener.Close()
	<-s.done
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// MountCommand returns the mount invocation for the export at mountpoint.
func MountCommand(port int, mountpoint string) (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "darwin":
		opts := fmt.Sprintf("port=%d,mountport=%d,vers=3,tcp,locallocks,noresvport,rdonly", port, port)
		return exec.Command("sudo", "mount", "-t", "nfs", "-o", opts, "localhost:/", mountpoint), nil
	case "linux":
		opts := fmt.Sprintf("port=%d,mountport=%d,vers=3,tcp,local_lock=all,nolock,ro", port, port)
		return exec.Command("sudo", "mount", "-t", "nfs", "-o", opts, "localhost:/", mountpoint), nil
	}
	return nil, fmt.Errorf("unsupported OS: %s", runtime.GOOS)
}

// Mount mounts the export read-only at mountpoint. Requires sudo.
func Mount(port int, mountpoint string) error {
	cmd, err := MountCommand(port, mountpoint)
	if err != nil {
		return err
	}
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("mount failed: %w\n%s", err, string(output))
	}
	return nil
}

// Unmount undoes Mount.
func Unmount(mountpoint string) error {
	if runtime.GOOS == "darwin" {
		if err := exec.Command("diskutil", "unmount", mountpoint).Run(); err == nil {
			return nil
		}
	}
	output, err := exec.Command("sudo", "umount", mountpoint).CombinedOutput()
	if err != nil {
		return fmt.Errorf("unmount failed: %w\n%s", err, string(output))
	}
	return nil
}
