package preview

import (
	"net"
	"runtime"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/stackgen/internal/vfs"
)

func TestServe_ExportsTree(t *testing.T) {
	tree := vfs.New()
	require.NoError(t, tree.WriteString("apps/web/package.json", `{"name":"web"}`, vfs.WriteOptions{}))

	s, err := Serve(tree, "127.0.0.1:0")
	require.NoError(t, err)

	assert.NotZero(t, s.Port())
	data, err := util.ReadFile(s.Filesystem(), "apps/web/package.json")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"web"}`, string(data))

	conn, err := net.DialTimeout("tcp", s.Addr().String(), time.Second)
	require.NoError(t, err)
	_ = conn.Close()

	require.NoError(t, s.Close())
	_, err = net.DialTimeout("tcp", s.Addr().String(), 200*time.Millisecond)
	assert.Error(t, err)
}

func TestMountCommand(t *testing.T) {
	cmd, err := MountCommand(2049, "/mnt/demo")
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		assert.Error(t, err)
		return
	}
	require.NoError(t, err)
	assert.Contains(t, cmd.Args, "localhost:/")
	assert.Contains(t, cmd.Args, "/mnt/demo")
}
