package core_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/named-data/lfq/core"
	"github.com/named-data/lfq/std/log"
	"github.com/named-data/lfq/std/types/lockfree"
	"github.com/named-data/lfq/std/utils/toolutils"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := core.DefaultConfig()
	require.NoError(t, c.Validate())
	require.NoError(t, c.Stress.Validate())
	require.NoError(t, c.Throughput.Validate())
	require.NoError(t, c.Dispatch.Validate())
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "lfq.yml")
	require.NoError(t, os.WriteFile(file, []byte(`
core:
  log_level: debug
pool:
  size: 16
stress:
  ids: 500
  workers: 2
dispatch:
  threads: 2
  keys: 8
report:
  dir: reports
`), 0o644))

	c := core.DefaultConfig()
	c.Core.BaseDir = dir
	require.NoError(t, toolutils.ReadYaml(c, file))
	require.NoError(t, c.Validate())

	require.Equal(t, "debug", c.Core.LogLevel)
	require.Equal(t, 16, c.Pool.Size)
	require.Equal(t, 500, c.Stress.Ids)
	require.Equal(t, 2, c.Stress.Workers)
	require.Equal(t, 4, c.Stress.Producers) // default kept
	require.Equal(t, 2, c.Dispatch.Threads)
	require.Equal(t, 8, c.Dispatch.Keys)
	require.Equal(t, filepath.Join(dir, "reports"), c.ResolveRelPath(c.Report.Dir))
	require.Equal(t, "/abs", c.ResolveRelPath("/abs"))

	pool := c.NewPool()
	require.NotSame(t, lockfree.DefaultPool(), pool)
	require.Equal(t, 16, pool.PoolSize())
}

func TestValidateConfig(t *testing.T) {
	c := core.DefaultConfig()
	c.Core.LogLevel = "LOUD"
	require.Error(t, c.Validate())

	c = core.DefaultConfig()
	c.Core.LogFormat = "xml"
	require.Error(t, c.Validate())

	c = core.DefaultConfig()
	c.Pool.Size = -1
	require.Error(t, c.Validate())
}

func TestOpenLogger(t *testing.T) {
	prev := log.Default()
	defer log.SetDefault(prev)

	c := core.DefaultConfig()
	c.Core.BaseDir = t.TempDir()
	c.Core.LogFile = "lfq.log"
	c.Core.LogFormat = "json"
	c.Core.LogLevel = "WARN"
	require.NoError(t, core.OpenLogger(c))
	require.Equal(t, log.LevelWarn, log.Default().Level())

	log.Warn(nil, "written")
	core.CloseLogger()

	data, err := os.ReadFile(filepath.Join(c.Core.BaseDir, "lfq.log"))
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"written"`)
}
