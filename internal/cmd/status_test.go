//go:build linux || darwin

package cmd

import (
	"bytes"
	"net"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	zergmgr "github.com/axondata/go-zergmgr"
)

func TestStatusCommand(t *testing.T) {
	root := t.TempDir()
	viper.Set("root", root)
	t.Cleanup(func() { viper.Set("root", "") })

	o := zergmgr.NewOverlord(root, "api")
	require.NoError(t, o.RegenerateConfig())
	require.NoError(t, zergmgr.NewZergling(o, "1", "/apps/web.ini").RegenerateConfig())
	require.NoError(t, zergmgr.NewZergling(o, "2", "/apps/web.ini").RegenerateConfig())

	stats := `{"pid": 1, "workers": [{"id": 1, "status": "idle"}]}`
	paused := `{"pid": 2, "workers": [{"id": 1, "status": "pause"}]}`
	serve := func(path, payload string) {
		ln, err := net.Listen("unix", path)
		require.NoError(t, err)
		t.Cleanup(func() { _ = ln.Close() })
		go func() {
			for {
				conn, err := ln.Accept()
				if err != nil {
					return
				}
				_, _ = conn.Write([]byte(payload))
				_ = conn.Close()
			}
		}()
	}
	serve(o.StatsSocketPath(), stats)
	serve(zergmgr.NewZergling(o, "1", "").StatsSocketPath(), stats)
	serve(zergmgr.NewZergling(o, "2", "").StatsSocketPath(), paused)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"status"})
	require.NoError(t, rootCmd.Execute())

	require.Equal(t, "api\n    1\n    2 (paused)\n", out.String())
}

func TestStatusCommandNoRoot(t *testing.T) {
	viper.Set("root", "")

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"status"})
	require.Error(t, rootCmd.Execute())
}
