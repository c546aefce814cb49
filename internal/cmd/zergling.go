package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	zergmgr "github.com/axondata/go-zergmgr"
)

var (
	spawnVirtualenv string
	spawnPaused     bool
)

var spawnZerglingCmd = &cobra.Command{
	Use:   "spawn-zergling <overlord>[/name] <app-config>",
	Short: "Attach a new worker to an overlord's pool",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := rootDir()
		if err != nil {
			return err
		}

		oname, zname := parseAlias(args[0])
		o := zergmgr.NewOverlord(root, oname)
		zerglings, err := o.Zerglings()
		if err != nil {
			return err
		}
		if zname == "" {
			zname = nextZerglingName(zerglings)
		}

		var z *zergmgr.Zergling
		for _, candidate := range zerglings {
			if candidate.Name() == zname {
				z = candidate
				break
			}
		}
		if z == nil {
			z = zergmgr.NewZergling(o, zname, args[1])
		}

		var opts []zergmgr.RegenOption
		if spawnVirtualenv != "" {
			opts = append(opts, zergmgr.WithVirtualenv(spawnVirtualenv))
		}
		if spawnPaused {
			opts = append(opts, zergmgr.WithStartPaused())
		}

		logger.Infow("spawning zergling", "zergling", z.String(), "app", z.AppConfigPath())
		if err := z.RegenerateConfig(opts...); err != nil {
			return err
		}
		return z.Start(cmd.Context())
	},
}

var pauseZerglingCmd = &cobra.Command{
	Use:   "pause-zergling <overlord/zergling>",
	Short: "Pause a running zergling's workers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := rootDir()
		if err != nil {
			return err
		}

		z, err := lookupZergling(root, args[0])
		if err != nil {
			return zerglingError(err)
		}
		logger.Infow("pausing zergling", "zergling", z.String())
		if err := z.Pause(cmd.Context()); err != nil {
			if errors.Is(err, zergmgr.ErrAlreadyPaused) {
				return errors.New("that zergling is already paused")
			}
			return err
		}
		return nil
	},
}

var resumeZerglingCmd = &cobra.Command{
	Use:   "resume-zergling <overlord/zergling>",
	Short: "Resume a paused zergling's workers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := rootDir()
		if err != nil {
			return err
		}

		z, err := lookupZergling(root, args[0])
		if err != nil {
			return zerglingError(err)
		}
		logger.Infow("resuming zergling", "zergling", z.String())
		if err := z.Resume(cmd.Context()); err != nil {
			if errors.Is(err, zergmgr.ErrAlreadyRunning) {
				return errors.New("that zergling is already running")
			}
			return err
		}
		return nil
	},
}

var statsZerglingCmd = &cobra.Command{
	Use:   "stats-zergling <overlord/zergling>",
	Short: "Print a zergling's statistics snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := rootDir()
		if err != nil {
			return err
		}

		z, err := lookupZergling(root, args[0])
		if err != nil {
			return zerglingError(err)
		}
		st, err := z.ReadStats(cmd.Context())
		if err != nil {
			if errors.Is(err, zergmgr.ErrNotRunning) {
				return errors.New("zergling not running")
			}
			return err
		}

		var pretty bytes.Buffer
		if err := json.Indent(&pretty, st.Raw, "", "    "); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
		return nil
	},
}

var killZerglingCmd = &cobra.Command{
	Use:   "kill-zergling <overlord/zergling>",
	Short: "Stop a zergling and remove it from its overlord's config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := rootDir()
		if err != nil {
			return err
		}

		z, err := lookupZergling(root, args[0])
		if err != nil {
			return zerglingError(err)
		}
		logger.Infow("killing zergling", "zergling", z.String())
		if err := z.Stop(cmd.Context()); err != nil && !errors.Is(err, zergmgr.ErrNotRunning) {
			return err
		}
		return z.Delete()
	},
}

var reloadZerglingCmd = &cobra.Command{
	Use:   "reload-zergling <overlord/zergling>",
	Short: "Replace a zergling's instance without dropping requests",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := rootDir()
		if err != nil {
			return err
		}

		z, err := lookupZergling(root, args[0])
		if err != nil {
			return zerglingError(err)
		}
		logger.Infow("reloading zergling", "zergling", z.String())
		if err := z.Reload(cmd.Context()); err != nil {
			if errors.Is(err, zergmgr.ErrAlreadyReloading) {
				return errors.New("that zergling is already reloading")
			}
			return err
		}
		return nil
	},
}

// zerglingError maps a lookup failure to the user-facing message
func zerglingError(err error) error {
	if errors.Is(err, zergmgr.ErrNoSuchZergling) {
		return errors.New("no zergling with that name")
	}
	return err
}

func init() {
	spawnZerglingCmd.Flags().StringVarP(&spawnVirtualenv, "virtualenv", "e", "", "path to the virtualenv")
	spawnZerglingCmd.Flags().BoolVarP(&spawnPaused, "paused", "p", false, "start the zergling paused")

	rootCmd.AddCommand(spawnZerglingCmd)
	rootCmd.AddCommand(pauseZerglingCmd)
	rootCmd.AddCommand(resumeZerglingCmd)
	rootCmd.AddCommand(statsZerglingCmd)
	rootCmd.AddCommand(killZerglingCmd)
	rootCmd.AddCommand(reloadZerglingCmd)
}
