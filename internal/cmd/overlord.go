package cmd

import (
	"github.com/spf13/cobra"

	zergmgr "github.com/axondata/go-zergmgr"
)

var spawnOverlordCmd = &cobra.Command{
	Use:   "spawn-overlord <name>",
	Short: "Start a master server that accepts zerglings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := rootDir()
		if err != nil {
			return err
		}

		o := zergmgr.NewOverlord(root, args[0])
		logger.Infow("spawning overlord", "name", o.Name(), "folder", o.Folder())
		if err := o.RegenerateConfig(); err != nil {
			return err
		}
		return o.Start(cmd.Context())
	},
}

var slayOverlordCmd = &cobra.Command{
	Use:   "slay-overlord <name>",
	Short: "Stop a previously started master server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := rootDir()
		if err != nil {
			return err
		}

		o := zergmgr.NewOverlord(root, args[0])
		logger.Infow("slaying overlord", "name", o.Name())
		return o.Stop(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(spawnOverlordCmd)
	rootCmd.AddCommand(slayOverlordCmd)
}
