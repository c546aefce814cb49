package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	zergmgr "github.com/axondata/go-zergmgr"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List running overlords and their zerglings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		root, err := rootDir()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		overlords, err := zergmgr.Instances(ctx, root)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, o := range overlords {
			fmt.Fprintln(out, o.Name())
			zerglings, err := o.Zerglings()
			if err != nil {
				return err
			}
			for _, z := range zerglings {
				if state := zerglingState(ctx, z); len(state) > 0 {
					fmt.Fprintf(out, "    %s (%s)\n", z.Name(), strings.Join(state, ", "))
				} else {
					fmt.Fprintf(out, "    %s\n", z.Name())
				}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
