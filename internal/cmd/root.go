// Package cmd implements the zergmgr command line interface. It is the
// only layer that turns domain errors into user-facing messages and a
// non-zero exit code; the library itself never prints or logs.
package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "zergmgr",
	Short: "Manage uwsgi zerg-mode process fleets",
	Long: `zergmgr supervises fleets of uwsgi servers in zerg mode: one
long-lived overlord per pool accepting client connections, and zergling
workers that can be spawned, paused, resumed and reloaded with zero
downtime.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// logger is a nop unless --verbose is set
var logger = zap.NewNop().Sugar()

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("root", "", "managed root directory (default from $ZERGMGR_ROOT or the config file)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	_ = viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.config/zergmgr")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("ZERGMGR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Config file is optional
	_ = viper.ReadInConfig()

	if viper.GetBool("verbose") {
		if zl, err := zap.NewDevelopment(); err == nil {
			logger = zl.Sugar()
		}
	}
}

// rootDir resolves the managed root directory from flag, environment or
// config file
func rootDir() (string, error) {
	root := viper.GetString("root")
	if root == "" {
		return "", errors.New("no managed root configured (set --root, ZERGMGR_ROOT, or root in the config file)")
	}
	return root, nil
}
