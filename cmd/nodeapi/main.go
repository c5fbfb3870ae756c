package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blockberries/nodeapi/config"
)

var cmdMain = &cobra.Command{
	Use:   "nodeapi",
	Short: "Paged read API of a ledger node",
	Run:   printUsageAndExit1,
}

var flagMain struct {
	ConfigFile string
}

func init() {
	cmdMain.PersistentFlags().StringVarP(&flagMain.ConfigFile, "config", "c", "", "Path to a YAML configuration file")
	cmdMain.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error or none)")
}

func main() {
	if err := cmdMain.Execute(); err != nil {
		os.Exit(1)
	}
}

func printUsageAndExit1(cmd *cobra.Command, args []string) {
	_ = cmd.Usage()
	os.Exit(1)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func check(err error) {
	if err != nil {
		fatalf("%v", err)
	}
}

func checkf(err error, format string, otherArgs ...interface{}) {
	if err != nil {
		fatalf(format+": %v", append(otherArgs, err)...)
	}
}

// loadConfig builds the configuration of cmd from defaults, the
// config file, the environment and the flags in bindings, which maps
// config keys to flag names. Flag defaults do not override config
// defaults; commands that need other defaults pass overrides.
func loadConfig(cmd *cobra.Command, bindings map[string]string, overrides ...func(*viper.Viper)) (*config.Config, error) {
	v := config.NewViper()
	for _, o := range overrides {
		o(v)
	}
	bindings["logging.level"] = "log-level"
	for key, flag := range bindings {
		if err := bindFlag(v, cmd, key, flag); err != nil {
			return nil, err
		}
	}
	return config.Load(v, flagMain.ConfigFile)
}

func bindFlag(v *viper.Viper, cmd *cobra.Command, key, flag string) error {
	f := cmd.Flags().Lookup(flag)
	if f == nil {
		return fmt.Errorf("unknown flag %q", flag)
	}
	return v.BindPFlag(key, f)
}
