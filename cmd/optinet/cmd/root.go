package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "optinet",
	Short: "A normal-order evaluator for the untyped lambda calculus",
	Long: `optinet reduces untyped lambda-calculus programs to normal form
using an optimal-reduction interaction net: terms are compiled to a
dense graph of 3-port agents, then reduced by a pool of concurrent
walkers hunting for active pairs.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().IntP("workers", "w", 0, "worker count (0 selects runtime.NumCPU())")
	rootCmd.PersistentFlags().Int("budget", 0, "rewrite budget before giving up (0 = unbounded)")
	rootCmd.PersistentFlags().Int("trace", 0, "rewrite trace ring-buffer capacity (0 disables tracing)")
	rootCmd.PersistentFlags().Bool("cache", false, "cache reduction results, keyed by a SipHash of the source")
	rootCmd.PersistentFlags().Int("cache-size", 128, "maximum number of cached reductions")
	rootCmd.PersistentFlags().String("config", "", "path to a config file (default: ./optinet.yaml)")

	_ = v.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
	_ = v.BindPFlag("budget", rootCmd.PersistentFlags().Lookup("budget"))
	_ = v.BindPFlag("trace", rootCmd.PersistentFlags().Lookup("trace"))
	_ = v.BindPFlag("cache", rootCmd.PersistentFlags().Lookup("cache"))
	_ = v.BindPFlag("cache_size", rootCmd.PersistentFlags().Lookup("cache-size"))

	cobra.OnInitialize(func() {
		if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
			v.SetConfigFile(cfgFile)
		} else {
			v.SetConfigName("optinet")
			v.SetConfigType("yaml")
			v.AddConfigPath(".")
		}
	})

	rootCmd.AddCommand(reduceCmd)
	rootCmd.AddCommand(replCmd)
}
