package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vic/optinet/pkg/config"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Read a program per line, reduce it, print the result",
	RunE:  runRepl,
}

func runRepl(c *cobra.Command, _ []string) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	out := c.OutOrStdout()
	scanner := bufio.NewScanner(c.InOrStdin())
	fmt.Fprint(out, "optinet> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Fprint(out, "optinet> ")
			continue
		}
		if line == ":quit" || line == ":q" {
			return nil
		}

		result, stats, err := reduceCached(c.Context(), line, cfg)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		} else {
			fmt.Fprintf(out, "%s  (rules=%d)\n", result, stats.Rules)
		}
		fmt.Fprint(out, "optinet> ")
	}
	return scanner.Err()
}
