package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/mnistseq"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of mnistseq",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mnistseq version %s\n", mnistseq.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
