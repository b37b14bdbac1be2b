package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/wtf"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of wtf",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wtf version %s\n", strings.TrimSpace(wtf.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
