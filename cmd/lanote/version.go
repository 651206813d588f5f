package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/lanote"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of lanote",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("lanote version %s\n", lanote.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
