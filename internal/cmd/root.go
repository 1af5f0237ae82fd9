package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sarvajna",
	Short: "College assistant answering in Malayalam, English and Manglish",
	Long: `sarvajna answers questions about LBS College of Engineering, Kasaragod.
It detects whether a question is Malayalam, English or Manglish, asks the
language model with the college knowledge, and replies in the same language
with optional synthesized speech.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}
