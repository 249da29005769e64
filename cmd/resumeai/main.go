package main

import (
	"os"

	"github.com/spf13/cobra"

	"alfredoptarigan/resumeai/internal/cli"
)

func main() {
	command := NewResumeAICommand()
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewResumeAICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resumeai [command] [flags]",
		Short: "resumeai signs in to ResumeAI and runs the optimization demo.",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
			os.Exit(1)
		},
	}
	cmd.AddCommand(cli.NewCmdLogin())
	cmd.AddCommand(cli.NewCmdRegister())
	cmd.AddCommand(cli.NewCmdWhoami())
	cmd.AddCommand(cli.NewCmdLogout())
	cmd.AddCommand(cli.NewCmdDemo())

	return cmd
}
