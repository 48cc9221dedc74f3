package cmd

import (
	"github.com/spf13/cobra"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:   "civica",
		Short: "Terminal client for the civic issue service",
		Long: `A terminal client for the civic issue reporting service. Citizens
submit issues with photos and location, field workers complete assigned
tasks, and administrators inspect analytics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIssues(cmd, opts)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Add issues flags to root command so `civica` and `civica issues`
	// work identically
	addListFlags(rootCmd, opts)

	// Session lifecycle
	rootCmd.AddCommand(NewCmdLogin(opts))
	rootCmd.AddCommand(NewCmdRegister(opts))
	rootCmd.AddCommand(NewCmdLogout(opts))
	rootCmd.AddCommand(NewCmdWhoami(opts))
	rootCmd.AddCommand(NewCmdStatus(opts))
	rootCmd.AddCommand(NewCmdChangePassword(opts))

	// Citizen commands
	rootCmd.AddCommand(NewCmdIssues(opts))
	rootCmd.AddCommand(NewCmdSubmit(opts))
	rootCmd.AddCommand(NewCmdIssue(opts))
	rootCmd.AddCommand(NewCmdFeedback(opts))
	rootCmd.AddCommand(NewCmdVerify(opts))
	rootCmd.AddCommand(NewCmdDistrict(opts))

	// Worker commands
	rootCmd.AddCommand(NewCmdTasks(opts))
	rootCmd.AddCommand(NewCmdComplete(opts))
	rootCmd.AddCommand(NewCmdWorker(opts))

	// Admin commands
	rootCmd.AddCommand(NewCmdModeration(opts))
	rootCmd.AddCommand(NewCmdDashboard(opts))
	rootCmd.AddCommand(NewCmdExport(opts))

	// Notifications
	rootCmd.AddCommand(NewCmdWatch(opts))
	rootCmd.AddCommand(NewCmdInbox(opts))

	// Housekeeping
	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdVersion())

	return rootCmd
}
