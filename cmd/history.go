package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"modpack-server-installer/db"
	"modpack-server-installer/ui"
)

// historyCmd lists previous installs into the install path.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show previous installs into the install path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		conn, err := db.InitDatabase(cfg.DatabasePath)
		if err != nil {
			return err
		}
		installs, err := db.NewLedger(conn).History(resolveContext(cmd.Context()), cfg.InstallPath, limit)
		if err != nil {
			return err
		}
		printHistory(cmd.OutOrStdout(), installs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 10, "Number of installs to show (0 for all)")
}

func printHistory(w io.Writer, installs []db.Install) {
	if len(installs) == 0 {
		fmt.Fprintln(w, "No installs recorded.")
		return
	}

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12"))
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-19s %-30s %-16s %-8s %s", "Date", "Pack", "Version", "Channel", "Files")))

	for _, in := range installs {
		files := fmt.Sprintf("%d/%d", in.Succeeded, in.Attempted)
		if in.Failed > 0 {
			files = ui.Colorize(files+fmt.Sprintf(" (%d failed)", in.Failed), ui.ColorAlpha)
		}
		fmt.Fprintf(w, "%-19s %-30s %-16s %s %s\n",
			in.StartedAt.Local().Format("2006-01-02 15:04:05"),
			truncate(in.PackName, 30),
			truncate(in.VersionName, 16),
			ui.Colorize(fmt.Sprintf("%-8s", in.Channel), ui.ChannelColor(in.Channel)),
			files,
		)
		if in.ModloaderError != "" {
			fmt.Fprintf(w, "  %s\n", ui.Dim(in.ModloaderError))
		}
		if in.InstallerError != "" {
			fmt.Fprintf(w, "  %s\n", ui.Dim(in.InstallerError))
		}
	}
}
