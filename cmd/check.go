package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lectern-player/lectern/constant"
	"github.com/lectern-player/lectern/icon"
	"github.com/lectern-player/lectern/style"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

// checkCmd reports whether the playback backend is installed.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the mpv playback backend is installed",
	Run: func(cmd *cobra.Command, args []string) {
		path, err := exec.LookPath("mpv")
		if err != nil {
			printMissingDependencyError("mpv")
			os.Exit(1)
		}

		out, _ := exec.Command(path, "--version").Output()
		first, _, _ := strings.Cut(string(out), "\n")
		fmt.Printf("%s %s %s\n", icon.Get(icon.Success), path, style.Faint(first))
	},
}

// CheckDependencies exits with install instructions when mpv is not in PATH.
func CheckDependencies() {
	if _, err := exec.LookPath("mpv"); err != nil {
		printMissingDependencyError("mpv")
		os.Exit(1)
	}
}

func printMissingDependencyError(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case constant.Darwin:
		installCmd = "brew install mpv"
	case constant.Linux:
		installCmd = "sudo apt install mpv"
	case constant.Windows:
		installCmd = "scoop install mpv"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.Danger).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.Danger).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The required dependency '%s' was not found in your PATH.", dep))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.Accent).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
