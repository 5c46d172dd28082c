// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-console/internal/client"
	"github.com/pdiddy/research-console/internal/form"
	"github.com/pdiddy/research-console/internal/submit"
	"github.com/pdiddy/research-console/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive research form",
	Long: `Tui opens the research form in the terminal.

Keyboard shortcuts:
  Tab / Shift+Tab  Move between fields
  ←/→              Change max results or model
  Enter            Submit (on the button), Ctrl+S from anywhere
  Esc              Clear the notice
  Ctrl+C           Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	initial, err := form.New().WithField(form.FieldGroqAPIKey, apiKey(""))
	if err != nil {
		return err
	}
	h := submit.New(client.New(viper.GetString("endpoint")), initial)

	p := tea.NewProgram(
		tui.NewModel(cmd.Context(), h),
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running form: %w", err)
	}
	return nil
}
