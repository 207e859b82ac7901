package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"sort"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/Gaurav-Gosain/gridboard/internal/config"
	"github.com/Gaurav-Gosain/gridboard/internal/theme"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage gridboard configuration",
		Long:  `Manage the gridboard configuration file and settings`,
	}

	configPathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printConfigPath()
		},
	}

	configEditCmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit configuration in $EDITOR",
		Long: `Open the gridboard configuration file in your default editor

The editor is determined by checking $EDITOR, $VISUAL, or common editors
like vim, vi, nano, and emacs in that order. A running gridboard picks up
the saved file without restarting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return editConfigFile()
		},
	}

	var force bool
	configResetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset configuration to defaults",
		Long: `Reset the gridboard configuration file to default settings

This will overwrite your existing configuration after confirmation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return resetConfigToDefaults(force)
		},
	}
	configResetCmd.Flags().BoolVarP(&force, "yes", "y", false, "Do not ask for confirmation")

	configCmd.AddCommand(configPathCmd, configEditCmd, configResetCmd)
	return configCmd
}

func newKeybindsCmd() *cobra.Command {
	keybindsCmd := &cobra.Command{
		Use:     "keybinds",
		Aliases: []string{"keys", "kb"},
		Short:   "View keybinding configuration",
	}

	keybindsListCmd := &cobra.Command{
		Use:   "list",
		Short: "List all keybindings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listKeybindings()
		},
	}

	keybindsCustomCmd := &cobra.Command{
		Use:   "list-custom",
		Short: "List customized keybindings",
		Long:  `Display only keybindings that differ from defaults`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listCustomKeybindings()
		},
	}

	keybindsCmd.AddCommand(keybindsListCmd, keybindsCustomCmd)
	return keybindsCmd
}

func printConfigPath() error {
	path, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("could not determine config path: %w", err)
	}
	fmt.Println(path)
	return nil
}

func findEditor() string {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if e := os.Getenv(env); e != "" {
			return e
		}
	}
	for _, e := range []string{"vim", "vi", "nano", "emacs"} {
		if _, err := exec.LookPath(e); err == nil {
			return e
		}
	}
	return ""
}

func editConfigFile() error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("could not determine config path: %w", err)
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		fmt.Printf("Config file doesn't exist, creating default at: %s\n", configPath)
		if _, err := config.LoadUserConfig(); err != nil {
			return fmt.Errorf("could not create config file: %w", err)
		}
	}

	editor := findEditor()
	if editor == "" {
		return errors.New("no editor found, set $EDITOR")
	}

	// $EDITOR may carry arguments, e.g. "code --wait".
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], configPath)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}

	if _, err := config.Load(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return nil
}

func resetConfigToDefaults(force bool) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("could not determine config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil && !force {
		fmt.Printf("Warning: This will overwrite your existing configuration at:\n")
		fmt.Printf("  %s\n\n", configPath)
		fmt.Printf("Are you sure you want to reset to defaults? (yes/no): ")

		var response string
		_, _ = fmt.Scanln(&response)
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "yes" && response != "y" {
			fmt.Println("Reset cancelled.")
			return nil
		}
	}

	if err := config.Save(configPath, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("Configuration reset to defaults\n")
	fmt.Printf("  Location: %s\n", configPath)
	fmt.Println("\nYou can customize it with: gridboard config edit")
	return nil
}

func cliTable(headers ...string) *table.Table {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.CLITableHeader()).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	keyStyle := cellStyle.Foreground(theme.CLITableKey())

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.CLITableBorder())).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return keyStyle
			}
			return cellStyle
		})
}

func loadConfigForCLI() *config.UserConfig {
	cfg, err := config.LoadUserConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		fmt.Fprintln(os.Stderr, "Using default keybindings...")
		cfg = config.DefaultConfig()
	}
	return cfg
}

func listKeybindings() error {
	cfg := loadConfigForCLI()
	if err := theme.Initialize(cfg.Appearance.Theme); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	registry := config.NewKeybindRegistry(cfg)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.CLITableHeader())

	fmt.Println()
	for _, section := range config.GetKeybindings(registry) {
		t := cliTable("Keys", "Action")
		for _, kb := range section.Bindings {
			t.Row(kb.Key, kb.Description)
		}
		title := section.Title
		if section.Condition != "" {
			title += lipgloss.NewStyle().Foreground(theme.CLITableDim()).Render(" (when " + section.Condition + " is enabled)")
		}
		fmt.Println(sectionStyle.Render(title))
		fmt.Println(t.Render())
		fmt.Println()
	}
	return nil
}

// Customization is a keybinding that differs from the default.
type Customization struct {
	Action      string
	DefaultKeys string
	CustomKeys  string
}

func findCustomizations(userCfg, defaultCfg *config.UserConfig) []Customization {
	var out []Customization
	compare := func(user, def map[string][]string) {
		for action, defKeys := range def {
			keys, ok := user[action]
			if !ok || slices.Equal(keys, defKeys) {
				continue
			}
			out = append(out, Customization{
				Action:      action,
				DefaultKeys: strings.Join(defKeys, ", "),
				CustomKeys:  strings.Join(keys, ", "),
			})
		}
	}
	compare(userCfg.Keybindings.Layout, defaultCfg.Keybindings.Layout)
	compare(userCfg.Keybindings.Gestures, defaultCfg.Keybindings.Gestures)
	compare(userCfg.Keybindings.System, defaultCfg.Keybindings.System)
	sort.Slice(out, func(i, j int) bool { return out[i].Action < out[j].Action })
	return out
}

func listCustomKeybindings() error {
	userCfg, err := config.LoadUserConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	customizations := findCustomizations(userCfg, config.DefaultConfig())

	dim := lipgloss.NewStyle().Foreground(theme.CLITableDim())
	if len(customizations) == 0 {
		fmt.Println(dim.Render("No custom keybindings configured. All keybindings are using defaults."))
		fmt.Println()
		fmt.Println("Run 'gridboard keybinds list' to see all keybindings.")
		return nil
	}

	t := cliTable("Action", "Default", "Custom")
	for _, c := range customizations {
		t.Row(c.Action, c.DefaultKeys, c.CustomKeys)
	}
	fmt.Println()
	fmt.Println(t.Render())
	fmt.Println()
	fmt.Println(dim.Render(fmt.Sprintf("Found %d customized keybinding(s)", len(customizations))))
	return nil
}
