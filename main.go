package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"taskdeck/app"
	"taskdeck/cmd"
	"taskdeck/cmd/commands"
	"taskdeck/config"
	"taskdeck/log"
	"taskdeck/palette"

	"github.com/muesli/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	version     = "0.3.0"
	configFlag  string
	debugFlag   bool
	routeFlag   string
	limitFlag   int
	initialFlag bool

	rootCmd = &cobra.Command{
		Use:   "taskdeck",
		Short: "taskdeck - a keyboard driven issue tracker for the terminal",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logCfg := cfg.LogConfig()
			logCfg.Debug = logCfg.Debug || debugFlag
			log.Initialize(logCfg)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return app.Run(cmd.Context(), cfg)
		},
	}

	queryCmd = &cobra.Command{
		Use:   "query [text]",
		Short: "Run a palette query and print the ranked results",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			var text string
			if len(args) == 1 {
				text = args[0]
			}
			if text == "" && !initialFlag {
				return fmt.Errorf("a query is required unless --initial is set")
			}

			req := palette.Request{
				Query:   text,
				Context: palette.Context{Route: routeFlag, User: palette.User{ID: cfg.User.ID, Role: cfg.User.Role}},
				Limit:   limitFlag,
			}
			results, err := app.Search(cmd.Context(), cfg, req, initialFlag)
			if err != nil {
				return err
			}
			printResults(results, outputWidth())
			return nil
		},
	}

	commandsCmd = &cobra.Command{
		Use:   "commands",
		Short: "List every command with its key bindings",
		RunE: func(c *cobra.Command, args []string) error {
			registry := cmd.NewCommandRegistry()
			if err := cmd.InitializeCommands(registry, nil); err != nil {
				return err
			}
			for command := range registry.Commands() {
				keys := strings.Join(registry.GetKeysForCommand(command.ID), ", ")
				fmt.Printf("%-28s %-24s %s\n", command.ID, command.Title, keys)
			}
			return nil
		},
	}

	debugCmd = &cobra.Command{
		Use:   "debug",
		Short: "Print debug info like config paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path, err := configPath()
			if err != nil {
				return err
			}
			configDir, err := config.GetConfigDir()
			if err != nil {
				return err
			}

			fmt.Printf("Config: %s\n", path)
			fmt.Printf("State: %s\n", configDir)
			fmt.Printf("Log: %s\n", log.LogFilePath())
			for _, warning := range cfg.Validate() {
				fmt.Printf("Warning: %s\n", warning)
			}
			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of taskdeck",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("taskdeck version %s\n", version)
		},
	}
)

func configPath() (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	return config.DefaultConfigPath()
}

func loadConfig() (*config.Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return config.LoadConfig(path)
}

// outputWidth is the terminal width, or a fixed width when not on a terminal
func outputWidth() int {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return 100
}

func printResults(results []palette.Result, width int) {
	if len(results) == 0 {
		fmt.Println("No results")
		return
	}

	groupWidth := 0
	for _, r := range results {
		groupWidth = max(groupWidth, ansi.PrintableRuneWidth(r.Group))
	}
	for _, r := range results {
		line := r.Group + strings.Repeat(" ", groupWidth-ansi.PrintableRuneWidth(r.Group)) + "  " + r.Title
		if r.Subtitle != "" {
			line += "  " + r.Subtitle
		}
		fmt.Println(truncate.StringWithTail(line, uint(width), "…"))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to the config file (default ~/.taskdeck/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Write debug output to the log file")

	queryCmd.Flags().StringVar(&routeFlag, "route", commands.RouteIssues, "Route to search from")
	queryCmd.Flags().IntVar(&limitFlag, "limit", 0, "Maximum number of results (default from config)")
	queryCmd.Flags().BoolVar(&initialFlag, "initial", false, "Show the results offered before typing when no query is given")

	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(commandsCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
