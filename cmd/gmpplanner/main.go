package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := execute(&app{}, os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// execute runs the command line and releases what the subcommand opened,
// whether or not it succeeded. PersistentPostRun does not run after a
// failing RunE.
func execute(a *app, args []string) error {
	defer a.close()
	root := newRootCmd(a)
	root.SetArgs(args)
	return root.Execute()
}

func newRootCmd(a *app) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:          "gmpplanner",
		Short:        "GMP pharmaceutical facility layout synthesis engine",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.init(cfgFile)
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/gmpplanner/gmpplanner.yaml or ./gmpplanner.yaml)")

	rootCmd.AddCommand(generateCmd(a))
	rootCmd.AddCommand(validateCmd(a))
	rootCmd.AddCommand(referenceCmd(a))
	rootCmd.AddCommand(relationsCmd(a))
	rootCmd.AddCommand(serveCmd(a))
	return rootCmd
}

func generateCmd(a *app) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate [request-file | project-dir]",
		Short: "Generate a facility layout from a request file, a project directory or flags",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.requestFile = args[0]
			}
			if cmd.Flags().Changed("seed") {
				opts.seedSet = true
			}
			return a.runGenerate(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringSliceVarP(&opts.rooms, "rooms", "r", nil, "explicit room names (comma separated)")
	f.StringVarP(&opts.description, "description", "d", "", "free-text facility description")
	f.Float64Var(&opts.batchSize, "batch-size", 0, "batch size in kg")
	f.Float64Var(&opts.throughput, "throughput", 0, "throughput in units per hour")
	f.StringVar(&opts.style, "style", "", "layout style: compact, spacious, linear or balanced")
	f.StringVar(&opts.flow, "flow", "", "flow priority: material, personnel or balanced")
	f.Uint64Var(&opts.seed, "seed", 0, "random seed for placement (0 picks one)")
	f.StringVar(&opts.xlsx, "xlsx", "", "also write a room and door schedule workbook to this path")
	f.BoolVar(&opts.report, "report", false, "print the validation report instead of the layout JSON")
	return cmd
}

func validateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [layout-file]",
		Short: "Re-validate a layout JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runValidate(args[0])
		},
	}
}

func referenceCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "reference",
		Short: "List the room reference table",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.runReference(asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func relationsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relations",
		Short: "Manage the relationship rule database",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create the rule tables in the configured database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runMigrate(cmd.Context())
		},
	})

	var replace bool
	importCmd := &cobra.Command{
		Use:   "import [rules-file]",
		Short: "Load rules from YAML into the configured database (built-in rules when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return a.runImport(cmd.Context(), path, replace)
		},
	}
	importCmd.Flags().BoolVar(&replace, "replace", false, "delete existing rules first")
	cmd.AddCommand(importCmd)

	return cmd
}

func serveCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP generation API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides server.addr)")
	return cmd
}
