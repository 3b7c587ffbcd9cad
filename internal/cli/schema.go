// Package cli provides shared CLI utilities for lunchpick and lunchpickd.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const helpJSONFlag = "help-json"

// FlagSchema describes one command flag.
type FlagSchema struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
	Inherited   bool   `json:"inherited,omitempty"`
}

// CommandSchema describes a command and its subcommands.
type CommandSchema struct {
	Name        string          `json:"name"`
	Use         string          `json:"use,omitempty"`
	Description string          `json:"description,omitempty"`
	Long        string          `json:"long,omitempty"`
	Flags       []FlagSchema    `json:"flags,omitempty"`
	Subcommands []CommandSchema `json:"subcommands,omitempty"`
}

// GenerateSchema walks cmd and its visible subcommands.
func GenerateSchema(cmd *cobra.Command) CommandSchema {
	schema := CommandSchema{
		Name:        cmd.Name(),
		Use:         cmd.Use,
		Description: cmd.Short,
		Long:        cmd.Long,
		Flags:       extractFlags(cmd),
	}

	for _, sub := range cmd.Commands() {
		if sub.Name() == "help" || sub.Name() == "completion" || sub.Hidden {
			continue
		}
		schema.Subcommands = append(schema.Subcommands, GenerateSchema(sub))
	}

	return schema
}

func extractFlags(cmd *cobra.Command) []FlagSchema {
	var flags []FlagSchema
	visit := func(inherited bool) func(*pflag.Flag) {
		return func(f *pflag.Flag) {
			if f.Hidden || f.Name == helpJSONFlag || f.Name == "help" {
				return
			}
			flags = append(flags, FlagSchema{
				Name:        f.Name,
				Shorthand:   f.Shorthand,
				Type:        f.Value.Type(),
				Default:     f.DefValue,
				Description: f.Usage,
				Required:    isRequired(f),
				Inherited:   inherited,
			})
		}
	}

	cmd.LocalFlags().VisitAll(visit(false))
	cmd.InheritedFlags().VisitAll(visit(true))
	return flags
}

// isRequired reports whether the flag was marked with MarkFlagRequired.
func isRequired(f *pflag.Flag) bool {
	values, ok := f.Annotations[cobra.BashCompOneRequiredFlag]
	return ok && len(values) > 0 && values[0] == "true"
}

// WriteSchema writes the schema of cmd as indented JSON.
func WriteSchema(w io.Writer, cmd *cobra.Command) error {
	output, err := json.MarshalIndent(GenerateSchema(cmd), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

// AddHelpJSONFlag adds the --help-json flag to a command.
func AddHelpJSONFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool(helpJSONFlag, false, "Output command schema as JSON")
}

// CheckHelpJSON prints the schema of the addressed command and exits when
// --help-json is present. It runs before Execute so required args and flags
// are not validated.
func CheckHelpJSON(rootCmd *cobra.Command) {
	target, ok := helpJSONTarget(rootCmd, os.Args[1:])
	if !ok {
		return
	}
	if err := WriteSchema(os.Stdout, target); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

func helpJSONTarget(rootCmd *cobra.Command, args []string) (*cobra.Command, bool) {
	for i, arg := range args {
		if arg == "--"+helpJSONFlag {
			return findTargetCommand(rootCmd, args[:i]), true
		}
	}
	return nil, false
}

// findTargetCommand follows the leading command names in args. Flags and
// positional arguments end the walk.
func findTargetCommand(cmd *cobra.Command, args []string) *cobra.Command {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return cmd
	}

	for _, sub := range cmd.Commands() {
		if sub.Name() == args[0] || sub.HasAlias(args[0]) {
			return findTargetCommand(sub, args[1:])
		}
	}

	return cmd
}
