package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/waveline/automation/internal/project"
)

// ImportResult summarizes an import.
type ImportResult struct {
	Project string `json:"project"`
	Lanes   int    `json:"lanes"`
	Clips   int    `json:"clips"`
	Points  int    `json:"points"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <lanes.yaml> <project.db>",
		Short: "Import a lane definition into a project file",
		Long: `Validate a YAML lane definition and save it into a SQLite project
file, replacing the project's previous contents.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, args[0], args[1], cmd)
		},
	}
}

func runImport(opts *RootOptions, yamlPath, dbPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	def, err := LoadDefinition(yamlPath)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
			return NewExitError(ExitCommandError, loadErr.Error())
		}
		return err
	}
	if errs := ValidateDefinition(def); len(errs) > 0 {
		_ = formatter.Error(errs[0].Code, errs[0].Message, errs)
		return NewExitError(ExitFailure, fmt.Sprintf("definition has %d error(s)", len(errs)))
	}

	st, owners, err := BuildStore(def)
	if err != nil {
		return err
	}

	proj, err := project.Open(dbPath)
	if err != nil {
		_ = formatter.Error(ErrCodeRead, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	defer proj.Close()

	if err := proj.Save(cmd.Context(), st); err != nil {
		_ = formatter.Error(ErrCodeRead, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	points := 0
	for _, owner := range owners {
		pts, _ := st.Points(owner)
		points += len(pts)
	}
	result := ImportResult{Project: dbPath, Lanes: len(def.Lanes), Clips: len(def.Clips), Points: points}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "Imported %d lane(s), %d clip(s), %d point(s) into %s\n",
		result.Lanes, result.Clips, result.Points, dbPath)
	return nil
}
