package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/waveline/automation/internal/project"
	"github.com/waveline/automation/internal/store"
)

// ShowLane is one lane row in show output.
type ShowLane struct {
	ID      string `json:"id"`
	Target  string `json:"target"`
	Visible bool   `json:"visible"`
	Points  int    `json:"points"`
}

// ShowClip is one clip row in show output.
type ShowClip struct {
	ID     string `json:"id"`
	Points int    `json:"points"`
}

// ShowResult lists a project file's contents.
type ShowResult struct {
	Lanes []ShowLane `json:"lanes"`
	Clips []ShowClip `json:"clips,omitempty"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <project.db>",
		Short:         "List the lanes and clips in a project file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, args[0], cmd)
		},
	}
}

func runShow(opts *RootOptions, dbPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	proj, err := project.Open(dbPath)
	if err != nil {
		_ = formatter.Error(ErrCodeRead, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	defer proj.Close()

	st := store.New()
	if err := proj.Load(cmd.Context(), st); err != nil {
		_ = formatter.Error(ErrCodeRead, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	result := ShowResult{}
	for _, lane := range st.Lanes() {
		pts, _ := st.Points(store.OwnerID(lane.ID))
		result.Lanes = append(result.Lanes, ShowLane{
			ID: string(lane.ID), Target: lane.Target, Visible: lane.Visible, Points: len(pts),
		})
	}
	for _, clip := range st.Clips() {
		pts, _ := st.Points(store.OwnerID(clip.ID))
		result.Clips = append(result.Clips, ShowClip{ID: string(clip.ID), Points: len(pts)})
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	for _, lane := range result.Lanes {
		vis := "visible"
		if !lane.Visible {
			vis = "hidden"
		}
		fmt.Fprintf(formatter.Writer, "lane %-20s %-8s %d point(s)\n", lane.Target, vis, lane.Points)
	}
	for _, clip := range result.Clips {
		fmt.Fprintf(formatter.Writer, "clip %-20s %d point(s)\n", clip.ID, clip.Points)
	}
	return nil
}
