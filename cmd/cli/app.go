package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/icondb/icondb/internal/initialization"
	"github.com/icondb/icondb/pkg/clients/icondb"
	"github.com/icondb/icondb/pkg/forms"
	"github.com/icondb/icondb/pkg/notify"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// errReported ends a command whose failure was already shown to the user.
var errReported = errors.New("failure already reported")

func loadDependencies(cmd *cobra.Command, appContainer *initialization.AppContainer) (*initialization.AppDependencies, error) {
	apiURL, _ := cmd.Flags().GetString("api-url")
	debug, _ := cmd.Flags().GetBool("debug")

	return appContainer.BuildAppDependencies(cmd.Context(), initialization.AppDependencyConfig{
		APIBaseURL: apiURL,
		Out:        cmd.OutOrStdout(),
		Debug:      debug,
	})
}

// requireSignedIn warns with message when no session was saved.
func requireSignedIn(deps *initialization.AppDependencies, message string) error {
	if deps.Config.SignedIn() {
		return nil
	}
	deps.Console.NotifyWarning("로그인 필요", message)
	return errReported
}

// reportFormError shows rejected form input as warnings.
func reportFormError(console *notify.Console, err error) error {
	var fieldErrs forms.Errors
	var fieldErr *forms.Error

	switch {
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			console.NotifyWarning(fe.Title, fe.Message)
		}
	case errors.As(err, &fieldErr):
		console.NotifyWarning(fieldErr.Title, fieldErr.Message)
	default:
		return err
	}

	return errReported
}

func parseContentID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid content id %q", arg)
	}
	return id, nil
}

func confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Affirmative("예").
			Negative("아니오").
			Value(&ok),
	)).Run()
	return ok, err
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func renderTable(out io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#9ED1D9"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)

	fmt.Fprintln(out, t.Render())
}

func renderContents(out io.Writer, contents []icondb.Content) {
	rows := make([][]string, 0, len(contents))
	for _, c := range contents {
		rows = append(rows, []string{strconv.Itoa(c.ContentID), c.UserID, c.Filename, c.Hashtag})
	}
	renderTable(out, []string{"ID", "USER", "FILE", "TAGS"}, rows)
}

func renderProfiles(out io.Writer, profiles []icondb.Profile) {
	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, []string{p.ID, p.Nickname})
	}
	renderTable(out, []string{"ID", "NICKNAME"}, rows)
}

func joinTags(tags []icondb.Tag) string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, "#"+t.Hashtag)
	}
	return strings.Join(names, " ")
}
