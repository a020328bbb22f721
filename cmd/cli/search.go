package cli

import (
	"context"
	"strings"

	"github.com/icondb/icondb/internal/initialization"
	"github.com/icondb/icondb/pkg/apierror"
	"github.com/icondb/icondb/pkg/clients/icondb"
	"github.com/icondb/icondb/pkg/request"
	"github.com/spf13/cobra"
)

type searchOptions struct {
	tag bool
}

func NewSearchCommand(appContainer *initialization.AppContainer) *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search posts by keyword or tag",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, appContainer, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.tag, "tag", "t", false, "Search by tag instead of keyword")

	return cmd
}

func runSearch(cmd *cobra.Command, appContainer *initialization.AppContainer, query string, opts *searchOptions) error {
	ctx := cmd.Context()

	deps, err := loadDependencies(cmd, appContainer)
	if err != nil {
		return err
	}

	results, ok := request.Do(ctx, deps.Executor, func(ctx context.Context) ([]icondb.Content, error) {
		if opts.tag {
			return deps.Search.ByTag(ctx, strings.TrimPrefix(query, "#"))
		}
		return deps.Search.ByKeyword(ctx, query)
	}, request.WithAction(apierror.ActionSearch))
	if !ok {
		return errReported
	}

	if len(results) == 0 {
		deps.Console.NotifyInfo("검색 결과", "검색 결과가 없습니다.")
		return nil
	}

	renderContents(cmd.OutOrStdout(), results)
	return nil
}
