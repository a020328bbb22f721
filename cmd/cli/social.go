package cli

import (
	"context"
	"fmt"

	"github.com/icondb/icondb/internal/initialization"
	"github.com/icondb/icondb/pkg/apierror"
	"github.com/icondb/icondb/pkg/clients/icondb"
	"github.com/icondb/icondb/pkg/forms"
	"github.com/icondb/icondb/pkg/request"

	"github.com/spf13/cobra"
)

func NewTagCommand(appContainer *initialization.AppContainer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Add or list the tags of a post",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <content-id> <tag>",
		Short: "Tag a post",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTagAdd(cmd, appContainer, args[0], args[1])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list <content-id>",
		Short: "List the tags of a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTagList(cmd, appContainer, args[0])
		},
	})

	return cmd
}

func runTagAdd(cmd *cobra.Command, appContainer *initialization.AppContainer, arg, tag string) error {
	contentID, err := parseContentID(arg)
	if err != nil {
		return err
	}

	deps, err := loadDependencies(cmd, appContainer)
	if err != nil {
		return err
	}

	if err := requireSignedIn(deps, "로그인 후 태그를 추가할 수 있습니다."); err != nil {
		return err
	}

	tag, err = forms.Tag(tag)
	if err != nil {
		return reportFormError(deps.Console, err)
	}

	result, ok := request.Do(cmd.Context(), deps.Executor, func(ctx context.Context) (icondb.TagResult, error) {
		return deps.Client.InsertTag(ctx, contentID, tag)
	}, request.WithAction(apierror.ActionAddTag))
	if !ok {
		return errReported
	}

	switch result {
	case icondb.TagDuplicate:
		deps.Console.NotifyWarning("중복 태그", "이미 추가된 태그입니다.")
	case icondb.TagRejected:
		deps.Console.NotifyError("태그 추가 실패", "태그를 추가할 수 없습니다.")
		return errReported
	default:
		deps.Console.NotifySuccess("성공", fmt.Sprintf("#%s 태그가 추가되었습니다.", tag))
	}

	return nil
}

func runTagList(cmd *cobra.Command, appContainer *initialization.AppContainer, arg string) error {
	contentID, err := parseContentID(arg)
	if err != nil {
		return err
	}

	deps, err := loadDependencies(cmd, appContainer)
	if err != nil {
		return err
	}

	tags, ok := request.Do(cmd.Context(), deps.Executor, func(ctx context.Context) ([]icondb.Tag, error) {
		return deps.Client.GetTags(ctx, contentID)
	}, request.WithAction(apierror.ActionLoadTags))
	if !ok {
		return errReported
	}

	if len(tags) == 0 {
		deps.Console.NotifyInfo("태그", "태그가 없습니다.")
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), joinTags(tags))
	return nil
}

func NewLikeCommand(appContainer *initialization.AppContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "like <content-id>",
		Short: "Like a post, or take the like back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLike(cmd, appContainer, args[0])
		},
	}
}

func runLike(cmd *cobra.Command, appContainer *initialization.AppContainer, arg string) error {
	contentID, err := parseContentID(arg)
	if err != nil {
		return err
	}

	deps, err := loadDependencies(cmd, appContainer)
	if err != nil {
		return err
	}

	if err := requireSignedIn(deps, "로그인 후 좋아요할 수 있습니다."); err != nil {
		return err
	}

	liked, ok := request.Do(cmd.Context(), deps.Executor, func(ctx context.Context) (bool, error) {
		return deps.Client.SetLike(ctx, contentID)
	}, request.WithAction(apierror.ActionLike))
	if !ok {
		return errReported
	}

	if liked {
		deps.Console.NotifySuccess("좋아요", "좋아요를 눌렀습니다.")
	} else {
		deps.Console.NotifyInfo("좋아요", "좋아요를 취소했습니다.")
	}
	return nil
}

func NewFollowCommand(appContainer *initialization.AppContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "follow <user-id>",
		Short: "Follow a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFollow(cmd, appContainer, args[0], true)
		},
	}
}

func NewUnfollowCommand(appContainer *initialization.AppContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "unfollow <user-id>",
		Short: "Stop following a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFollow(cmd, appContainer, args[0], false)
		},
	}
}

func runFollow(cmd *cobra.Command, appContainer *initialization.AppContainer, userID string, follow bool) error {
	deps, err := loadDependencies(cmd, appContainer)
	if err != nil {
		return err
	}

	if err := requireSignedIn(deps, "로그인 후 팔로우할 수 있습니다."); err != nil {
		return err
	}

	action := apierror.ActionUnfollow
	call := deps.Client.Unfollow
	done := "언팔로우되었습니다."
	if follow {
		action = apierror.ActionFollow
		call = deps.Client.Follow
		done = "팔로우되었습니다."
	}

	resp, ok := request.Do(cmd.Context(), deps.Executor, func(ctx context.Context) (*icondb.SuccessResponse, error) {
		return call(ctx, userID)
	}, request.WithAction(action))
	if !ok {
		return errReported
	}

	if resp != nil && !resp.Success {
		deps.Console.NotifyWarning("팔로우", resp.Message)
		return nil
	}

	deps.Console.NotifySuccess("성공", done)
	return nil
}
