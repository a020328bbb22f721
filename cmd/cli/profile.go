package cli

import (
	"context"
	"fmt"

	"github.com/icondb/icondb/internal/initialization"
	"github.com/icondb/icondb/pkg/apierror"
	"github.com/icondb/icondb/pkg/forms"
	"github.com/icondb/icondb/pkg/request"
	"github.com/icondb/icondb/pkg/stores"
	"github.com/spf13/cobra"
)

func NewProfileCommand(appContainer *initialization.AppContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "profile [user-id]",
		Short: "Show a profile with its posts, likes and follows",
		Long:  `Show a user's profile. Without a user id the signed in user's profile is shown.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := ""
			if len(args) == 1 {
				userID = args[0]
			}
			return runProfile(cmd, appContainer, userID)
		},
	}
}

func runProfile(cmd *cobra.Command, appContainer *initialization.AppContainer, userID string) error {
	deps, err := loadDependencies(cmd, appContainer)
	if err != nil {
		return err
	}

	if userID == "" {
		if err := requireSignedIn(deps, "로그인 후 내 프로필을 볼 수 있습니다."); err != nil {
			return err
		}
		userID = deps.Config.LastUser
	}

	data, ok := fetchProfile(cmd.Context(), deps, userID)
	if !ok {
		return errReported
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", data.Profile.Nickname, userID)
	fmt.Fprintf(out, "  posts: %d  liked: %d  following: %d  followers: %d\n",
		len(data.Content), len(data.Liked), len(data.Following), len(data.Followers))
	if deps.Config.SignedIn() && userID != deps.Config.LastUser {
		fmt.Fprintf(out, "  followed: %t\n", data.Followed)
	}

	if len(data.Content) > 0 {
		fmt.Fprintln(out)
		renderContents(out, data.Content)
	}
	if len(data.Following) > 0 {
		fmt.Fprintln(out, "\nFollowing")
		renderProfiles(out, data.Following)
	}
	if len(data.Followers) > 0 {
		fmt.Fprintln(out, "\nFollowers")
		renderProfiles(out, data.Followers)
	}

	return nil
}

func NewNicknameCommand(appContainer *initialization.AppContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "nickname <new-nickname>",
		Short: "Change your nickname",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNickname(cmd, appContainer, args[0])
		},
	}
}

func runNickname(cmd *cobra.Command, appContainer *initialization.AppContainer, nickname string) error {
	ctx := cmd.Context()

	deps, err := loadDependencies(cmd, appContainer)
	if err != nil {
		return err
	}

	if err := requireSignedIn(deps, "로그인 후 프로필을 수정할 수 있습니다."); err != nil {
		return err
	}

	current, ok := fetchProfile(ctx, deps, deps.Config.LastUser)
	if !ok {
		return errReported
	}

	nickname, err = forms.Nickname(nickname, current.Profile.Nickname)
	if err != nil {
		return reportFormError(deps.Console, err)
	}

	deps.Profile.SetEditing(true)
	_, ok = deps.Executor.Execute(ctx, func(ctx context.Context) (any, error) {
		return nil, deps.Profile.UpdateNickname(ctx, nickname)
	}, request.WithAction(apierror.ActionProfileUpdate))
	if !ok {
		return errReported
	}

	deps.Auth.UpdateProfile(deps.Profile.Snapshot().Profile)
	deps.Console.NotifySuccess("성공", "프로필이 업데이트되었습니다.")
	return nil
}

func fetchProfile(ctx context.Context, deps *initialization.AppDependencies, userID string) (*stores.ProfileData, bool) {
	return request.Do(ctx, deps.Executor, func(ctx context.Context) (*stores.ProfileData, error) {
		return deps.Profile.Fetch(ctx, userID)
	}, request.WithAction(apierror.ActionLoadProfile))
}
