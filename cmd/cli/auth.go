package cli

import (
	"context"
	"fmt"

	"github.com/icondb/icondb/internal/initialization"
	"github.com/icondb/icondb/pkg/apierror"
	"github.com/icondb/icondb/pkg/forms"
	"github.com/icondb/icondb/pkg/request"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type credentialOptions struct {
	id       string
	password string
	nickname string
}

func NewLoginCommand(appContainer *initialization.AppContainer) *cobra.Command {
	opts := &credentialOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session",
		Long:  `Sign in to the ICONDB server. Missing credentials are asked for interactively and the session is saved for later commands.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, appContainer, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.id, "id", "u", "", "Account id")
	cmd.Flags().StringVarP(&opts.password, "password", "p", "", "Password")

	return cmd
}

func runLogin(cmd *cobra.Command, appContainer *initialization.AppContainer, opts *credentialOptions) error {
	ctx := cmd.Context()

	deps, err := loadDependencies(cmd, appContainer)
	if err != nil {
		return err
	}

	form := forms.Login{ID: opts.id, Password: opts.password}
	if form.ID == "" || form.Password == "" {
		err := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("아이디").Value(&form.ID),
			huh.NewInput().Title("비밀번호").EchoMode(huh.EchoModePassword).Value(&form.Password),
		)).Run()
		if err != nil {
			return err
		}
	}

	if err := form.Validate(); err != nil {
		return reportFormError(deps.Console, err)
	}

	_, ok := deps.Executor.Execute(ctx, func(ctx context.Context) (any, error) {
		return nil, deps.Client.SignIn(ctx, form.ID, form.Password)
	}, request.WithAction(apierror.ActionLogin))
	if !ok {
		return errReported
	}

	if err := appContainer.GetConfigManager().SaveSession(ctx, deps.Client.Session(), form.ID); err != nil {
		return err
	}

	state := deps.Auth.Initialize(ctx)
	name := "사용자"
	if state.IsAuthenticated && state.Profile.Nickname != "" {
		name = state.Profile.Nickname
	}

	deps.Console.NotifySuccess("로그인 성공!", fmt.Sprintf("%s님 환영합니다!", name))
	return nil
}

func NewSignupCommand(appContainer *initialization.AppContainer) *cobra.Command {
	opts := &credentialOptions{}

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignup(cmd, appContainer, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.id, "id", "u", "", "Account id")
	cmd.Flags().StringVarP(&opts.password, "password", "p", "", "Password")
	cmd.Flags().StringVarP(&opts.nickname, "nickname", "n", "", "Nickname")

	return cmd
}

func runSignup(cmd *cobra.Command, appContainer *initialization.AppContainer, opts *credentialOptions) error {
	ctx := cmd.Context()

	deps, err := loadDependencies(cmd, appContainer)
	if err != nil {
		return err
	}

	form := forms.Signup{ID: opts.id, Password: opts.password, Nickname: opts.nickname}
	if form.ID == "" || form.Password == "" || form.Nickname == "" {
		err := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("닉네임").Value(&form.Nickname),
			huh.NewInput().Title("아이디").Value(&form.ID),
			huh.NewInput().Title("비밀번호").EchoMode(huh.EchoModePassword).Value(&form.Password),
		)).Run()
		if err != nil {
			return err
		}
	}

	if err := form.Validate(); err != nil {
		return reportFormError(deps.Console, err)
	}

	_, ok := deps.Executor.Execute(ctx, func(ctx context.Context) (any, error) {
		return nil, deps.Client.SignUp(ctx, form.ID, form.Password, form.Nickname)
	}, request.WithAction(apierror.ActionSignup))
	if !ok {
		return errReported
	}

	deps.Console.NotifySuccess("회원가입 완료", fmt.Sprintf("'icondb login -u %s'로 로그인해주세요.", form.ID))
	return nil
}

func NewLogoutCommand(appContainer *initialization.AppContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd, appContainer)
		},
	}
}

func runLogout(cmd *cobra.Command, appContainer *initialization.AppContainer) error {
	ctx := cmd.Context()

	deps, err := loadDependencies(cmd, appContainer)
	if err != nil {
		return err
	}

	if !deps.Config.SignedIn() {
		deps.Console.NotifyInfo("로그아웃", "로그인되어 있지 않습니다.")
		return nil
	}

	_, ok := deps.Executor.Execute(ctx, func(ctx context.Context) (any, error) {
		return nil, deps.Auth.Logout(ctx)
	}, request.WithAction(apierror.ActionLogout))

	// The local session is dropped even when the server call failed.
	if err := appContainer.GetConfigManager().SaveSession(ctx, "", ""); err != nil {
		log.Error().Err(err).Msg("Failed to clear saved session")
		return err
	}

	if !ok {
		return errReported
	}

	deps.Console.NotifySuccess("로그아웃", "로그아웃되었습니다.")
	return nil
}

func NewWhoamiCommand(appContainer *initialization.AppContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(cmd, appContainer)
		},
	}
}

func runWhoami(cmd *cobra.Command, appContainer *initialization.AppContainer) error {
	ctx := cmd.Context()

	deps, err := loadDependencies(cmd, appContainer)
	if err != nil {
		return err
	}

	state := deps.Auth.Initialize(ctx)
	if !state.IsAuthenticated {
		if deps.Config.SignedIn() {
			// The saved session expired on the server.
			if err := appContainer.GetConfigManager().SaveSession(ctx, "", ""); err != nil {
				return err
			}
		}
		deps.Console.NotifyInfo("로그인 필요", "로그인되어 있지 않습니다.")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", state.Profile.Nickname, state.User)
	return nil
}
