package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/icondb/icondb/internal/initialization"
	"github.com/icondb/icondb/pkg/apierror"
	"github.com/icondb/icondb/pkg/clients/icondb"
	"github.com/icondb/icondb/pkg/forms"
	"github.com/icondb/icondb/pkg/request"

	"github.com/spf13/cobra"
)

type listOptions struct {
	offset int
	count  int
}

func NewListCommand(appContainer *initialization.AppContainer) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the newest posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, appContainer, opts)
		},
	}

	cmd.Flags().IntVar(&opts.offset, "offset", 0, "Number of posts to skip")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 20, "Number of posts to show")

	return cmd
}

func runList(cmd *cobra.Command, appContainer *initialization.AppContainer, opts *listOptions) error {
	deps, err := loadDependencies(cmd, appContainer)
	if err != nil {
		return err
	}

	contents, ok := request.Do(cmd.Context(), deps.Executor, func(ctx context.Context) ([]icondb.Content, error) {
		return deps.Client.GetContents(ctx, icondb.ContentsPage{Offset: opts.offset, Count: opts.count})
	}, request.WithAction(apierror.ActionLoadPost))
	if !ok {
		return errReported
	}

	if len(contents) == 0 {
		deps.Console.NotifyInfo("게시물", "게시물이 없습니다.")
		return nil
	}

	renderContents(cmd.OutOrStdout(), contents)
	return nil
}

func NewShowCommand(appContainer *initialization.AppContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "show <content-id>",
		Short: "Show a post with its tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, appContainer, args[0])
		},
	}
}

func runShow(cmd *cobra.Command, appContainer *initialization.AppContainer, arg string) error {
	ctx := cmd.Context()

	contentID, err := parseContentID(arg)
	if err != nil {
		return err
	}

	deps, err := loadDependencies(cmd, appContainer)
	if err != nil {
		return err
	}

	contents, ok := request.Do(ctx, deps.Executor, func(ctx context.Context) ([]icondb.Content, error) {
		return deps.Client.GetContent(ctx, contentID)
	}, request.WithAction(apierror.ActionLoadPost))
	if !ok {
		return errReported
	}
	if len(contents) == 0 {
		deps.Console.NotifyError("게시물 로드 실패", "게시물을 찾을 수 없습니다.")
		return errReported
	}
	content := contents[0]

	tags, ok := request.Do(ctx, deps.Executor, func(ctx context.Context) ([]icondb.Tag, error) {
		return deps.Client.GetTags(ctx, contentID)
	}, request.WithAction(apierror.ActionLoadTags), request.AsWarning())
	if !ok {
		tags = nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "#%d by %s\n", content.ContentID, content.UserID)
	fmt.Fprintf(out, "  file:    %s\n", content.Filename)
	fmt.Fprintf(out, "  message: %s\n", content.Hashtag)
	if len(tags) > 0 {
		fmt.Fprintf(out, "  tags:    %s\n", joinTags(tags))
	}

	if deps.Config.SignedIn() {
		liked, ok := request.Do(ctx, deps.Executor, func(ctx context.Context) (bool, error) {
			return deps.Client.CheckLiked(ctx, contentID)
		}, request.WithAction(apierror.ActionCheckLike), request.AsWarning())
		if ok {
			fmt.Fprintf(out, "  liked:   %t\n", liked)
		}
	}

	return nil
}

type uploadOptions struct {
	message string
}

func NewUploadCommand(appContainer *initialization.AppContainer) *cobra.Command {
	opts := &uploadOptions{}

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an icon",
		Long:  `Upload a PNG, SVG, JPEG, GIF or WEBP icon of at most 5MB. The message is stored as the post's hashtag text.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, appContainer, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.message, "message", "m", "", "Post message")

	return cmd
}

func runUpload(cmd *cobra.Command, appContainer *initialization.AppContainer, path string, opts *uploadOptions) error {
	deps, err := loadDependencies(cmd, appContainer)
	if err != nil {
		return err
	}

	if err := requireSignedIn(deps, "로그인 후 업로드할 수 있습니다."); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	fileName := filepath.Base(path)
	contentType, err := forms.Upload(fileName, data)
	if err != nil {
		return reportFormError(deps.Console, err)
	}

	deps.Console.NotifyInfo("업로드 중", fmt.Sprintf("%s을(를) 업로드하고 있습니다...", fileName))

	_, ok := deps.Executor.Execute(cmd.Context(), func(ctx context.Context) (any, error) {
		return deps.Client.InsertContent(ctx, &icondb.UploadRequest{
			FileName:    fileName,
			ContentType: contentType,
			Data:        data,
			Message:     opts.message,
		})
	}, request.WithAction(apierror.ActionUpload))
	if !ok {
		return errReported
	}

	deps.Console.NotifySuccess("업로드 완료", "아이콘이 업로드되었습니다.")
	return nil
}

func NewUpdateCommand(appContainer *initialization.AppContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "update <content-id> <message>",
		Short: "Edit the message of your post",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, appContainer, args[0], strings.Join(args[1:], " "))
		},
	}
}

func runUpdate(cmd *cobra.Command, appContainer *initialization.AppContainer, arg, message string) error {
	contentID, err := parseContentID(arg)
	if err != nil {
		return err
	}

	deps, err := loadDependencies(cmd, appContainer)
	if err != nil {
		return err
	}

	message, err = forms.PostMessage(message)
	if err != nil {
		return reportFormError(deps.Console, err)
	}

	_, ok := deps.Executor.Execute(cmd.Context(), func(ctx context.Context) (any, error) {
		return deps.Client.UpdateContent(ctx, contentID, message)
	}, request.WithAction(apierror.ActionUpdatePost))
	if !ok {
		return errReported
	}

	deps.Console.NotifySuccess("성공", "포스트가 수정되었습니다.")
	return nil
}

type deleteOptions struct {
	yes bool
}

func NewDeleteCommand(appContainer *initialization.AppContainer) *cobra.Command {
	opts := &deleteOptions{}

	cmd := &cobra.Command{
		Use:   "delete <content-id>",
		Short: "Delete your post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, appContainer, args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func runDelete(cmd *cobra.Command, appContainer *initialization.AppContainer, arg string, opts *deleteOptions) error {
	contentID, err := parseContentID(arg)
	if err != nil {
		return err
	}

	deps, err := loadDependencies(cmd, appContainer)
	if err != nil {
		return err
	}

	if !opts.yes {
		ok, err := confirm(fmt.Sprintf("게시물 #%d을(를) 삭제하시겠습니까?", contentID))
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	_, ok := deps.Executor.Execute(cmd.Context(), func(ctx context.Context) (any, error) {
		return deps.Client.DeleteContent(ctx, contentID)
	}, request.WithAction(apierror.ActionDeletePost))
	if !ok {
		return errReported
	}

	deps.Console.NotifySuccess("성공", "포스트가 삭제되었습니다.")
	return nil
}

type downloadOptions struct {
	output string
}

func NewDownloadCommand(appContainer *initialization.AppContainer) *cobra.Command {
	opts := &downloadOptions{}

	cmd := &cobra.Command{
		Use:   "download <file-key>",
		Short: "Download an uploaded icon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, appContainer, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output path (defaults to the file key)")

	return cmd
}

func runDownload(cmd *cobra.Command, appContainer *initialization.AppContainer, key string, opts *downloadOptions) error {
	deps, err := loadDependencies(cmd, appContainer)
	if err != nil {
		return err
	}

	data, ok := request.Do(cmd.Context(), deps.Executor, func(ctx context.Context) ([]byte, error) {
		return deps.Client.Download(ctx, key)
	}, request.WithAction(apierror.ActionLoadPost))
	if !ok {
		return errReported
	}

	output := opts.output
	if output == "" {
		output = filepath.Base(key)
	}

	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bytes)\n", output, len(data))
	return nil
}
