package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/icondb/icondb/internal/memstore"
	"github.com/icondb/icondb/internal/server"
	"github.com/icondb/icondb/pkg/clients/icondb"
	"github.com/icondb/icondb/pkg/domain"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngData = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

func newMockAPI(t *testing.T) string {
	t.Helper()
	return serveMock(t, mockHandler())
}

func mockHandler() http.Handler {
	app := server.NewHTTPServer(server.HTTPServerDependencies{
		Store:             memstore.NewSeeded(),
		SessionCookieName: icondb.DefaultSessionCookieName,
	})
	return adaptor.FiberApp(app)
}

func serveMock(t *testing.T, handler http.Handler) string {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return srv.URL
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func savedConfig(t *testing.T, home string) domain.CLIConfig {
	t.Helper()

	manager, err := domain.NewConfigManager(domain.WithConfigDir(filepath.Join(home, ".icondb")))
	require.NoError(t, err)

	config, err := manager.GetConfig(context.Background())
	require.NoError(t, err)
	return config
}

func TestCLI_SessionLifecycle(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	apiURL := newMockAPI(t)

	out, err := runCLI(t, "login", "--api-url", apiURL, "-u", "testuser", "-p", "password123")
	require.NoError(t, err, out)
	assert.Contains(t, out, "로그인 성공!")
	assert.Contains(t, out, "테스터님 환영합니다!")

	config := savedConfig(t, home)
	assert.True(t, config.SignedIn())
	assert.Equal(t, "testuser", config.LastUser)

	out, err = runCLI(t, "whoami", "--api-url", apiURL)
	require.NoError(t, err, out)
	assert.Contains(t, out, "테스터 (testuser)")

	icon := filepath.Join(t.TempDir(), "cat.png")
	require.NoError(t, os.WriteFile(icon, pngData, 0600))

	out, err = runCLI(t, "upload", icon, "-m", "cat", "--api-url", apiURL)
	require.NoError(t, err, out)
	assert.Contains(t, out, "업로드 완료")

	out, err = runCLI(t, "search", "CAT", "--api-url", apiURL)
	require.NoError(t, err, out)
	assert.Contains(t, out, "testuser")

	out, err = runCLI(t, "tag", "add", "1", "귀여움", "--api-url", apiURL)
	require.NoError(t, err, out)
	assert.Contains(t, out, "#귀여움 태그가 추가되었습니다.")

	out, err = runCLI(t, "tag", "add", "1", "귀여움", "--api-url", apiURL)
	require.NoError(t, err, out)
	assert.Contains(t, out, "이미 추가된 태그입니다.")

	out, err = runCLI(t, "like", "1", "--api-url", apiURL)
	require.NoError(t, err, out)
	assert.Contains(t, out, "좋아요를 눌렀습니다.")

	out, err = runCLI(t, "show", "1", "--api-url", apiURL)
	require.NoError(t, err, out)
	assert.Contains(t, out, "#귀여움")
	assert.Contains(t, out, "liked:   true")

	out, err = runCLI(t, "logout", "--api-url", apiURL)
	require.NoError(t, err, out)
	assert.Contains(t, out, "로그아웃되었습니다.")
	assert.False(t, savedConfig(t, home).SignedIn())
}

func TestCLI_ReportsClassifiedFailures(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	apiURL := newMockAPI(t)

	out, err := runCLI(t, "login", "--api-url", apiURL, "-u", "testuser", "-p", "wrong-password")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "로그인 실패")

	out, err = runCLI(t, "login", "--api-url", apiURL, "-u", "ab", "-p", "123")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "아이디는 3자 이상이어야 합니다.")
	assert.Contains(t, out, "비밀번호는 6자 이상이어야 합니다.")

	out, err = runCLI(t, "like", "1", "--api-url", apiURL)
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "로그인 후 좋아요할 수 있습니다.")

	_, err = runCLI(t, "show", "abc", "--api-url", apiURL)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, errReported)
}

func TestCLI_Nickname(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	apiURL := newMockAPI(t)

	out, err := runCLI(t, "login", "--api-url", apiURL, "-u", "testuser", "-p", "password123")
	require.NoError(t, err, out)

	out, err = runCLI(t, "nickname", "새이름", "--api-url", apiURL)
	require.NoError(t, err, out)
	assert.Contains(t, out, "프로필이 업데이트되었습니다.")

	out, err = runCLI(t, "profile", "--api-url", apiURL)
	require.NoError(t, err, out)
	assert.Contains(t, out, "새이름 (testuser)")
}

func TestCLI_NicknameUnknownUserShowsActionMessage(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	mock := mockHandler()
	apiURL := serveMock(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/update_profile_nickname" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"User not found"}`))
			return
		}
		mock.ServeHTTP(w, r)
	}))

	out, err := runCLI(t, "login", "--api-url", apiURL, "-u", "testuser", "-p", "password123")
	require.NoError(t, err, out)

	out, err = runCLI(t, "nickname", "새이름", "--api-url", apiURL)
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "프로필 수정 실패")
	assert.Contains(t, out, "사용자를 찾을 수 없습니다.")
	assert.NotContains(t, out, "User not found")
}

func TestCLI_SearchFailureShowsActionMessage(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	apiURL := serveMock(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"db exploded"}`))
	}))

	out, err := runCLI(t, "search", "cat", "--api-url", apiURL)
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "서버 오류")
	assert.NotContains(t, out, "db exploded")
}

func TestCLI_ConfigSetAndReset(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	out, err := runCLI(t, "config", "set", "--url", "http://icons.local", "--timeout", "3s")
	require.NoError(t, err, out)
	assert.Equal(t, "http://icons.local", savedConfig(t, home).APIBaseURL)

	out, err = runCLI(t, "config", "show")
	require.NoError(t, err, out)
	assert.Contains(t, out, "http://icons.local")
	assert.Contains(t, out, "3s")

	_, err = runCLI(t, "config", "reset")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", savedConfig(t, home).APIBaseURL)
}
