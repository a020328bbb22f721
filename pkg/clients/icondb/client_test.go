package icondb

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/icondb/icondb/pkg/apierror"
	"github.com/icondb/icondb/pkg/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, options ...ClientOption) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(append([]ClientOption{WithBaseURL(server.URL)}, options...)...)
	require.NoError(t, err)
	return client
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	_, err := NewClient(WithBaseURL("localhost"))
	assert.Error(t, err)
}

func TestClient_SignInKeepsSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sign_in":
			var creds Credentials
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

			if creds.ID != "testuser" || creds.Password != "password123" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
				return
			}
			http.SetCookie(w, &http.Cookie{Name: DefaultSessionCookieName, Value: "testuser", Path: "/"})
			_, _ = w.Write([]byte("success"))
		case "/get_auth":
			cookie, err := r.Cookie(DefaultSessionCookieName)
			if err != nil {
				_, _ = w.Write([]byte("null"))
				return
			}
			_ = json.NewEncoder(w).Encode(cookie.Value)
		}
	})

	user, err := client.GetAuth(context.Background())
	require.NoError(t, err)
	assert.Empty(t, user)

	err = client.SignIn(context.Background(), "testuser", "wrong")
	require.Error(t, err)
	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "invalid credentials", apiErr.Message)
	assert.True(t, IsAuthError(err))

	require.NoError(t, client.SignIn(context.Background(), "testuser", "password123"))
	assert.Equal(t, "testuser", client.Session())

	user, err = client.GetAuth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "testuser", user)
}

func TestClient_LegacyFailReply(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("fail"))
	})

	err := client.SignIn(context.Background(), "testuser", "wrong")
	require.Error(t, err)

	failure := apierror.FromError(err)
	assert.Equal(t, apierror.CategoryUnauthorized, apierror.Classify(failure))
}

func TestClient_SignUpFailReplyIsConflict(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("fail"))
	})

	executor := request.NewExecutor(nil)
	_, ok := executor.Execute(context.Background(), func(ctx context.Context) (any, error) {
		return nil, client.SignUp(ctx, "testuser", "password123", "테스터")
	}, request.WithAction(apierror.ActionSignup))
	assert.False(t, ok)

	failure := executor.LastError()
	require.NotNil(t, failure)
	assert.Equal(t, apierror.CategoryConflict, failure.Category)
	assert.Equal(t, "가입 실패", failure.Presentation.Title)
	assert.Equal(t, "이미 등록된 이메일입니다.", failure.Presentation.Message)
}

func TestClient_SignUpVoidReplyIsBadRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("void"))
	})

	err := client.SignUp(context.Background(), "", "", "")
	assert.ErrorIs(t, err, ErrMissingFields)
	assert.Equal(t, apierror.CategoryBadRequest, apierror.Classify(apierror.FromError(err)))
}

func TestClient_UpdateNicknameReplies(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		wantErr bool
	}{
		{name: "json success", reply: `{"success":true}`},
		{name: "plain success", reply: "success"},
		{name: "json failure", reply: `{"success":false,"message":"nickname taken"}`, wantErr: true},
		{name: "unknown reply", reply: "fail", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/update_profile_nickname", r.URL.Path)
				if tt.reply[0] == '{' {
					w.Header().Set("Content-Type", "application/json")
				}
				_, _ = w.Write([]byte(tt.reply))
			})

			err := client.UpdateNickname(context.Background(), "새이름")
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsClientError(err))
		})
	}
}

func TestClient_UndecodableBodyIsNotNetworkFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"contents": [`))
	})

	_, err := client.Search(context.Background(), "cat")
	require.Error(t, err)

	var failure *apierror.Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, apierror.KindHTTP, failure.Kind)
	assert.Equal(t, http.StatusOK, failure.Status)
	assert.NotEqual(t, apierror.CategoryNetworkError, apierror.Classify(apierror.FromError(err)))
}

func TestClient_SessionCookieOption(t *testing.T) {
	var seen atomic.Value
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("sid"); err == nil {
			seen.Store(cookie.Value)
		}
		_, _ = w.Write([]byte("success"))
	}, WithSessionCookie("saved-session"), WithSessionCookieName("sid"))

	require.NoError(t, client.SignOut(context.Background()))
	assert.Equal(t, "saved-session", seen.Load())
	assert.Empty(t, client.Session())
}

func TestClient_ErrorStatusIsClassified(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected apierror.Category
		message  string
	}{
		{name: "not found", status: 404, body: `{"error":"content not found"}`, expected: apierror.CategoryNotFound, message: "content not found"},
		{name: "too large", status: 413, body: `{"message":"file too large"}`, expected: apierror.CategoryPayloadTooLarge, message: "file too large"},
		{name: "teapot", status: 418, body: `nope`, expected: apierror.CategoryUnknown, message: "HTTP 418"},
		{name: "server error", status: 500, body: `{"error":"Failed to delete content"}`, expected: apierror.CategoryServerError, message: "Failed to delete content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.DeleteContent(context.Background(), 7)
			require.Error(t, err)

			apiErr, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.NotEmpty(t, apiErr.RequestID)
			assert.Equal(t, tt.expected, apierror.Classify(apierror.FromError(err)))
		})
	}
}

func TestClient_TimeoutIsTimeoutFailure(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	}, WithTimeout(20*time.Millisecond))
	defer close(release)

	_, err := client.Search(context.Background(), "cat")
	require.Error(t, err)

	var failure *apierror.Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, apierror.KindTimeout, failure.Kind)
	assert.Equal(t, apierror.CategoryTimeout, apierror.Classify(*failure))
}

func TestClient_UnreachableIsNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := NewClient(WithBaseURL(url))
	require.NoError(t, err)

	_, err = client.GetTags(context.Background(), 1)
	require.Error(t, err)

	var failure *apierror.Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, apierror.KindNetwork, failure.Kind)
	assert.False(t, failure.HasStatus())
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[{"Hashtag":"cat"},{"Hashtag":"dog"}]`))
	}, WithRetryAttempts(2), WithRetryDelay(time.Millisecond))

	tags, err := client.GetTags(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []Tag{{Hashtag: "cat"}, {Hashtag: "dog"}}, tags)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_NoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.GetContents(context.Background(), ContentsPage{Offset: 0, Count: 20})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, apierror.CategoryServiceUnavailable, apierror.Classify(apierror.FromError(err)))
}

func TestClient_InsertContentMultipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("img")
		require.NoError(t, err)
		defer file.Close()

		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "icon.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		assert.Equal(t, []byte("png-bytes"), data)
		assert.Equal(t, "귀여운 고양이", r.FormValue("message"))

		_, _ = w.Write([]byte(`{"success":true}`))
	})

	result, err := client.InsertContent(context.Background(), &UploadRequest{
		FileName: "icon.png",
		Data:     []byte("png-bytes"),
		Message:  "귀여운 고양이",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)

	_, err = client.InsertContent(context.Background(), &UploadRequest{FileName: "empty.png"})
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestClient_InsertTagReplies(t *testing.T) {
	tests := []struct {
		body     string
		expected TagResult
	}{
		{body: `{"success":true}`, expected: TagAdded},
		{body: `"duplication"`, expected: TagDuplicate},
		{body: `"fail"`, expected: TagRejected},
	}

	for _, tt := range tests {
		t.Run(string(tt.expected), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			result, err := client.InsertTag(context.Background(), 1, "cat")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestClient_LikeAndFollow(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/check_liked":
			_, _ = w.Write([]byte(`"liked"`))
		case "/setLike":
			_, _ = w.Write([]byte(`false`))
		case "/check_followed":
			_, _ = w.Write([]byte(`{"followed":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	liked, err := client.CheckLiked(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = client.SetLike(context.Background(), 3)
	require.NoError(t, err)
	assert.False(t, liked)

	followed, err := client.CheckFollowed(context.Background(), "friend")
	require.NoError(t, err)
	assert.True(t, followed)

	_, err = client.Follow(context.Background(), "friend")
	assert.True(t, IsNotFound(err))
}

func TestClient_Download(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		if r.URL.Path != "/download/cat.png" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("image"))
	})

	data, err := client.Download(context.Background(), "cat.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("image"), data)

	_, err = client.Download(context.Background(), "missing.png")
	assert.True(t, IsNotFound(err))
}

func TestClient_PostEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/get_profile":
			_, _ = w.Write([]byte(`[{"id":"testuser","nickname":"테스터","profilename":"Anonymous.png"}]`))
		case "/get_auth":
			_, _ = w.Write([]byte(`null`))
		}
	})

	resp, err := client.Post(context.Background(), "/get_profile", map[string]string{"user": "testuser"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	payload, ok := resp.Payload()
	require.True(t, ok)
	rows, isSlice := payload.([]any)
	require.True(t, isSlice)
	assert.Equal(t, "테스터", rows[0].(map[string]any)["nickname"])

	resp, err = client.Post(context.Background(), "/get_auth", struct{}{})
	require.NoError(t, err)
	_, ok = resp.Payload()
	assert.False(t, ok)

	var nilResp *Response
	_, ok = nilResp.Payload()
	assert.False(t, ok)
}

func TestError_Predicates(t *testing.T) {
	err := &Error{StatusCode: 429, Message: "slow down"}
	assert.True(t, err.IsRetryable())
	assert.True(t, err.IsRateLimited())
	assert.True(t, err.IsClientError())
	assert.False(t, err.IsServerError())
	assert.Equal(t, 429, err.HTTPStatus())
	assert.Equal(t, "icondb: slow down (status: 429)", err.Error())

	wrapped := errors.Join(errors.New("context"), &Error{StatusCode: 404})
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsAuthError(errors.New("plain")))
}
