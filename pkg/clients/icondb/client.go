package icondb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/icondb/icondb/pkg/apierror"
	"github.com/rs/zerolog/log"
)

// ClientInterface defines the main interface for interacting with the ICONDB API
type ClientInterface interface {
	// Session operations
	GetAuth(ctx context.Context) (string, error)
	SignIn(ctx context.Context, id, password string) error
	SignUp(ctx context.Context, id, password, nickname string) error
	SignOut(ctx context.Context) error

	// Profile operations
	GetProfile(ctx context.Context, userID string) ([]Profile, error)
	UpdateNickname(ctx context.Context, nickname string) error

	// Content operations
	GetContents(ctx context.Context, page ContentsPage) ([]Content, error)
	GetContent(ctx context.Context, contentID int) ([]Content, error)
	GetUserContent(ctx context.Context, userID string) ([]Content, error)
	InsertContent(ctx context.Context, req *UploadRequest) (*SuccessResponse, error)
	UpdateContent(ctx context.Context, contentID int, message string) (*SuccessResponse, error)
	DeleteContent(ctx context.Context, contentID int) (*SuccessResponse, error)
	Search(ctx context.Context, keyword string) ([]Content, error)
	Download(ctx context.Context, key string) ([]byte, error)

	// Tag operations
	InsertTag(ctx context.Context, contentID int, tag string) (TagResult, error)
	SearchTag(ctx context.Context, tag string) ([]Content, error)
	GetTags(ctx context.Context, contentID int) ([]Tag, error)

	// Like operations
	CheckLiked(ctx context.Context, contentID int) (bool, error)
	SetLike(ctx context.Context, contentID int) (bool, error)
	GetUserLikedContent(ctx context.Context, userID string) ([]Content, error)

	// Follow operations
	CheckFollowed(ctx context.Context, userID string) (bool, error)
	Follow(ctx context.Context, userID string) (*SuccessResponse, error)
	Unfollow(ctx context.Context, userID string) (*SuccessResponse, error)
	GetFollowing(ctx context.Context, userID string) ([]Profile, error)
	GetFollowers(ctx context.Context, userID string) ([]Profile, error)

	// Raw access
	Post(ctx context.Context, path string, body any) (*Response, error)
}

// Client provides a high-level interface for interacting with the ICONDB API
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	baseURL    *url.URL
}

var _ ClientInterface = (*Client)(nil)

// NewClient creates a new ICONDB client with the given options
func NewClient(options ...ClientOption) (*Client, error) {
	config := DefaultConfig()

	for _, option := range options {
		option(config)
	}

	baseURL, err := url.Parse(strings.TrimRight(config.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", config.BaseURL, err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", config.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	var httpClient *http.Client
	if config.HTTPClient != nil {
		copied := *config.HTTPClient
		httpClient = &copied
	} else {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	httpClient.Jar = jar

	client := &Client{
		config:     config,
		httpClient: httpClient,
		baseURL:    baseURL,
	}

	if config.SessionCookie != "" {
		client.SetSession(config.SessionCookie)
	}

	return client, nil
}

// Session returns the current session cookie value, or "" when signed out.
func (c *Client) Session() string {
	for _, cookie := range c.httpClient.Jar.Cookies(c.baseURL) {
		if cookie.Name == c.config.SessionCookieName {
			return cookie.Value
		}
	}
	return ""
}

// SetSession replaces the session cookie. An empty value drops it.
func (c *Client) SetSession(value string) {
	cookie := &http.Cookie{
		Name:  c.config.SessionCookieName,
		Value: value,
		Path:  "/",
	}
	if value == "" {
		cookie.MaxAge = -1
	}
	c.httpClient.Jar.SetCookies(c.baseURL, []*http.Cookie{cookie})
}

// GetAuth returns the signed in user id, or "" when there is no session.
func (c *Client) GetAuth(ctx context.Context) (string, error) {
	var user string
	if err := c.call(ctx, "/get_auth", struct{}{}, &user); err != nil {
		return "", fmt.Errorf("failed to get auth: %w", err)
	}
	if user == "null" {
		return "", nil
	}
	return user, nil
}

// SignIn opens a session. Servers that answer 200 with "fail" or "void"
// are mapped to 401 and 400 errors.
func (c *Client) SignIn(ctx context.Context, id, password string) error {
	var reply string
	if err := c.call(ctx, "/sign_in", Credentials{ID: id, Password: password}, &reply); err != nil {
		return fmt.Errorf("failed to sign in: %w", err)
	}
	return replyError(reply, signInReplies)
}

// SignUp creates an account. A 200 "fail" reply means the id is taken and
// is mapped to a 409 error.
func (c *Client) SignUp(ctx context.Context, id, password, nickname string) error {
	var reply string
	if err := c.call(ctx, "/sign_up", Credentials{ID: id, Password: password, Name: nickname}, &reply); err != nil {
		return fmt.Errorf("failed to sign up: %w", err)
	}
	return replyError(reply, signUpReplies)
}

// SignOut ends the session. The local session cookie is dropped even when
// the request fails.
func (c *Client) SignOut(ctx context.Context) error {
	defer c.SetSession("")

	if err := c.call(ctx, "/sign_out", struct{}{}, nil); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

// GetProfile returns the profile rows of a user.
func (c *Client) GetProfile(ctx context.Context, userID string) ([]Profile, error) {
	var profiles []Profile
	if err := c.call(ctx, "/get_profile", map[string]string{"user": userID}, &profiles); err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profiles, nil
}

// UpdateNickname renames the signed in user. Both {"success": true} and
// the plain "success" reply are accepted.
func (c *Client) UpdateNickname(ctx context.Context, nickname string) error {
	var reply string
	if err := c.call(ctx, "/update_profile_nickname", map[string]string{"nickname": nickname}, &reply); err != nil {
		return fmt.Errorf("failed to update nickname: %w", err)
	}
	return replyError(reply, nil)
}

// GetContents returns a page of the feed, newest first.
func (c *Client) GetContents(ctx context.Context, page ContentsPage) ([]Content, error) {
	var contents []Content
	if err := c.call(ctx, "/get_contents", page, &contents); err != nil {
		return nil, fmt.Errorf("failed to get contents: %w", err)
	}
	return contents, nil
}

// GetContent returns the rows matching one content id.
func (c *Client) GetContent(ctx context.Context, contentID int) ([]Content, error) {
	var contents []Content
	if err := c.call(ctx, "/get_content", map[string]int{"content_id": contentID}, &contents); err != nil {
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	return contents, nil
}

// GetUserContent returns the uploads of a user.
func (c *Client) GetUserContent(ctx context.Context, userID string) ([]Content, error) {
	var contents []Content
	if err := c.call(ctx, "/get_usercontent", map[string]string{"id": userID}, &contents); err != nil {
		return nil, fmt.Errorf("failed to get user content: %w", err)
	}
	return contents, nil
}

// InsertContent uploads an icon as multipart form data.
func (c *Client) InsertContent(ctx context.Context, req *UploadRequest) (*SuccessResponse, error) {
	if req == nil || len(req.Data) == 0 {
		return nil, fmt.Errorf("failed to insert content: %w", ErrMissingFields)
	}

	body, err := multipartBody(req)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload body: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/insert_content", body)
	if err != nil {
		return nil, fmt.Errorf("failed to insert content: %w", err)
	}

	var result SuccessResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to insert content: %w", err)
	}
	return &result, nil
}

// UpdateContent replaces the message of a post.
func (c *Client) UpdateContent(ctx context.Context, contentID int, message string) (*SuccessResponse, error) {
	var result SuccessResponse
	body := map[string]any{"content_id": contentID, "content_message": message}
	if err := c.call(ctx, "/content_update", body, &result); err != nil {
		return nil, fmt.Errorf("failed to update content: %w", err)
	}
	return &result, nil
}

// DeleteContent removes a post.
func (c *Client) DeleteContent(ctx context.Context, contentID int) (*SuccessResponse, error) {
	var result SuccessResponse
	if err := c.call(ctx, "/content_delete", map[string]int{"content_id": contentID}, &result); err != nil {
		return nil, fmt.Errorf("failed to delete content: %w", err)
	}
	return &result, nil
}

// Search returns posts whose tags contain keyword.
func (c *Client) Search(ctx context.Context, keyword string) ([]Content, error) {
	var contents []Content
	if err := c.call(ctx, "/search", map[string]string{"searchbox": keyword}, &contents); err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	return contents, nil
}

// Download fetches a stored image.
func (c *Client) Download(ctx context.Context, key string) ([]byte, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/download/"+url.PathEscape(key), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read download body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, responseError(resp, data)
	}
	return data, nil
}

// InsertTag appends a tag to a post.
func (c *Client) InsertTag(ctx context.Context, contentID int, tag string) (TagResult, error) {
	var raw json.RawMessage
	body := map[string]any{"content_id": contentID, "tag_context": tag}
	if err := c.call(ctx, "/tag_insert", body, &raw); err != nil {
		return "", fmt.Errorf("failed to insert tag: %w", err)
	}

	var reply string
	if json.Unmarshal(raw, &reply) == nil {
		if reply == string(TagDuplicate) {
			return TagDuplicate, nil
		}
		return TagRejected, nil
	}

	var result SuccessResponse
	if err := json.Unmarshal(raw, &result); err != nil || !result.Success {
		return TagRejected, nil
	}
	return TagAdded, nil
}

// SearchTag returns posts carrying tag.
func (c *Client) SearchTag(ctx context.Context, tag string) ([]Content, error) {
	var contents []Content
	if err := c.call(ctx, "/tag_search", map[string]string{"Hashtag": tag}, &contents); err != nil {
		return nil, fmt.Errorf("failed to search tag: %w", err)
	}
	return contents, nil
}

// GetTags returns the tags of a post.
func (c *Client) GetTags(ctx context.Context, contentID int) ([]Tag, error) {
	var tags []Tag
	if err := c.call(ctx, "/get_tags", map[string]int{"content_id": contentID}, &tags); err != nil {
		return nil, fmt.Errorf("failed to get tags: %w", err)
	}
	return tags, nil
}

// CheckLiked reports whether the signed in user likes a post.
func (c *Client) CheckLiked(ctx context.Context, contentID int) (bool, error) {
	var reply string
	if err := c.call(ctx, "/check_liked", map[string]int{"content_id": contentID}, &reply); err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return reply == "liked", nil
}

// SetLike toggles the like on a post and returns the new state.
func (c *Client) SetLike(ctx context.Context, contentID int) (bool, error) {
	var liked bool
	if err := c.call(ctx, "/setLike", map[string]int{"content_id": contentID}, &liked); err != nil {
		return false, fmt.Errorf("failed to set like: %w", err)
	}
	return liked, nil
}

// GetUserLikedContent returns the posts a user liked.
func (c *Client) GetUserLikedContent(ctx context.Context, userID string) ([]Content, error) {
	var contents []Content
	if err := c.call(ctx, "/get_userlikedcontent", map[string]string{"id": userID}, &contents); err != nil {
		return nil, fmt.Errorf("failed to get liked content: %w", err)
	}
	return contents, nil
}

// CheckFollowed reports whether the signed in user follows userID.
func (c *Client) CheckFollowed(ctx context.Context, userID string) (bool, error) {
	var status FollowStatus
	if err := c.call(ctx, "/check_followed", map[string]string{"userId": userID}, &status); err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return status.Followed, nil
}

// Follow starts following userID.
func (c *Client) Follow(ctx context.Context, userID string) (*SuccessResponse, error) {
	var result SuccessResponse
	if err := c.call(ctx, "/follow", map[string]string{"userId": userID}, &result); err != nil {
		return nil, fmt.Errorf("failed to follow: %w", err)
	}
	return &result, nil
}

// Unfollow stops following userID.
func (c *Client) Unfollow(ctx context.Context, userID string) (*SuccessResponse, error) {
	var result SuccessResponse
	if err := c.call(ctx, "/unfollow", map[string]string{"userId": userID}, &result); err != nil {
		return nil, fmt.Errorf("failed to unfollow: %w", err)
	}
	return &result, nil
}

// GetFollowing returns the users userID follows.
func (c *Client) GetFollowing(ctx context.Context, userID string) ([]Profile, error) {
	var users []Profile
	if err := c.call(ctx, "/get_following", map[string]string{"id": userID}, &users); err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}
	return users, nil
}

// GetFollowers returns the users following userID.
func (c *Client) GetFollowers(ctx context.Context, userID string) ([]Profile, error) {
	var users []Profile
	if err := c.call(ctx, "/get_followers", map[string]string{"id": userID}, &users); err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}
	return users, nil
}

// Post sends body to path and returns the decoded response. The result is
// an envelope whose Payload is the response body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	payload, err := jsonBody(body)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, responseError(resp, data)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Data:       decodeAny(data),
		Raw:        data,
	}, nil
}

type requestBody struct {
	data        []byte
	contentType string
}

func jsonBody(body any) (*requestBody, error) {
	if body == nil {
		return nil, nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	return &requestBody{data: data, contentType: "application/json"}, nil
}

func multipartBody(req *UploadRequest) (*requestBody, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	contentType := req.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(req.FileName)))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="img"; filename="%s"`, filepath.Base(req.FileName)))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, err
	}
	if err := writer.WriteField("message", req.Message); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	return &requestBody{data: buf.Bytes(), contentType: writer.FormDataContentType()}, nil
}

func (c *Client) call(ctx context.Context, path string, body any, result any) error {
	payload, err := jsonBody(body)
	if err != nil {
		return err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}

	return c.handleResponse(resp, result)
}

// doRequest performs an HTTP request. Transport errors come back as an
// *apierror.Failure so callers can tell timeouts from unreachable servers.
func (c *Client) doRequest(ctx context.Context, method, path string, body *requestBody) (*http.Response, error) {
	target := c.baseURL.String() + path
	requestID := uuid.NewString()

	var lastErr error
	for attempt := 0; attempt <= c.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, transportFailure(ctx.Err())
			case <-time.After(c.config.RetryDelay):
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body.data)
		}

		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		for key, value := range c.config.DefaultHeaders {
			req.Header.Set(key, value)
		}
		if body != nil {
			req.Header.Set("Content-Type", body.contentType)
		}
		if c.config.UserAgent != "" {
			req.Header.Set("User-Agent", c.config.UserAgent)
		}
		req.Header.Set("X-Request-ID", requestID)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Debug().
				Err(err).
				Str("method", method).
				Str("path", path).
				Str("request_id", requestID).
				Int("attempt", attempt).
				Msg("request failed")

			lastErr = err
			continue
		}

		log.Debug().
			Str("method", method).
			Str("path", path).
			Str("request_id", requestID).
			Int("status_code", resp.StatusCode).
			Dur("elapsed", time.Since(start)).
			Msg("request completed")

		if resp.StatusCode >= 500 && attempt < c.config.RetryAttempts {
			log.Error().
				Int("status_code", resp.StatusCode).
				Str("path", path).
				Str("request_id", requestID).
				Msg("server error, retrying")

			resp.Body.Close()
			lastErr = &Error{
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("server error: %d", resp.StatusCode),
				RequestID:  requestID,
			}
			continue
		}

		return resp, nil
	}

	if c.config.RetryAttempts > 0 {
		lastErr = fmt.Errorf("request failed after %d retries: %w", c.config.RetryAttempts, lastErr)
	}
	return nil, transportFailure(lastErr)
}

// handleResponse processes the HTTP response and decodes the body into
// result when the status is successful
func (c *Client) handleResponse(resp *http.Response, result any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return responseError(resp, body)
	}

	if result == nil {
		return nil
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	// Plain text replies such as res.send("success").
	if s, ok := result.(*string); ok && trimmed[0] != '"' {
		*s = string(trimmed)
		return nil
	}

	// The server answered, so a body we cannot read is not a network failure.
	if err := json.Unmarshal(trimmed, result); err != nil {
		return apierror.HTTPFailure(resp.StatusCode, fmt.Errorf("failed to unmarshal response: %w", err))
	}

	return nil
}

func responseError(resp *http.Response, body []byte) error {
	var errorResponse struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}

	message := fmt.Sprintf("HTTP %d", resp.StatusCode)
	if json.Unmarshal(body, &errorResponse) == nil {
		switch {
		case errorResponse.Error != "":
			message = errorResponse.Error
		case errorResponse.Message != "":
			message = errorResponse.Message
		}
	}

	requestID := resp.Header.Get("X-Request-ID")
	if requestID == "" && resp.Request != nil {
		requestID = resp.Request.Header.Get("X-Request-ID")
	}

	return &Error{
		StatusCode: resp.StatusCode,
		Message:    message,
		Body:       string(body),
		RequestID:  requestID,
	}
}

// transportFailure tags an error from a request that got no usable response.
// Errors that already carry a status pass through unchanged.
func transportFailure(err error) error {
	if _, ok := AsError(err); ok {
		return err
	}
	if apierror.IsTimeout(err) {
		return apierror.TimeoutFailure(err)
	}
	return apierror.NetworkFailure(err)
}

var (
	signInReplies = map[string]error{"void": ErrMissingFields, "fail": ErrInvalidCredentials}
	signUpReplies = map[string]error{"void": ErrMissingFields, "fail": ErrAlreadyRegistered}
)

// replyError maps the 200 replies of the legacy endpoints to errors.
// failures holds the endpoint specific meaning of "void" and "fail".
func replyError(reply string, failures map[string]error) error {
	if reply == "success" {
		return nil
	}
	if err, ok := failures[reply]; ok {
		return err
	}

	if strings.HasPrefix(reply, "{") {
		var result SuccessResponse
		if err := json.Unmarshal([]byte(reply), &result); err == nil {
			if result.Success {
				return nil
			}
			message := result.Message
			if message == "" {
				message = "request was not successful"
			}
			return &Error{StatusCode: http.StatusBadRequest, Message: message, Body: reply}
		}
	}

	return &Error{StatusCode: http.StatusBadRequest, Message: fmt.Sprintf("unexpected reply %q", reply)}
}

func decodeAny(body []byte) any {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return string(trimmed)
	}
	return v
}
