// Package icondb provides a Go SDK for the ICONDB icon sharing API.
package icondb

import (
	"encoding/json"
	"net/http"
)

// Profile is a user as returned by /get_profile and the follow listings.
type Profile struct {
	ID          string `json:"id"`
	Nickname    string `json:"nickname"`
	ProfileName string `json:"profilename"`
}

// Content is an uploaded icon. Hashtag holds the comma separated tags, or
// the upload message for fresh posts.
type Content struct {
	ContentID int    `json:"content_id"`
	UserID    string `json:"id"`
	Filename  string `json:"filename"`
	Hashtag   string `json:"hashtag"`
}

// Tag is one entry of /get_tags.
type Tag struct {
	Hashtag string `json:"Hashtag"`
}

// SuccessResponse is the {success, message} body of mutating endpoints.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// FollowStatus is the body of /check_followed.
type FollowStatus struct {
	Followed bool `json:"followed"`
}

// TagResult is the outcome of adding a tag.
type TagResult string

const (
	TagAdded     TagResult = "added"
	TagDuplicate TagResult = "duplication"
	TagRejected  TagResult = "fail"
)

// Credentials are the sign in and sign up fields.
type Credentials struct {
	ID       string `json:"id"`
	Password string `json:"pw"`
	Name     string `json:"name,omitempty"`
}

// ContentsPage selects a window of the global feed.
type ContentsPage struct {
	Offset int `json:"id"`
	Count  int `json:"count"`
}

// UploadRequest is an icon upload.
type UploadRequest struct {
	FileName    string
	ContentType string
	Data        []byte
	Message     string
}

// Response is a raw API response. Data holds the decoded JSON body, or the
// body text when it is not JSON.
type Response struct {
	StatusCode int
	Header     http.Header
	Data       any
	Raw        json.RawMessage
}

// Payload returns the decoded body. A JSON null body has no payload.
func (r *Response) Payload() (any, bool) {
	if r == nil || r.Data == nil {
		return nil, false
	}
	return r.Data, true
}
