// Package forms validates user input before it is sent to the API.
// Messages are user-facing and returned as *Error so callers can show them
// as warnings.
package forms

import (
	"fmt"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	// InputErrorTitle is the title shown for rejected form input.
	InputErrorTitle = "입력 오류"

	MinIDLength       = 3
	MinPasswordLength = 6
	MinTagLength      = 2

	// MaxUploadSize is the largest icon the server accepts.
	MaxUploadSize = 5 * 1024 * 1024
)

// AcceptedImageTypes are the media types accepted for uploads.
var AcceptedImageTypes = []string{
	"image/png",
	"image/svg+xml",
	"image/jpeg",
	"image/gif",
	"image/webp",
}

// Error is one rejected field.
type Error struct {
	Field   string
	Title   string
	Message string
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// Errors collects every rejected field of a form, in field order.
type Errors []*Error

// Error implements the error interface
func (e Errors) Error() string {
	messages := make([]string, 0, len(e))
	for _, fe := range e {
		messages = append(messages, fe.Message)
	}
	return strings.Join(messages, "\n")
}

// Field returns the message for a field, or "".
func (e Errors) Field(name string) string {
	for _, fe := range e {
		if fe.Field == name {
			return fe.Message
		}
	}
	return ""
}

func (e Errors) err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func fieldError(field, message string) *Error {
	return &Error{Field: field, Title: InputErrorTitle, Message: message}
}

// Login is the sign in form.
type Login struct {
	ID       string
	Password string
}

// Validate returns Errors when the form cannot be submitted.
func (f Login) Validate() error {
	var errs Errors
	if e := validateID(f.ID); e != nil {
		errs = append(errs, e)
	}
	if e := validatePassword(f.Password); e != nil {
		errs = append(errs, e)
	}
	return errs.err()
}

// Signup is the account creation form.
type Signup struct {
	ID       string
	Password string
	Nickname string
}

// Validate returns Errors when the form cannot be submitted.
func (f Signup) Validate() error {
	var errs Errors
	if e := validateNickname(f.Nickname); e != nil {
		errs = append(errs, e)
	}
	if e := validateID(f.ID); e != nil {
		errs = append(errs, e)
	}
	if e := validatePassword(f.Password); e != nil {
		errs = append(errs, e)
	}
	return errs.err()
}

func validateID(id string) *Error {
	switch {
	case strings.TrimSpace(id) == "":
		return fieldError("id", "아이디를 입력해주세요.")
	case utf8.RuneCountInString(id) < MinIDLength:
		return fieldError("id", fmt.Sprintf("아이디는 %d자 이상이어야 합니다.", MinIDLength))
	}
	return nil
}

func validatePassword(password string) *Error {
	switch {
	case password == "":
		return fieldError("password", "비밀번호를 입력해주세요.")
	case utf8.RuneCountInString(password) < MinPasswordLength:
		return fieldError("password", fmt.Sprintf("비밀번호는 %d자 이상이어야 합니다.", MinPasswordLength))
	}
	return nil
}

func validateNickname(nickname string) *Error {
	if strings.TrimSpace(nickname) == "" {
		return fieldError("nickname", "닉네임을 입력해주세요.")
	}
	return nil
}

// Tag trims a tag and checks its length. It returns the trimmed tag.
func Tag(tag string) (string, error) {
	tag = strings.TrimSpace(tag)
	if utf8.RuneCountInString(tag) < MinTagLength {
		return "", fieldError("tag", fmt.Sprintf("태그는 %d글자 이상이어야 합니다.", MinTagLength))
	}
	return tag, nil
}

// PostMessage checks an edited post message. It returns the trimmed message.
func PostMessage(message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fieldError("message", "수정할 내용을 입력해주세요.")
	}
	return message, nil
}

// Nickname checks a new nickname against the current one.
func Nickname(nickname, current string) (string, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" || nickname == current {
		return "", &Error{Field: "nickname", Title: "오류", Message: "변경할 내용이 없습니다."}
	}
	return nickname, nil
}

// Upload rejections.
var (
	ErrEmptyUpload     = &Error{Field: "img", Title: "업로드 실패", Message: "업로드할 파일을 선택해주세요."}
	ErrUploadTooLarge  = &Error{Field: "img", Title: "파일 크기 초과", Message: "5MB 이하의 이미지만 업로드 가능합니다."}
	ErrUnsupportedType = &Error{Field: "img", Title: "파일 형식 오류", Message: "PNG, SVG, JPEG, GIF, WEBP 파일만 업로드 가능합니다."}
)

// Upload checks an icon before upload and returns its media type. The type
// is sniffed from the data and falls back to the file extension for SVG,
// which sniffs as text.
func Upload(fileName string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyUpload
	}
	if len(data) > MaxUploadSize {
		return "", ErrUploadTooLarge
	}

	contentType := http.DetectContentType(data)
	if strings.EqualFold(filepath.Ext(fileName), ".svg") {
		contentType = "image/svg+xml"
	}
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}

	if !slices.Contains(AcceptedImageTypes, contentType) {
		return "", ErrUnsupportedType
	}

	return contentType, nil
}
