package forms

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_Validate(t *testing.T) {
	tests := []struct {
		name     string
		form     Login
		id       string
		password string
	}{
		{name: "valid", form: Login{ID: "testuser", Password: "password123"}},
		{name: "empty", form: Login{}, id: "아이디를 입력해주세요.", password: "비밀번호를 입력해주세요."},
		{name: "blank id", form: Login{ID: "   ", Password: "password123"}, id: "아이디를 입력해주세요."},
		{name: "short", form: Login{ID: "ab", Password: "12345"}, id: "아이디는 3자 이상이어야 합니다.", password: "비밀번호는 6자 이상이어야 합니다."},
		{name: "hangul id counts runes", form: Login{ID: "테스터", Password: "password123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if tt.id == "" && tt.password == "" {
				assert.NoError(t, err)
				return
			}

			var errs Errors
			require.ErrorAs(t, err, &errs)
			assert.Equal(t, tt.id, errs.Field("id"))
			assert.Equal(t, tt.password, errs.Field("password"))
		})
	}
}

func TestSignup_Validate(t *testing.T) {
	assert.NoError(t, Signup{ID: "newuser", Password: "secret1", Nickname: "새사용자"}.Validate())

	err := Signup{ID: "newuser", Password: "secret1"}.Validate()
	var errs Errors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, "nickname", errs[0].Field)
	assert.Equal(t, InputErrorTitle, errs[0].Title)
}

func TestTag(t *testing.T) {
	tag, err := Tag("  고양이 ")
	require.NoError(t, err)
	assert.Equal(t, "고양이", tag)

	_, err = Tag(" a ")
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "태그는 2글자 이상이어야 합니다.", fe.Message)
}

func TestPostMessage(t *testing.T) {
	_, err := PostMessage(" \n ")
	assert.EqualError(t, err, "수정할 내용을 입력해주세요.")

	msg, err := PostMessage("new text ")
	require.NoError(t, err)
	assert.Equal(t, "new text", msg)
}

func TestNickname(t *testing.T) {
	_, err := Nickname("테스터", "테스터")
	assert.Error(t, err)

	nickname, err := Nickname(" 새이름 ", "테스터")
	require.NoError(t, err)
	assert.Equal(t, "새이름", nickname)
}

func TestUpload(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...)

	tests := []struct {
		name     string
		file     string
		data     []byte
		expected string
		title    string
	}{
		{name: "png", file: "icon.png", data: png, expected: "image/png"},
		{name: "gif", file: "icon.gif", data: []byte("GIF89a......"), expected: "image/gif"},
		{name: "svg", file: "icon.SVG", data: []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`), expected: "image/svg+xml"},
		{name: "text", file: "notes.txt", data: []byte("hello"), title: "파일 형식 오류"},
		{name: "empty", file: "icon.png", title: "업로드 실패"},
		{name: "too large", file: "icon.png", data: bytes.Repeat([]byte{0}, MaxUploadSize+1), title: "파일 크기 초과"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contentType, err := Upload(tt.file, tt.data)
			if tt.title == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, contentType)
				return
			}

			var fe *Error
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.title, fe.Title)
		})
	}
}
