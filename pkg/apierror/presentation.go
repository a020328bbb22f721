package apierror

// Presentation is the title and message shown to the user for a failure.
type Presentation struct {
	Title   string `yaml:"title" json:"title"`
	Message string `yaml:"message" json:"message"`
}

// IsZero reports whether the presentation carries no text.
func (p Presentation) IsZero() bool {
	return p.Title == "" && p.Message == ""
}

var defaultPresentations = map[Category]Presentation{
	CategoryBadRequest: {
		Title:   "잘못된 요청",
		Message: "요청한 정보가 올바르지 않습니다.",
	},
	CategoryUnauthorized: {
		Title:   "인증 실패",
		Message: "인증되지 않았습니다. 다시 로그인해주세요.",
	},
	CategoryForbidden: {
		Title:   "접근 거부",
		Message: "이 작업을 수행할 권한이 없습니다.",
	},
	CategoryNotFound: {
		Title:   "찾을 수 없음",
		Message: "요청한 리소스를 찾을 수 없습니다.",
	},
	CategoryConflict: {
		Title:   "중복 오류",
		Message: "이미 존재하는 정보입니다.",
	},
	CategoryPayloadTooLarge: {
		Title:   "파일 크기 초과",
		Message: "파일 크기가 너무 큽니다.",
	},
	CategoryRateLimited: {
		Title:   "요청 제한",
		Message: "요청이 너무 많습니다. 잠시 후 다시 시도해주세요.",
	},
	CategoryServerError: {
		Title:   "서버 오류",
		Message: "서버에 일시적인 문제가 발생했습니다. 잠시 후 다시 시도해주세요.",
	},
	CategoryBadGateway: {
		Title:   "서버 오류",
		Message: "서버가 응답하지 않습니다. 잠시 후 다시 시도해주세요.",
	},
	CategoryServiceUnavailable: {
		Title:   "서비스 점검",
		Message: "서버가 점검 중입니다. 잠시 후 다시 시도해주세요.",
	},
	CategoryNetworkError: {
		Title:   "네트워크 오류",
		Message: "인터넷 연결을 확인해주세요.",
	},
	CategoryTimeout: {
		Title:   "요청 시간 초과",
		Message: "요청이 시간 초과되었습니다. 다시 시도해주세요.",
	},
	CategoryUnknown: {
		Title:   "오류 발생",
		Message: "알 수 없는 오류가 발생했습니다.",
	},
}

// DefaultPresentation returns the built-in text for a category. Categories
// outside the declared set get the CategoryUnknown text.
func DefaultPresentation(c Category) Presentation {
	if p, ok := defaultPresentations[c]; ok {
		return p
	}
	return defaultPresentations[CategoryUnknown]
}
