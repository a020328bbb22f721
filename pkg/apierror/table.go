package apierror

import "maps"

// Action tags the business operation a request belongs to. It selects more
// specific failure text than the category default.
type Action string

const (
	ActionNone          Action = ""
	ActionLogin         Action = "LOGIN"
	ActionSignup        Action = "SIGNUP"
	ActionUpload        Action = "UPLOAD"
	ActionProfileUpdate Action = "PROFILE_UPDATE"
	ActionDelete        Action = "DELETE"
	ActionAuth          Action = "AUTH"
	ActionLoadPost      Action = "LOAD_POST"
	ActionLoadTags      Action = "LOAD_TAGS"
	ActionCheckLike     Action = "CHECK_LIKE"
	ActionLike          Action = "LIKE"
	ActionAddTag        Action = "ADD_TAG"
	ActionUpdatePost    Action = "UPDATE_POST"
	ActionDeletePost    Action = "DELETE_POST"
	ActionFollow        Action = "FOLLOW"
	ActionUnfollow      Action = "UNFOLLOW"
	ActionSearch        Action = "SEARCH"
	ActionLoadProfile   Action = "LOAD_PROFILE"
	ActionLogout        Action = "LOGOUT"
)

// Overrides holds the text of one action, keyed by raw status code and by
// category.
type Overrides struct {
	ByStatus   map[int]Presentation
	ByCategory map[Category]Presentation
}

// Table resolves failures to presentations. A Table is read-only once built
// and safe for concurrent use.
type Table struct {
	defaults map[Category]Presentation
	actions  map[Action]Overrides
}

// Resolution is the outcome of resolving one failure against a table.
type Resolution struct {
	Category     Category
	Presentation Presentation
	Override     bool
}

var defaultActionOverrides = map[Action]Overrides{
	ActionLogin: {
		ByStatus: map[int]Presentation{
			401: {Title: "로그인 실패", Message: "이메일 또는 비밀번호가 올바르지 않습니다."},
		},
		ByCategory: map[Category]Presentation{
			CategoryNetworkError: {Title: "로그인 실패", Message: "네트워크 연결을 확인한 후 다시 시도해주세요."},
		},
	},
	ActionSignup: {
		ByStatus: map[int]Presentation{
			409: {Title: "가입 실패", Message: "이미 등록된 이메일입니다."},
			400: {Title: "가입 실패", Message: "입력 정보를 다시 확인해주세요."},
		},
	},
	ActionUpload: {
		ByStatus: map[int]Presentation{
			413: {Title: "업로드 실패", Message: "파일 크기가 너무 큽니다."},
			415: {Title: "업로드 실패", Message: "지원하지 않는 파일 형식입니다."},
		},
	},
	ActionProfileUpdate: {
		ByStatus: map[int]Presentation{
			404: {Title: "프로필 수정 실패", Message: "사용자를 찾을 수 없습니다."},
		},
	},
	ActionDelete: {
		ByStatus: map[int]Presentation{
			404: {Title: "삭제 실패", Message: "이미 삭제되었거나 존재하지 않습니다."},
		},
	},
}

var defaultTable = newTable(defaultPresentations, defaultActionOverrides)

// DefaultTable returns the built-in table.
func DefaultTable() *Table {
	return defaultTable
}

func newTable(defaults map[Category]Presentation, actions map[Action]Overrides) *Table {
	t := &Table{
		defaults: maps.Clone(defaults),
		actions:  make(map[Action]Overrides, len(actions)),
	}
	for action, o := range actions {
		t.actions[action] = Overrides{
			ByStatus:   maps.Clone(o.ByStatus),
			ByCategory: maps.Clone(o.ByCategory),
		}
	}
	return t
}

// Default returns the table's text for a category.
func (t *Table) Default(c Category) Presentation {
	if p, ok := t.defaults[c]; ok {
		return p
	}
	return DefaultPresentation(c)
}

// Lookup returns the action-specific text for a failure. An exact status
// entry wins over a category entry. The empty action never has overrides.
// Pass status 0 when the failure carries no status.
func (t *Table) Lookup(action Action, c Category, status int) (Presentation, bool) {
	if action == ActionNone {
		return Presentation{}, false
	}

	o, ok := t.actions[action]
	if !ok {
		return Presentation{}, false
	}

	if status > 0 {
		if p, ok := o.ByStatus[status]; ok {
			return p, true
		}
	}

	if p, ok := o.ByCategory[c]; ok {
		return p, true
	}

	return Presentation{}, false
}

// Resolve classifies a failure and picks its text: action and status first,
// then action and category, then the category default.
func (t *Table) Resolve(action Action, f Failure) Resolution {
	c := Classify(f)

	status := 0
	if f.HasStatus() {
		status = f.Status
	}

	if p, ok := t.Lookup(action, c, status); ok {
		return Resolution{Category: c, Presentation: p, Override: true}
	}

	return Resolution{Category: c, Presentation: t.Default(c)}
}

// Actions returns the actions that carry overrides.
func (t *Table) Actions() []Action {
	actions := make([]Action, 0, len(t.actions))
	for a := range t.actions {
		actions = append(actions, a)
	}
	return actions
}
