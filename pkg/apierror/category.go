// Package apierror classifies failed ICONDB API calls and maps them to the
// text shown to the user.
package apierror

import "net/http"

// Category is the abstract kind of a failed remote call.
// Categories are string-based so they read well in logs and YAML.
type Category string

const (
	CategoryBadRequest         Category = "BAD_REQUEST"
	CategoryUnauthorized       Category = "UNAUTHORIZED"
	CategoryForbidden          Category = "FORBIDDEN"
	CategoryNotFound           Category = "NOT_FOUND"
	CategoryConflict           Category = "CONFLICT"
	CategoryPayloadTooLarge    Category = "PAYLOAD_TOO_LARGE"
	CategoryRateLimited        Category = "RATE_LIMITED"
	CategoryServerError        Category = "SERVER_ERROR"
	CategoryBadGateway         Category = "BAD_GATEWAY"
	CategoryServiceUnavailable Category = "SERVICE_UNAVAILABLE"
	CategoryNetworkError       Category = "NETWORK_ERROR"
	CategoryTimeout            Category = "TIMEOUT"
	CategoryUnknown            Category = "UNKNOWN_ERROR"
)

// Categories lists every category in declaration order.
var Categories = []Category{
	CategoryBadRequest,
	CategoryUnauthorized,
	CategoryForbidden,
	CategoryNotFound,
	CategoryConflict,
	CategoryPayloadTooLarge,
	CategoryRateLimited,
	CategoryServerError,
	CategoryBadGateway,
	CategoryServiceUnavailable,
	CategoryNetworkError,
	CategoryTimeout,
	CategoryUnknown,
}

var statusCategories = map[int]Category{
	http.StatusBadRequest:            CategoryBadRequest,
	http.StatusUnauthorized:          CategoryUnauthorized,
	http.StatusForbidden:             CategoryForbidden,
	http.StatusNotFound:              CategoryNotFound,
	http.StatusConflict:              CategoryConflict,
	http.StatusRequestEntityTooLarge: CategoryPayloadTooLarge,
	http.StatusTooManyRequests:       CategoryRateLimited,
	http.StatusInternalServerError:   CategoryServerError,
	http.StatusBadGateway:            CategoryBadGateway,
	http.StatusServiceUnavailable:    CategoryServiceUnavailable,
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer
func (c Category) String() string {
	return string(c)
}

// CategoryForStatus returns the category mapped to an HTTP status code.
// The second result is false for codes outside the status table.
func CategoryForStatus(status int) (Category, bool) {
	c, ok := statusCategories[status]
	return c, ok
}

// Classify maps a failure to exactly one category. It never fails:
// unmapped status codes classify as CategoryUnknown.
func Classify(f Failure) Category {
	if f.HasStatus() {
		if c, ok := statusCategories[f.Status]; ok {
			return c
		}
		return CategoryUnknown
	}

	if f.Kind == KindTimeout {
		return CategoryTimeout
	}

	return CategoryNetworkError
}
