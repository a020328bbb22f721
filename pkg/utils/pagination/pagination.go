package pagination

// Params selects a window of a list by offset.
type Params struct {
	Offset int
	Limit  int
}

type OffsetHandler struct {
	DefaultLimit int
	MaxLimit     int
}

func NewOffsetHandler(defaultLimit, maxLimit int) *OffsetHandler {
	return &OffsetHandler{
		DefaultLimit: defaultLimit,
		MaxLimit:     maxLimit,
	}
}

// Normalize applies the default and maximum limit and clamps a negative
// offset to zero.
func (h *OffsetHandler) Normalize(params Params) Params {
	if params.Offset < 0 {
		params.Offset = 0
	}

	if params.Limit <= 0 {
		params.Limit = h.DefaultLimit
	}
	if h.MaxLimit > 0 && params.Limit > h.MaxLimit {
		params.Limit = h.MaxLimit
	}

	return params
}

// Slice returns the window of items selected by params. A non-positive
// limit means no limit. The result is never nil.
func Slice[T any](items []T, params Params) []T {
	offset := max(params.Offset, 0)
	if offset >= len(items) {
		return []T{}
	}

	end := len(items)
	if params.Limit > 0 && offset+params.Limit < end {
		end = offset + params.Limit
	}

	return items[offset:end]
}
