package serverutils

type BaseResponse[T any] struct {
	Error   bool   `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

type PaginatedResponse[T any] struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Data    []T    `json:"data"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}

func SuccessResponse[T any](message string, data T) BaseResponse[T] {
	return BaseResponse[T]{
		Error:   false,
		Message: message,
		Data:    data,
	}
}

func PaginatedSuccessResponse[T any](message string, data []T, page, perPage int) PaginatedResponse[T] {
	if data == nil {
		data = []T{}
	}
	return PaginatedResponse[T]{
		Error:   false,
		Message: message,
		Data:    data,
		Page:    page,
		PerPage: perPage,
	}
}

func ErrorResponse(code string, message string) BaseResponse[any] {
	return BaseResponse[any]{
		Error:   true,
		Code:    code,
		Message: message,
	}
}

// ListResponse always renders data, as [] when empty.
type ListResponse[T any] struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Data    []T    `json:"data"`
}

func ListSuccessResponse[T any](message string, data []T) ListResponse[T] {
	if data == nil {
		data = []T{}
	}
	return ListResponse[T]{Error: false, Message: message, Data: data}
}
