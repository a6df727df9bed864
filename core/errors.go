package core

type ErrorNotFound struct {
}

func (e ErrorNotFound) Error() string {
	return "Not Found"
}

func NewErrorNotFound() ErrorNotFound {
	return ErrorNotFound{}
}

type ErrorPermissionDenied struct {
}

func (e ErrorPermissionDenied) Error() string {
	return "Permission Denied"
}

func NewErrorPermissionDenied() ErrorPermissionDenied {
	return ErrorPermissionDenied{}
}

type ErrorBadRequest struct {
	Message string
}

func (e ErrorBadRequest) Error() string {
	if e.Message == "" {
		return "Bad Request"
	}
	return "Bad Request: " + e.Message
}

func NewErrorBadRequest(message string) ErrorBadRequest {
	return ErrorBadRequest{Message: message}
}

type ErrorInternal struct {
	Message string
}

func (e ErrorInternal) Error() string {
	if e.Message == "" {
		return "Internal Error"
	}
	return "Internal Error: " + e.Message
}

func NewErrorInternal(message string) ErrorInternal {
	return ErrorInternal{Message: message}
}

type ErrorAlreadyExists struct {
}

func (e ErrorAlreadyExists) Error() string {
	return "Already Exists"
}

func NewErrorAlreadyExists() ErrorAlreadyExists {
	return ErrorAlreadyExists{}
}
