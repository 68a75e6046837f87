package channel

import (
	"github.com/jmgilman/go/errors"

	"sortogram/internal/codes"
)

// Method names accepted on the channel.
const (
	MethodMoveImage          = "moveImage"
	MethodGetRealPath        = "getRealPath"
	MethodGetPlatformVersion = "getPlatformVersion"
	MethodPermissionResult   = "permissionResult"
	MethodSetPermission      = "setPermissionState"
)

const EventRequestPermission = "requestPermission"

// Call is one inbound line. Calls without an ID get no reply.
type Call struct {
	ID        string         `json:"id,omitempty"`
	Method    string         `json:"method"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

type Response struct {
	ID       string     `json:"id"`
	Result   any        `json:"result,omitempty"`
	Warnings []string   `json:"warnings,omitempty"`
	Error    *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Event is an outbound line not tied to a call.
type Event struct {
	Event       string `json:"event"`
	Token       string `json:"token"`
	RequestCode int    `json:"requestCode"`
	Permission  string `json:"permission"`
}

type moveArgs struct {
	SourcePath      string `mapstructure:"sourcePath"`
	DestinationPath string `mapstructure:"destinationPath"`
}

type pathArgs struct {
	Path string `mapstructure:"path"`
}

type grantArgs struct {
	Permission string `mapstructure:"permission"`
	Granted    bool   `mapstructure:"granted"`
}

func success(id string, result any, warnings []string) Response {
	return Response{ID: id, Result: result, Warnings: warnings}
}

func failure(id string, err error) Response {
	r := errors.ToJSON(err)
	return Response{ID: id, Error: &ErrorBody{
		Code:    string(codes.Code(err)),
		Message: r.Message,
		Details: codes.Detail(err),
	}}
}
