package channel

import (
	"context"
	"log/slog"

	"github.com/mitchellh/mapstructure"

	"sortogram/internal/codes"
	"sortogram/internal/model"
	"sortogram/internal/mover"
	"sortogram/internal/permission"
)

type Mover interface {
	MoveImage(ctx context.Context, req model.MoveRequest) (mover.Outcome, error)
}

type Resolver interface {
	Resolve(ctx context.Context, path string) (string, error)
}

// Results receives permission results from the host.
type Results interface {
	Deliver(ctx context.Context, r permission.Result) bool
	Close(err error) int
}

// Handler dispatches decoded calls to the plugin's operations.
type Handler struct {
	mover    Mover
	resolver Resolver
	results  Results
	grants   *permission.Grants
	version  string
	logger   *slog.Logger
}

// NewHandler returns a Handler. grants is the host's record of held
// permissions, updated by setPermissionState calls.
func NewHandler(m Mover, r Resolver, results Results, grants *permission.Grants, version string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if grants == nil {
		grants = permission.NewGrants()
	}
	return &Handler{mover: m, resolver: r, results: results, grants: grants, version: version, logger: logger}
}

// Handle runs c and returns its response. It may block while a move waits
// for permission.
func (h *Handler) Handle(ctx context.Context, c Call) Response {
	h.logger.Debug("method called", "method", c.Method, "id", c.ID)

	switch c.Method {
	case MethodMoveImage:
		var args moveArgs
		if err := mapstructure.Decode(c.Arguments, &args); err != nil || args.SourcePath == "" || args.DestinationPath == "" {
			h.logger.Error("invalid arguments: source or destination path is missing", "id", c.ID, "err", err)
			return failure(c.ID, codes.New(codes.InvalidArguments, "Source and destination paths are required"))
		}
		out, err := h.mover.MoveImage(ctx, model.MoveRequest{SourcePath: args.SourcePath, DestPath: args.DestinationPath})
		if err != nil {
			return failure(c.ID, err)
		}
		return success(c.ID, out.Moved, out.Warnings)

	case MethodGetRealPath:
		var args pathArgs
		if err := mapstructure.Decode(c.Arguments, &args); err != nil || args.Path == "" {
			h.logger.Error("invalid arguments: path is missing", "id", c.ID, "err", err)
			return failure(c.ID, codes.New(codes.InvalidArguments, "Path is required"))
		}
		real, err := h.resolver.Resolve(ctx, args.Path)
		if err != nil {
			return failure(c.ID, err)
		}
		return success(c.ID, real, nil)

	case MethodGetPlatformVersion:
		return success(c.ID, h.version, nil)

	case MethodPermissionResult:
		var r permission.Result
		if err := mapstructure.Decode(c.Arguments, &r); err != nil || r.Token == "" {
			return failure(c.ID, codes.New(codes.InvalidArguments, "Token and request code are required"))
		}
		return success(c.ID, h.results.Deliver(ctx, r), nil)

	case MethodSetPermission:
		var args grantArgs
		if err := mapstructure.Decode(c.Arguments, &args); err != nil || args.Permission == "" {
			return failure(c.ID, codes.New(codes.InvalidArguments, "Permission is required"))
		}
		h.logger.Info("permission state changed", "permission", args.Permission, "granted", args.Granted)
		h.grants.Set(args.Permission, args.Granted)
		return success(c.ID, true, nil)

	default:
		h.logger.Warn("method not implemented", "method", c.Method)
		return failure(c.ID, codes.New(codes.NotImplemented, "Method not implemented: "+c.Method))
	}
}
