package mover

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sortogram/internal/codes"
	"sortogram/internal/model"
	"sortogram/internal/permission"
	"sortogram/internal/transfer"
)

type Transferer interface {
	Move(ctx context.Context, src, dst string) error
}

type Synchronizer interface {
	Sync(ctx context.Context, oldPath, newPath string) []string
}

// Outcome is the result of a move that succeeded. Warnings lists catalog
// steps that failed after the file was moved.
type Outcome struct {
	Moved    bool
	Warnings []string
}

// Service runs move-image: it waits for storage access, moves the file and
// updates the media catalog.
type Service struct {
	gate   *permission.Gate
	engine Transferer
	index  Synchronizer
	logger *slog.Logger
}

func New(gate *permission.Gate, engine Transferer, index Synchronizer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{gate: gate, engine: engine, index: index, logger: logger}
}

// AttachHost sets the host that shows permission UI.
func (s *Service) AttachHost(l permission.Launcher) {
	s.logger.Debug("host attached")
	s.gate.Attach(l)
}

func (s *Service) DetachHost() {
	s.logger.Debug("host detached")
	s.gate.Attach(nil)
}

// MoveImage moves req.SourcePath to req.DestPath. It blocks while access is
// being requested from the host.
func (s *Service) MoveImage(ctx context.Context, req model.MoveRequest) (Outcome, error) {
	if req.SourcePath == "" || req.DestPath == "" {
		return Outcome{}, codes.New(codes.InvalidArguments, "Source and destination paths are required")
	}
	s.logger.Debug("handling image move", "src", req.SourcePath, "dst", req.DestPath)

	ticket, err := s.gate.Acquire(ctx, req)
	if err != nil {
		return Outcome{}, err
	}
	if ticket.State == model.StateAwaitingPermission {
		s.logger.Info("move parked until permission result", "token", ticket.Token)
	}
	if err := ticket.Wait(ctx); err != nil {
		if codes.Coded(err) {
			return Outcome{}, err
		}
		return Outcome{}, codes.Wrap(err, codes.UnknownError, err.Error())
	}

	return s.perform(ctx, req)
}

func (s *Service) perform(ctx context.Context, req model.MoveRequest) (out Outcome, err error) {
	defer func() {
		if v := recover(); v != nil {
			s.logger.Error("panic during move", "src", req.SourcePath, "dst", req.DestPath, "panic", v)
			out, err = Outcome{}, codes.New(codes.UnknownError, fmt.Sprint(v))
		}
	}()

	start := time.Now()
	if err := s.engine.Move(ctx, req.SourcePath, req.DestPath); err != nil {
		s.logger.Error("move failed", "src", req.SourcePath, "dst", req.DestPath, "err", err)
		return Outcome{}, classify(err)
	}

	var warnings []string
	if s.index != nil {
		warnings = s.index.Sync(ctx, req.SourcePath, req.DestPath)
	}
	s.logger.Info("image moved",
		"src", req.SourcePath, "dst", req.DestPath,
		"warnings", len(warnings), "dur", time.Since(start),
	)
	return Outcome{Moved: true, Warnings: warnings}, nil
}

// classify maps an engine error to the code reported to the caller.
func classify(err error) error {
	var me *transfer.MoveError
	switch {
	case errors.Is(err, transfer.ErrSourceNotFound):
		return codes.New(codes.SourceNotFound, "Source file does not exist")
	case errors.Is(err, transfer.ErrDestDir):
		return codes.New(codes.DestCreateFailed, "Could not create destination directory")
	case errors.Is(err, transfer.ErrDestExists):
		return codes.New(codes.DestExists, "Destination file already exists")
	case errors.Is(err, transfer.ErrUnsupportedType):
		return codes.New(codes.UnsupportedType, "File type not supported")
	case errors.As(err, &me):
		return codes.Wrap(err, codes.MoveFailed, "Failed to move file")
	default:
		return codes.Wrap(err, codes.UnknownError, err.Error())
	}
}
