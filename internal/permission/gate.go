package permission

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"sortogram/internal/codes"
	"sortogram/internal/model"
)

// Request asks the host to show a permission prompt or consent screen.
type Request struct {
	Token       string
	RequestCode int
	Permission  string
}

// Result is the host's answer to a Request.
type Result struct {
	Token       string `mapstructure:"token"`
	RequestCode int    `mapstructure:"requestCode"`
	Granted     bool   `mapstructure:"granted"`
}

// Launcher is the attached host able to show permission UI. Launch must not
// wait for the user; the answer arrives later through Gate.Deliver.
type Launcher interface {
	Launch(ctx context.Context, r Request) error
}

type pending struct {
	req  model.MoveRequest
	code int
	done chan error
}

// Gate holds moves until storage access is granted. Each parked move is
// keyed by its own token, so concurrent requests never share a slot.
type Gate struct {
	capability Capability
	logger     *slog.Logger

	mu       sync.Mutex
	launcher Launcher
	pending  map[string]*pending
	closed   error

	newToken func() string
}

func NewGate(c Capability, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Gate{
		capability: c,
		logger:     logger,
		pending:    map[string]*pending{},
		newToken:   uuid.NewString,
	}
}

// Attach sets the host used to launch permission UI. nil detaches it.
func (g *Gate) Attach(l Launcher) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.launcher = l
}

func (g *Gate) attached() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.launcher != nil
}

// Ticket is the future for one gated move.
type Ticket struct {
	Token string
	State model.OpState
	done  <-chan error
	gate  *Gate
}

var resolved = func() <-chan error {
	ch := make(chan error)
	close(ch)
	return ch
}()

// Wait blocks until access is decided. A nil return means proceed.
func (t *Ticket) Wait(ctx context.Context) error {
	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		if t.gate != nil {
			t.gate.abandon(t.Token)
		}
		return ctx.Err()
	}
}

// Acquire checks access for req. When access must be requested the host is
// asked and the returned ticket resolves once Deliver sees the answer.
func (g *Gate) Acquire(ctx context.Context, req model.MoveRequest) (*Ticket, error) {
	g.mu.Lock()
	launcher := g.launcher
	g.mu.Unlock()
	if launcher == nil {
		return nil, codes.New(codes.ActivityNull, "Activity is null")
	}

	switch access := g.capability.Probe(ctx); access {
	case Granted:
		g.logger.Debug("storage access already granted", "permission", g.capability.Permission())
		return &Ticket{State: model.StateIdle, done: resolved}, nil
	case Unavailable:
		return nil, codes.New(codes.PermissionDenied, g.capability.DeniedMessage())
	}

	token := g.newToken()
	p := &pending{
		req:  req,
		code: g.capability.RequestCode(),
		done: make(chan error, 1),
	}

	g.mu.Lock()
	if err := g.closed; err != nil {
		g.mu.Unlock()
		return nil, err
	}
	g.pending[token] = p
	g.mu.Unlock()

	r := Request{Token: token, RequestCode: p.code, Permission: g.capability.Permission()}
	if err := launcher.Launch(ctx, r); err != nil {
		g.abandon(token)
		g.logger.Error("error launching permission request", "token", token, "err", err)
		return nil, codes.WithDetail(codes.PermissionRequestFailed, "Failed to launch permission request", err.Error())
	}

	g.logger.Info("requested storage permission",
		"token", token, "permission", r.Permission, "code", r.RequestCode,
		"src", req.SourcePath, "dst", req.DestPath,
	)
	return &Ticket{Token: token, State: model.StateAwaitingPermission, done: p.done, gate: g}, nil
}

// Deliver resolves the parked move named by r.Token. It reports whether r
// matched a parked move.
func (g *Gate) Deliver(ctx context.Context, r Result) bool {
	g.mu.Lock()
	p, ok := g.pending[r.Token]
	if ok && p.code != r.RequestCode {
		ok = false
	}
	if ok {
		delete(g.pending, r.Token)
	}
	g.mu.Unlock()

	if !ok {
		g.logger.Warn("ignoring permission result", "token", r.Token, "code", r.RequestCode)
		return false
	}

	if g.capability.Verdict(ctx, r) {
		g.logger.Info("storage permission granted", "token", r.Token, "state", model.StateResumedGranted)
		p.done <- nil
	} else {
		g.logger.Warn("storage permission denied", "token", r.Token, "state", model.StateResolvedDenied)
		p.done <- codes.New(codes.PermissionDenied, g.capability.DeniedMessage())
	}
	return true
}

// Close resolves every parked move with err and fails later requests with
// it. It is used once no more results can arrive.
func (g *Gate) Close(err error) int {
	g.mu.Lock()
	parked := g.pending
	g.pending = map[string]*pending{}
	g.closed = err
	g.mu.Unlock()

	for token, p := range parked {
		g.logger.Warn("aborting parked move", "token", token, "src", p.req.SourcePath, "err", err)
		p.done <- err
	}
	return len(parked)
}

// Pending returns the number of parked moves.
func (g *Gate) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

func (g *Gate) lookup(token string) (model.MoveRequest, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.pending[token]
	if !ok {
		return model.MoveRequest{}, false
	}
	return p.req, true
}

func (g *Gate) abandon(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.pending, token)
}
