package channel

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"

	"sortogram/internal/codes"
	"sortogram/internal/permission"
)

const maxLine = 1 << 20

// Server reads calls from one stream and writes responses and events to
// another. It is also the host that launches permission requests, by
// writing a requestPermission event.
type Server struct {
	handler *Handler
	logger  *slog.Logger

	mu  sync.Mutex
	enc *json.Encoder
}

func NewServer(h *Handler, w io.Writer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{handler: h, logger: logger, enc: json.NewEncoder(w)}
}

// Launch implements permission.Launcher.
func (s *Server) Launch(_ context.Context, r permission.Request) error {
	return s.write(Event{
		Event:       EventRequestPermission,
		Token:       r.Token,
		RequestCode: r.RequestCode,
		Permission:  r.Permission,
	})
}

func (s *Server) write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(v)
}

func (s *Server) reply(resp Response) {
	if resp.ID == "" {
		return
	}
	if err := s.write(resp); err != nil {
		s.logger.Error("error writing response", "id", resp.ID, "err", err)
	}
}

// Serve handles one call per line of r until r ends or ctx is done.
// Permission updates are applied in order on the reading goroutine; every
// other call runs on its own goroutine so a parked move never blocks the
// result that releases it. Serve returns after all started calls replied.
func (s *Server) Serve(ctx context.Context, r io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLine)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				// no more results can arrive; release parked moves
				if n := s.handler.results.Close(codes.New(codes.UnknownError, "channel closed while awaiting permission")); n > 0 {
					s.logger.Warn("channel closed with parked moves", "moves", n)
				}
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}

			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			var c Call
			if err := json.Unmarshal([]byte(line), &c); err != nil {
				s.logger.Error("malformed call", "err", err)
				if err := s.write(failure("", codes.Wrap(err, codes.InvalidArguments, "Malformed call"))); err != nil {
					s.logger.Error("error writing response", "err", err)
				}
				continue
			}

			if c.Method == MethodPermissionResult || c.Method == MethodSetPermission {
				s.reply(s.handler.Handle(ctx, c))
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.reply(s.handler.Handle(ctx, c))
			}()
		}
	}
}
