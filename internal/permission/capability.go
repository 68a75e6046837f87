package permission

import (
	"context"
	"sync"
)

// Request codes the host echoes back with each permission result.
const (
	CodeWriteStorage   = 123
	CodeManageAllFiles = 456
)

const (
	PermManageAllFiles = "MANAGE_EXTERNAL_STORAGE"
	PermWriteStorage   = "WRITE_EXTERNAL_STORAGE"
)

type Access int

const (
	Granted Access = iota
	Requestable
	Unavailable
)

func (a Access) String() string {
	switch a {
	case Granted:
		return "granted"
	case Requestable:
		return "requestable"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Capability is one storage access model: how to tell whether access is
// held, how to ask for it, and how to read the answer.
type Capability interface {
	Permission() string
	RequestCode() int
	Probe(ctx context.Context) Access
	// Verdict decides whether a delivered result grants access.
	Verdict(ctx context.Context, r Result) bool
	DeniedMessage() string
}

// Grants is the host's record of which permissions are held.
type Grants struct {
	mu   sync.RWMutex
	held map[string]bool
}

func NewGrants() *Grants {
	return &Grants{held: map[string]bool{}}
}

func (g *Grants) Set(perm string, granted bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.held[perm] = granted
}

func (g *Grants) Has(perm string) bool {
	if g == nil {
		return false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.held[perm]
}

// ManageAllFiles needs the broad all-files grant, given through an
// out-of-process consent screen. The result carries no verdict, so access
// is probed again once it arrives.
type ManageAllFiles struct {
	Grants *Grants
}

func (ManageAllFiles) Permission() string    { return PermManageAllFiles }
func (ManageAllFiles) RequestCode() int      { return CodeManageAllFiles }
func (ManageAllFiles) DeniedMessage() string { return "All files access permission denied" }

func (c ManageAllFiles) Probe(context.Context) Access {
	if c.Grants.Has(PermManageAllFiles) {
		return Granted
	}
	return Requestable
}

func (c ManageAllFiles) Verdict(ctx context.Context, _ Result) bool {
	return c.Probe(ctx) == Granted
}

// WriteStorage needs the single named write permission; the result says
// whether it was granted.
type WriteStorage struct {
	Grants *Grants
}

func (WriteStorage) Permission() string    { return PermWriteStorage }
func (WriteStorage) RequestCode() int      { return CodeWriteStorage }
func (WriteStorage) DeniedMessage() string { return "Storage permission denied" }

func (c WriteStorage) Probe(context.Context) Access {
	if c.Grants.Has(PermWriteStorage) {
		return Granted
	}
	return Requestable
}

func (c WriteStorage) Verdict(_ context.Context, r Result) bool {
	return r.Granted
}

// Legacy storage has no runtime check.
type Legacy struct{}

func (Legacy) Permission() string                   { return "" }
func (Legacy) RequestCode() int                     { return 0 }
func (Legacy) DeniedMessage() string                { return "Storage permission denied" }
func (Legacy) Probe(context.Context) Access         { return Granted }
func (Legacy) Verdict(context.Context, Result) bool { return true }

// Denied is a storage model where access can neither be held nor requested.
type Denied struct{}

func (Denied) Permission() string                   { return "" }
func (Denied) RequestCode() int                     { return 0 }
func (Denied) DeniedMessage() string                { return "Storage access unavailable" }
func (Denied) Probe(context.Context) Access         { return Unavailable }
func (Denied) Verdict(context.Context, Result) bool { return false }
