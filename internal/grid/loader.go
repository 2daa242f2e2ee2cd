package grid

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Page is the list endpoint response body.
type Page struct {
	Data   []Row          `json:"data"`
	Total  int            `json:"total"`
	Totals map[string]any `json:"totals,omitempty"`
}

// Fetcher issues the list request.
type Fetcher interface {
	List(ctx context.Context, path string, params Params) (*Page, error)
}

type FetcherFunc func(ctx context.Context, path string, params Params) (*Page, error)

func (f FetcherFunc) List(ctx context.Context, path string, params Params) (*Page, error) {
	return f(ctx, path, params)
}

// Request is one load cycle's frozen parameters. Seq increases with every Begin.
type Request struct {
	Seq    uint64
	Path   string
	Params Params
}

// Notifier shows a transient, non-blocking message to the user.
type Notifier interface {
	Notify(msg string)
}

type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

const GenericLoadError = "Could not load data"

var ErrNoFetcher = errors.New("grid: no fetcher configured")

// UserMessage picks the text shown for a failed load: the backend's own message when the error
// carries one, otherwise GenericLoadError.
func UserMessage(err error) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		if s := um.UserMessage(); s != "" {
			return s
		}
	}
	return GenericLoadError
}

// Begin freezes the current state into a request. The grid does not queue, debounce or cancel
// loads; callers debounce typing before calling it.
func (g *Grid) Begin() Request {
	g.seq++
	g.clamped = false
	req := Request{Seq: g.seq, Path: g.cfg.Path, Params: g.Params()}
	g.log.Debug("load begin",
		zap.String("view", g.cfg.Name),
		zap.Uint64("seq", req.Seq),
		zap.String("params", req.Params.Encode()),
	)
	return req
}

// Apply installs the outcome of req. A response older than the newest settled request (applied
// or failed) is dropped. On error the loaded rows stay as they are and one notification is
// raised. It reports whether new data was installed.
func (g *Grid) Apply(req Request, page *Page, err error) bool {
	if req.Seq < g.settled {
		g.log.Debug("load stale", zap.Uint64("seq", req.Seq), zap.Uint64("settled", g.settled))
		return false
	}
	g.settled = req.Seq
	if err == nil && page == nil {
		err = errors.New("empty response")
	}
	if err != nil {
		g.log.Warn("load failed",
			zap.String("view", g.cfg.Name),
			zap.Uint64("seq", req.Seq),
			zap.Error(err),
		)
		if g.notifier != nil {
			g.notifier.Notify(UserMessage(err))
		}
		return false
	}

	g.data = page.Data
	g.total = page.Total
	g.totals = page.Totals
	g.loaded = true
	g.log.Debug("load ok",
		zap.Uint64("seq", req.Seq),
		zap.Int("rows", len(page.Data)),
		zap.Int("total", page.Total),
	)

	if g.menu.open {
		if _, ok := g.RowByID(g.menu.owner); !ok {
			g.menu.close()
		}
	}

	// A page read from the address can lie past the end; hosts reload when PageClamped says so.
	g.clamped = false
	if n := g.TotalPages(); g.state.Page > n {
		g.state.Page = n
		g.clamped = true
	}

	// The address describes the rows on screen, so it comes from the request, not the live state.
	g.address.persist(req.Params)
	if g.cb.OnDataLoaded != nil {
		g.cb.OnDataLoaded(g.data, g)
	}
	return true
}

// PageClamped reports whether the last applied load asked for a page past the last one. The
// page has already been moved back; the rows on screen are still those of the old request.
func (g *Grid) PageClamped() bool { return g.clamped }

// Load runs one full request/response cycle synchronously, repeating it once when the
// requested page turned out to be out of range.
func (g *Grid) Load(ctx context.Context) error {
	err := g.loadOnce(ctx)
	if err == nil && g.clamped {
		err = g.loadOnce(ctx)
	}
	return err
}

func (g *Grid) loadOnce(ctx context.Context) error {
	req := g.Begin()
	if g.fetcher == nil {
		g.Apply(req, nil, ErrNoFetcher)
		return ErrNoFetcher
	}
	page, err := g.fetcher.List(ctx, req.Path, req.Params)
	g.Apply(req, page, err)
	return err
}

// Fetch performs the network half of req without touching grid state, so hosts can run it off
// the UI loop and hand the result to Apply.
func (g *Grid) Fetch(ctx context.Context, req Request) (*Page, error) {
	if g.fetcher == nil {
		return nil, ErrNoFetcher
	}
	return g.fetcher.List(ctx, req.Path, req.Params)
}
