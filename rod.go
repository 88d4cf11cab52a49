package book2pdf

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/alnah/go-book2pdf/internal/process"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

// pageCloseTimeout bounds closing a tab whose own context already expired.
const pageCloseTimeout = 5 * time.Second

// RodConfig configures the local browser launched through go-rod.
// Rod downloads Chromium on first run when no browser is found.
type RodConfig struct {
	Bin          string // browser binary; ROD_BROWSER_BIN when empty
	NoSandbox    bool
	WindowWidth  int
	WindowHeight int
	Logger       zerolog.Logger
}

// NewRodSessionFactory returns a SessionFactory that launches one browser
// per call.
func NewRodSessionFactory(cfg RodConfig) SessionFactory {
	return func(ctx context.Context) (Session, error) {
		return newRodSession(ctx, cfg)
	}
}

// rodSession owns the browser process and the goroutine draining its event
// stream.
type rodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	logger   zerolog.Logger

	stopEvents context.CancelFunc
	drained    chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// Compile-time interface checks
var (
	_ Session = (*rodSession)(nil)
	_ Page    = (*rodPage)(nil)
)

func newRodSession(ctx context.Context, cfg RodConfig) (*rodSession, error) {
	l := launcher.New().Context(ctx)

	// Use pre-installed browser if specified (Docker/containerized environments)
	bin := cfg.Bin
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if cfg.NoSandbox || os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || bin != "" {
		l = l.NoSandbox(true)
	}
	if cfg.WindowWidth > 0 && cfg.WindowHeight > 0 {
		l = l.Set("window-size", fmt.Sprintf("%d,%d", cfg.WindowWidth, cfg.WindowHeight))
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	eventCtx, stop := context.WithCancel(context.Background())
	s := &rodSession{
		launcher:   l,
		browser:    browser,
		logger:     cfg.Logger,
		stopEvents: stop,
		drained:    make(chan struct{}),
	}
	go s.eventDrain(browser.Context(eventCtx).Event())

	s.logger.Debug().Str("control_url", u).Msg("browser connected")
	return s, nil
}

// eventDrain consumes the browser's inbound events for the session's
// lifetime so command responses are never stuck behind unread events.
// Nothing seen here is fatal.
func (s *rodSession) eventDrain(events <-chan *rod.Message) {
	defer close(s.drained)
	for msg := range events {
		switch msg.Method {
		case "Inspector.targetCrashed", "Target.targetCrashed":
			s.logger.Warn().Str("event", msg.Method).Msg("browser target crashed")
		case "Inspector.detached", "Target.detachedFromTarget":
			s.logger.Warn().Str("event", msg.Method).Msg("browser target detached")
		case "Runtime.exceptionThrown":
			s.logger.Debug().Str("event", msg.Method).Msg("page script exception")
		default:
			s.logger.Trace().Str("event", msg.Method).Msg("protocol event ignored")
		}
	}
}

// NewPage opens a blank tab bound to ctx.
func (s *rodSession) NewPage(ctx context.Context) (Page, error) {
	page, err := s.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, err
	}
	return &rodPage{page: page}, nil
}

// Close stops the event drain, closes the browser and waits for the drain
// goroutine to exit. A browser that refuses to close is killed with its
// process group. It is safe to call more than once.
func (s *rodSession) Close() error {
	s.closeOnce.Do(func() {
		s.stopEvents()
		s.closeErr = s.browser.Close()
		<-s.drained
		if s.closeErr != nil {
			if err := process.TerminateTree(s.launcher.PID()); err != nil {
				s.logger.Debug().Err(err).Msg("browser process tree already gone")
			}
		}
		s.launcher.Cleanup()
		s.logger.Debug().Msg("browser closed")
	})
	return s.closeErr
}

// rodPage adapts *rod.Page to Page.
type rodPage struct {
	page *rod.Page
}

func (p *rodPage) Navigate(address string) error { return p.page.Navigate(address) }

func (p *rodPage) WaitLoad() error { return p.page.WaitLoad() }

func (p *rodPage) HTML() (string, error) { return p.page.HTML() }

func (p *rodPage) Eval(js string) (json.RawMessage, error) {
	res, err := p.page.Evaluate(rod.Eval(js).ByPromise())
	if err != nil {
		return nil, err
	}
	return json.Marshal(res.Value)
}

func (p *rodPage) SetContent(html string) error { return p.page.SetDocumentContent(html) }

func (p *rodPage) PDF(opts PrintOptions) ([]byte, error) {
	r, err := p.page.PDF(&proto.PagePrintToPDF{
		Scale:           floatPtr(opts.Scale),
		MarginTop:       floatPtr(opts.MarginTop),
		MarginRight:     floatPtr(opts.MarginRight),
		MarginBottom:    floatPtr(opts.MarginBottom),
		MarginLeft:      floatPtr(opts.MarginLeft),
		PrintBackground: opts.PrintBackground,
	})
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

// Close closes the tab even when the context it was opened with is done.
func (p *rodPage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), pageCloseTimeout)
	defer cancel()
	return p.page.Context(ctx).Close()
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
