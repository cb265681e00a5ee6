package executor

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodConfig configures the Chrome instance used by RodDriver.
type RodConfig struct {
	// ControlURL connects to a running browser instead of launching one.
	ControlURL string `mapstructure:"control_url"`
	Bin        string `mapstructure:"bin"`
	Headless   bool   `mapstructure:"headless"`
	// Timeout bounds every single interaction.
	Timeout time.Duration `mapstructure:"timeout"`
	// Settle is how long the page must stay idle to count as ready.
	Settle         time.Duration `mapstructure:"settle"`
	ViewportWidth  int           `mapstructure:"viewport_width"`
	ViewportHeight int           `mapstructure:"viewport_height"`
}

// DefaultRodConfig returns headless settings with a 30s interaction timeout.
func DefaultRodConfig() RodConfig {
	return RodConfig{
		Headless:       true,
		Timeout:        30 * time.Second,
		Settle:         500 * time.Millisecond,
		ViewportWidth:  1280,
		ViewportHeight: 800,
	}
}

// RodDriver opens pages in a Chrome instance controlled through go-rod. Each
// Open starts its own browser so concurrent runs share nothing.
type RodDriver struct {
	cfg RodConfig
}

// NewRodDriver creates a RodDriver. Zero fields take their defaults.
func NewRodDriver(cfg RodConfig) *RodDriver {
	defaults := DefaultRodConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.Settle <= 0 {
		cfg.Settle = defaults.Settle
	}
	if cfg.ViewportWidth <= 0 || cfg.ViewportHeight <= 0 {
		cfg.ViewportWidth = defaults.ViewportWidth
		cfg.ViewportHeight = defaults.ViewportHeight
	}
	return &RodDriver{cfg: cfg}
}

// Open launches or connects to a browser and opens a blank page.
func (d *RodDriver) Open(ctx context.Context) (Page, error) {
	var l *launcher.Launcher
	controlURL := d.cfg.ControlURL
	if controlURL == "" {
		l = launcher.New().Headless(d.cfg.Headless)
		if d.cfg.Bin != "" {
			l = l.Bin(d.cfg.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		_ = browser.Close()
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("create page: %w", err)
	}

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             d.cfg.ViewportWidth,
		Height:            d.cfg.ViewportHeight,
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		_ = browser.Close()
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	return &rodPage{
		browser:  browser,
		page:     page,
		launcher: l,
		timeout:  d.cfg.Timeout,
		settle:   d.cfg.Settle,
	}, nil
}

type rodPage struct {
	browser  *rod.Browser
	page     *rod.Page
	launcher *launcher.Launcher
	timeout  time.Duration
	settle   time.Duration

	closeOnce sync.Once
	closeErr  error
}

func (p *rodPage) bound(ctx context.Context) *rod.Page {
	return p.page.Context(ctx).Timeout(p.timeout)
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	return p.bound(ctx).Navigate(url)
}

func (p *rodPage) Fill(ctx context.Context, selector, value string) error {
	el, err := p.bound(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("find %s: %w", selector, err)
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("clear %s: %w", selector, err)
	}
	if value == "" {
		return p.bound(ctx).Keyboard.Type(input.Backspace)
	}
	return el.Input(value)
}

func (p *rodPage) Click(ctx context.Context, selector string) error {
	el, err := p.bound(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("find %s: %w", selector, err)
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (p *rodPage) ClickText(ctx context.Context, tag, text string) error {
	el, err := p.bound(ctx).ElementR(tag, regexp.QuoteMeta(text))
	if err != nil {
		return fmt.Errorf("find %s with text %q: %w", tag, text, err)
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (p *rodPage) WaitReady(ctx context.Context) error {
	if err := p.bound(ctx).WaitStable(p.settle); err != nil {
		return fmt.Errorf("wait for page: %w", err)
	}
	return nil
}

func (p *rodPage) BodyText(ctx context.Context) (string, error) {
	el, err := p.bound(ctx).Element("body")
	if err != nil {
		return "", err
	}
	return el.Text()
}

func (p *rodPage) Screenshot(ctx context.Context) ([]byte, error) {
	return p.bound(ctx).Screenshot(true, nil)
}

func (p *rodPage) Close() error {
	p.closeOnce.Do(func() {
		_ = p.page.Close()
		p.closeErr = p.browser.Close()
		if p.launcher != nil {
			p.launcher.Kill()
		}
	})
	return p.closeErr
}
