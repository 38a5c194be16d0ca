// AngelaMos | 2026
// browser.go

package screenshot

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/carterperez-dev/classifieds/internal/config"
)

// Browser captures pages with a headless Chromium that is started on
// first use and reused afterwards.
type Browser struct {
	cfg   config.ScreenshotConfig
	guard *Guard

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

func NewBrowser(cfg config.ScreenshotConfig, guard *Guard) *Browser {
	if guard == nil {
		guard = NewGuard()
	}
	return &Browser{cfg: cfg, guard: guard}
}

func (b *Browser) ensure() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser != nil {
		return b.browser, nil
	}

	controlURL := b.cfg.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(true).Set("disable-gpu").Set("no-sandbox")
		if b.cfg.BrowserBin != "" {
			l = l.Bin(b.cfg.BrowserBin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = u
		b.launcher = l
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		b.killLauncher()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	b.browser = browser
	return browser, nil
}

func (b *Browser) Capture(ctx context.Context, url string) ([]byte, error) {
	browser, err := b.ensure()
	if err != nil {
		return nil, err
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		if ctx.Err() == nil {
			b.reset(browser)
		}
		return nil, fmt.Errorf("open page: %w", err)
	}
	//nolint:errcheck // page teardown
	defer page.Close()

	// Redirects and subresources are checked too, not just the entry URL.
	router := page.HijackRequests()
	//nolint:errcheck // router teardown
	defer router.Stop()
	err = router.Add("*", "", func(h *rod.Hijack) {
		u := h.Request.URL()
		if u.Scheme == "data" || u.Scheme == "blob" {
			h.ContinueRequest(&proto.FetchContinueRequest{})
			return
		}
		if err := b.guard.Check(ctx, u.Hostname()); err != nil {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})
	if err != nil {
		return nil, fmt.Errorf("intercept requests: %w", err)
	}
	go router.Run()

	err = proto.EmulationSetDeviceMetricsOverride{
		Width:             b.cfg.ViewportWidth,
		Height:            b.cfg.ViewportHeight,
		DeviceScaleFactor: 1,
	}.Call(page)
	if err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	img, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	return img, nil
}

// Close shuts the browser down. It is safe to call when the browser
// was never started.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	if b.browser != nil {
		err = b.browser.Close()
		b.browser = nil
	}
	b.killLauncher()
	return err
}

// reset drops a browser whose connection failed so the next capture
// relaunches. It is a no-op when another caller already replaced it.
func (b *Browser) reset(stale *rod.Browser) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if stale == nil || b.browser != stale {
		return
	}
	//nolint:errcheck // connection is already broken
	stale.Close()
	b.browser = nil
	b.killLauncher()
}

func (b *Browser) killLauncher() {
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher = nil
	}
}
