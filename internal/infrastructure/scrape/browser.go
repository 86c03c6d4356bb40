package scrape

import (
	"context"
	"math/rand"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
)

// UserAgent is the fingerprint presented to the publisher, on the browser
// session and on plain document fetches alike. A stock automation
// fingerprint gets the session served an empty shell page.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const (
	pageLocale   = "en-ZW"
	pageTimezone = "Africa/Harare"

	goldTabText = "Mosi Oa Tunya Gold Coin Price"
)

// newSession builds an isolated browser for one visit. The returned cancel
// tears down the tab and the allocator, which also kills the spawned
// browser process.
func (e *Extractor) newSession(ctx context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.UserAgent(UserAgent),
		chromedp.WindowSize(1920, 1080),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if !e.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	return tabCtx, func() {
		cancelTab()
		cancelAlloc()
	}
}

// fingerprint applies the locale and timezone overrides to the tab before
// navigation.
func fingerprint() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := emulation.SetTimezoneOverride(pageTimezone).Do(ctx); err != nil {
			return err
		}
		return emulation.SetLocaleOverride().WithLocale(pageLocale).Do(ctx)
	})
}

// think pauses for a random duration inside [min, max], mimicking a reader
// between actions.
func think(min, max time.Duration) {
	if max <= min {
		time.Sleep(min)
		return
	}
	time.Sleep(min + time.Duration(rand.Int63n(int64(max-min))))
}

func nodeCenter(ctx context.Context, n *cdp.Node) (float64, float64, bool) {
	quads, err := dom.GetContentQuads().WithNodeID(n.NodeID).Do(ctx)
	if err != nil || len(quads) == 0 || len(quads[0]) < 8 {
		return 0, 0, false
	}
	q := quads[0]
	return (q[0] + q[2] + q[4] + q[6]) / 4, (q[1] + q[3] + q[5] + q[7]) / 4, true
}

// clickGoldTab locates the gold price tab by its text and clicks it the way
// a pointer user would: move to the element's center, pause, then click.
// Returns false without error when the tab is not on the page.
func (e *Extractor) clickGoldTab(tab context.Context) (bool, error) {
	var nodes []*cdp.Node
	err := chromedp.Run(tab,
		chromedp.Nodes(goldTabText, &nodes, chromedp.BySearch, chromedp.AtLeast(0)),
	)
	if err != nil {
		return false, err
	}
	if len(nodes) == 0 {
		return false, nil
	}
	n := nodes[0]
	err = chromedp.Run(tab, chromedp.ActionFunc(func(ctx context.Context) error {
		x, y, ok := nodeCenter(ctx, n)
		if !ok {
			return chromedp.MouseClickNode(n).Do(ctx)
		}
		if err := chromedp.MouseEvent(input.MouseMoved, x, y).Do(ctx); err == nil {
			think(200*time.Millisecond, 500*time.Millisecond)
		}
		return chromedp.MouseClickXY(x, y).Do(ctx)
	}))
	if err != nil {
		return false, err
	}
	think(1500*time.Millisecond, 3*time.Second)
	return true, nil
}
