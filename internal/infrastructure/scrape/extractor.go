package scrape

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/garikaib/rates-scrapper/internal/application"
	"github.com/garikaib/rates-scrapper/internal/domain"
	"github.com/garikaib/rates-scrapper/internal/infrastructure/config"
	"github.com/garikaib/rates-scrapper/internal/infrastructure/httpx"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Extractor obtains quotations from the publisher: the homepage tables via
// a headless browser, and the per-day price document as the gold fallback.
type Extractor struct {
	HomepageURL     string
	DocumentBaseURL string
	Headless        bool
	Timeout         time.Duration
	Fetch           *httpx.Client
	Log             *zap.Logger
}

var _ application.SourceExtractor = (*Extractor)(nil)

func (e *Extractor) logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

// ExtractWeb renders the publisher's homepage and reads both tables. A page
// that loads but yields no rows is a (nil, nil, nil) result, not an error.
// The browser session is torn down on every path.
func (e *Extractor) ExtractWeb(ctx context.Context) (*domain.ExchangeQuotation, *domain.GoldQuotation, error) {
	log := e.logger()
	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()
	tab, release := e.newSession(ctx)
	defer release()

	think(config.MinThinkTime, config.MaxThinkTime)
	log.Info("scrape.navigate", zap.String("url", e.HomepageURL))
	var html string
	err := chromedp.Run(tab,
		fingerprint(),
		chromedp.Navigate(e.HomepageURL),
		chromedp.Sleep(config.PageSettleTime),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("scrape: load homepage: %w", err)
	}

	exchange := ParseExchangeHTML(html)
	if exchange != nil {
		log.Info("scrape.exchange_extracted",
			zap.Float64("bid", exchange.Bid),
			zap.Float64("ask", exchange.Ask),
			zap.Float64("mid", exchange.Mid))
	} else {
		log.Warn("scrape.exchange_row_missing")
	}

	think(config.MinThinkTime, config.MaxThinkTime)
	clicked, err := e.clickGoldTab(tab)
	if err != nil {
		log.Warn("scrape.gold_tab_click_failed", zap.Error(err))
		return exchange, nil, nil
	}
	if !clicked {
		log.Warn("scrape.gold_tab_missing")
		return exchange, nil, nil
	}

	var goldHTML string
	err = chromedp.Run(tab,
		chromedp.Sleep(config.TabSettleTime),
		chromedp.OuterHTML("html", &goldHTML, chromedp.ByQuery),
	)
	if err != nil {
		log.Warn("scrape.gold_snapshot_failed", zap.Error(err))
		return exchange, nil, nil
	}
	gold := ParseGoldHTML(goldHTML)
	if gold != nil {
		log.Info("scrape.gold_extracted", zap.Bool("token_pair", gold.HasTokenPair()))
	}
	return exchange, gold, nil
}

// ExtractGoldDocument fetches and parses the per-day price document for
// day. An unpublished document is a (nil, nil) result; only transport and
// parse failures are errors.
func (e *Extractor) ExtractGoldDocument(ctx context.Context, day time.Time) (*domain.GoldQuotation, error) {
	url := GoldDocumentURL(e.DocumentBaseURL, day)
	log := e.logger().With(zap.String("url", url))
	log.Info("scrape.document_fetch")
	data, err := e.Fetch.GetBytes(ctx, url)
	if errors.Is(err, httpx.ErrNotFound) {
		log.Info("scrape.document_absent")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scrape: fetch document: %w", err)
	}
	q, err := ParseGoldDocument(data)
	if err != nil {
		return nil, fmt.Errorf("scrape: %w", err)
	}
	if q == nil {
		log.Info("scrape.document_no_prices")
		return nil, nil
	}
	q.SourceURL = url
	log.Info("scrape.document_extracted")
	return q, nil
}
