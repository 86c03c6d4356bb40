package bootstrap

import (
	"fmt"
	"net/http"
	"time"

	"github.com/garikaib/rates-scrapper/internal/application"
	"github.com/garikaib/rates-scrapper/internal/config"
	"github.com/garikaib/rates-scrapper/internal/infrastructure/holidays"
	"github.com/garikaib/rates-scrapper/internal/infrastructure/httpx"
	"github.com/garikaib/rates-scrapper/internal/infrastructure/logx"
	"github.com/garikaib/rates-scrapper/internal/infrastructure/mongo"
	"github.com/garikaib/rates-scrapper/internal/infrastructure/notify"
	rediscache "github.com/garikaib/rates-scrapper/internal/infrastructure/redis"
	"github.com/garikaib/rates-scrapper/internal/infrastructure/scrape"
	"github.com/garikaib/rates-scrapper/internal/infrastructure/sqlite"
)

// Repos bundles the repositories sharing the one local database handle.
type Repos struct {
	DB       *sqlite.DB
	Quotes   *sqlite.QuoteRepo
	Runs     *sqlite.RunRepo
	Creds    *sqlite.CredentialRepo
	Holidays *sqlite.HolidayRepo
}

// BuildStore opens the local database, migrates it to the newest schema and
// returns the repositories. The cleanup func closes the handle.
func BuildStore(cfg config.Config) (Repos, func(), error) {
	log := logx.L()
	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return Repos{}, func() {}, err
	}
	if err := sqlite.RunMigrations(db); err != nil {
		db.Close()
		return Repos{}, func() {}, err
	}
	cleanup := func() {
		log.Info("closing local store")
		_ = db.Close()
	}
	return Repos{
		DB:       db,
		Quotes:   sqlite.NewQuoteRepo(db),
		Runs:     sqlite.NewRunRepo(db),
		Creds:    sqlite.NewCredentialRepo(db),
		Holidays: sqlite.NewHolidayRepo(db),
	}, cleanup, nil
}

// BuildDialer constructs the remote snapshot dialer, folding stored
// credentials into the URI. An empty URI yields a dialer whose Dial fails
// with a configuration error, which the controller degrades to a note.
func BuildDialer(cfg config.Config) (*mongo.Dialer, error) {
	uri := cfg.MongoURI
	if uri != "" {
		var err error
		uri, err = mongo.InjectCredentials(uri, cfg.MongoUser, cfg.MongoPass)
		if err != nil {
			return nil, err
		}
	}
	return &mongo.Dialer{
		URI:        uri,
		Database:   cfg.MongoDatabase,
		Collection: cfg.MongoCollection,
		Timeout:    cfg.MongoTimeout,
		Log:        logx.L(),
	}, nil
}

// BuildInvalidator constructs the downstream cache invalidator.
func BuildInvalidator(cfg config.Config) *rediscache.Invalidator {
	return &rediscache.Invalidator{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Pattern:  cfg.CachePattern,
		Log:      logx.L(),
	}
}

// Location resolves the configured timezone, which decides what "today"
// means for both the pipeline and the daemon schedule.
func Location(cfg config.Config) (*time.Location, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	return loc, nil
}

// BuildController wires the full pipeline graph. cfg is expected to have
// been through OverlayCredentials first.
func BuildController(cfg config.Config, r Repos) (*application.Controller, error) {
	log := logx.L()
	loc, err := Location(cfg)
	if err != nil {
		return nil, err
	}
	dialer, err := BuildDialer(cfg)
	if err != nil {
		return nil, err
	}

	fetch := &httpx.Client{
		HTTP:      &http.Client{Timeout: cfg.FetchTimeout},
		UserAgent: scrape.UserAgent,
	}
	oracle := holidays.NewOracle(&holidays.APIClient{
		BaseURL: cfg.HolidayAPIBase,
		Country: cfg.HolidayCountry,
		HTTP:    fetch,
	}, r.Holidays, cfg.HolidayCacheTTL, log)

	extractor := &scrape.Extractor{
		HomepageURL:     cfg.HomepageURL,
		DocumentBaseURL: cfg.DocumentBaseURL,
		Headless:        cfg.Headless,
		Timeout:         cfg.BrowserTimeout,
		Fetch:           fetch,
		Log:             log,
	}
	mailer := &notify.Mailer{
		Enabled: cfg.SMTP.Enabled,
		Host:    cfg.SMTP.Host,
		Port:    cfg.SMTP.Port,
		User:    cfg.SMTP.User,
		Pass:    cfg.SMTP.Pass,
		From:    cfg.SMTP.From,
		To:      cfg.SMTP.To,
		Log:     log,
	}

	return application.NewController(
		application.NewBusinessDayGate(oracle, log),
		extractor,
		r.Quotes,
		r.Runs,
		dialer,
		application.NewSynchronizer(log),
		BuildInvalidator(cfg),
		mailer,
		log,
		application.WithLocation(loc),
	), nil
}
