package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/garikaib/rates-scrapper/internal/application"
	"github.com/garikaib/rates-scrapper/internal/bootstrap"
	"github.com/garikaib/rates-scrapper/internal/config"
	"github.com/garikaib/rates-scrapper/internal/domain"
	defaults "github.com/garikaib/rates-scrapper/internal/infrastructure/config"
	"github.com/garikaib/rates-scrapper/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	log := logx.L()
	cfg := config.Load()

	// Bare invocation behaves like "run", matching the cron line that
	// predates the subcommands.
	cmd, args := "run", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	if err := dispatch(context.Background(), cmd, args, cfg); err != nil {
		log.Fatal("command failed", zap.String("command", cmd), zap.Error(err))
	}
}

func dispatch(ctx context.Context, cmd string, args []string, cfg config.Config) error {
	switch cmd {
	case "run":
		return runPipeline(ctx, cfg, args)
	case "feed":
		return feed(ctx, cfg, args)
	case "test-remote":
		return testRemote(ctx, cfg)
	case "set-cred":
		return setCred(ctx, cfg, args)
	case "cache-pattern":
		return cachePattern(ctx, cfg, args)
	case "clear-cache":
		return clearCache(ctx, cfg)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: rates [command]

commands:
  run [-force]        capture and synchronize today's rates (default)
  feed -date ...      back-enter a day's rates by hand
  test-remote         check the remote snapshot store connection
  set-cred KEY [VAL]  store a credential (reads stdin when VAL is omitted)
  cache-pattern [P]   show or store the cache invalidation pattern
  clear-cache         evict every cache entry matching the pattern
`)
}

// withStore opens the local store, overlays stored credentials onto cfg and
// runs fn. Every subcommand goes through here so credential precedence is
// identical across them.
func withStore(ctx context.Context, cfg config.Config, fn func(config.Config, bootstrap.Repos) error) error {
	repos, cleanup, err := bootstrap.BuildStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	cfg, err = bootstrap.OverlayCredentials(ctx, cfg, repos.Creds)
	if err != nil {
		return err
	}
	return fn(cfg, repos)
}

func runPipeline(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	force := fs.Bool("force", false, "capture even when today is already stored")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return withStore(ctx, cfg, func(cfg config.Config, repos bootstrap.Repos) error {
		ctrl, err := bootstrap.BuildController(cfg, repos)
		if err != nil {
			return err
		}
		rec, err := ctrl.Run(ctx, *force)
		if err != nil {
			return err
		}
		fmt.Printf("run %s finished: %s\n", rec.ID, rec.Status)
		return nil
	})
}

func feed(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("feed", flag.ExitOnError)
	var in application.FeedInput
	fs.StringVar(&in.Date, "date", "", "rate date (yyyy-mm-dd)")
	fs.Float64Var(&in.Bid, "bid", 0, "USD/ZWG bid")
	fs.Float64Var(&in.Ask, "ask", 0, "USD/ZWG ask")
	fs.Float64Var(&in.Mid, "mid", 0, "USD/ZWG mid")
	optional := map[string]struct {
		val *float64
		dst **float64
	}{
		"gold-usd":  {fs.Float64("gold-usd", 0, "1oz gold coin price in USD"), &in.GoldUSD},
		"gold-zwg":  {fs.Float64("gold-zwg", 0, "1oz gold coin price in ZWG"), &in.GoldZWG},
		"gold-zar":  {fs.Float64("gold-zar", 0, "1oz gold coin price in ZAR"), &in.GoldZAR},
		"gold-gbp":  {fs.Float64("gold-gbp", 0, "1oz gold coin price in GBP"), &in.GoldGBP},
		"gold-eur":  {fs.Float64("gold-eur", 0, "1oz gold coin price in EUR"), &in.GoldEUR},
		"token-usd": {fs.Float64("token-usd", 0, "0.01oz digital token price in USD"), &in.TokenUSD},
		"token-zwg": {fs.Float64("token-zwg", 0, "0.01oz digital token price in ZWG"), &in.TokenZWG},
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		if opt, ok := optional[f.Name]; ok {
			*opt.dst = opt.val
		}
	})

	return withStore(ctx, cfg, func(cfg config.Config, repos bootstrap.Repos) error {
		ctrl, err := bootstrap.BuildController(cfg, repos)
		if err != nil {
			return err
		}
		res, err := ctrl.Feed(ctx, in)
		if err != nil {
			return err
		}
		if res.Inserted {
			fmt.Printf("fed %s: stored locally, snapshot %s inserted\n", in.Date, res.SnapshotID)
		} else {
			fmt.Printf("fed %s: stored locally, snapshot already current\n", in.Date)
		}
		return nil
	})
}

func testRemote(ctx context.Context, cfg config.Config) error {
	return withStore(ctx, cfg, func(cfg config.Config, _ bootstrap.Repos) error {
		dialer, err := bootstrap.BuildDialer(cfg)
		if err != nil {
			return err
		}
		session, release, err := dialer.Dial(ctx)
		if err != nil {
			return fmt.Errorf("remote connection failed: %w", err)
		}
		defer release()

		snap, err := session.Current(ctx)
		switch {
		case errors.Is(err, domain.ErrNoSnapshot):
			fmt.Println("connected; snapshot collection is empty")
		case err != nil:
			return fmt.Errorf("read current snapshot: %w", err)
		default:
			fmt.Printf("connected; latest snapshot date %s\n", domain.FormatDay(snap.AsOf))
		}
		return nil
	})
}

var credKeys = map[string]bool{
	defaults.CredMongoURI:     true,
	defaults.CredMongoUser:    true,
	defaults.CredMongoPass:    true,
	defaults.CredCachePattern: true,
	defaults.CredSMTPHost:     true,
	defaults.CredSMTPPort:     true,
	defaults.CredSMTPUser:     true,
	defaults.CredSMTPPass:     true,
	defaults.CredSMTPFrom:     true,
	defaults.CredSMTPTo:       true,
	defaults.CredSMTPEnabled:  true,
}

func setCred(ctx context.Context, cfg config.Config, args []string) error {
	if len(args) < 1 {
		return errors.New("set-cred needs a KEY")
	}
	key := args[0]
	if !credKeys[key] {
		return fmt.Errorf("unknown credential key %q", key)
	}

	var value string
	if len(args) > 1 {
		value = args[1]
	} else {
		v, err := readSecret(key)
		if err != nil {
			return err
		}
		value = v
	}

	repos, cleanup, err := bootstrap.BuildStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	if err := repos.Creds.Set(ctx, key, value); err != nil {
		return err
	}
	fmt.Printf("credential %s updated\n", key)
	return nil
}

// readSecret reads a value from stdin so secrets stay out of shell history.
func readSecret(key string) (string, error) {
	fmt.Fprintf(os.Stderr, "enter value for %s (end with EOF): ", key)
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	v := strings.TrimSpace(string(data))
	if v == "" {
		return "", errors.New("empty value, aborted")
	}
	return v, nil
}

func cachePattern(ctx context.Context, cfg config.Config, args []string) error {
	repos, cleanup, err := bootstrap.BuildStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if len(args) > 0 {
		if err := repos.Creds.Set(ctx, defaults.CredCachePattern, args[0]); err != nil {
			return err
		}
		fmt.Printf("cache pattern set to %s\n", args[0])
		return nil
	}
	cfg, err = bootstrap.OverlayCredentials(ctx, cfg, repos.Creds)
	if err != nil {
		return err
	}
	fmt.Println(cfg.CachePattern)
	return nil
}

func clearCache(ctx context.Context, cfg config.Config) error {
	return withStore(ctx, cfg, func(cfg config.Config, _ bootstrap.Repos) error {
		n, err := bootstrap.BuildInvalidator(cfg).ClearMatching(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("cleared %d cache entries\n", n)
		return nil
	})
}
