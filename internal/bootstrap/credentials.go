package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/garikaib/rates-scrapper/internal/config"
	"github.com/garikaib/rates-scrapper/internal/domain"
	defaults "github.com/garikaib/rates-scrapper/internal/infrastructure/config"
	"github.com/garikaib/rates-scrapper/internal/infrastructure/sqlite"
)

// OverlayCredentials folds operator-stored settings into cfg. Environment
// values win; the store fills what env leaves blank. Mail settings live only
// in the store.
func OverlayCredentials(ctx context.Context, cfg config.Config, creds *sqlite.CredentialRepo) (config.Config, error) {
	vals := map[string]string{}
	for _, key := range []string{
		defaults.CredMongoURI, defaults.CredMongoUser, defaults.CredMongoPass,
		defaults.CredCachePattern,
		defaults.CredSMTPHost, defaults.CredSMTPPort, defaults.CredSMTPUser,
		defaults.CredSMTPPass, defaults.CredSMTPFrom, defaults.CredSMTPTo,
		defaults.CredSMTPEnabled,
	} {
		v, err := creds.Get(ctx, key)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return cfg, fmt.Errorf("read credential %s: %w", key, err)
		}
		vals[key] = v
	}

	// A URI from the environment is used verbatim; stored user/pass only
	// ever pair with the stored URI.
	if cfg.MongoURI == "" {
		cfg.MongoURI = vals[defaults.CredMongoURI]
		cfg.MongoUser = vals[defaults.CredMongoUser]
		cfg.MongoPass = vals[defaults.CredMongoPass]
	}

	if cfg.CachePattern == "" {
		cfg.CachePattern = vals[defaults.CredCachePattern]
	}
	if cfg.CachePattern == "" {
		cfg.CachePattern = defaults.DefaultCachePattern
	}

	cfg.SMTP = config.SMTPConfig{
		Enabled: vals[defaults.CredSMTPEnabled] == "true",
		Host:    vals[defaults.CredSMTPHost],
		Port:    smtpPort(vals[defaults.CredSMTPPort]),
		User:    vals[defaults.CredSMTPUser],
		Pass:    vals[defaults.CredSMTPPass],
		From:    vals[defaults.CredSMTPFrom],
		To:      vals[defaults.CredSMTPTo],
	}
	return cfg, nil
}

func smtpPort(s string) int {
	p, err := strconv.Atoi(s)
	if err != nil || p <= 0 {
		return defaults.DefaultSMTPPort
	}
	return p
}
