package config

import "time"

const (
	DefaultCachePattern = "*/api/rates/fx-rates"

	DefaultSMTPPort = 587

	// Think-time bounds for the headless session, mirroring a human reader.
	MinThinkTime = 500 * time.Millisecond
	MaxThinkTime = 2 * time.Second

	// Settle time after the page load and after switching to the gold tab.
	PageSettleTime = 3 * time.Second
	TabSettleTime  = 2 * time.Second
)

// Credential-store keys read at bootstrap.
const (
	CredMongoURI     = "mongo_uri"
	CredMongoUser    = "mongo_user"
	CredMongoPass    = "mongo_pass"
	CredCachePattern = "cache_pattern"
	CredSMTPHost     = "smtp_host"
	CredSMTPPort     = "smtp_port"
	CredSMTPUser     = "smtp_user"
	CredSMTPPass     = "smtp_pass"
	CredSMTPFrom     = "smtp_from"
	CredSMTPTo       = "smtp_to"
	CredSMTPEnabled  = "smtp_enabled"
)
