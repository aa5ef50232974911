package config

import (
	"time"

	"github.com/lostandfound-admin/lostandfound-admin/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Directory Directory
	Log       logger.Log
	Title     string
	Webserver Webserver
}

// Webserver implement webserver settings.
type Webserver struct {
	BrowseStatic        bool    // enable static file browsing (for development purposes only)
	CleanPath           bool    // use clean path middleware to allow multi slash requests
	DisableRecover      bool    // disable recover middleware
	Domain              string  // domain name for the webserver
	Port                int     // listening port for the webserver
	ShutDownTime        int     // wait time for shutdown
	URL                 string  // base url for the webserver
	CookieEncryptionKey string  // encryption key for cookies
	Session             Session // session settings
}

// Directory holds the Active Directory integration settings.
type Directory struct {
	// Enabled toggles the whole integration: credential validation and user sync.
	Enabled bool
	// Host is the directory server hostname or IP address.
	Host string
	// Port is the directory server port (389 for LDAP, 636 for LDAPS).
	Port int
	// Domain is the AD domain used to derive fallback email addresses.
	Domain string
	// UseSSL enables LDAPS on the connection.
	UseSSL bool
	// UseTLS upgrades a plain connection with StartTLS.
	UseTLS bool
	// SkipVerify skips TLS certificate verification (for testing only).
	SkipVerify bool
	// BindDN is the service account used for searches.
	BindDN string
	// BindPassword is the password for the bind DN.
	BindPassword string
	// BaseDN is the search root for users and groups.
	BaseDN string
	// Timeout bounds every directory call, in seconds.
	Timeout int
	// DailySyncHourUTC is the hour of day (UTC) the scheduled sync runs at.
	DailySyncHourUTC int
}
