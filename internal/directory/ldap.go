package directory

import (
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog/log"
)

// Config holds LDAP/Active Directory connection configuration.
type Config struct {
	// Enabled indicates if directory integration is enabled.
	Enabled bool
	// Host is the directory server hostname or IP address.
	Host string
	// Port is the directory server port (typically 389 for LDAP, 636 for LDAPS).
	Port int
	// Domain is the AD domain, used to derive fallback email addresses.
	Domain string
	// UseSSL enables LDAPS (LDAP over SSL/TLS) on port 636.
	UseSSL bool
	// UseTLS enables StartTLS to upgrade an LDAP connection to TLS.
	UseTLS bool
	// SkipVerify skips TLS certificate verification (insecure, for testing only).
	SkipVerify bool
	// BindDN is the distinguished name to bind with for performing searches.
	BindDN string
	// BindPassword is the password for the bind DN.
	BindPassword string
	// BaseDN is the base distinguished name for user and group searches.
	BaseDN string
	// UsernameAttr is the attribute containing the account name (e.g. "sAMAccountName").
	UsernameAttr string
	// EmailAttr is the attribute containing the email address (e.g. "mail").
	EmailAttr string
	// DisplayNameAttr is the attribute containing the display name.
	DisplayNameAttr string
	// Timeout is the connection and search timeout in seconds.
	Timeout int
}

// LDAPProvider resolves group membership and validates credentials against
// an Active Directory server. It implements Provider and CredentialValidator.
type LDAPProvider struct {
	config *Config
}

// NewLDAPProvider creates a new LDAP provider.
func NewLDAPProvider(config *Config) (*LDAPProvider, error) {
	if !config.Enabled {
		return nil, ErrDisabled
	}

	// Set defaults
	if config.UsernameAttr == "" {
		config.UsernameAttr = "sAMAccountName"
	}

	if config.EmailAttr == "" {
		config.EmailAttr = "mail"
	}

	if config.DisplayNameAttr == "" {
		config.DisplayNameAttr = "displayName"
	}

	if config.Timeout == 0 {
		config.Timeout = 10
	}

	return &LDAPProvider{config: config}, nil
}

// Connect establishes a connection to the directory server.
func (p *LDAPProvider) Connect() (*ldap.Conn, error) {
	hostPort := net.JoinHostPort(p.config.Host, strconv.Itoa(p.config.Port))

	var ldapURL string
	if p.config.UseSSL {
		ldapURL = "ldaps://" + hostPort
	} else {
		ldapURL = "ldap://" + hostPort
	}

	var tlsConfig *tls.Config
	if p.config.UseSSL || p.config.UseTLS {
		tlsConfig = &tls.Config{
			InsecureSkipVerify: p.config.SkipVerify, //nolint:gosec // skipping verifying tls is ok
			ServerName:         p.config.Host,
		}
	}

	conn, err := ldap.DialURL(ldapURL, ldap.DialWithTLSConfig(tlsConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to directory server: %w", err)
	}

	// Upgrade to TLS if requested (for non-SSL connections)
	if !p.config.UseSSL && p.config.UseTLS {
		if errStartTLS := conn.StartTLS(tlsConfig); errStartTLS != nil {
			if errClose := conn.Close(); errClose != nil {
				log.Error().Err(errClose).Msg("failed to close directory connection")
			}

			return nil, fmt.Errorf("failed to start TLS: %w", errStartTLS)
		}
	}

	// Timeout bounds every search on this connection.
	if p.config.Timeout > 0 {
		conn.SetTimeout(time.Duration(p.config.Timeout) * time.Second)
	}

	return conn, nil
}

// GroupMembers resolves the full membership of the named group and returns
// every member as a plain data record. Returns ErrGroupNotFound when the
// group does not exist in the directory.
func (p *LDAPProvider) GroupMembers(groupName string) ([]Member, error) {
	conn, err := p.Connect()
	if err != nil {
		return nil, err
	}

	defer func() {
		if errClose := conn.Close(); errClose != nil {
			log.Warn().Err(errClose).Msg("failed to close directory connection")
		}
	}()

	if errBind := p.bindService(conn); errBind != nil {
		return nil, errBind
	}

	groupDN, errGroup := p.findGroupDN(conn, groupName)
	if errGroup != nil {
		return nil, errGroup
	}

	return p.searchGroupMembers(conn, groupDN)
}

// ValidateCredentials authenticates a username/password pair against the
// directory in real time. All failure modes return false; details go to the
// log only. Credentials are never persisted.
func (p *LDAPProvider) ValidateCredentials(username, password string) bool {
	// An empty password would be an unauthenticated bind, which many
	// servers accept as anonymous. Reject it outright.
	if password == "" {
		return false
	}

	conn, err := p.Connect()
	if err != nil {
		log.Error().Err(err).Msg("directory server is not reachable for credential validation")
		return false
	}

	defer func() {
		if errClose := conn.Close(); errClose != nil {
			log.Warn().Err(errClose).Msg("failed to close directory connection")
		}
	}()

	if errBind := p.bindService(conn); errBind != nil {
		log.Error().Err(errBind).Msg("service bind failed for credential validation")
		return false
	}

	userDN, errSearch := p.findUserDN(conn, username)
	if errSearch != nil {
		log.Warn().Err(errSearch).Str("user", username).Msg("credential validation: user lookup failed")
		return false
	}

	if errAuth := conn.Bind(userDN, password); errAuth != nil {
		log.Info().Str("user", username).Msg("directory credential validation failed")
		return false
	}

	log.Info().Str("user", username).Msg("directory credential validation succeeded")

	return true
}

// TestConnection tests the directory server connection and bind credentials.
// Returns nil if the connection and service bind are successful.
func (p *LDAPProvider) TestConnection() error {
	conn, err := p.Connect()
	if err != nil {
		return err
	}

	defer func() {
		if errClose := conn.Close(); errClose != nil {
			log.Warn().Err(errClose).Msg("failed to close directory connection")
		}
	}()

	return p.bindService(conn)
}

// bindService binds with the configured service account (if provided).
func (p *LDAPProvider) bindService(conn *ldap.Conn) error {
	if p.config.BindDN == "" {
		return nil
	}

	if err := conn.Bind(p.config.BindDN, p.config.BindPassword); err != nil {
		return fmt.Errorf("failed to bind with service account: %w", err)
	}

	return nil
}

// findGroupDN locates the group entry by name and returns its DN.
func (p *LDAPProvider) findGroupDN(conn *ldap.Conn, groupName string) (string, error) {
	escaped := ldap.EscapeFilter(groupName)
	filter := fmt.Sprintf("(&(objectClass=group)(|(sAMAccountName=%s)(cn=%s)))", escaped, escaped)

	searchRequest := ldap.NewSearchRequest(
		p.config.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0, // Size limit
		p.config.Timeout,
		false,
		filter,
		[]string{"dn"},
		nil,
	)

	searchResult, err := conn.Search(searchRequest)
	if err != nil {
		return "", fmt.Errorf("failed to search for group %q: %w", groupName, err)
	}

	if len(searchResult.Entries) == 0 {
		return "", ErrGroupNotFound
	}

	return searchResult.Entries[0].DN, nil
}

// searchGroupMembers returns all user accounts that are members of the group DN.
// Nested membership is resolved via the AD matching-rule-in-chain operator.
func (p *LDAPProvider) searchGroupMembers(conn *ldap.Conn, groupDN string) ([]Member, error) {
	filter := fmt.Sprintf(
		"(&(objectClass=user)(memberOf:1.2.840.113556.1.4.1941:=%s))",
		ldap.EscapeFilter(groupDN),
	)

	searchRequest := ldap.NewSearchRequest(
		p.config.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0,
		p.config.Timeout,
		false,
		filter,
		[]string{
			p.config.UsernameAttr,
			p.config.DisplayNameAttr,
			p.config.EmailAttr,
		},
		nil,
	)

	searchResult, err := conn.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to search members of %q: %w", groupDN, err)
	}

	members := make([]Member, 0, len(searchResult.Entries))

	for _, entry := range searchResult.Entries {
		sam := entry.GetAttributeValue(p.config.UsernameAttr)
		if sam == "" {
			continue
		}

		members = append(members, Member{
			SamAccountName: sam,
			DisplayName:    entry.GetAttributeValue(p.config.DisplayNameAttr),
			Email:          entry.GetAttributeValue(p.config.EmailAttr),
		})
	}

	return members, nil
}

// findUserDN searches for the given account name and returns a single DN.
func (p *LDAPProvider) findUserDN(conn *ldap.Conn, username string) (string, error) {
	filter := fmt.Sprintf(
		"(&(objectClass=user)(%s=%s))",
		p.config.UsernameAttr,
		ldap.EscapeFilter(username),
	)

	searchRequest := ldap.NewSearchRequest(
		p.config.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0,
		p.config.Timeout,
		false,
		filter,
		[]string{"dn"},
		nil,
	)

	searchResult, err := conn.Search(searchRequest)
	if err != nil {
		return "", fmt.Errorf("failed to search for user: %w", err)
	}

	switch len(searchResult.Entries) {
	case 0:
		return "", ErrUserNotFound
	case 1:
		return searchResult.Entries[0].DN, nil
	default:
		return "", ErrMultipleUsersFound
	}
}

// FallbackEmail derives an address for accounts without a mail attribute.
func (c *Config) FallbackEmail(samAccountName string) string {
	domain := strings.ToLower(c.Domain)
	if domain == "" {
		return ""
	}

	return fmt.Sprintf("%s@%s", strings.ToLower(samAccountName), domain)
}
