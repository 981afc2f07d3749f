// Package accounting — подключение Xero по OAuth2, хранение токена и выставление счетов.
package accounting

import (
	"strings"

	"golang.org/x/oauth2"
)

const (
	DefaultAuthURL        = "https://login.xero.com/identity/connect/authorize"
	DefaultTokenURL       = "https://identity.xero.com/connect/token"
	DefaultAPIURL         = "https://api.xero.com/api.xro/2.0"
	DefaultConnectionsURL = "https://api.xero.com/connections"
	DefaultScopes         = "openid profile email offline_access accounting.transactions accounting.contacts"
)

type Config struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
	// Scopes — через пробел, как в XERO_SCOPES.
	Scopes         string `mapstructure:"scopes"`
	AuthURL        string `mapstructure:"auth_url"`
	TokenURL       string `mapstructure:"token_url"`
	APIURL         string `mapstructure:"api_url"`
	ConnectionsURL string `mapstructure:"connections_url"`
	// OrgKey — под каким ключом храним токен организации.
	OrgKey      string `mapstructure:"org_key"`
	AccountCode string `mapstructure:"account_code"`
}

func (c Config) WithDefaults() Config {
	def := func(v *string, d string) {
		if strings.TrimSpace(*v) == "" {
			*v = d
		}
	}
	def(&c.Scopes, DefaultScopes)
	def(&c.AuthURL, DefaultAuthURL)
	def(&c.TokenURL, DefaultTokenURL)
	def(&c.APIURL, DefaultAPIURL)
	def(&c.ConnectionsURL, DefaultConnectionsURL)
	def(&c.OrgKey, "default")
	def(&c.AccountCode, "200")
	return c
}

// Configured — без client id/secret/redirect подключение не начинаем.
func (c Config) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURI != ""
}

func (c Config) OAuth() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURI,
		Scopes:       strings.Fields(c.Scopes),
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.AuthURL,
			TokenURL:  c.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}
