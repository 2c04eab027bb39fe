package calendar

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/godbus/dbus/v5"
	"golang.org/x/oauth2"
)

// GNOME Online Accounts
const (
	goaBusName       = "org.gnome.OnlineAccounts"
	goaObjectPath    = "/org/gnome/OnlineAccounts"
	goaAccountIface  = "org.gnome.OnlineAccounts.Account"
	goaCalendarIface = "org.gnome.OnlineAccounts.Calendar"
	goaOAuth2Iface   = "org.gnome.OnlineAccounts.OAuth2Based"
)

// OnlineAccount is a GNOME Online Accounts entry with calendars enabled
type OnlineAccount struct {
	Path         dbus.ObjectPath
	ProviderType string
	ProviderName string
	Identity     string
	CalendarURL  string
	OAuth2       bool
}

// OnlineAccounts lists the accounts that expose a calendar
func OnlineAccounts(ctx context.Context, conn *dbus.Conn) ([]OnlineAccount, error) {
	obj := conn.Object(goaBusName, goaObjectPath)

	var objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	err := obj.CallWithContext(ctx, "org.freedesktop.DBus.ObjectManager.GetManagedObjects", 0).Store(&objects)
	if err != nil {
		return nil, fmt.Errorf("failed to list online accounts: %w", err)
	}
	return accountsFromObjects(objects), nil
}

func accountsFromObjects(objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant) []OnlineAccount {
	var accounts []OnlineAccount
	for path, ifaces := range objects {
		props, ok := ifaces[goaAccountIface]
		if !ok {
			continue
		}
		if disabled, _ := props["CalendarDisabled"].Value().(bool); disabled {
			continue
		}
		cal, ok := ifaces[goaCalendarIface]
		if !ok {
			continue
		}

		a := OnlineAccount{Path: path}
		a.ProviderType, _ = props["ProviderType"].Value().(string)
		a.ProviderName, _ = props["ProviderName"].Value().(string)
		a.Identity, _ = props["Identity"].Value().(string)
		a.CalendarURL, _ = cal["Uri"].Value().(string)
		_, a.OAuth2 = ifaces[goaOAuth2Iface]
		if a.CalendarURL == "" {
			continue
		}
		accounts = append(accounts, a)
	}

	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Path < accounts[j].Path })
	return accounts
}

// FindOnlineAccount picks the account whose identity or object path is id
func FindOnlineAccount(accounts []OnlineAccount, id string) (OnlineAccount, bool) {
	for _, a := range accounts {
		if a.Identity == id || string(a.Path) == id {
			return a, true
		}
	}
	return OnlineAccount{}, false
}

// goaTokenSource asks GNOME Online Accounts for a fresh access token
type goaTokenSource struct {
	conn *dbus.Conn
	path dbus.ObjectPath
}

func (s goaTokenSource) Token() (*oauth2.Token, error) {
	var accessToken string
	var expiresIn int32
	call := s.conn.Object(goaBusName, s.path).Call(goaOAuth2Iface+".GetAccessToken", 0)
	if err := call.Store(&accessToken, &expiresIn); err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	tok := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
	if expiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(expiresIn) * time.Second)
	}
	return tok, nil
}

// NewOnlineAccountSource creates a CalDAV source for an online account.
// OAuth2 accounts get their tokens from the desktop; others need credentials
// in cfg.
func NewOnlineAccountSource(ctx context.Context, conn *dbus.Conn, account OnlineAccount, cfg CalDAVConfig) (*CalDAVSource, error) {
	cfg.URL = account.CalendarURL
	if account.OAuth2 {
		cfg.TokenSource = oauth2.ReuseTokenSource(nil, goaTokenSource{conn: conn, path: account.Path})
	}
	return NewCalDAVSource(ctx, cfg)
}
