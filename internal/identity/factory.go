package identity

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/config"
	"github.com/yigit/uniportal/internal/db"
	"github.com/yigit/uniportal/internal/pkg/helpers"
)

// NewProvider builds the provider selected by cfg.Identity.Driver. conn is used by the
// local driver; when it is nil local accounts are kept in memory.
func NewProvider(cfg *config.Config, conn db.DBTX, logger zerolog.Logger) (Provider, error) {
	switch cfg.Identity.Driver {
	case config.IdentityDriverLocal, "":
		var accounts AccountStore
		if conn != nil {
			accounts = NewPostgresAccountStore(conn)
		} else {
			accounts = NewMemoryAccountStore()
		}
		return NewLocalProvider(accounts, cfg.Identity.BcryptCost, logger), nil
	case config.IdentityDriverGoTrue:
		return NewGoTrueProvider(GoTrueConfig{
			BaseURL:    cfg.Identity.GoTrueURL,
			ServiceKey: cfg.Identity.ServiceKey,
			AnonKey:    cfg.Identity.AnonKey,
			Timeout:    helpers.DurationOr(cfg.Identity.RequestTimeout, 10*time.Second),
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown identity driver %q", cfg.Identity.Driver)
	}
}
