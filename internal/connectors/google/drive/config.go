package drive

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/drivewatch/internal/core/domain"
	"github.com/custodia-labs/drivewatch/internal/core/ports/driven"
)

// Configuration keys read by ParseConfig.
const (
	KeyScope           = "drive.scope"
	KeyUpdateTypes     = "drive.update_types"
	KeyWatchProperties = "drive.watch_properties"
	KeyIncludeDeleted  = "drive.include_deleted"
	KeyRenewalInterval = "drive.renewal_interval_seconds"
	KeyCallbackURL     = "webhook.callback_url"
)

// ParseConfig extracts the watch configuration from a config store.
// Missing keys take the defaults of domain.DefaultWatchConfig.
func ParseConfig(cfg driven.ConfigStore) (domain.WatchConfig, error) {
	wc := domain.DefaultWatchConfig()

	wc.Scope = domain.ScopeFromSelector(strings.TrimSpace(cfg.GetString(KeyScope)))
	wc.WatchProperties = cfg.GetBool(KeyWatchProperties)
	wc.IncludeDeleted = cfg.GetBool(KeyIncludeDeleted)
	wc.CallbackURL = strings.TrimSpace(cfg.GetString(KeyCallbackURL))

	if raw := cfg.GetStringSlice(KeyUpdateTypes); len(raw) > 0 {
		types := make([]domain.UpdateType, 0, len(raw))
		for _, v := range raw {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			t, ok := domain.ParseUpdateType(v)
			if !ok {
				return domain.WatchConfig{}, fmt.Errorf("%w: %s: unknown update type %q",
					domain.ErrInvalidConfig, KeyUpdateTypes, v)
			}
			types = append(types, t)
		}
		wc.UpdateTypes = types
	}

	if _, ok := cfg.Get(KeyRenewalInterval); ok {
		wc.RenewalInterval = time.Duration(cfg.GetInt(KeyRenewalInterval)) * time.Second
	}

	if err := wc.Validate(); err != nil {
		return domain.WatchConfig{}, err
	}
	return wc, nil
}
