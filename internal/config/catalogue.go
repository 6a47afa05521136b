package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Catalogue is the role list offered to portal users.
type Catalogue struct {
	AvailableRoles []string `mapstructure:"availableRoles"`
	DefaultRole    string   `mapstructure:"defaultRole"`
}

func DefaultCatalogue() Catalogue {
	return Catalogue{
		AvailableRoles: []string{"standard-user", "admin", "viewer"},
		DefaultRole:    "standard-user",
	}
}

type CatalogueHolder struct {
	current atomic.Value // holds Catalogue
}

// NewCatalogueHolder reads the role catalogue and keeps it current while the
// file changes. A missing portal.yml on the search path yields the defaults;
// a missing explicit path is an error.
func NewCatalogueHolder(cfg Config, log *zap.Logger) (*CatalogueHolder, error) {
	return LoadCatalogue(cfg.CataloguePath, log)
}

func LoadCatalogue(path string, log *zap.Logger) (*CatalogueHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("catalogue")

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("portal")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/inviteportal")
		v.AddConfigPath(".")
	}

	defaults := DefaultCatalogue()
	v.SetDefault("portal.availableRoles", defaults.AvailableRoles)
	v.SetDefault("portal.defaultRole", defaults.DefaultRole)

	watch := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read portal config: %w", err)
		}
		watch = false
	}

	cfg, err := decodeCatalogue(v)
	if err != nil {
		return nil, err
	}

	holder := &CatalogueHolder{}
	holder.current.Store(cfg)

	if watch {
		v.OnConfigChange(func(e fsnotify.Event) {
			updated, err := decodeCatalogue(v)
			if err != nil {
				log.Warn("invalid portal config ignored", zap.String("file", e.Name), zap.Error(err))
				return
			}
			holder.current.Store(updated)
			log.Info("portal config reloaded", zap.String("file", e.Name), zap.Strings("roles", updated.AvailableRoles))
		})
		v.WatchConfig()
	}

	return holder, nil
}

// NewStaticCatalogue returns a holder that never reloads.
func NewStaticCatalogue(cfg Catalogue) (*CatalogueHolder, error) {
	cfg = normalizeCatalogue(cfg)
	if err := validateCatalogue(cfg); err != nil {
		return nil, err
	}
	holder := &CatalogueHolder{}
	holder.current.Store(cfg)
	return holder, nil
}

func (h *CatalogueHolder) Get() Catalogue {
	return h.current.Load().(Catalogue)
}

func decodeCatalogue(v *viper.Viper) (Catalogue, error) {
	var cfg Catalogue
	if err := v.UnmarshalKey("portal", &cfg); err != nil {
		return Catalogue{}, err
	}
	cfg = normalizeCatalogue(cfg)
	if err := validateCatalogue(cfg); err != nil {
		return Catalogue{}, err
	}
	return cfg, nil
}

func normalizeCatalogue(cfg Catalogue) Catalogue {
	roles := make([]string, 0, len(cfg.AvailableRoles))
	for _, role := range cfg.AvailableRoles {
		role = strings.TrimSpace(role)
		if role == "" || slices.Contains(roles, role) {
			continue
		}
		roles = append(roles, role)
	}
	cfg.AvailableRoles = roles
	cfg.DefaultRole = strings.TrimSpace(cfg.DefaultRole)
	if cfg.DefaultRole == "" && len(roles) > 0 {
		cfg.DefaultRole = roles[0]
	}
	return cfg
}

func validateCatalogue(cfg Catalogue) error {
	if len(cfg.AvailableRoles) == 0 {
		return errors.New("portal.availableRoles cannot be empty")
	}
	if !slices.Contains(cfg.AvailableRoles, cfg.DefaultRole) {
		return fmt.Errorf("portal.defaultRole %q is not an available role", cfg.DefaultRole)
	}
	return nil
}
