package resource

import (
	"encoding/json"
	"os"

	"github.com/unbirthdayhatter/socialmorpho/config"
	"github.com/unbirthdayhatter/socialmorpho/game/rotation"
	"github.com/unbirthdayhatter/socialmorpho/game/title"
	"go.uber.org/zap"
)

// Bundle is the loaded data set: the daily template pool and the title
// tier tables. Every field is always usable; missing or broken data files
// leave the built-in defaults in place.
type Bundle struct {
	Templates   []rotation.Template
	BaseTiers   []title.BaseTier
	SecretTiers []title.SecretTier
}

type tierFile struct {
	Base   []title.BaseTier   `json:"base"`
	Secret []title.SecretTier `json:"secret"`
}

// Load reads the optional data files named in cfg. A missing path is
// silently skipped; an unreadable or malformed file is logged and the
// defaults kept, so a bad edit never takes the server down.
func Load(cfg config.DataConfig, logger *zap.Logger) *Bundle {
	b := &Bundle{
		Templates:   rotation.DefaultTemplates,
		BaseTiers:   title.DefaultBaseTiers,
		SecretTiers: title.DefaultSecretTiers,
	}

	if cfg.TemplatesPath != "" {
		var tpls []rotation.Template
		if ok := readJSON(cfg.TemplatesPath, &tpls, logger); ok {
			if len(tpls) == 0 {
				logger.Warn("template file is empty, keeping defaults",
					zap.String("path", cfg.TemplatesPath))
			} else {
				b.Templates = tpls
				logger.Info("daily templates loaded",
					zap.String("path", cfg.TemplatesPath),
					zap.Int("count", len(tpls)))
			}
		}
	}

	if cfg.TiersPath != "" {
		var tf tierFile
		if ok := readJSON(cfg.TiersPath, &tf, logger); ok {
			if len(tf.Base) > 0 {
				b.BaseTiers = tf.Base
			}
			if len(tf.Secret) > 0 {
				b.SecretTiers = tf.Secret
			}
			logger.Info("title tiers loaded",
				zap.String("path", cfg.TiersPath),
				zap.Int("base", len(tf.Base)),
				zap.Int("secret", len(tf.Secret)))
		}
	}

	return b
}

func readJSON(path string, out interface{}, logger *zap.Logger) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false
		}
		logger.Warn("data file unreadable, keeping defaults",
			zap.String("path", path), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.Warn("data file malformed, keeping defaults",
			zap.String("path", path), zap.Error(err))
		return false
	}
	return true
}
