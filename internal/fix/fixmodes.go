package fix

import "github.com/wharflab/typelint/internal/config"

// BuildFixModes extracts per-rule fix mode settings from a config.
// Returned keys use the full rule code, e.g.
// "lint/style/useShorthandFunctionType".
//
// Nil is returned when cfg is nil.
func BuildFixModes(cfg *config.Config) map[string]FixMode {
	if cfg == nil {
		return nil
	}
	return cfg.Rules.FixModes()
}
