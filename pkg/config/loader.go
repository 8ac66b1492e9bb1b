package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	toml2 "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/templatepig/pkg/errors"
	"github.com/arthur-debert/templatepig/pkg/logging"
)

// Load builds the effective configuration for a workspace. Layers are
// applied in order, later ones winning: embedded defaults, the user config
// file, <workspace>/.tpig.toml, TPIG_* environment variables. An empty
// workspace skips the workspace layer.
func Load(workspaceRoot string) (*Config, error) {
	return LoadWithOverrides(workspaceRoot, nil)
}

// LoadWithOverrides is Load with a final layer of flat key overrides, keyed
// like the TOML file (templates_path, editor, ...). Empty values are ignored.
func LoadWithOverrides(workspaceRoot string, overrides map[string]interface{}) (*Config, error) {
	logger := logging.GetLogger("config.loader")
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load embedded defaults")
	}

	// 2. User and workspace files
	files := []string{UserConfigPath()}
	if workspaceRoot != "" {
		files = append(files, filepath.Join(workspaceRoot, WorkspaceConfigFile))
	}
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path).
				WithDetail("path", path)
		}
		logger.Debug().Str("path", path).Msg("Loaded config file")
	}

	// 3. Env vars. Keys are flat so underscores are kept.
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	// 4. Overrides
	if layer := nonEmpty(overrides); len(layer) > 0 {
		if err := k.Load(confmap.Provider(layer, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	// 5. Unmarshal
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	postProcessConfig(&cfg)
	return &cfg, nil
}

// Default returns the configuration described by the embedded defaults only.
func Default() *Config {
	k := koanf.New(".")
	cfg := &Config{TemplatesPath: ".templates", OpenDocuments: true}
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return cfg
	}
	_ = k.Unmarshal("", cfg)
	return cfg
}

// UserConfigPath returns the location of the user's config file
func UserConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = xdg.ConfigHome
	}
	return filepath.Join(configHome, logging.AppDirName, UserConfigFile)
}

// ToTOML renders the effective configuration as TOML
func (c *Config) ToTOML() (string, error) {
	out, err := toml2.Marshal(c)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to encode configuration")
	}
	return string(out), nil
}

func nonEmpty(overrides map[string]interface{}) map[string]interface{} {
	layer := make(map[string]interface{}, len(overrides))
	for key, value := range overrides {
		if s, ok := value.(string); value == nil || (ok && strings.TrimSpace(s) == "") {
			continue
		}
		layer[key] = value
	}
	return layer
}

func postProcessConfig(cfg *Config) {
	cfg.TemplatesPath = strings.TrimSpace(cfg.TemplatesPath)
	if cfg.TemplatesPath == "" {
		cfg.TemplatesPath = ".templates"
	}
	cfg.GlobalTemplatesPath = strings.TrimSpace(cfg.GlobalTemplatesPath)

	markers := cfg.WorkspaceMarkers[:0]
	for _, marker := range cfg.WorkspaceMarkers {
		if marker = strings.TrimSpace(marker); marker != "" {
			markers = append(markers, marker)
		}
	}
	cfg.WorkspaceMarkers = markers
}
