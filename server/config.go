package server

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/janelia-flyem/voxview/viewer"
	"github.com/janelia-flyem/voxview/voxview"
)

const (
	// DefaultWebAddress is the default URL of the voxview web server.
	DefaultWebAddress = "localhost:8000"

	// DefaultCacheSizeMB is the default chunk cache size in megabytes.
	DefaultCacheSizeMB = 128
)

type tomlConfig struct {
	Server  localConfig
	Viewer  viewerConfig
	Store   storeConfig
	Cache   sizeConfig
	Logging voxview.LogConfig
}

type localConfig struct {
	HTTPAddress string `toml:"httpAddress"`
}

// viewerConfig mirrors the scheduler knobs in seconds, matching how users
// think about slider feel.
type viewerConfig struct {
	TickSecs     float64 `toml:"tick_period"`
	DebounceSecs float64 `toml:"debounce"`
}

type storeConfig struct {
	Path  string `toml:"path"`
	Group string `toml:"group"` // initial volume group; empty uses first found
}

type sizeConfig struct {
	SizeMB int `toml:"size_mb"`
}

// the parsed TOML configuration data
var tc tomlConfig

// Some settings in the TOML can be given as relative paths.
// This function converts them in-place to absolute paths,
// assuming the given paths were relative to the TOML file's own directory.
func (c *tomlConfig) convertPathsToAbsolute(configPath string) error {
	var err error
	configDir := filepath.Dir(configPath)

	// [store].path
	if c.Store.Path != "" {
		c.Store.Path, err = voxview.ConvertToAbsolute(c.Store.Path, configDir)
		if err != nil {
			return fmt.Errorf("error converting store path to absolute path")
		}
	}

	// [logging].logfile
	if c.Logging.Logfile != "" {
		c.Logging.Logfile, err = voxview.ConvertToAbsolute(c.Logging.Logfile, configDir)
		if err != nil {
			return fmt.Errorf("error converting logfile setting to absolute path")
		}
	}
	return nil
}

// validate fails fast on configuration a running server cannot honor.
func (c *tomlConfig) validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("no store path configured: set [store] path in the TOML config")
	}
	if c.Viewer.TickSecs < 0 || c.Viewer.DebounceSecs < 0 {
		return fmt.Errorf("viewer timing settings must be non-negative")
	}
	return c.ViewerConfig().Validate()
}

// LoadConfig loads server configuration from a TOML file.
func LoadConfig(filename string) error {
	if filename == "" {
		return fmt.Errorf("no server TOML configuration file provided")
	}
	tc = tomlConfig{}
	if _, err := toml.DecodeFile(filename, &tc); err != nil {
		return fmt.Errorf("could not decode TOML config: %v", err)
	}
	if err := tc.convertPathsToAbsolute(filename); err != nil {
		return err
	}
	if err := tc.validate(); err != nil {
		return err
	}
	tc.Logging.SetLogger()
	return nil
}

// ViewerConfig returns scheduler timing from the loaded TOML, with defaults
// for unset values.
func (c *tomlConfig) ViewerConfig() viewer.Config {
	config := viewer.DefaultConfig()
	if c.Viewer.TickSecs > 0 {
		config.TickPeriod = time.Duration(c.Viewer.TickSecs * float64(time.Second))
	}
	if c.Viewer.DebounceSecs > 0 {
		config.Debounce = time.Duration(c.Viewer.DebounceSecs * float64(time.Second))
	}
	return config
}

// CacheSizeMB returns the configured chunk cache size.
func (c *tomlConfig) CacheSizeMB() int {
	if c.Cache.SizeMB > 0 {
		return c.Cache.SizeMB
	}
	return DefaultCacheSizeMB
}

// HTTPAddress returns the configured web server address.
func HTTPAddress() string {
	if tc.Server.HTTPAddress == "" {
		return DefaultWebAddress
	}
	return tc.Server.HTTPAddress
}

// StorePath returns the configured chunk store directory.
func StorePath() string {
	return tc.Store.Path
}

// InitialGroup returns the configured startup volume group, if any.
func InitialGroup() string {
	return tc.Store.Group
}
