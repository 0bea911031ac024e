package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces settings in the environment: STACKGEN_VERBOSE,
// STACKGEN_PREVIEW_ADDR and so on.
const EnvPrefix = "STACKGEN"

// Settings are tool preferences, as opposed to the stack being generated.
type Settings struct {
	// Verbose routes the generation log to stderr.
	Verbose bool
	// Templates is a directory that replaces the bundled templates.
	Templates string
	// PackageManager is used when a stack file leaves it unset.
	PackageManager string
	// Overwrite lets create replace an existing project directory.
	Overwrite bool
	// PreviewAddr is the listen address of the NFS preview server.
	PreviewAddr string
}

// NewViper returns a viper instance with the settings defaults, the
// environment binding and the config search path. An explicit file
// replaces the search path.
func NewViper(file string) *viper.Viper {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "stackgen"))
		}
		v.SetConfigName("settings")
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("verbose", false)
	v.SetDefault("templates", "")
	v.SetDefault("package_manager", "")
	v.SetDefault("overwrite", false)
	v.SetDefault("preview.addr", "127.0.0.1:0")
	return v
}

// ReadSettings loads the settings file if there is one. A missing file in
// the search path is not an error; a missing explicit file is.
func ReadSettings(v *viper.Viper) (Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read settings: %w", err)
		}
	}
	return Settings{
		Verbose:        v.GetBool("verbose"),
		Templates:      v.GetString("templates"),
		PackageManager: v.GetString("package_manager"),
		Overwrite:      v.GetBool("overwrite"),
		PreviewAddr:    v.GetString("preview.addr"),
	}, nil
}
