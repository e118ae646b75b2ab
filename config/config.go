// Package config registers every setting with viper and reads the user's
// lectern.toml on top of the defaults.
package config

import (
	"errors"
	"strings"

	"github.com/lectern-player/lectern/constant"
	"github.com/lectern-player/lectern/filesystem"
	"github.com/lectern-player/lectern/where"
	"github.com/spf13/viper"
)

// EnvKeyReplacer maps dotted keys to their LECTERN_ variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup loads defaults, binds the environment and reads the config file when it exists.
func Setup() error {
	viper.SetFs(filesystem.API())
	viper.SetConfigName(constant.Lectern)
	viper.SetConfigType("toml")
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Lectern)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	err := viper.ReadInConfig()
	if errors.As(err, new(viper.ConfigFileNotFoundError)) {
		return nil
	}
	return err
}
