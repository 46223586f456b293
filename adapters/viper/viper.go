package viper

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/abhissng/synapse/adapters/secrets"
	"github.com/abhissng/synapse/utils/constant"
	"github.com/abhissng/synapse/utils/helpers"
	"github.com/abhissng/synapse/utils/types"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

var placeholder = regexp.MustCompile(`{{\s*\.([^}\s]+)\s*}}`)

// Viper struct holds the configuration for the Viper client
type Viper struct {
	configName string
	configType string
	configPath string // it should only contain the absolute path for the folder rest other details will be added by sdk
	configFile string
}

// NewViper creates the viper configuration using the RunMode environment.
func NewViper(configName, configType, configPath string) *Viper {
	env := helpers.GetEnvironmentSlug(helpers.GetEnvironment())
	// Remove the trailing slash if it exists
	configPath = strings.TrimSuffix(configPath, "/")

	return &Viper{
		configName: configName,
		configType: configType,
		configPath: configPath + "/" + env + "/",
	}
}

// NewViperFromFile reads exactly the given file; the type comes from its extension.
func NewViperFromFile(file string) *Viper {
	return &Viper{configFile: file}
}

// InitialiseViper initialises the viper client
func (v *Viper) InitialiseViper() error {
	if v.configFile != "" {
		viper.SetConfigFile(v.configFile)
	} else {
		viper.SetConfigName(v.configName) // Name of configuration file
		viper.SetConfigType(v.configType) // Configuration file type
		viper.AddConfigPath(v.configPath) // Look for configuration file in the given directory
	}

	// Enable Viper to read environment variables, nested keys as A_B
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Attempt to read configuration file
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading configuration file: %w", err)
	}

	return nil
}

// LoadDynamicConfig replaces {{.KEY}} placeholders in string settings with
// fields of the secret stored at path.
func (v *Viper) LoadDynamicConfig(ctx context.Context, store secrets.Store, path types.SecretPath) error {
	if store == nil {
		return errors.New("secret store cannot be nil in case of loading the dynamic configuration")
	}

	fields, err := store.GetSecrets(ctx, path)
	if err != nil {
		return err
	}
	return replacePlaceholders(fields)
}

// replacePlaceholders walks every string setting. Missing keys are reported
// together; the setting keeps its placeholder.
func replacePlaceholders(fields map[string]string) error {
	var missing []string
	for _, key := range viper.AllKeys() {
		value, ok := viper.Get(key).(string)
		if !ok || !placeholder.MatchString(value) {
			continue
		}
		updated := placeholder.ReplaceAllStringFunc(value, func(match string) string {
			name := placeholder.FindStringSubmatch(match)[1]
			secret, found := fields[name]
			if !found {
				missing = append(missing, name)
				return match
			}
			return secret
		})
		viper.Set(key, updated)
	}
	if len(missing) > 0 {
		helpers.Println(constant.ERROR, "Unresolved configuration placeholders: ", strings.Join(missing, ","))
		return fmt.Errorf("unresolved configuration placeholders: %s", strings.Join(missing, ","))
	}
	return nil
}

// UnmarshalConfig unmarshals the entire Viper configuration into the provided struct reference.
// Durations are accepted as strings ("5s") and comma separated strings as slices.
//
// Example:
//
//	type AppConfig struct {
//	    Transport struct {
//	        URL     string        `mapstructure:"url"`
//	        Timeout time.Duration `mapstructure:"timeout"`
//	    } `mapstructure:"transport"`
//
//	    Subjects []string `mapstructure:"subjects"`
//	}
func UnmarshalConfig[T any](target *T) error {
	if target == nil {
		return fmt.Errorf("target struct cannot be nil")
	}

	hooks := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	))
	if err := viper.Unmarshal(target, hooks); err != nil {
		return fmt.Errorf("failed to unmarshal viper config: %w", err)
	}

	return nil
}
