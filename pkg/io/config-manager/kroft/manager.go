package configmanager

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
	configmanagerinterface "github.com/kroft-dev/kroft/pkg/io/config-manager"
	"github.com/kroft-dev/kroft/pkg/utils/notify"
	"github.com/kroft-dev/kroft/pkg/utils/timer"
)

// EnvPrefix is the prefix for environment variables that override configuration values.
const EnvPrefix = "KROFT"

// ErrConfigInvalid is returned when the loaded configuration fails validation.
var ErrConfigInvalid = errors.New("invalid configuration")

// ConfigManager loads kroft v1alpha1.Cluster configurations from kroft.yaml,
// environment variables and bound command flags.
type ConfigManager struct {
	Viper  *viper.Viper
	Config *v1alpha1.Cluster
	Writer io.Writer

	fieldSelectors  []FieldSelector[v1alpha1.Cluster]
	command         *cobra.Command // source of flag overrides when bound
	configLoaded    bool
	configFileFound bool
}

var _ configmanagerinterface.ConfigManager[v1alpha1.Cluster] = (*ConfigManager)(nil)

// NewConfigManager creates a configuration manager with the given field
// selectors registered for flag binding and defaulting.
func NewConfigManager(
	writer io.Writer,
	fieldSelectors ...FieldSelector[v1alpha1.Cluster],
) *ConfigManager {
	return &ConfigManager{
		Viper:          InitializeViper(),
		Config:         v1alpha1.NewCluster(),
		Writer:         writer,
		fieldSelectors: fieldSelectors,
	}
}

// NewCommandConfigManager constructs a ConfigManager bound to the provided
// Cobra command: flags are generated from the selectors and notifications go
// to the command's stdout.
func NewCommandConfigManager(
	cmd *cobra.Command,
	selectors []FieldSelector[v1alpha1.Cluster],
) *ConfigManager {
	manager := NewConfigManager(cmd.OutOrStdout(), selectors...)
	manager.command = cmd
	manager.AddFlagsFromFields(cmd)

	return manager
}

// InitializeViper creates a Viper instance configured for kroft: the kroft.yaml
// config file in the working directory and KROFT_-prefixed environment variables.
func InitializeViper() *viper.Viper {
	instance := viper.New()
	instance.SetConfigName("kroft")
	instance.SetConfigType("yaml")
	instance.AddConfigPath(".")
	instance.SetEnvPrefix(EnvPrefix)
	instance.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	instance.AutomaticEnv()

	return instance
}

// Load loads the configuration with the specified options.
// Returns the loaded config, either freshly loaded or previously cached.
// Configuration priority: defaults < config file < environment variables < flags.
func (m *ConfigManager) Load(
	opts configmanagerinterface.LoadOptions,
) (*v1alpha1.Cluster, error) {
	if !opts.Silent {
		m.emit(notify.Message{Type: notify.TitleType, Content: "Load config...", Emoji: "⏳"})
	}

	if m.configLoaded {
		if !opts.Silent {
			m.emit(notify.Message{
				Type:    notify.SuccessType,
				Content: "config already loaded, reusing existing config",
			})
		}

		return m.Config, nil
	}

	if !opts.Silent {
		m.emit(notify.Message{Type: notify.ActivityType, Content: "loading kroft config"})
	}

	if !opts.IgnoreConfigFile {
		err := m.readConfig(opts.Silent)
		if err != nil {
			return nil, err
		}
	}

	flagOverrides := m.changedFlagValues()

	err := m.unmarshalAndApplyDefaults()
	if err != nil {
		return nil, err
	}

	err = m.applyFlagOverrides(flagOverrides)
	if err != nil {
		return nil, err
	}

	if !opts.SkipValidation {
		err = m.validateConfig()
		if err != nil {
			return nil, err
		}
	}

	if !opts.Silent {
		m.emit(notify.Message{Type: notify.SuccessType, Content: "config loaded", Timer: opts.Timer})
	}

	m.configLoaded = true

	return m.Config, nil
}

// LoadConfig loads the configuration from files and environment variables.
// If timer is provided, timing information will be included in the success notification.
func (m *ConfigManager) LoadConfig(tmr timer.Timer) (*v1alpha1.Cluster, error) {
	return m.Load(configmanagerinterface.LoadOptions{Timer: tmr})
}

// LoadConfigSilent loads the configuration without outputting notifications.
func (m *ConfigManager) LoadConfigSilent() (*v1alpha1.Cluster, error) {
	return m.Load(configmanagerinterface.LoadOptions{Silent: true})
}

// LoadConfigFromFlagsOnly loads configuration from flags and defaults only,
// ignoring on-disk config files and skipping validation. No notifications are
// emitted during the loading process.
func (m *ConfigManager) LoadConfigFromFlagsOnly() (*v1alpha1.Cluster, error) {
	return m.Load(configmanagerinterface.LoadOptions{
		Silent:           true,
		IgnoreConfigFile: true,
		SkipValidation:   true,
	})
}

func (m *ConfigManager) readConfig(silent bool) error {
	err := m.Viper.ReadInConfig()
	if err == nil {
		m.configFileFound = true
		if !silent {
			m.emit(notify.Message{
				Type:    notify.ActivityType,
				Content: "'%s' found",
				Args:    []any{m.Viper.ConfigFileUsed()},
			})
		}

		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	m.configFileFound = false
	if !silent {
		m.emit(notify.Message{Type: notify.ActivityType, Content: "using default config"})
	}

	return nil
}

func (m *ConfigManager) unmarshalAndApplyDefaults() error {
	// A config file may carry wrong apiVersion or kind values. Clearing the
	// defaults first lets validation see what the file actually said, while
	// environment-only loads keep the defaults.
	if m.configFileFound {
		m.Config.APIVersion = ""
		m.Config.Kind = ""
	}

	err := m.Viper.Unmarshal(m.Config, func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(metav1DurationDecodeHook())
	})
	if err != nil {
		return fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	for _, selector := range m.fieldSelectors {
		field := selector.Selector(m.Config)
		if field != nil && isFieldEmpty(field) {
			setFieldValue(field, selector.DefaultValue)
		}
	}

	return nil
}

// changedFlagValues snapshots the flags the user actually set on the bound
// command, keyed by flag name.
func (m *ConfigManager) changedFlagValues() map[string]string {
	if m.command == nil {
		return nil
	}

	overrides := make(map[string]string)

	m.command.Flags().Visit(func(flag *pflag.Flag) {
		overrides[flag.Name] = flag.Value.String()
	})

	return overrides
}

func (m *ConfigManager) applyFlagOverrides(overrides map[string]string) error {
	if overrides == nil {
		return nil
	}

	for _, selector := range m.fieldSelectors {
		field := selector.Selector(m.Config)
		if field == nil {
			continue
		}

		name := m.GenerateFlagName(field)

		raw, ok := overrides[name]
		if !ok {
			continue
		}

		err := setFieldValueFromFlag(field, raw)
		if err != nil {
			return fmt.Errorf("failed to apply flag override for %s: %w", name, err)
		}
	}

	return nil
}

// validateConfig runs validation on the loaded configuration. Each failure is
// reported through notify before a summary error is returned.
func (m *ConfigManager) validateConfig() error {
	validationErrors := m.Config.Spec.ValidationErrors()
	if len(validationErrors) == 0 {
		return nil
	}

	for _, validationError := range validationErrors {
		m.emit(notify.Message{
			Type:    notify.ErrorType,
			Content: "%v",
			Args:    []any{validationError},
		})
	}

	return newValidationSummaryError(len(validationErrors))
}

func newValidationSummaryError(count int) error {
	if count == 1 {
		return fmt.Errorf("%w: 1 validation error", ErrConfigInvalid)
	}

	return fmt.Errorf("%w: %d validation errors", ErrConfigInvalid, count)
}

func (m *ConfigManager) emit(msg notify.Message) {
	msg.Writer = m.Writer
	notify.WriteMessage(msg)
}

// metav1DurationDecodeHook decodes duration strings like "5m" into metav1.Duration values.
func metav1DurationDecodeHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(metav1.Duration{})

	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != durationType {
			return data, nil
		}

		raw, ok := data.(string)
		if !ok {
			return data, nil
		}

		if raw == "" {
			return metav1.Duration{}, nil
		}

		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parse duration %q: %w", raw, err)
		}

		return metav1.Duration{Duration: parsed}, nil
	}
}

// isFieldEmpty reports whether a field pointer refers to a zero value.
func isFieldEmpty(fieldPtr any) bool {
	value := reflect.ValueOf(fieldPtr)
	if value.Kind() != reflect.Ptr || value.IsNil() {
		return true
	}

	return value.Elem().IsZero()
}

// setFieldValue assigns a default value to the field behind fieldPtr. Values
// are converted when the types differ but are convertible.
func setFieldValue(fieldPtr any, value any) {
	if value == nil {
		return
	}

	target := reflect.ValueOf(fieldPtr)
	if target.Kind() != reflect.Ptr || target.IsNil() {
		return
	}

	target = target.Elem()
	source := reflect.ValueOf(value)

	switch {
	case source.Type().AssignableTo(target.Type()):
		target.Set(source)
	case source.Type().ConvertibleTo(target.Type()):
		target.Set(source.Convert(target.Type()))
	}
}
