package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidConfig is returned when the provided config is not a pointer to a struct
	// that embeds EnvConfig.
	ErrInvalidConfig = errors.New("config must be a pointer to a struct embedding EnvConfig")

	// ErrVarNotSet is returned when a required environment variable is not set and has no default.
	ErrVarNotSet = errors.New("env var not set")

	// ErrUnsupportedVarType is returned when trying to parse an environment variable
	// into an unsupported Go type.
	ErrUnsupportedVarType = errors.New("unsupported env var type")
)

//nolint:gochecknoglobals
var durationType = reflect.TypeOf(time.Duration(0))

// EnvConfig is a base type that must be embedded in configuration structs
// to enable environment variable parsing.
type EnvConfig struct {
	namespace string
}

//nolint:varnamelen
func getEnvConfig(cfg any) (*EnvConfig, error) {
	v := reflect.ValueOf(cfg)

	// Ensure cfg is a pointer to a struct
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, ErrInvalidConfig
	}

	v = v.Elem() // Dereference the pointer to get the struct value
	t := v.Type()

	// Iterate over fields to find the embedded EnvConfig
	for i := range t.NumField() {
		field := t.Field(i)
		//nolint:exhaustruct,forcetypeassert
		if field.Anonymous && field.Type == reflect.TypeOf(EnvConfig{}) {
			if ev := v.Field(i); ev.CanAddr() {
				return ev.Addr().Interface().(*EnvConfig), nil
			}
		}
	}

	return nil, ErrInvalidConfig
}

// Parse loads configuration values from environment variables into the provided struct.
// The struct must embed EnvConfig and use `env` tags to specify variable names.
// The namespace parameter is used as a prefix for all environment variables.
// Supports string, signed and unsigned integer, time.Duration and bool fields.
// Nested structs are supported.
// Returns an error if parsing fails or required variables are missing.
func Parse(ctx context.Context, cfg any, namespace string) error {
	envConfig, err := getEnvConfig(cfg)
	if err != nil {
		return fmt.Errorf("get env config: %w", err)
	}

	envConfig.namespace = namespace

	return parse(namespace, "", cfg)
}

func parse(namespace, prefix string, c interface{}) error {
	t := reflect.TypeOf(c).Elem()
	v := reflect.ValueOf(c).Elem()

	for i := range t.NumField() {
		field := t.Field(i)
		value := v.Field(i)

		if field.Type.Kind() == reflect.Struct && !field.Anonymous {
			if err := parse(namespace, prefix+field.Tag.Get("envPrefix"), value.Addr().Interface()); err != nil {
				return err
			}

			continue
		}

		if err := parseField(namespace, prefix, field, value); err != nil {
			return fmt.Errorf("parse field: %w", err)
		}
	}

	return nil
}

func parseField(namespace, prefix string, field reflect.StructField, value reflect.Value) error {
	key, ok := field.Tag.Lookup("env")
	if !ok || key == "" {
		return nil
	}

	name, raw, found := lookupEnv(namespace, prefix+key)
	if !found {
		def, hasDefault := field.Tag.Lookup("default")
		if !hasDefault {
			return fmt.Errorf("%w: %s", ErrVarNotSet, key)
		}

		name, raw = key+" (default)", def
	}

	if err := setValue(value, raw); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	return nil
}

// envNames returns the variable names consulted for key, most specific first.
// For namespace "SHOP_SHOPCTL" and key "LOG_LEVEL" these are SHOP_SHOPCTL_LOG_LEVEL
// and SHOP_LOG_LEVEL. An empty namespace yields the bare key.
func envNames(namespace, key string) []string {
	if namespace == "" {
		return []string{key}
	}

	parts := strings.Split(namespace, "_")
	names := make([]string, 0, len(parts))

	for n := len(parts); n > 0; n-- {
		names = append(names, strings.Join(parts[:n], "_")+"_"+key)
	}

	return names
}

// lookupEnv returns the first variable of envNames that is set, even if empty.
func lookupEnv(namespace, key string) (name, value string, ok bool) {
	for _, name := range envNames(namespace, key) {
		if value, ok := os.LookupEnv(name); ok {
			return name, value, true
		}
	}

	return "", "", false
}

// setValue converts raw to the kind of v.
func setValue(v reflect.Value, raw string) error {
	if v.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}

		v.SetInt(int64(d))

		return nil
	}

	//nolint:exhaustive
	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, v.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}

		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, v.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer: %w", err)
		}

		v.SetUint(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid bool: %w", err)
		}

		v.SetBool(b)
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedVarType, v.Kind())
	}

	return nil
}
