package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix lets a deployment namespace its variables; UNIPORTAL_DB_HOST wins over DB_HOST.
const EnvPrefix = "UNIPORTAL_"

// fileSuffix marks a variable holding a path to the value, e.g. JWT_SECRET_FILE for mounted secrets.
const fileSuffix = "_FILE"

var durationType = reflect.TypeOf(time.Duration(0))

// applyEnv walks the struct behind s and overrides every field carrying an env tag
func applyEnv(s interface{}) error {
	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field, meta := val.Field(i), typ.Field(i)

		if field.Kind() == reflect.Struct {
			if err := applyEnv(field.Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := meta.Tag.Get("env")
		if key == "" {
			continue
		}
		raw, found, err := lookupEnv(key)
		if err != nil {
			return err
		}
		if !found {
			continue
		}
		if err := setField(field, raw); err != nil {
			return fmt.Errorf("%s: cannot apply %s: %w", meta.Name, key, err)
		}
	}
	return nil
}

// lookupEnv resolves key in precedence order: prefixed value, plain value, then the
// prefixed and plain _FILE indirections.
func lookupEnv(key string) (string, bool, error) {
	for _, name := range []string{EnvPrefix + key, key} {
		if value, ok := os.LookupEnv(name); ok {
			return value, true, nil
		}
	}
	for _, name := range []string{EnvPrefix + key + fileSuffix, key + fileSuffix} {
		path, ok := os.LookupEnv(name)
		if !ok || path == "" {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return "", false, fmt.Errorf("failed to read %s: %w", name, err)
		}
		return strings.TrimSpace(string(content)), true, nil
	}
	return "", false, nil
}

func setField(field reflect.Value, value string) error {
	if !field.CanSet() {
		return fmt.Errorf("field cannot be set")
	}

	switch {
	case field.Type() == durationType:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		field.SetInt(int64(d))
	case field.Kind() == reflect.String:
		field.SetString(value)
	case field.CanInt():
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(n)
	case field.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type %s", field.Kind())
	}
	return nil
}
