// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// BindFlags registers pflag entries for each tagged field in params,
// which must be a pointer to a struct.
//
// Three tags control binding:
//
//   - flag:"name" or flag:"name,n" — the long flag name and optional
//     single-character shorthand. Fields without a flag tag are
//     skipped.
//   - desc:"help text" — the flag's help description.
//   - default:"value" — the default, parsed according to the field's
//     Go type. Omitted means the type's zero value.
//
// Supported field types: string, bool, int, time.Duration. Embedded
// structs are bound recursively.
func BindFlags(params any, flagSet *pflag.FlagSet) error {
	value := reflect.ValueOf(params)
	if value.Kind() != reflect.Ptr || value.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("params must be a pointer to a struct, got %T", params)
	}
	return bindStructFields(value.Elem(), flagSet)
}

func bindStructFields(structValue reflect.Value, flagSet *pflag.FlagSet) error {
	structType := structValue.Type()

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldValue := structValue.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if err := bindStructFields(fieldValue, flagSet); err != nil {
				return fmt.Errorf("embedded %s: %w", field.Name, err)
			}
			continue
		}

		flagTag := field.Tag.Get("flag")
		if flagTag == "" {
			continue
		}
		if !fieldValue.CanAddr() {
			return fmt.Errorf("field %s: not addressable", field.Name)
		}

		name, shorthand := parseFlagTag(flagTag)
		description := field.Tag.Get("desc")
		defaultString := field.Tag.Get("default")

		if err := bindField(fieldValue, flagSet, name, shorthand, description, defaultString); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
	}

	return nil
}

// parseFlagTag splits "name" into ("name", "") and "name,n" into
// ("name", "n").
func parseFlagTag(tag string) (string, string) {
	name, shorthand, _ := strings.Cut(tag, ",")
	return name, shorthand
}

func bindField(fieldValue reflect.Value, flagSet *pflag.FlagSet, name, shorthand, description, defaultString string) error {
	pointer := fieldValue.Addr().Interface()

	switch target := pointer.(type) {
	case *string:
		flagSet.StringVarP(target, name, shorthand, defaultString, description)

	case *bool:
		defaultValue := false
		if defaultString != "" {
			parsed, err := strconv.ParseBool(defaultString)
			if err != nil {
				return fmt.Errorf("default for --%s: %w", name, err)
			}
			defaultValue = parsed
		}
		flagSet.BoolVarP(target, name, shorthand, defaultValue, description)

	case *int:
		defaultValue := 0
		if defaultString != "" {
			parsed, err := strconv.Atoi(defaultString)
			if err != nil {
				return fmt.Errorf("default for --%s: %w", name, err)
			}
			defaultValue = parsed
		}
		flagSet.IntVarP(target, name, shorthand, defaultValue, description)

	case *time.Duration:
		var defaultValue time.Duration
		if defaultString != "" {
			parsed, err := time.ParseDuration(defaultString)
			if err != nil {
				return fmt.Errorf("default for --%s: %w", name, err)
			}
			defaultValue = parsed
		}
		flagSet.DurationVarP(target, name, shorthand, defaultValue, description)

	default:
		return fmt.Errorf("unsupported type %s for flag --%s", fieldValue.Type(), name)
	}

	return nil
}
