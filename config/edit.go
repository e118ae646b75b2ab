package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/lectern-player/lectern/constant"
	"github.com/lectern-player/lectern/filesystem"
	"github.com/lectern-player/lectern/where"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// UnknownKeyError is returned for keys missing from Default.
type UnknownKeyError struct {
	Key        string
	Suggestion string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown key %s, did you mean %s?", e.Key, e.Suggestion)
}

// Lookup returns the field registered under key.
func Lookup(key string) (Field, error) {
	if field, ok := Default[key]; ok {
		return field, nil
	}
	return Field{}, &UnknownKeyError{Key: key, Suggestion: Closest(key)}
}

// Closest returns the registered key with the smallest edit distance to key.
func Closest(key string) string {
	return lo.MinBy(lo.Keys(Default), func(a, b string) bool {
		da, db := levenshtein.Distance(key, a), levenshtein.Distance(key, b)
		if da == db {
			return a < b
		}
		return da < db
	})
}

// Parse converts raw command line values to the type of the field's default.
func (f *Field) Parse(raw []string) (any, error) {
	if len(raw) == 0 {
		return nil, errors.New("no value given")
	}

	switch f.Value.(type) {
	case string:
		return raw[0], nil
	case int:
		n, err := strconv.Atoi(raw[0])
		if err != nil {
			return nil, fmt.Errorf("%s expects an integer, got %q", f.Key, raw[0])
		}
		return n, nil
	case bool:
		b, err := strconv.ParseBool(raw[0])
		if err != nil {
			return nil, fmt.Errorf("%s expects a boolean, got %q", f.Key, raw[0])
		}
		return b, nil
	case []string:
		return raw, nil
	default:
		return nil, fmt.Errorf("%s has an unsupported type %s", f.Key, f.typeName())
	}
}

// Path is the location of the config file.
func Path() string {
	return filepath.Join(where.Config(), constant.Lectern+".toml")
}

// Write persists the current settings, creating the file when needed.
func Write() error {
	err := viper.WriteConfig()
	if errors.As(err, new(viper.ConfigFileNotFoundError)) {
		return viper.SafeWriteConfig()
	}
	return err
}

// Remove deletes the config file.
func Remove() error {
	return filesystem.API().Remove(Path())
}

// Fields returns the fields for keys sorted by key, or every field when keys is empty.
func Fields(keys ...string) ([]Field, error) {
	if len(keys) == 0 {
		keys = lo.Keys(Default)
	}

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		field, err := Lookup(k)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}

	slices.SortFunc(fields, func(a, b Field) int { return strings.Compare(a.Key, b.Key) })
	return fields, nil
}

// ResetFields restores the given fields to their defaults in memory.
func ResetFields(fields ...Field) {
	for _, field := range fields {
		viper.Set(field.Key, field.Value)
	}
}
