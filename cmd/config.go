package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lectern-player/lectern/color"
	"github.com/lectern-player/lectern/config"
	"github.com/lectern-player/lectern/icon"
	"github.com/lectern-player/lectern/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func completionConfigKeys(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return lo.Keys(config.Default), cobra.ShellCompDirectiveNoFileComp
}

// done prints a success line.
func done(format string, a ...any) {
	fmt.Printf("%s %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), fmt.Sprintf(format, a...))
}

func keyArg(args []string) string {
	if len(args) == 0 {
		handleErr(errors.New("key is required"))
	}
	return args[0]
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInfoCmd, configGetCmd, configSetCmd, configWriteCmd, configDeleteCmd, configResetCmd)

	configInfoCmd.Flags().StringSliceP("key", "k", nil, "Only show these keys")
	configInfoCmd.Flags().BoolP("json", "j", false, "Output as json")
	_ = configInfoCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)

	configWriteCmd.Flags().BoolP("force", "f", false, "Overwrite the existing config file")

	configResetCmd.Flags().BoolP("all", "a", false, "Reset every key")
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Player settings",
}

var configInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe config fields",
	Run: func(cmd *cobra.Command, args []string) {
		fields, err := config.Fields(lo.Must(cmd.Flags().GetStringSlice("key"))...)
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(fields))
			return
		}

		for i, field := range fields {
			if i > 0 {
				fmt.Print("\n\n")
			}
			fmt.Print(field.Pretty())
		}
		fmt.Println()
	},
}

var configGetCmd = &cobra.Command{
	Use:               "get key",
	Short:             "Print the current value of a key",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		field, err := config.Lookup(keyArg(args))
		handleErr(err)
		fmt.Println(viper.Get(field.Key))
	},
}

var configSetCmd = &cobra.Command{
	Use:               "set key value...",
	Short:             "Change the value of a key",
	Example:           "  lectern config set retry.max_attempts 5\n  lectern config set player.quality 720p",
	Args:              cobra.MinimumNArgs(2),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		field, err := config.Lookup(keyArg(args))
		handleErr(err)

		value, err := field.Parse(args[1:])
		handleErr(err)

		viper.Set(field.Key, value)
		handleErr(config.Write())
		done("set %s to %s", style.Fg(color.Purple)(field.Key), style.Fg(color.Yellow)(fmt.Sprint(value)))
	},
}

var configWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write the current config to disk",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("force")) {
			if err := config.Remove(); err != nil && !isNotExist(err) {
				handleErr(err)
			}
		}

		handleErr(viper.SafeWriteConfig())
		done("wrote config to %s", config.Path())
	},
}

var configDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Remove the config file",
	Aliases: []string{"remove", "rm"},
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(config.Remove())
		done("deleted %s", config.Path())
	},
}

var configResetCmd = &cobra.Command{
	Use:               "reset [key...]",
	Short:             "Restore keys to their defaults",
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		all := lo.Must(cmd.Flags().GetBool("all"))
		if all == (len(args) > 0) {
			handleErr(errors.New("pass either keys or --all"))
		}

		fields, err := config.Fields(args...)
		handleErr(err)

		config.ResetFields(fields...)
		handleErr(config.Write())

		if all {
			done("reset all config values")
			return
		}
		for _, field := range fields {
			done("reset %s to %s", style.Fg(color.Purple)(field.Key), style.Fg(color.Yellow)(fmt.Sprint(field.Value)))
		}
	},
}
