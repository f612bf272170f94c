package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Guliveer/netspeed/internal/autostart"
)

func newAutostartCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Query or change launch at login",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show whether launch at login is enabled",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withManager(cmd, *flags, func(mgr autostart.Manager) error {
					printState(cmd, mgr)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "enable",
			Short: "Launch at login",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withManager(cmd, *flags, func(mgr autostart.Manager) error {
					return toggle(cmd, mgr, "enable", mgr.Enable)
				})
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Stop launching at login",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withManager(cmd, *flags, func(mgr autostart.Manager) error {
					return toggle(cmd, mgr, "disable", mgr.Disable)
				})
			},
		},
	)
	return cmd
}

func withManager(cmd *cobra.Command, flags globalFlags, fn func(autostart.Manager) error) error {
	cfg, logger, closeLog, err := setup(cmd, flags)
	if err != nil {
		return err
	}
	defer closeLog()
	return fn(newManager(cfg, logger))
}

// toggle applies op and always reports the state read back from the OS, so
// what the user sees matches reality even when op failed.
func toggle(cmd *cobra.Command, mgr autostart.Manager, verb string, op func() autostart.Result) error {
	res := op()
	if !res.OK() {
		if res.Unsupported() {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: launch at login is not supported here: %v\n", res.Err)
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not %s launch at login: %v\n", verb, res.Err)
		}
	}
	printState(cmd, mgr)
	return res.Err
}

func printState(cmd *cobra.Command, mgr autostart.Manager) {
	state := "disabled"
	if mgr.IsEnabled() {
		state = "enabled"
	}
	if loc := mgr.Location(); loc != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "autostart %s (%s: %s)\n", state, mgr.Backend(), loc)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "autostart %s (%s)\n", state, mgr.Backend())
}
