package client

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/cloo-solutions/lunchpick/internal/domain"
	"github.com/spf13/cobra"
)

// setting maps a config key name onto a GlobalConfig field.
type setting struct {
	get   func(*GlobalConfig) string
	set   func(*GlobalConfig, string) error
	unset func(*GlobalConfig)
}

var storedSettings = map[string]setting{
	"radius": {
		get: func(c *GlobalConfig) string {
			if c.RadiusMeters == 0 {
				return ""
			}
			return strconv.FormatFloat(c.RadiusMeters, 'f', -1, 64)
		},
		set: func(c *GlobalConfig, v string) error {
			meters, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("radius must be a number: %w", err)
			}
			if err := domain.ValidateRadius(meters); err != nil {
				return err
			}
			c.RadiusMeters = meters
			return nil
		},
		unset: func(c *GlobalConfig) { c.RadiusMeters = 0 },
	},
	"base-url": {
		get:   func(c *GlobalConfig) string { return c.KakaoBaseURL },
		set:   func(c *GlobalConfig, v string) error { c.KakaoBaseURL = v; return nil },
		unset: func(c *GlobalConfig) { c.KakaoBaseURL = "" },
	},
	"locate-url": {
		get:   func(c *GlobalConfig) string { return c.LocateURL },
		set:   func(c *GlobalConfig, v string) error { c.LocateURL = v; return nil },
		unset: func(c *GlobalConfig) { c.LocateURL = "" },
	},
}

func settingNames() []string {
	names := make([]string, 0, len(storedSettings))
	for name := range storedSettings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupSetting(name string) (setting, error) {
	s, ok := storedSettings[name]
	if !ok {
		return setting{}, fmt.Errorf("unknown setting %q (one of %v)", name, settingNames())
	}
	return s, nil
}

// ConfigCmd creates the config command for stored defaults.
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change stored defaults",
		Long: `Show or change the defaults stored in the user config file.

Settings: radius, base-url, locate-url. Flags and environment variables
take precedence over stored values.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print stored settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <setting> <value>",
		Short: "Store a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.OutOrStdout(), args[0], args[1])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "unset <setting>",
		Short: "Remove a stored setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigUnset(cmd.OutOrStdout(), args[0])
		},
	})

	return cmd
}

func runConfigShow(out io.Writer) error {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return err
	}
	if cfg == nil {
		cfg = &GlobalConfig{}
	}

	for _, name := range settingNames() {
		value := storedSettings[name].get(cfg)
		if value == "" {
			value = "(default)"
		}
		fmt.Fprintf(out, "%-11s %s\n", name, value)
	}
	return nil
}

func runConfigSet(out io.Writer, name, value string) error {
	s, err := lookupSetting(name)
	if err != nil {
		return err
	}

	var setErr error
	err = UpdateGlobalConfig(func(cfg *GlobalConfig) {
		setErr = s.set(cfg, value)
	})
	if setErr != nil {
		return setErr
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s set to %s\n", name, value)
	return nil
}

func runConfigUnset(out io.Writer, name string) error {
	s, err := lookupSetting(name)
	if err != nil {
		return err
	}
	if err := UpdateGlobalConfig(s.unset); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s unset\n", name)
	return nil
}
