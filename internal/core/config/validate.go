package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/colonyops/checkup/internal/core/styles"
	"github.com/hay-kot/criterio"
)

// Validate performs structural validation of the configuration.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("source", string(c.Source), validateSource),
		criterio.Run("tui.theme", c.TUI.Theme, validateTheme),
		c.validateREST(),
		c.validateDatabase(),
	)
}

func validateTheme(name string) error {
	if _, ok := styles.GetPalette(name); !ok {
		return fmt.Errorf("unknown theme, valid themes: %s", strings.Join(styles.ThemeNames(), ", "))
	}
	return nil
}

func validateSource(source string) error {
	switch SourceKind(source) {
	case SourceLocal, SourceREST:
		return nil
	}
	return fmt.Errorf("must be %q or %q", SourceLocal, SourceREST)
}

func (c *Config) validateREST() error {
	if c.Source != SourceREST {
		return nil
	}

	var errs criterio.FieldErrorsBuilder
	if c.REST.Endpoint == "" {
		errs = errs.Append("rest.endpoint", fmt.Errorf("required when source is %q", SourceREST))
	} else if u, err := url.Parse(c.REST.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		errs = errs.Append("rest.endpoint", fmt.Errorf("must be an absolute URL"))
	}
	if c.REST.PollInterval < 0 {
		errs = errs.Append("rest.poll_interval", fmt.Errorf("must be positive"))
	}
	return errs.ToError()
}

func (c *Config) validateDatabase() error {
	var errs criterio.FieldErrorsBuilder
	if c.Database.MaxOpenConns < 1 {
		errs = errs.Append("database.max_open_conns", fmt.Errorf("must be at least 1"))
	}
	if c.Database.MaxIdleConns < 0 {
		errs = errs.Append("database.max_idle_conns", fmt.Errorf("must be >= 0"))
	}
	if c.Database.BusyTimeout < 0 {
		errs = errs.Append("database.busy_timeout", fmt.Errorf("must be >= 0"))
	}
	return errs.ToError()
}
