package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/safetrade/site/internal/errors"
	"github.com/safetrade/site/internal/i18n"
)

// checkReport is the result of check, printed as text or JSON.
type checkReport struct {
	OK      bool            `json:"ok"`
	Config  string          `json:"config,omitempty"`
	Address string          `json:"address,omitempty"`
	Backend string          `json:"backend,omitempty"`
	Locales []localeReport  `json:"locales,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
}

type localeReport struct {
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	Missing []string `json:"missing"`
}

func checkCmd(configPath *string) *cobra.Command {
	var (
		strict  bool
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and translations",
		Long: `Validate the configuration and the embedded translation catalogs.

Missing translations are reported as warnings; they fall back to the
base locale at runtime. Use --strict to treat them as errors.

With --json the report is printed as a single JSON object, including
the error when the check fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := runCheck(*configPath, strict)
			if jsonOut {
				if err != nil {
					report.Error = json.RawMessage(errors.FromError(err, "S002").FormatJSON())
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(report); encErr != nil {
					return encErr
				}
				return err
			}
			printCheck(cmd.OutOrStdout(), report)
			return err
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on missing translations")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the report as JSON")

	return cmd
}

// runCheck fills in as much of the report as it gets through before the
// first failure.
func runCheck(configPath string, strict bool) (*checkReport, error) {
	report := &checkReport{}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return report, err
	}
	if err := cfg.Validate(); err != nil {
		return report, err
	}
	report.Config = cfg.Path()
	report.Address = cfg.Addr()
	report.Backend = cfg.Contact.Backend

	catalog, err := i18n.LoadEmbedded()
	if err != nil {
		return report, err
	}

	missing := 0
	for _, locale := range catalog.Locales() {
		keys := catalog.Missing(locale)
		if keys == nil {
			keys = []string{}
		}
		missing += len(keys)
		report.Locales = append(report.Locales, localeReport{Code: locale, Name: catalog.Name(locale), Missing: keys})
	}

	if !catalog.Has(cfg.Site.DefaultLocale) {
		return report, errors.New("S011").WithDetailf("site.defaultLocale is %q; available: %v",
			cfg.Site.DefaultLocale, catalog.Locales())
	}
	if strict && missing > 0 {
		return report, errors.New("S010").WithDetail(fmt.Sprintf("%d missing translations", missing))
	}
	report.OK = true
	return report, nil
}

func printCheck(out io.Writer, report *checkReport) {
	if report.Address == "" {
		return
	}
	if report.Config != "" {
		success(out, "Configuration valid (%s)", report.Config)
	} else {
		success(out, "Configuration valid (defaults)")
	}
	info(out, "Listen address: %s", report.Address)
	info(out, "Contact backend: %s", report.Backend)

	for _, l := range report.Locales {
		if len(l.Missing) == 0 {
			success(out, "%s (%s): complete", l.Code, l.Name)
			continue
		}
		warn(out, "%s (%s): %d missing translations", l.Code, l.Name, len(l.Missing))
		for _, k := range l.Missing {
			info(out, "  %s", k)
		}
	}
}
