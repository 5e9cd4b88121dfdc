package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"openhours/internal/app"
	"openhours/internal/config"
	"openhours/internal/lookup"
	"openhours/internal/resolver"
	"openhours/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "oh",
	Short: "openhours CLI",
	Long: `openhours resolves whether a business is open, closed for a public
holiday, or under ordinary business-hours rules at a given instant, and
records every resolution in an append-only audit log.

- Rules: CEL-guarded decision tables (split holiday/business-hours pair, or
  one combined table), loaded once from the configured paths.
- Precedence: a holiday verdict always wins over business hours.
- Audit log: one row per resolution, CSV or SQLite, never rewritten.
- Lookups: the reference schedule and holiday calendar are display-only;
  verdicts come from rule evaluation alone.`,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("OPENHOURS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("config", "c", "openhours.yml", "config file path")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(lookupCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(serveCmd())
}

func withApp(fn func(a *app.App) error) error {
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return err
	}
	a, err := app.New(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func resolveCmd() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve an instant against the loaded rules",
		Long:  "Resolves the instant given with --at, or a random one from the configured year, and appends one audit record.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				instant := a.Random.Next()
				if at != "" {
					parsed, err := parseInstant(at)
					if err != nil {
						return fmt.Errorf("invalid --at value %q: %w", at, err)
					}
					instant = parsed
				}
				res, err := a.Resolver.Resolve(cmd.Context(), instant)
				if err != nil {
					return err
				}
				return printResolution(res)
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "instant to resolve (2026-01-27T09:00 or 2026-01-27T09:00:00); random when omitted")
	return cmd
}

var instantLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04"}

func parseInstant(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range instantLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func printResolution(res resolver.Resolution) error {
	if viper.GetBool("json") {
		return printJSON(res)
	}
	fmt.Println("Generated")
	fmt.Printf("  Date: %s\n", res.Facts.Date)
	fmt.Printf("  Time: %s\n", res.Facts.Time)
	fmt.Printf("  Day: %s (#%d)\n", res.Facts.DayName, res.Facts.DayNum)
	fmt.Printf("  Minutes since midnight: %d\n", res.Facts.Minutes)
	fmt.Println("Decision")
	fmt.Printf("  Path: %s\n", res.Verdict.Path)
	if res.Verdict.HolidayName != "" {
		fmt.Printf("  Holiday: %s\n", res.Verdict.HolidayName)
	}
	if res.Verdict.HolidayDay != "" {
		fmt.Printf("  Holiday Day: %s\n", res.Verdict.HolidayDay)
	}
	if res.Verdict.Location != "" {
		fmt.Printf("  Location: %s\n", res.Verdict.Location)
	}
	if res.Verdict.NoResult() {
		fmt.Println("  No result returned from the rule evaluation.")
	} else {
		fmt.Printf("  %s\n", res.Verdict.Message)
	}
	return nil
}

func lookupCmd() *cobra.Command {
	lk := &cobra.Command{Use: "lookup", Short: "Show reference lookup tables"}
	lk.AddCommand(&cobra.Command{
		Use:   "hours",
		Short: "Business hours schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				return printLookup(a.Config.Lookups.BusinessHours, "Business hours lookup table not found.")
			})
		},
	})
	lk.AddCommand(&cobra.Command{
		Use:   "holidays",
		Short: "Public holiday calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				return printLookup(a.Config.Lookups.PublicHolidays, "Public holidays lookup table not found.")
			})
		},
	})
	return lk
}

func printLookup(path, emptyMsg string) error {
	t, err := lookup.Load(path)
	if err != nil {
		return err
	}
	if viper.GetBool("json") {
		return printJSON(t)
	}
	if t.Empty() {
		fmt.Println(emptyMsg)
		return nil
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	header := make(table.Row, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	tw.AppendHeader(header)
	for _, row := range t.Rows {
		r := make(table.Row, len(row))
		for i, c := range row {
			r[i] = c
		}
		tw.AppendRow(r)
	}
	tw.Render()
	return nil
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{Use: "config", Short: "Manage configuration"}
	cfg.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := viper.GetString("config")
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	})
	cfg.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the loaded config",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(viper.GetString("config"))
			if err != nil {
				return err
			}
			return printJSON(c)
		},
	})
	return cfg
}

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				handler, err := server.New(server.Config{App: a})
				if err != nil {
					return err
				}
				slog.Info("listening", "addr", addr)
				return http.ListenAndServe(addr, handler)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
