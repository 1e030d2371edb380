// Command sekretar-i18n manages translation catalogs: extraction,
// compilation, validation, coverage reporting, machine pretranslation,
// and a health/metrics endpoint.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	i18n "github.com/pilipandr770/sekretar-sub006"
	"github.com/pilipandr770/sekretar-sub006/cache"
	"github.com/pilipandr770/sekretar-sub006/extract"
	"github.com/pilipandr770/sekretar-sub006/metrics"
	"github.com/pilipandr770/sekretar-sub006/pretranslate"
)

func main() {
	_ = godotenv.Load()
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

const usage = `usage: sekretar-i18n <command> [flags]

Commands:
  extract       scan source trees and merge new messages into catalogs
  compile       compile PO catalogs to binary MO artifacts
  validate      report translation defects per locale
  coverage      report translation coverage per locale
  pretranslate  machine-draft untranslated entries for a locale
  serve         expose /metrics and /healthz endpoints
  version       print version information
`

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("command required")
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "extract":
		return runExtract(rest, stdout, stderr)
	case "compile":
		return runCompile(rest, stdout, stderr)
	case "validate":
		return runValidate(rest, stdout, stderr)
	case "coverage":
		return runCoverage(rest, stdout, stderr)
	case "pretranslate":
		return runPretranslate(rest, stdout, stderr)
	case "serve":
		return runServe(rest, stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "%s %s\n", i18n.Name, i18n.FullVersion())
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// commonFlags registers the flags every subcommand shares.
func commonFlags(fs *flag.FlagSet) (root, locales *string, jsonOut, quiet *bool) {
	defRoot := os.Getenv("TRANSLATIONS_DIR")
	if defRoot == "" {
		defRoot = "./translations"
	}
	root = fs.String("root", defRoot, "Catalog root directory")
	locales = fs.String("locales", strings.Join(i18n.DefaultLocales, ","), "Comma-separated locales")
	jsonOut = fs.Bool("json", false, "Output as JSON")
	quiet = fs.Bool("quiet", false, "Suppress log output")
	return root, locales, jsonOut, quiet
}

func newService(root, locales string, quiet bool, opts ...i18n.Option) (*i18n.Service, error) {
	log := zap.NewNop()
	if !quiet {
		var err error
		if log, err = zap.NewProduction(); err != nil {
			return nil, err
		}
	}
	opts = append([]i18n.Option{
		i18n.WithLocales(strings.Split(locales, ",")...),
		i18n.WithLogger(log),
	}, opts...)
	return i18n.New(root, opts...)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runExtract(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(stderr)
	root, locales, jsonOut, quiet := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("at least one source path is required")
	}

	units, err := collectUnits(fs.Args())
	if err != nil {
		return err
	}
	if len(units) == 0 {
		return fmt.Errorf("no .go or .html files under %v", fs.Args())
	}

	svc, err := newService(*root, *locales, *quiet)
	if err != nil {
		return err
	}
	defer svc.Close()

	report, err := svc.ExtractMessages(context.Background(), units)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(stdout, report)
	}
	fmt.Fprintf(stdout, "extracted %d messages into %d locale(s)\n",
		report.ExtractedCount, len(report.UpdatedLocales))
	for _, locale := range report.UpdatedLocales {
		m := report.Merges[locale]
		fmt.Fprintf(stdout, "  %s: %d added, %d obsoleted\n", locale, m.Added, m.Obsoleted)
	}
	for locale, msg := range report.Errors {
		fmt.Fprintf(stdout, "  %s: FAILED: %s\n", locale, msg)
	}
	return nil
}

// collectUnits walks the given paths for translatable sources.
func collectUnits(paths []string) ([]extract.SourceUnit, error) {
	var units []extract.SourceUnit
	for _, path := range paths {
		err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			var format extract.Format
			switch strings.ToLower(filepath.Ext(p)) {
			case ".go":
				if strings.HasSuffix(p, "_test.go") {
					return nil
				}
				format = extract.FormatGo
			case ".html", ".htm":
				format = extract.FormatHTML
			default:
				return nil
			}
			content, err := os.ReadFile(p) // #nosec G304 - CLI tool reads user-specified files
			if err != nil {
				return err
			}
			units = append(units, extract.SourceUnit{Name: p, Format: format, Content: content})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", path, err)
		}
	}
	return units, nil
}

func runCompile(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	fs.SetOutput(stderr)
	root, locales, _, quiet := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, err := newService(*root, *locales, *quiet)
	if err != nil {
		return err
	}
	defer svc.Close()

	if fs.NArg() > 0 {
		locale := fs.Arg(0)
		if err := svc.Compile(locale); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "compiled %s\n", locale)
		return nil
	}

	failures := svc.CompileAll(context.Background())
	for _, locale := range svc.Locales() {
		if err, ok := failures[locale]; ok {
			fmt.Fprintf(stdout, "  %s: FAILED: %v\n", locale, err)
		} else {
			fmt.Fprintf(stdout, "  %s: ok\n", locale)
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d locale(s) failed to compile", len(failures))
	}
	return nil
}

func runValidate(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	root, locales, jsonOut, quiet := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, err := newService(*root, *locales, *quiet)
	if err != nil {
		return err
	}
	defer svc.Close()

	issues, failures := svc.ValidateAll(context.Background())
	if *jsonOut {
		return printJSON(stdout, issues)
	}

	total := 0
	keys := make([]string, 0, len(issues))
	for locale := range issues {
		keys = append(keys, locale)
	}
	sort.Strings(keys)
	for _, locale := range keys {
		for _, issue := range issues[locale] {
			total++
			fmt.Fprintf(stdout, "%s: [%s] %s: %s\n", locale, issue.Severity, issue.Kind, issue.Message)
		}
	}
	for locale, err := range failures {
		fmt.Fprintf(stdout, "%s: FAILED: %v\n", locale, err)
	}
	fmt.Fprintf(stdout, "%d issue(s) found\n", total)
	if len(failures) > 0 {
		return fmt.Errorf("%d locale(s) could not be validated", len(failures))
	}
	return nil
}

func runCoverage(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("coverage", flag.ContinueOnError)
	fs.SetOutput(stderr)
	root, locales, jsonOut, quiet := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, err := newService(*root, *locales, *quiet)
	if err != nil {
		return err
	}
	defer svc.Close()

	snapshots := svc.CoverageAll(context.Background())
	if *jsonOut {
		return printJSON(stdout, snapshots)
	}
	for _, locale := range svc.Locales() {
		snap := snapshots[locale]
		fmt.Fprintf(stdout, "  %-6s %6.1f%%  %d/%d  %s\n",
			locale, snap.Percentage, snap.Translated, snap.Total, snap.Status)
	}
	return nil
}

func runPretranslate(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("pretranslate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	root, locales, jsonOut, quiet := commonFlags(fs)
	apiKey := fs.String("api-key", "", "OpenAI API key (default: OPENAI_API_KEY env)")
	model := fs.String("model", "", "OpenAI model")
	rpm := fs.Int("rpm", 60, "Max backend requests per minute")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("exactly one locale argument is required")
	}

	key := *apiKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		return fmt.Errorf("OpenAI API key required (--api-key or OPENAI_API_KEY)")
	}

	provider := pretranslate.NewOpenAIProvider(pretranslate.OpenAIConfig{
		APIKey: key,
		Model:  *model,
	})
	svc, err := newService(*root, *locales, *quiet,
		i18n.WithProvider(provider,
			pretranslate.WithRateLimit(pretranslate.RateLimitConfig{RequestsPerMinute: *rpm}),
		),
	)
	if err != nil {
		return err
	}
	defer svc.Close()

	report, err := svc.Pretranslate(context.Background(), fs.Arg(0))
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(stdout, report)
	}
	fmt.Fprintf(stdout, "drafted %d translation(s) for %s in %d batch(es)\n",
		report.Filled, report.Locale, report.Batches)
	return nil
}

func runServe(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	root, locales, _, quiet := commonFlags(fs)
	addr := fs.String("addr", ":9090", "Listen address")
	redisURL := fs.String("redis", os.Getenv("REDIS_URL"), "Redis URL for the distributed cache tier")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := zap.NewNop()
	if !*quiet {
		var err error
		if log, err = zap.NewProduction(); err != nil {
			return err
		}
	}

	reg := metrics.NewRegistry()
	opts := []i18n.Option{
		i18n.WithLocales(strings.Split(*locales, ",")...),
		i18n.WithLogger(log),
		i18n.WithMetrics(reg),
	}
	if *redisURL != "" {
		tier, err := cache.NewRedisTier(cache.RedisConfig{Name: "redis", URL: *redisURL}, log)
		if err != nil {
			return fmt.Errorf("connecting redis: %w", err)
		}
		opts = append(opts, i18n.WithCacheOptions(cache.WithDistributed(tier)))
	}

	svc, err := i18n.New(*root, opts...)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.Start(); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		report := svc.Health(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if report.OverallStatus != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(report)
	})

	server := &http.Server{Addr: *addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()
	fmt.Fprintf(stdout, "listening on %s\n", *addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		fmt.Fprintln(stdout, "shutting down")
		return server.Shutdown(context.Background())
	}
}
