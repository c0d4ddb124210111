package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"datafeed/internal/config"
	"datafeed/internal/export"
	"datafeed/internal/logging"
	"datafeed/internal/platform"
	"datafeed/internal/provider"
)

// params collects repeated -p key=value flags. A repeated key is joined with
// commas.
type params map[string]any

func (p params) String() string { return fmt.Sprint(map[string]any(p)) }

func (p params) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	if prev, ok := p[k].(string); ok {
		v = prev + "," + v
	}
	p[k] = v
	return nil
}

func main() {
	var (
		providerName string
		model        string
		out          string
		configPath   string
		timeout      time.Duration
		list         bool
	)
	ps := params{}
	flag.StringVar(&providerName, "provider", "", "provider name, e.g. fmp")
	flag.StringVar(&model, "model", "", "dataset name, e.g. EquityQuote")
	flag.Var(ps, "p", "query parameter key=value (repeatable)")
	flag.StringVar(&out, "out", "", "output file (.json or .xlsx); stdout when empty")
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.yaml (optional)")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "overall timeout")
	flag.BoolVar(&list, "list", false, "list providers and their datasets")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fatal("load config", err)
	}
	logging.Setup(cfg.LogLevel, os.Stderr)

	ex, err := platform.NewExecutor(cfg)
	if err != nil {
		fatal("build providers", err)
	}
	if list {
		printProviders(os.Stdout, ex.Registry())
		return
	}
	if providerName == "" || model == "" {
		fmt.Fprintln(os.Stderr, "usage: fetch -provider NAME -model DATASET [-p key=value ...] [-out file]")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(logging.WithRequestID(context.Background()), timeout)
	defer cancel()

	recs, err := ex.Execute(ctx, providerName, model, ps)
	if err != nil {
		fatal("fetch", err)
	}
	res := export.NewResult(providerName, model, recs)
	if err := write(ctx, out, res); err != nil {
		fatal("write output", err)
	}
}

func write(ctx context.Context, out string, res export.Result) error {
	if out == "" {
		return export.WriteJSON(os.Stdout, res)
	}
	switch strings.ToLower(filepath.Ext(out)) {
	case ".xlsx":
		b, err := export.XLSX(ctx, res)
		if err != nil {
			return err
		}
		return os.WriteFile(out, b, 0o644)
	case ".json":
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := export.WriteJSON(f, res); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}
	return errors.New("unsupported output extension " + filepath.Ext(out))
}

func printProviders(w io.Writer, reg *provider.Registry) {
	for _, name := range reg.Names() {
		p, err := reg.Provider(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", p.Name, p.Description)
		for _, m := range p.Models() {
			fmt.Fprintf(w, "\t%s\n", m)
		}
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, slog.String("err", err.Error()))
	os.Exit(1)
}
