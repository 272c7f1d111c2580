package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"phishguard/api"
	"phishguard/cache"
	"phishguard/classifier"
	"phishguard/config"
	"phishguard/features"
	"phishguard/logger"
	"phishguard/metrics"
)

func main() {
	checkURL := flag.String("check", "", "classify a single URL, print its features and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, log, *checkURL); err != nil {
		log.Fatal().Err(err).Msg("phishguard stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger, checkURL string) error {
	schema, err := classifier.LoadSchema(cfg.SchemaPath)
	if err != nil {
		return err
	}
	model, err := classifier.LoadForest(cfg.ModelPath)
	if err != nil {
		return fmt.Errorf("%w (MODEL_PATH must point at the exported forest, see .env.example)", err)
	}
	if err := model.CheckSchema(schema); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	lookups, closeLookups, err := newLookups(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeLookups()

	ex := features.NewExtractor(lookups,
		features.WithTimeout(cfg.LookupTimeout),
		features.WithMaxOutbound(cfg.MaxOutboundLookups),
		features.WithLogger(log),
		features.WithObserver(m),
	)
	svc := api.NewService(ex, schema, model, m, log)

	if checkURL != "" {
		return checkOnce(ctx, svc, checkURL)
	}

	log.Info().
		Dur("lookup_timeout", cfg.LookupTimeout).
		Int("max_outbound", cfg.MaxOutboundLookups).
		Bool("whois_cache", cfg.RedisAddr != "").
		Msg("endpoints: POST /check_url, POST /features, GET /healthz, GET /metrics")

	router := api.NewRouter(api.NewHandler(svc, log), m, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), log)
	return api.Serve(ctx, cfg.Addr(), router, log)
}

// newLookups builds the network clients. The WHOIS client is wrapped in the
// Redis cache when REDIS_ADDR is set.
func newLookups(ctx context.Context, cfg *config.Config, log zerolog.Logger) (features.Lookups, func(), error) {
	var whois features.WhoisLookup = features.NewWhoisClient(cfg.LookupTimeout, log)
	closeFn := func() {}

	if cfg.RedisAddr != "" {
		store := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			_ = store.Close()
			return features.Lookups{}, nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		whois = cache.NewWhois(whois, store, cfg.WhoisCacheTTL, cfg.LookupTimeout, log)
		closeFn = func() { _ = store.Close() }
	}

	return features.Lookups{
		Whois: whois,
		DNS:   features.NewDNSClient(cfg.DNSServer, cfg.LookupTimeout, log),
		ASN:   features.NewASNClient(cfg.ASNAPIURL, cfg.LookupTimeout),
		Probe: features.NewHTTPProber(cfg.LookupTimeout, cfg.HTTPUserAgent),
	}, closeFn, nil
}

type checkOutput struct {
	URL      string                  `json:"url"`
	Result   classifier.Label        `json:"result"`
	Features []classifier.NamedValue `json:"features"`
	Failed   []string                `json:"failed_lookups,omitempty"`
	Elapsed  string                  `json:"elapsed"`
}

func checkOnce(ctx context.Context, svc *api.Service, raw string) error {
	v, err := svc.Check(ctx, raw)
	if err != nil {
		return err
	}

	out := checkOutput{
		URL:      raw,
		Result:   v.Label,
		Features: v.Vector.Named(),
		Elapsed:  v.Result.Elapsed.Round(time.Millisecond).String(),
	}
	for _, f := range v.Result.Failed() {
		out.Failed = append(out.Failed, f.String()+": "+v.Result.Outcomes[f].String())
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
