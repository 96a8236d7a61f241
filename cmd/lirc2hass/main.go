package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crowbarz/lirc2hass/internal/bridge"
	"github.com/crowbarz/lirc2hass/internal/config"
	"github.com/crowbarz/lirc2hass/internal/debounce"
	"github.com/crowbarz/lirc2hass/internal/hass"
	"github.com/crowbarz/lirc2hass/internal/lirc"
	"github.com/crowbarz/lirc2hass/internal/logging"
)

const (
	appName = "lirc2hass"
	version = "0.1.0"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	transport := flag.String("transport", "", "Upstream transport: rest or websocket")
	authToken := flag.String("auth-token", "", "Home Assistant access token")
	authTokenFile := flag.String("auth-token-file", "", "Path to file containing the access token")
	lircSockPath := flag.String("lirc-sock-path", "", "LIRC socket location")
	maxReconnectDelay := flag.Int("max-reconnect-delay", 0, "Maximum reconnection delay (seconds)")
	minRepeatTimeMs := flag.Int("min-repeat-time-ms", 0, "Minimum time between repeated keystrokes (ms)")
	verbose := flag.Int("verbose", -1, "Log verbosity: 0 warn, 1 info, 2 debug")
	mockMode := flag.Bool("mock", false, "Generate mock key events instead of reading LIRC")
	showVersion := flag.Bool("version", false, "Show application version")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [hass_url]\n", appName)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(appName, version)
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			logging.Errorf("failed to load config: %v", err)
			os.Exit(1)
		}
	}

	// Flags override the config file; the positional argument overrides
	// hass_url from either.
	if *transport != "" {
		cfg.Transport = *transport
	}
	if *authToken != "" {
		cfg.AuthToken = *authToken
	}
	if *authTokenFile != "" {
		cfg.AuthTokenFile = *authTokenFile
	}
	if *lircSockPath != "" {
		cfg.LircSockPath = *lircSockPath
	}
	if *maxReconnectDelay > 0 {
		cfg.MaxReconnectDelay = *maxReconnectDelay
	}
	if *minRepeatTimeMs > 0 {
		cfg.MinRepeatTimeMs = *minRepeatTimeMs
	}
	if *verbose >= 0 {
		cfg.Verbose = *verbose
	}
	if flag.NArg() > 0 {
		cfg.HassURL = flag.Arg(0)
	}

	logging.SetVerbosity(cfg.Verbose)

	if err := cfg.Validate(); err != nil {
		logging.Errorf("invalid configuration: %v", err)
		os.Exit(1)
	}

	token, err := cfg.Token()
	if err != nil {
		logging.Errorf("%v", err)
		os.Exit(1)
	}

	var upstream hass.Transport
	switch cfg.Transport {
	case config.TransportWebSocket:
		if upstream, err = hass.NewWSClient(cfg.HassURL, token); err != nil {
			logging.Errorf("invalid Home Assistant URL: %v", err)
			os.Exit(1)
		}
	default:
		upstream = hass.NewRESTClient(cfg.HassURL, token)
	}

	var source lirc.Source
	if *mockMode {
		logging.Warnf("mock mode: generating synthetic key events")
		source = lirc.NewMockSource(5 * time.Second)
	} else {
		source = lirc.NewSocket(cfg.LircSockPath)
	}

	sup := bridge.New(source, upstream, debounce.New(cfg.MinRepeatTime()), cfg.MaxReconnectDelay)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	received := make(chan os.Signal, 1)
	go func() {
		sig := <-sigCh
		logging.Warnf("%s received, exiting", sig)
		received <- sig
		cancel()
	}()

	logging.Infof("%s %s forwarding %s to %s (%s)", appName, version, cfg.LircSockPath, cfg.HassURL, cfg.Transport)
	if err := sup.Run(ctx); err != nil {
		logging.Errorf("fatal: %v", err)
		os.Exit(1)
	}

	select {
	case sig := <-received:
		if sig == syscall.SIGINT {
			os.Exit(255)
		}
	default:
	}
	os.Exit(0)
}
