// Package cli implements the mobile-bridge command tree
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/e0as/mobile-bridge/internal/api"
	"github.com/e0as/mobile-bridge/internal/browser"
	"github.com/e0as/mobile-bridge/internal/config"
	"github.com/e0as/mobile-bridge/internal/cookies"
	"github.com/e0as/mobile-bridge/internal/idp"
	"github.com/e0as/mobile-bridge/internal/log"
	"github.com/e0as/mobile-bridge/internal/redirect"
	"github.com/e0as/mobile-bridge/internal/session"
)

var (
	configPath string
	verbose    bool
)

// app is the wired object graph behind every command
type app struct {
	cfg     *config.Config
	store   *cookies.JarStore
	manager *session.Manager
	client  *api.Client
	hosted  *idp.HostedUI
	bridge  *browser.Bridge
}

// newApp loads configuration and wires the session manager, API client and
// browser bridge together. The manager is the client's cookie provider and
// the client's 401 hook clears the manager, so construction is two-phase.
func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	store, err := cookies.NewJarStore()
	if err != nil {
		return nil, fmt.Errorf("creating cookie store: %w", err)
	}

	extractor := cookies.NewExtractor(store, cfg.CookieOrigins(), cfg.CookieNames())
	manager := session.NewManager(extractor, store)

	client := api.New(cfg.Backend.BaseURL, manager, cfg.RequestTimeout(),
		api.WithUnauthorizedHook(manager.ClearLocal),
	)
	manager.SetBackend(client)

	classifier := redirect.NewClassifier(cfg.BackendHost(), cfg.Provider.HostedUIOrigin, cfg.SuccessPaths())

	return &app{
		cfg:     &cfg,
		store:   store,
		manager: manager,
		client:  client,
		hosted:  idp.NewHostedUI(cfg.Backend.BaseURL, cfg.Provider),
		bridge:  browser.NewBridge(classifier, manager),
	}, nil
}

func newRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:     "mobile-bridge",
		Short:   "Session bridge for the sports medicine platform",
		Long:    "mobile-bridge drives the hosted-UI authentication flow, extracts the\nbackend session cookie and exposes the platform API over that session.",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				_ = log.SetLogLevel("debug")
			}
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "bridge.json", "path to the bridge config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newLoginCmd(),
		newRegisterCmd(),
		newStatusCmd(),
		newLogoutCmd(),
		newProfileCmd(),
		newFormsCmd(),
		newWellnessCmd(),
		newAthletesCmd(),
	)
	return root
}

// Execute runs the command tree
func Execute(version string) error {
	return newRootCmd(version).Execute()
}
