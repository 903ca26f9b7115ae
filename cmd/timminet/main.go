package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/brandyscotchland/timminet"
	"github.com/brandyscotchland/timminet/api/consoleapi"
	"github.com/brandyscotchland/timminet/auth"
	"github.com/brandyscotchland/timminet/cmd/timminet/config"
	"github.com/brandyscotchland/timminet/firewall"
	"github.com/brandyscotchland/timminet/hostexec"
	"github.com/brandyscotchland/timminet/hostinfo"
	"github.com/brandyscotchland/timminet/internal/logger"
	"github.com/brandyscotchland/timminet/procs"
	"github.com/brandyscotchland/timminet/session"
)

func main() {
	var configFile string
	if len(os.Args) > 1 {
		configFile = os.Args[1]
	}
	config.Load(configFile)
	c := config.Get()
	logger.Init(c.Logging.Internal)
	log.Info("Loaded Config")

	backs, err := config.LoadStorageBackends(c.Storage)
	if err != nil {
		log.Fatal(err)
	}

	authService, err := auth.NewService(backs.Accounts, auth.PasswordPolicy{HashCost: c.Auth.HashCost})
	if err != nil {
		log.Fatal(err)
	}
	authService.MaxAttempts = c.Auth.MaxAttempts
	authService.LockoutDuration = c.Auth.LockoutDuration.Duration()

	sessionConf := session.Config{
		Lifetime:     c.Sessions.Lifetime.Duration(),
		CookieSecure: c.Sessions.CookieSecure,
	}
	if c.Sessions.Store.Backend == config.SessionBackendBadger {
		store, err := session.NewBadgerStorage(c.Sessions.Store.Dir)
		if err != nil {
			log.WithError(err).Fatal("could not open session store")
		}
		defer store.Close()
		sessionConf.Storage = store
	}
	sessions := session.NewAuthority(backs.Accounts, sessionConf)

	runner := &hostexec.ExecRunner{Timeout: c.Exec.Timeout.Duration()}
	fw := firewall.NewManager(runner)
	if p := c.Exec.FirewallLogPath; p != "" {
		fw.LogPath = p
	}

	console := timminet.NewConsole(
		c.Server, consoleapi.Deps{
			Accounts: backs.Accounts,
			Auth:     authService,
			Sessions: sessions,
			Firewall: fw,
			Procs:    procs.NewManager(procs.HostLister{}, runner),
			Host:     hostinfo.NewCollector(runner),
		},
	)
	console.Start()
}
