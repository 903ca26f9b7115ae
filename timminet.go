// Package timminet assembles the server-administration console: an
// authenticated web API through which operators inspect and mutate host
// state (firewall rules, processes, local accounts).
package timminet

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	log "github.com/sirupsen/logrus"

	"github.com/brandyscotchland/timminet/api/consoleapi"
	"github.com/brandyscotchland/timminet/internal/version"
)

// FiberServerConfig is the fiber.Config that is used to init the http fiber.App
var FiberServerConfig = fiber.Config{
	ReadTimeout:    3 * time.Second,
	WriteTimeout:   60 * time.Second,
	IdleTimeout:    150 * time.Second,
	ReadBufferSize: 8192,
	ErrorHandler:   handleError,
	Network:        "tcp",
}

// Console is the web console server.
type Console struct {
	server     *fiber.App
	serverConf ServerConf
}

// NewConsole builds the fiber app with the console's middleware chain
// and mounts the API under /api.
func NewConsole(serverConf ServerConf, deps consoleapi.Deps) *Console {
	if tps := serverConf.TrustedProxies; len(tps) > 0 {
		FiberServerConfig.TrustedProxies = tps
		FiberServerConfig.EnableTrustedProxyCheck = true
	}
	FiberServerConfig.ProxyHeader = serverConf.ForwardedIPHeader
	server := fiber.New(FiberServerConfig)
	server.Use(recover.New())
	server.Use(compress.New())
	server.Use(logger.New())
	server.Use(requestid.New())
	server.Use(helmet.New())

	server.Get(
		"/health", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok", "version": version.VERSION})
		},
	)

	// General per-address limit, plus a tight bucket on login to slow
	// credential guessing from a single address.
	server.Use(
		"/api", limiter.New(
			limiter.Config{Max: 100, Expiration: 15 * time.Minute},
		),
	)
	server.Use(
		"/api/auth/login", limiter.New(
			limiter.Config{Max: 5, Expiration: 15 * time.Minute},
		),
	)

	consoleapi.Register(server.Group("/api"), deps)

	return &Console{server: server, serverConf: serverConf}
}

// Start runs the console until the listener fails.
func (c *Console) Start() {
	conf := c.serverConf
	addr := fmt.Sprintf("%s:%d", conf.IPListen, conf.Port)
	if !conf.TLS.Enabled {
		log.WithField("addr", addr).Info("TLS is disabled, starting http console")
		log.WithError(c.server.Listen(addr)).Fatal()
	}
	if conf.TLS.RedirectHTTP {
		httpServer := fiber.New(FiberServerConfig)
		httpServer.All(
			"*", func(ctx *fiber.Ctx) error {
				//goland:noinspection HttpUrlsUsage
				return ctx.Redirect(
					strings.Replace(ctx.Request().URI().String(), "http://", "https://", 1),
					fiber.StatusPermanentRedirect,
				)
			},
		)
		log.Info("TLS and http redirect enabled, starting redirect server on port 80")
		go func() {
			log.WithError(httpServer.Listen(":80")).Fatal()
		}()
	}
	log.WithField("addr", addr).Info("TLS enabled, starting https console")
	log.WithError(c.server.ListenTLS(addr, conf.TLS.Cert, conf.TLS.Key)).Fatal()
}
