package app

import (
	"log/slog"

	"github.com/allisson/idgate/internal/lockout"
	"github.com/allisson/idgate/internal/maintenance"
	"github.com/allisson/idgate/internal/servicetoken"
	"github.com/allisson/idgate/internal/upstream"
)

// Gatekeeper components: maintenance gate, service token cache, lockout
// tracker, and the upstream identity API client.

// MaintenanceGate returns the startup-built maintenance gate.
func (c *Container) MaintenanceGate() *maintenance.Gate {
	c.gateInit.Do(func() {
		c.gate = maintenance.NewGate(
			c.config.MaintenanceEnabled,
			c.config.MaintenanceSkipForUsers,
		)
	})
	return c.gate
}

// TokenCache returns the process-wide service token cache.
func (c *Container) TokenCache() *servicetoken.Cache {
	c.tokenCacheInit.Do(func() {
		var fetcher servicetoken.Fetcher = servicetoken.NewClient(
			c.config.ServiceTokenURL,
			c.config.ServiceTokenClientID,
			c.config.ServiceTokenClientSecret,
			c.config.ServiceTokenFetchTimeout,
			c.config.ServiceTokenRefreshMargin,
			c.Logger(),
		)

		if c.config.MetricsEnabled {
			businessMetrics, err := c.BusinessMetrics()
			if err != nil {
				// Token fetching must keep working without metrics.
				c.Logger().Warn("token fetch metrics disabled", slog.Any("error", err))
			} else {
				fetcher = servicetoken.NewFetcherWithMetrics(fetcher, businessMetrics)
			}
		}

		c.tokenCache = servicetoken.NewCache(fetcher, c.Logger())
	})
	return c.tokenCache
}

// ResetHandler returns the service token cache reset handler.
func (c *Container) ResetHandler() *servicetoken.ResetHandler {
	c.resetHandlerInit.Do(func() {
		c.resetHandler = servicetoken.NewResetHandler(c.TokenCache(), c.Logger())
	})
	return c.resetHandler
}

// LockoutTracker returns the authentication failure tracker.
func (c *Container) LockoutTracker() *lockout.Tracker {
	c.trackerInit.Do(func() {
		c.tracker = lockout.NewTracker(
			c.config.LockoutThreshold,
			c.config.LockoutWindow,
			c.Logger(),
		)
	})
	return c.tracker
}

// OutcomePublisher returns the publisher for authentication outcome events.
func (c *Container) OutcomePublisher() *lockout.Publisher {
	c.publisherInit.Do(func() {
		c.publisher = lockout.NewPublisher(c.EventBus())
	})
	return c.publisher
}

// subscribeTracker attaches the lockout tracker to the event bus. Safe to
// call more than once; the subscription happens once.
func (c *Container) subscribeTracker() error {
	var err error
	c.trackerSubscribeInit.Do(func() {
		err = c.LockoutTracker().Subscribe(c.EventBus())
	})
	return err
}

// UpstreamClient returns the upstream identity API client.
func (c *Container) UpstreamClient() *upstream.Client {
	c.upstreamClientInit.Do(func() {
		c.upstreamClient = upstream.NewClient(
			c.config.UpstreamAPIURL,
			c.TokenCache(),
			c.config.ServiceTokenFetchTimeout,
			c.Logger(),
		)
	})
	return c.upstreamClient
}
