// Package bot wires the gateway, the command router and the scheduler together
// and manages their lifecycle.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/edgard/complimentbot/internal/bot/commands"
	"github.com/edgard/complimentbot/internal/config"
	"github.com/edgard/complimentbot/internal/gateway"
)

// Bot is the running application.
type Bot struct {
	logger    *slog.Logger
	cfg       *config.Config
	gateway   gateway.Gateway
	router    *commands.Router
	scheduler *Scheduler
	events    chan gateway.InboundMessage
	now       func() time.Time
}

// NewBot creates a bot. scheduler may be nil.
func NewBot(
	logger *slog.Logger,
	cfg *config.Config,
	gw gateway.Gateway,
	router *commands.Router,
	scheduler *Scheduler,
) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	limit := max(cfg.MaxConcurrentHandlers, 1)
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		cfg:       cfg,
		gateway:   gw,
		router:    router,
		scheduler: scheduler,
		events:    make(chan gateway.InboundMessage, 2*limit),
		now:       time.Now,
	}
}

// Run connects the gateway, dispatches inbound messages and runs the scheduler
// until ctx is cancelled or one of them fails.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator")

	b.gateway.OnReady(func(ctx context.Context, self gateway.Identity) {
		b.logger.InfoContext(ctx, "Gateway ready", "bot_id", self.ID, "bot_name", self.Name)
	})
	b.gateway.OnMessage(func(ctx context.Context, msg gateway.InboundMessage) {
		select {
		case b.events <- msg:
		case <-ctx.Done():
		}
	})

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Connecting gateway")
		if err := b.gateway.Run(gCtx); err != nil {
			return fmt.Errorf("gateway stopped: %w", err)
		}
		if gCtx.Err() == nil {
			return errors.New("gateway stopped unexpectedly")
		}
		b.logger.Info("Gateway disconnected")
		return nil
	})

	g.Go(func() error {
		b.dispatchLoop(gCtx)
		return nil
	})

	if b.scheduler != nil {
		g.Go(func() error {
			if err := b.scheduler.Start(gCtx); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}
			<-gCtx.Done()
			if err := b.scheduler.Stop(); err != nil {
				b.logger.Error("Error stopping scheduler", "error", err)
			}
			return nil
		})
	}

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped")
	return nil
}

// dispatchLoop handles each inbound message on its own goroutine, bounded by
// MaxConcurrentHandlers, and waits for in-flight handlers on shutdown.
func (b *Bot) dispatchLoop(ctx context.Context) {
	var handlers errgroup.Group
	handlers.SetLimit(max(b.cfg.MaxConcurrentHandlers, 1))

	for {
		select {
		case <-ctx.Done():
			_ = handlers.Wait()
			return
		case msg := <-b.events:
			handlers.Go(func() error {
				b.HandleMessage(ctx, msg)
				return nil
			})
		}
	}
}
