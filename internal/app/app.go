package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"notify_relay/internal/config"
	"notify_relay/internal/queue"
	"notify_relay/internal/sse"
)

type App struct {
	cfg      *config.Config
	hub      *sse.Hub
	consumer queue.Consumer
	server   *http.Server
	logger   *zap.Logger
	wg       sync.WaitGroup
	ready    chan struct{}
	addr     net.Addr
}

func NewApp(cfg *config.Config, hub *sse.Hub, consumer queue.Consumer, router *gin.Engine, logger *zap.Logger) *App {
	return &App{
		cfg:      cfg,
		hub:      hub,
		consumer: consumer,
		server: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
		ready:  make(chan struct{}),
	}
}

// Run serves HTTP until Shutdown. It returns nil after a graceful stop.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.server.Addr, err)
	}
	a.addr = ln.Addr()
	close(a.ready)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.hub.Run(ctx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.consumer.Start(ctx); err != nil && ctx.Err() == nil {
			a.logger.Error("consumer stopped", zap.Error(err))
		}
	}()

	a.logger.Info("http server listening", zap.String("addr", a.addr.String()))
	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		a.logger.Warn("systemd notify failed", zap.Error(err))
	} else if sent {
		a.logger.Debug("systemd notified ready")
	}

	if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Ready is closed once the listener is bound.
func (a *App) Ready() <-chan struct{} {
	return a.ready
}

// Addr is valid after Ready is closed.
func (a *App) Addr() net.Addr {
	return a.addr
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("graceful shutdown started")
	if _, err := daemon.SdNotify(false, daemon.SdNotifyStopping); err != nil {
		a.logger.Warn("systemd notify failed", zap.Error(err))
	}
	shutdownErr := a.server.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		a.logger.Info("graceful shutdown completed")
		return shutdownErr
	case <-ctx.Done():
		if shutdownErr != nil {
			return shutdownErr
		}
		return ctx.Err()
	}
}

func (a *App) Config() *config.Config {
	return a.cfg
}

func (a *App) Logger() *zap.Logger {
	return a.logger
}
