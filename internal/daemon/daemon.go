package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Component is a long-running part of the process
type Component interface {
	Run(ctx context.Context) error
}

// Closer is implemented by components holding connections
type Closer interface {
	Close() error
}

type namedComponent struct {
	name string
	Component
}

// Daemon represents the daemon process: the Discord bot, the reminder
// scheduler and the liveness endpoint, started and stopped together.
type Daemon struct {
	components []namedComponent
	logger     *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	signals    chan os.Signal
}

// NewDaemon creates a new daemon instance
func NewDaemon(logger *zap.Logger) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		signals: make(chan os.Signal, 1),
	}
}

// Add registers a component. Components are started in order and closed in
// reverse order.
func (d *Daemon) Add(name string, c Component) {
	d.components = append(d.components, namedComponent{name: name, Component: c})
}

// Start runs every component until a signal arrives, Stop is called or a
// component fails. Close errors are combined with the run error.
func (d *Daemon) Start() error {
	// Setup signal handling
	signal.Notify(d.signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(d.signals)

	d.logger.Info("Daemon started", zap.Int("components", len(d.components)))

	g, ctx := errgroup.WithContext(d.ctx)

	g.Go(func() error {
		select {
		case sig := <-d.signals:
			d.logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			d.Stop()
		case <-ctx.Done():
		}
		return nil
	})

	for _, c := range d.components {
		c := c
		g.Go(func() error {
			d.logger.Debug("Starting component", zap.String("component", c.name))
			if err := c.Run(ctx); err != nil {
				d.logger.Error("Component failed",
					zap.String("component", c.name),
					zap.Error(err))
				return fmt.Errorf("%s: %w", c.name, err)
			}
			d.logger.Debug("Component stopped", zap.String("component", c.name))
			return nil
		})
	}

	err := g.Wait()
	err = multierr.Append(err, d.closeAll())

	d.logger.Info("Daemon stopped", zap.Error(err))
	return err
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	d.cancel()
}

func (d *Daemon) closeAll() error {
	var errs error
	for i := len(d.components) - 1; i >= 0; i-- {
		closer, ok := d.components[i].Component.(Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close %s: %w", d.components[i].name, err))
		}
	}
	return errs
}
