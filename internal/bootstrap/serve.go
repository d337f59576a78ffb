package bootstrap

import (
	"context"
	"net"

	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
	httpapi "github.com/turtacn/urban-dds/internal/interfaces/http"
)

// Serve runs the API on ln, or on the configured port when ln is nil, until
// ctx is cancelled, then shuts down gracefully.
func (a *App) Serve(ctx context.Context, version string, ln net.Listener) error {
	srv := httpapi.NewServer(a.Config.Server, a.Router(version), a.Logger)

	errCh := make(chan error, 1)
	go func() {
		if ln != nil {
			errCh <- srv.Serve(ln)
			return
		}
		errCh <- srv.Start()
	}()

	a.Logger.Info("Urban-DDS API starting",
		logging.String("addr", srv.Addr()),
		logging.String("version", version),
		logging.Bool("real_data", a.PublicData.Enabled()),
		logging.Bool("persistence", a.PersistenceEnabled()))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	return srv.Stop(context.Background())
}

//Personal.AI order the ending
