package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/aldelar/ptu-ri-alert/ptu"
	"github.com/aldelar/ptu-ri-alert/ptu/azure"
	"github.com/aldelar/ptu-ri-alert/ptu/client"
)

//EventFunction is the name the event grid triggered function is registered under
const EventFunction = "ptu-ri-alert-function"

//Setup loads the configuration from the environment and builds the services our handlers use
func Setup() (cfg *ptu.Conf, svc *ptu.Services, err error) {
	cfg, err = ptu.ConfFromEnv()
	if err != nil {
		return nil, nil, err
	}

	logs, err := cfg.Logger()
	if err != nil {
		return nil, nil, err
	}

	cld, err := cfg.Cloud()
	if err != nil {
		return nil, nil, err
	}

	opts := azure.ClientOptions(cld)
	svc = &ptu.Services{
		Logs:         logs,
		Creds:        azure.NewDefaultCredentials(cld, cfg.AzureTenantID),
		Deployments:  azure.NewDeployments(opts),
		Reservations: azure.NewReservations(opts),
	}

	//report loaded configuration for debugging purposes
	logs.Info("loaded configuration", zap.String("conf", fmt.Sprintf("%+v", cfg)))
	return cfg, svc, nil
}

//Serve runs the custom handler until ctx is done, then drains in-flight invocations
func Serve(ctx context.Context, cfg *ptu.Conf, svc *ptu.Services, l net.Listener) (err error) {
	srv := &http.Server{
		Handler:           ptu.Mux(cfg, svc),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		svc.Logs.Info("custom handler listening", zap.String("addr", l.Addr().String()))
		errc <- srv.Serve(l)
	}()

	select {
	case err = <-errc:
		return errors.Wrap(err, "failed to serve")
	case <-ctx.Done():
	}

	svc.Logs.Info("shutting down custom handler")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err = srv.Shutdown(sctx); err != nil {
		return errors.Wrap(err, "graceful shutdown failed")
	}

	if err = <-errc; err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "failed to serve")
	}

	return nil
}

//Replay reads event fixtures and runs them through the event handler, or posts them to
//a running handler when endpoint is set. Statuses are written to w as JSON lines.
func Replay(ctx context.Context, cfg *ptu.Conf, svc *ptu.Services, w io.Writer, endpoint string, files []string) (err error) {
	var c *client.Client
	if endpoint != "" {
		if c, err = client.NewClient(endpoint); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(w)
	for _, name := range files {
		b, err := os.ReadFile(name)
		if err != nil {
			return errors.Wrapf(err, "failed to read '%s'", name)
		}

		evs, err := ptu.DecodeEvents(name, b)
		if err != nil {
			return errors.Wrapf(err, "failed to decode '%s'", name)
		}

		for _, ev := range evs {
			var st *ptu.Status
			if c != nil {
				if st, err = c.InvokeEvent(ctx, EventFunction, cfg.EventBinding, ev); err != nil {
					return err
				}
			} else {
				st = ptu.HandleEvent(ctx, cfg, svc, ev)
			}

			if err = enc.Encode(st); err != nil {
				return errors.Wrap(err, "failed to write status")
			}
		}
	}

	return nil
}

//Check runs an on-demand capacity check and writes the report to w
func Check(ctx context.Context, cfg *ptu.Conf, svc *ptu.Services, w io.Writer, tgt ptu.Target) (err error) {
	if tgt.DeploymentName == "" {
		tgt.DeploymentName = ptu.UnknownDeployment
	}

	if err = tgt.Validate(); err != nil {
		return err
	}

	rep, err := ptu.CheckCapacity(ctx, cfg, svc, tgt)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err = enc.Encode(rep); err != nil {
		return errors.Wrap(err, "failed to write report")
	}

	return nil
}
