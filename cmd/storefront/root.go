package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/rl1809/storefront/internal/adapter/api"
	"github.com/rl1809/storefront/internal/adapter/notify"
	"github.com/rl1809/storefront/internal/app"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/log"
)

type rootOptions struct {
	configPath string
	cfg        config.Config
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "storefront",
		Short:        "Storefront cart, catalog and checkout client",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Context(), opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg

			logger := log.InitLogger(log.Options{Level: cfg.Log.Level, FilePath: cfg.Log.File}).
				With().
				Str(log.KeyAppName, cfg.Application.Name).
				Logger()
			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ./env/storefront.yaml)")

	root.AddCommand(
		newServeCommand(opts),
		newCartCommand(opts),
		newProductsCommand(opts),
		newCategoriesCommand(opts),
		newOrdersCommand(opts),
		newCheckoutCommand(opts),
	)
	return root
}

func (o *rootOptions) client() *api.Client {
	return api.NewClient(o.cfg.API.BaseURL, o.cfg.API.Timeout)
}

// withApp runs fn against a hydrated cart and flushes the cart before
// returning. Notifications go to the command output.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(c context.Context, a *app.App) error) (err error) {
	c := cmd.Context()

	a, err := app.New(c, o.cfg, notify.NewWriterNotifier(cmd.OutOrStdout()))
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(c), o.cfg.Server.ShutdownTimeout)
		defer cancel()
		err = errors.Join(err, a.Close(closeCtx))
	}()

	if err := a.Cart.Wait(c); err != nil {
		return err
	}
	return fn(c, a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
