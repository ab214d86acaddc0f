package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/familytree/internal/web"
	"github.com/matzehuels/familytree/pkg/observability"
)

// serveCommand runs the web UI.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web UI",
		Long: `Serve the web UI and the chart endpoints.

Routes:
  /                       home
  /people, /search        lists
  /person/{id}            detail, edit and delete
  /tree/{id}              interactive family tree
  /tree/{id}/chart.json   chart data (?format=nodes|relations|graph)
  /relationships          relationships and forms
  /metrics, /health       operations`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.newSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if addr == "" {
				addr = s.cfg.Server.Addr
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics := observability.NewMetrics(reg)
			observability.SetHTTPHooks(metrics)
			observability.SetCacheHooks(metrics)
			observability.SetChartHooks(metrics)
			defer observability.Reset()

			srv, err := web.New(web.Options{
				API:          s.api,
				Logger:       c.Logger,
				Cache:        s.cache,
				Gatherer:     reg,
				CORSOrigins:  s.cfg.Server.CORSOrigins,
				ChartScripts: s.cfg.Server.ChartScripts,
			})
			if err != nil {
				return err
			}

			printInfo("Serving on %s", StyleLink.Render("http://"+addr))
			printDetail("Service: %s", s.api.BaseURL())
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")

	return cmd
}
