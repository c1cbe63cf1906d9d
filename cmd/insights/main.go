package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	insights "github.com/frappe/insights.go"
	"github.com/frappe/insights.go/pkg/config"
	"github.com/frappe/insights.go/pkg/connection"
	"github.com/frappe/insights.go/pkg/models"
	"github.com/frappe/insights.go/pkg/tui"
)

var version = "dev"

var (
	configPath string
	profile    string
	timeout    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "insights",
	Short: "Terminal client for Frappe Insights",
	Long: `insights browses and edits Insights notebooks, queries, and charts
from the terminal, talking to a Frappe Insights backend over its RPC API.

Run without arguments to start the interactive interface.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive interface",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls {notebooks|queries|datasources|dashboards}",
	Short: "List documents of one kind",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := connect()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		defer client.Close(context.Background())

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		defer w.Flush()

		switch args[0] {
		case "notebooks":
			notebooks, err := client.GetNotebooks(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "NAME\tTITLE")
			for _, nb := range notebooks {
				fmt.Fprintf(w, "%s\t%s\n", nb.Name, nb.Title)
			}
		case "queries":
			var queries []models.Query
			err := client.GetList(ctx, &queries, models.DoctypeQuery, insights.ListOptions{
				Fields:  []string{"name", "title", "data_source", "status"},
				OrderBy: "modified desc",
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "NAME\tTITLE\tDATA SOURCE\tSTATUS")
			for _, q := range queries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", q.Name, q.Title, q.DataSource, q.Status)
			}
		case "datasources":
			sources, err := client.GetDataSources(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "NAME\tTITLE\tTYPE\tSTATUS")
			for _, ds := range sources {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", ds.Name, ds.Title, ds.DatabaseType, ds.Status)
			}
		case "dashboards":
			var dashboards []models.Dashboard
			err := client.GetList(ctx, &dashboards, models.DoctypeDashboard, insights.ListOptions{
				Fields:  []string{"name", "title"},
				OrderBy: "title asc",
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "NAME\tTITLE")
			for _, d := range dashboards {
				fmt.Fprintf(w, "%s\t%s\n", d.Name, d.Title)
			}
		default:
			return fmt.Errorf("unknown kind %q", args[0])
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "insights", version)
	},
}

func connect() (*insights.Client, config.Profile, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, config.Profile{}, fmt.Errorf("loading config: %w", err)
	}
	p, err := cfg.Profile(profile)
	if err != nil {
		return nil, config.Profile{}, err
	}

	client, err := dial(p)
	if err != nil {
		return nil, config.Profile{}, fmt.Errorf("connecting to %s: %w", p.Endpoint, err)
	}
	if p.Username != "" && p.Token == "" {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := client.Login(ctx, p.Username, p.Password); err != nil {
			client.Close(context.Background())
			return nil, config.Profile{}, fmt.Errorf("logging in as %s: %w", p.Username, err)
		}
	}
	return client, p, nil
}

// dial picks the constructor for the profile: a preset token needs the HTTP
// transport configured before connecting, everything else goes through the
// scheme-switching default.
func dial(p config.Profile) (*insights.Client, error) {
	if p.Token == "" {
		return insights.New(p.Endpoint)
	}
	u, err := url.ParseRequestURI(p.Endpoint)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("token auth needs an http(s) endpoint, got %s", u.Scheme)
	}
	con := connection.NewHTTPConnection(connection.NewConfig(u)).SetToken(p.Token)
	return insights.FromConnection(context.Background(), con)
}

func runTUI() error {
	client, p, err := connect()
	if err != nil {
		return err
	}
	defer client.Close(context.Background())

	app, err := tui.NewApp(client, p.DataSource)
	if err != nil {
		return err
	}
	program := tea.NewProgram(app, tea.WithAltScreen())
	app.AttachProgram(program)
	_, err = program.Run()
	return err
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/"+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "config profile to use")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "remote call timeout")

	rootCmd.AddCommand(tuiCmd, lsCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
