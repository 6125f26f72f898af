package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/semadraw/semadraw/internal/cli/output"
)

var (
	statsOutput string
	statsAddr   string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show live daemon statistics",
	Long: `Query a running daemon's /debug/stats endpoint and display connected
client and live surface counts.

Requires the daemon to have been started with metrics.enabled: true.

Examples:
  semadraw stats
  semadraw stats --addr localhost:9090 --output json`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsAddr, "addr", "localhost:9090", "Metrics server address")
	statsCmd.Flags().StringVarP(&statsOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// statsResponse mirrors internal/metrics.Stats.
type statsResponse struct {
	ConnectedClients int       `json:"connected_clients" yaml:"connected_clients"`
	LiveSurfaces     int       `json:"live_surfaces" yaml:"live_surfaces"`
	SampledAt        time.Time `json:"sampled_at" yaml:"sampled_at"`
}

func runStats(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statsOutput)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://%s/debug/stats", statsAddr)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("query %s: %w (is the daemon running with metrics enabled?)", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon returned %s", resp.Status)
	}

	var stats statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return fmt.Errorf("decode stats response: %w", err)
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, stats)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, stats)
	default:
		return output.SimpleTable(os.Stdout, [][2]string{
			{"Connected clients", fmt.Sprintf("%d", stats.ConnectedClients)},
			{"Live surfaces", fmt.Sprintf("%d", stats.LiveSurfaces)},
			{"Sampled at", stats.SampledAt.Format(time.RFC3339)},
		})
	}
}
