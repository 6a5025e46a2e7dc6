package commands

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/straja-ai/rakshak/internal/logging"
	"github.com/straja-ai/rakshak/internal/scanevents"
)

func NewReceiveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "receive",
		Short: "Run a local receiver for webhook scan events",
		Long: `Listen for scan events posted by a webhook sink and log each one.
Point an events.sinks webhook at http://localhost:8099/events to try the
event pipeline without any other infrastructure.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logging.Config{Level: "info"})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			srv := &http.Server{
				Addr:              addr,
				Handler:           newReceiver(logger),
				ReadHeaderTimeout: 5 * time.Second,
			}
			logger.Info("scan event receiver listening", logging.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8099", "listen address")
	return cmd
}

func newReceiver(logger logging.Logger) http.Handler {
	r := chi.NewRouter()
	handle := func(w http.ResponseWriter, req *http.Request) {
		body, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}

		var ev scanevents.Event
		if err := json.Unmarshal(body, &ev); err != nil {
			logger.Warn("rejected scan event", logging.Int("len", len(body)), logging.Error(err))
			http.Error(w, "invalid scan event", http.StatusBadRequest)
			return
		}

		logger.Info("received scan event",
			logging.String("id", ev.ID),
			logging.String("event_id_header", req.Header.Get("X-Rakshak-Event-Id")),
			logging.String("type", string(ev.Kind)),
			logging.String("result", string(ev.Result)),
			logging.String("risk_level", ev.RiskLevel.String()),
			logging.String("category", ev.Category),
			logging.Float64("score", ev.Score),
			logging.Bool("threat", ev.Threat),
		)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{"status":"ok"}`+"\n")
	}
	r.Post("/events", handle)
	r.Post("/", handle)
	return r
}
