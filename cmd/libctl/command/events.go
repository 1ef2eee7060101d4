package command

import (
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xiebiao/library/internal/infrastructure/messaging"
	"github.com/xiebiao/library/pkg/mq"
)

var eventsQueue string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "订阅借阅事件并输出到日志，Ctrl+C退出",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.MQ.URL == "" {
			return errors.New("mq.url is not configured")
		}

		consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, eventsQueue, messaging.LoanRoutingKeys)
		if err != nil {
			return err
		}
		defer consumer.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		handler := messaging.NewLoanEventLogger(slog.Default(), nil)
		slog.Info("listening for loan events", "exchange", cfg.MQ.Exchange)
		return consumer.Consume(ctx, handler.Handle)
	},
}

func init() {
	eventsCmd.Flags().StringVar(&eventsQueue, "queue", "", "持久队列名，为空时使用临时队列")
}
