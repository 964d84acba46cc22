package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	api "cryptosignals/cmd/cryptosignals"
	"cryptosignals/conf"
	"cryptosignals/internal/dao/query"
	"cryptosignals/internal/events"
	"cryptosignals/internal/middleware"
	"cryptosignals/internal/seed"
	domain "cryptosignals/internal/signal"
	"cryptosignals/pkg/cache"
	"cryptosignals/pkg/db"
	"cryptosignals/pkg/kafka"
	"cryptosignals/pkg/logger"
	"cryptosignals/pkg/utils"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "cryptosignals",
		Short: "Crypto trading signals subscription service",
		RunE:  runServe,
	}
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "conf/config.yaml", "config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(eventsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  runServe,
	}
}

func runServe(_ *cobra.Command, _ []string) error {
	// 加载配置文件
	if err := conf.LoadConfig(cfgFile); err != nil {
		return err
	}
	appCfg := conf.AppConfig
	logger.InitLogger(&appCfg.Log, appCfg.AppName)
	defer logger.Sync()

	if !appCfg.Db.Enabled() {
		return errors.New("database is not configured, set database.host and database.username or DB_HOST/DB_USER")
	}
	// 初始化数据库
	datasource, err := db.Open(db.NewConfig(appCfg.Username, appCfg.Db.Password, appCfg.Host, appCfg.Port, appCfg.DbName))
	if err != nil {
		return err
	}
	if err = query.AutoMigrate(datasource); err != nil {
		return fmt.Errorf("migrate user table: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 初始化redis缓存，不可用时会话退回到内存
	if appCfg.Redis.Addr != "" {
		err = utils.Retry(ctx, 3, time.Second, true, func() error {
			return cache.InitRedis(appCfg.Redis)
		})
		if err != nil {
			logger.Warnf("redis %s unavailable: %v", appCfg.Redis.Addr, err)
		}
	}
	srvRouter, cleanup, err := api.InitRouter(ctx, datasource)
	if err != nil {
		return err
	}

	// 创建并启动服务
	srv := api.NewServer(&appCfg)
	srv.RegisterOnShutdown(func() {
		cancel()
		cleanup()
		if m, err := datasource.DB(); err == nil {
			_ = m.Close()
		}
		cache.CloseRedis()
	})
	srv.Run(middleware.NewMiddleware(), srvRouter)
	return nil
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Inspect the seed dataset",
	}

	var file, tier string
	check := &cobra.Command{
		Use:   "check",
		Short: "Validate the seed dataset and print what a tier can see",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := seed.Load(file)
			if err != nil {
				return err
			}
			t, err := domain.ParseTier(tier)
			if err != nil {
				return err
			}
			store := domain.NewStore(d.Signals(time.Now().UTC())...)
			list := store.Query(domain.Query{Tier: t, Status: domain.StatusAll})

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "seed ok: %d signals, %d plans, %d faq items\n", store.Len(), len(d.Plans), len(d.FAQ))
			fmt.Fprintf(out, "visible to %q: %d\n\n", t, len(list))
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCOIN\tTYPE\tSTATUS\tLEVEL\tENTRY\tPROFIT")
			for _, s := range list {
				profit := "-"
				if s.Profit != nil {
					profit = fmt.Sprintf("%.2f%%", *s.Profit)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%g\t%s\n",
					s.ID, s.Coin, s.Type, s.Status, s.SubscriptionLevel, s.EntryPrice, profit)
			}
			return w.Flush()
		},
	}
	check.Flags().StringVarP(&file, "file", "f", "", "seed file, built-in dataset when empty")
	check.Flags().StringVarP(&tier, "tier", "t", "premium", "subscriber tier: basic, pro or premium")
	cmd.AddCommand(check)
	return cmd
}

func eventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Signal lifecycle events",
	}

	var group string
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Print lifecycle events from the kafka topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := conf.LoadConfig(cfgFile); err != nil {
				return err
			}
			appCfg := conf.AppConfig
			if appCfg.Kafka.Broker == "" {
				return errors.New("kafka.broker is not configured")
			}
			logger.InitLogger(&appCfg.Log, appCfg.AppName)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			msgs, err := kafka.NewKafkaConsumer(appCfg.Kafka.Broker, appCfg.Kafka.Topic).Consume(ctx, group)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for m := range msgs {
				var e events.Event
				if err := json.Unmarshal(m.Value, &e); err != nil {
					logger.Warnf("skip malformed event at offset %d: %v", m.Offset, err)
					continue
				}
				fmt.Fprintf(out, "%s %-8s %-16s id=%s actor=%s\n",
					e.At.Format(time.RFC3339), e.Kind, e.Signal.Coin, e.Signal.ID, e.Actor)
			}
			return nil
		},
	}
	tail.Flags().StringVarP(&group, "group", "g", "cryptosignals-tail", "kafka consumer group")
	cmd.AddCommand(tail)
	return cmd
}
