package api

import (
	"context"
	"time"

	"cryptosignals/conf"
	"cryptosignals/internal/dao/query"
	"cryptosignals/internal/events"
	"cryptosignals/internal/handler/admin"
	"cryptosignals/internal/handler/plan"
	signalHandler "cryptosignals/internal/handler/signal"
	"cryptosignals/internal/handler/support"
	"cryptosignals/internal/handler/user"
	"cryptosignals/internal/router"
	"cryptosignals/internal/seed"
	"cryptosignals/internal/service"
	"cryptosignals/internal/session"
	"cryptosignals/internal/signal"
	"cryptosignals/pkg/cache"
	"cryptosignals/pkg/kafka"
	"cryptosignals/pkg/logger"
	"cryptosignals/pkg/mail"
	"cryptosignals/pkg/recorder"

	"gorm.io/gorm"
)

// InitRouter 组装服务和路由。返回的 cleanup 在服务关闭时调用。
func InitRouter(ctx context.Context, datasource *gorm.DB) (Router, func(), error) {
	appCfg := conf.AppConfig

	dataset, err := seed.Load(appCfg.Seed.Path)
	if err != nil {
		return nil, nil, err
	}

	// 信号仓库，模拟首次加载
	policy := signal.NewPolicy(dataset.Assignments())
	store := signal.NewStore()
	store.LoadAsync(ctx, appCfg.Seed.Delay, dataset.Signals(time.Now().UTC()))

	// 生命周期事件
	sinks := []events.Sink{events.LogSink{}}
	if appCfg.Audit.Path != "" {
		sinks = append(sinks, events.NewAuditSink(recorder.NewJSONFileRecorder(appCfg.Audit.Path)))
	}
	var producer kafka.ProducerService
	if appCfg.Kafka.Broker != "" {
		producer = kafka.NewKafkaProducer(appCfg.Kafka.Broker, appCfg.Kafka.Topic)
		sinks = append(sinks, events.NewKafkaSink(producer))
		logger.Infof("signal events published to kafka topic %s", appCfg.Kafka.Topic)
	}
	manager := signal.NewManager(store, policy, signal.WithObserver(events.NewFanout(sinks...)))

	// 会话：配置了 redis 时使用 redis，否则保存在内存中
	var sessions session.Store
	if cache.Enabled() {
		sessions = session.NewRedisStore(cache.GetRedisClient())
	} else {
		logger.Warn("redis not configured, sessions are kept in memory")
		sessions = session.NewMemoryStore()
	}

	var sender mail.Sender
	if appCfg.Email.Host != "" {
		sender = mail.NewSMTPSender(appCfg.Email)
	}

	userService := service.NewUserService(query.NewUserDao(datasource), sessions)
	planService := service.NewPlanService(dataset, policy)
	signalService := service.NewSignalService(manager, planService)
	supportService := service.NewSupportService(dataset.FAQ, sender, appCfg.Email.Support)

	apiRouter := router.NewApiRouter(sessions,
		user.NewUserHandler(userService),
		signalHandler.NewSignalHandler(signalService),
		plan.NewPlanHandler(planService),
		support.NewSupportHandler(supportService),
		admin.NewAdminHandler(userService, planService),
	)

	cleanup := func() {
		if producer != nil {
			if err := producer.Close(); err != nil {
				logger.Errorf("close kafka producer: %v", err)
			}
		}
	}
	return apiRouter, cleanup, nil
}
