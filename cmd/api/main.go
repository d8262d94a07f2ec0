package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"acta_diurna/internal/model"
	"acta_diurna/internal/pkg"
	"acta_diurna/internal/repository/mysql"
	"acta_diurna/internal/repository/redis"
	"acta_diurna/internal/router"
	"acta_diurna/internal/service"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	dsn := envOr("MYSQL_DSN", "user:password@tcp(127.0.0.1:3306)/acta_diurna?charset=utf8mb4&parseTime=True")
	db, err := mysql.InitDB(dsn)
	if err != nil {
		panic(err)
	}

	// 连接redis
	redisDB, _ := strconv.Atoi(envOr("REDIS_DB", "0"))
	if err := redis.Init(envOr("REDIS_ADDR", "127.0.0.1:6379"), os.Getenv("REDIS_PASSWORD"), redisDB); err != nil {
		panic(err)
	}
	defer redis.Close()

	// 自动建表（开发阶段 OK）
	if err := db.AutoMigrate(
		&model.User{},
		&model.Invitation{},
		&model.ContributorEdge{},
		&model.Story{},
		&model.StoryImage{},
		&model.Digest{},
		&model.DigestOutbox{},
	); err != nil {
		panic(err)
	}

	loc, err := time.LoadLocation(envOr("TIMEZONE", pkg.DefaultTimeZone))
	if err != nil {
		panic(err)
	}

	smtpPort, _ := strconv.Atoi(envOr("SMTP_PORT", "587"))
	emailCfg := pkg.SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     smtpPort,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     envOr("SMTP_FROM", "Acta Diurna <no-reply@example.com>"),
	}

	emailSvc := service.NewEmailService(emailCfg)
	cache := redis.NewDigestCache(redis.Client)
	digestSvc := service.NewDigestService(db, cache, loc)

	svcs := router.Services{
		Users:        service.NewUserService(db, emailSvc),
		Email:        emailSvc,
		Invitations:  service.NewInvitationService(db, emailCfg),
		Contributors: service.NewContributorService(db),
		Stories:      service.NewStoryService(db, loc),
		Digests:      digestSvc,
		Delivery:     service.NewDeliveryService(db, digestSvc, emailCfg, loc),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// outbox 投递：配了 kafka 走 kafka，否则先落日志
	sender := service.LogSender
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		producer, err := pkg.NewKafkaProducer(pkg.KafkaConfig{
			Brokers: []string{brokers},
			Topic:   envOr("KAFKA_TOPIC", "digest-events"),
		})
		if err != nil {
			panic(err)
		}
		defer producer.Close()
		sender = service.KafkaSender(producer)
	}
	go service.NewOutboxRelayer(db, sender).Run(ctx)

	// 每周发刊定时任务
	go svcs.Delivery.Run(ctx)

	// Gin
	r := router.InitRouter(svcs)
	if err := r.Run(envOr("LISTEN_ADDR", ":8080")); err != nil {
		log.Fatal(err)
	}
}
