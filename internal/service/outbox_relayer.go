package service

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"acta_diurna/internal/model"
	"acta_diurna/internal/pkg"
	"acta_diurna/internal/repository/mysql"
)

type Sender func(ctx context.Context, ob *model.DigestOutbox) error

// OutboxRelayer outbox表相关服务
type OutboxRelayer struct {
	repo      *mysql.OutboxRepository
	batchSize int
	interval  time.Duration
	sender    Sender
}

func NewOutboxRelayer(db *gorm.DB, sender Sender) *OutboxRelayer {
	return &OutboxRelayer{
		repo:      &mysql.OutboxRepository{DB: db},
		batchSize: 200,
		interval:  time.Second,
		sender:    sender,
	}
}

// Run outbox启动器
func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.drainOnce(ctx)
		}
	}
}

// 投递器，从数据库读取事件异步交给 sender 传递消息
func (r *OutboxRelayer) drainOnce(ctx context.Context) {
	rows, err := r.repo.List(ctx, r.batchSize)
	if err != nil {
		log.Printf("outbox query err: %v", err)
		return
	}
	for i := range rows {
		ob := rows[i]
		if err = r.sender(ctx, &ob); err != nil {
			_ = r.repo.RetryUpdate(ctx, ob.ID)
			continue
		}
		_ = r.repo.SuccessUpdate(ctx, ob.ID)
	}
}

// LogSender 默认 sender（占位）：没配 kafka 时先打印
func LogSender(ctx context.Context, ob *model.DigestOutbox) error {
	log.Printf("OUTBOX SEND type=%s owner=%d subject=%d payload=%s", ob.EventType, ob.OwnerID, ob.SubjectID, ob.Payload)
	return nil
}

// KafkaSender 同一个 owner 的事件落同一分区，保证消费侧有序
func KafkaSender(producer *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.DigestOutbox) error {
		return producer.Send(ctx, pkg.MakeKeyFromID(ob.OwnerID), []byte(ob.Payload))
	}
}
