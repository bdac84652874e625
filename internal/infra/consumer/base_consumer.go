package consumer

import (
	"context"
	"errors"
	"sync"

	"github.com/RoyceAzure/lab/rj_kafka/kafka/consumer"
	"github.com/RoyceAzure/lab/rj_kafka/kafka/message"
	"github.com/rs/zerolog/log"
)

type ConsumerError error

var (
	ErrConsumerClosed    = errors.New("consumer closed")
	ErrUnknownDataFormat = errors.New("unknown notification data format")
)

type IBaseConsumer interface {
	Start(ctx context.Context) error
	Stop()
}

// MessageHandler 把 kafka message 轉成領域資料後處理
type MessageHandler interface {
	Handle(ctx context.Context, msg message.Message) error
}

// baseConsumer 消費迴圈的共用骨架
// Start 只會成功一次，Stop 之後不能再 Start
type baseConsumer struct {
	consumer  consumer.Consumer
	handler   MessageHandler
	closeOnce sync.Once
	closeChan chan struct{}
}

func newBaseConsumer(consumer consumer.Consumer, handler MessageHandler) *baseConsumer {
	return &baseConsumer{consumer: consumer, handler: handler, closeChan: make(chan struct{})}
}

func (c *baseConsumer) checkIsClosed() bool {
	select {
	case <-c.closeChan:
		return true
	default:
		return false
	}
}

func (c *baseConsumer) Start(ctx context.Context) error {
	if c.checkIsClosed() {
		return ErrConsumerClosed
	}

	msgChan, errChan, err := c.consumer.Consume()
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-c.closeChan:
				return
			case msg := <-msgChan:
				if err := c.handler.Handle(ctx, msg); err != nil {
					log.Error().Err(err).Msg("handle message failed")
					continue
				}
			case err := <-errChan:
				log.Error().Err(err).Msg("consume error")
			}
		}
	}()

	return nil
}

func (c *baseConsumer) Stop() {
	if c.checkIsClosed() {
		return
	}

	c.closeOnce.Do(func() {
		close(c.closeChan)
	})

	c.consumer.Close()
}
