package eventdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/EventStore/EventStore-Client-Go/v4/esdb"
)

type EventFormatError error

var ErrEventFormat EventFormatError = errors.New("event format error")

// EventDao 訂單稽核流水，append-only
// 每張訂單一條 stream，建單/狀態轉移都補一筆，事後追查誰在什麼時候動了什麼
type EventDao struct {
	client *esdb.Client
}

func NewEventDao(db *esdb.Client) *EventDao {
	return &EventDao{client: db}
}

// GenerateOrderStreamID 訂單事件流 ID
func GenerateOrderStreamID(orderID string) string {
	return fmt.Sprintf("order-%s", orderID)
}

// 寫入事件（Create）
func (dao *EventDao) AppendEvent(ctx context.Context, streamID, eventType string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	eventData := esdb.EventData{
		ContentType: esdb.ContentTypeJson,
		EventType:   eventType,
		Data:        payload,
	}
	_, err = dao.client.AppendToStream(ctx, streamID, esdb.AppendToStreamOptions{}, eventData)
	return err
}

// 讀取事件（Read）
func (dao *EventDao) ReadEvents(ctx context.Context, streamID string) ([]*esdb.ResolvedEvent, error) {
	opts := esdb.ReadStreamOptions{}
	stream, err := dao.client.ReadStream(ctx, streamID, opts, 100)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var events []*esdb.ResolvedEvent
	for {
		event, err := stream.Recv()
		if err != nil {
			break
		}
		events = append(events, event)
	}
	return events, nil
}

// 刪除事件流（Delete Stream）
func (dao *EventDao) DeleteStream(ctx context.Context, streamID string) error {
	_, err := dao.client.DeleteStream(ctx, streamID, esdb.DeleteStreamOptions{})
	return err
}
