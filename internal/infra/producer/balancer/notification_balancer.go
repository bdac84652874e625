package balancer

import (
	"hash/fnv"

	"github.com/segmentio/kafka-go"
)

type NotificationBalancer struct {
	numPartitions int
}

func NewNotificationBalancer(numPartitions int) IBaseBalancer {
	return &NotificationBalancer{numPartitions: numPartitions}
}

// 通知訊息用收件人 email 做 key，同一個收件人落同一分區，寄信順序才不會亂掉
func (c *NotificationBalancer) Balance(msg kafka.Message, partitions ...int) (partition int) {
	h := fnv.New32a()
	h.Write(msg.Key)
	idx := int(h.Sum32())

	if len(partitions) != 0 {
		return partitions[idx%len(partitions)]
	}

	return idx % c.numPartitions
}
