package orders

import "strconv"

const (
	TopicOrderPlaced    = "storefront.order.placed"
	TopicOrderCancelled = "storefront.order.cancelled"
	TopicOrderProcessed = "storefront.order.processed"
	TopicStockAdjusted  = "storefront.stock.adjusted"
)

var topicByEvent = map[string]string{
	EventOrderPlaced:    TopicOrderPlaced,
	EventOrderCancelled: TopicOrderCancelled,
	EventOrderProcessed: TopicOrderProcessed,
	EventStockAdjusted:  TopicStockAdjusted,
}

func TopicFor(eventType string) (string, bool) {
	t, ok := topicByEvent[eventType]
	return t, ok
}

func AllTopics() []string {
	return []string{TopicOrderPlaced, TopicOrderCancelled, TopicOrderProcessed, TopicStockAdjusted}
}

// Partition key = order id, so every event of one order stays in order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }

func ProductKey(productID int) string { return "product:" + strconv.Itoa(productID) }
