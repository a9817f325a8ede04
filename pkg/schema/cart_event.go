package schema

import "github.com/hamba/avro/v2"

const CartSnapshotSchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront",
	"name": "cart_snapshot",
	"fields": [
		{"name": "event_id", "type": "string"},
		{"name": "session_id", "type": "string"},
		{"name": "revision", "type": "long"},
		{"name": "occurred_at", "type": "long"},
		{"name": "total", "type": "double"},
		{"name": "final_total", "type": "double"},
		{"name": "items", "type": {
			"type": "array",
			"items": {
				"type": "record",
				"name": "cart_item",
				"fields": [
					{"name": "id", "type": "string"},
					{"name": "product_id", "type": "string"},
					{"name": "qty", "type": "long"},
					{"name": "total", "type": "double"},
					{"name": "final_total", "type": "double"}
				]
			}
		}}
	]
}`

type (
	CartSnapshotV1 struct {
		EventID    string       `avro:"event_id"`
		SessionID  string       `avro:"session_id"`
		Revision   int64        `avro:"revision"`
		OccurredAt int64        `avro:"occurred_at"`
		Total      float64      `avro:"total"`
		FinalTotal float64      `avro:"final_total"`
		Items      []CartItemV1 `avro:"items"`
	}

	CartItemV1 struct {
		ID         string  `avro:"id"`
		ProductID  string  `avro:"product_id"`
		Qty        int64   `avro:"qty"`
		Total      float64 `avro:"total"`
		FinalTotal float64 `avro:"final_total"`
	}
)

// CartSnapshotV1Avro panics on an invalid schema text.
func CartSnapshotV1Avro() avro.Schema {
	return avro.MustParse(CartSnapshotSchemaTextV1)
}
