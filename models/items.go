package models

import "encoding/json"

// BidItemPayload is the denormalized line-item shape exchanged with callers.
// Bid items are stored normalized in bid_items and serialized to this blob
// at the API boundary for compatibility with the legacy portal.
type BidItemPayload struct {
	ItemID     int64 `json:"item_id"`
	UnitPrice  int64 `json:"unit_price"`
	Quantity   int   `json:"quantity"`
	TotalPrice int64 `json:"total_price"`
}

// ItemPayloads converts stored bid items to the transport shape.
func ItemPayloads(items []BidItem) []BidItemPayload {
	out := make([]BidItemPayload, 0, len(items))
	for _, it := range items {
		out = append(out, BidItemPayload{
			ItemID:     it.ItemID,
			UnitPrice:  it.UnitPrice,
			Quantity:   it.Quantity,
			TotalPrice: it.TotalPrice,
		})
	}
	return out
}

// MarshalBidItems serializes bid items to the transport blob.
func MarshalBidItems(items []BidItem) ([]byte, error) {
	return json.Marshal(ItemPayloads(items))
}

// ParseBidItems parses the transport blob back into line-item tuples.
func ParseBidItems(blob []byte) ([]BidItemPayload, error) {
	var payloads []BidItemPayload
	if err := json.Unmarshal(blob, &payloads); err != nil {
		return nil, err
	}
	return payloads, nil
}
