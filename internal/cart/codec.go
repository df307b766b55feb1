package cart

import "encoding/json"

// Codec 购物车快照编解码
type Codec interface {
	Encode(items []Item) ([]byte, error)
	Decode(data []byte) ([]Item, error)
}

// snapshot 持久化格式
type snapshot struct {
	Version int    `json:"v"`
	Items   []Item `json:"items"`
}

const snapshotVersion = 1

// JSONCodec 以 JSON 保存购物车
type JSONCodec struct{}

// Encode 编码
func (JSONCodec) Encode(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(snapshot{Version: snapshotVersion, Items: items})
}

// Decode 解码，兼容早期直接存数组的格式
func (JSONCodec) Decode(data []byte) ([]Item, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err == nil {
		return snap.Items, nil
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}
