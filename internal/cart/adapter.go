package cart

import (
	"context"
	"errors"

	"github.com/jaisdevansh/monu-bhiya/internal/logger"
)

// Adapter 购物车唯一的序列化边界，组合编解码与存储
type Adapter struct {
	codec   Codec
	storage Storage
}

// NewAdapter 创建适配器，codec 为空时使用 JSON
func NewAdapter(codec Codec, storage Storage) *Adapter {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &Adapter{codec: codec, storage: storage}
}

// Load 读取快照；不存在、读取失败或内容损坏时返回空购物车，不向调用方报错
func (a *Adapter) Load(ctx context.Context, key string) []Item {
	raw, err := a.storage.Read(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCartNotFound) {
			logger.Warnw("cart_snapshot_read_failed", "cart_id", key, "error", err)
		}
		return []Item{}
	}
	items, err := a.codec.Decode(raw)
	if err != nil {
		logger.Warnw("cart_snapshot_corrupted", "cart_id", key, "error", err)
		return []Item{}
	}
	return sanitize(items)
}

// Save 写入完整快照
func (a *Adapter) Save(ctx context.Context, key string, items []Item) error {
	raw, err := a.codec.Encode(items)
	if err != nil {
		return err
	}
	return a.storage.Write(ctx, key, raw)
}

// Drop 删除快照
func (a *Adapter) Drop(ctx context.Context, key string) error {
	return a.storage.Delete(ctx, key)
}
