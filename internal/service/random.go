package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// RandomSource 开奖随机数源
//
// 开奖引擎只通过该接口取数；生产部署可替换为可验证随机源
// 而不改动 LotteryService 的契约。
type RandomSource interface {
	NextNumber(ctx context.Context) (uint64, error)
}

// FixedSource 固定值随机源，用于开发与联调
type FixedSource struct {
	value uint64
}

// NewFixedSource 创建固定值随机源
func NewFixedSource(value uint64) *FixedSource {
	return &FixedSource{value: value}
}

func (s *FixedSource) NextNumber(ctx context.Context) (uint64, error) {
	return s.value, nil
}

// CryptoSource 基于 crypto/rand 的随机源
type CryptoSource struct{}

// NewCryptoSource 创建密码学随机源
func NewCryptoSource() *CryptoSource {
	return &CryptoSource{}
}

func (s *CryptoSource) NextNumber(ctx context.Context) (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("read random bytes: %w", err)
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}
