package milvus

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
)

func New(ctx context.Context, addr string) (client.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cli, err := client.NewClient(connectCtx, client.Config{Address: addr})
	if err != nil {
		return nil, fmt.Errorf("connect milvus failed: %w", err)
	}
	return cli, nil
}
