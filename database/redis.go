package database

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RDB 供 QR 通行碼儲存使用；連線失敗時為 nil，呼叫端需自行降級
var RDB *redis.Client

// InitRedis 依環境變數建立 Redis 連線
// REDIS_ADDR（host:port，預設 localhost:6379）、REDIS_PASSWORD、REDIS_DB
func InitRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	dbNum := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if n, err := strconv.Atoi(dbStr); err == nil {
			dbNum = n
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       dbNum,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		// QR 通行碼屬非關鍵功能，連不上就降級，不擋啟動
		log.Printf("Failed to connect to redis at %s, QR pass storage disabled: %v", addr, err)
		RDB = nil
		return
	}

	RDB = client
	log.Printf("Connected to redis: %s", addr)
}
