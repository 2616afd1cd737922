// cmd/historian/main.go is an asynchronous historian service that pops room action
// records from a Redis queue and persists them to a PostgreSQL database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/RenatoDeCol/party-games/internal/history"
)

// HistorianService encapsulates the Redis + DB logic for capturing room actions
// and marking rooms abandoned when an inactivity threshold is reached.
type HistorianService struct {
	redisClient *redis.Client
	pool        *pgxpool.Pool
	queueName   string

	batchSize    int
	flushDelay   time.Duration
	inactivity   time.Duration
	lastActivity sync.Map // map[string]time.Time keyed by room code

	batchMu  sync.Mutex
	batch    []history.ActionRecord
	ctx      context.Context
	cancelFn context.CancelFunc
}

// NewHistorianService constructs a HistorianService from environment variables or defaults.
func NewHistorianService() *HistorianService {
	batchSize := getEnvInt("HISTORIAN_BATCH_SIZE", 20)
	flushMs := getEnvInt("HISTORIAN_FLUSH_MS", 500)
	inactivitySec := getEnvInt("ROOM_INACTIVITY_TIMEOUT_SEC", 1800)

	rdb := redis.NewClient(&redis.Options{
		Addr: getEnv("REDIS_ADDR", "localhost:6379"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	return &HistorianService{
		redisClient: rdb,
		queueName:   getEnv("HISTORY_QUEUE", history.DefaultQueueName),
		batchSize:   batchSize,
		flushDelay:  time.Duration(flushMs) * time.Millisecond,
		inactivity:  time.Duration(inactivitySec) * time.Second,
		batch:       make([]history.ActionRecord, 0, batchSize),
		ctx:         ctx,
		cancelFn:    cancel,
	}
}

// Run connects to the database, prepares the schema, and starts the
// queue-drain and inactivity loops.
func (hs *HistorianService) Run() error {
	pool, err := pgxpool.New(hs.ctx, getEnv("DATABASE_URL", "postgres://localhost:5432/party_games"))
	if err != nil {
		return fmt.Errorf("failed to create pg pool: %w", err)
	}
	hs.pool = pool

	if err := hs.ensureSchema(); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	go hs.readRedisLoop()
	go hs.inactivityLoop()

	log.Println("party-historian service started.")
	<-hs.ctx.Done()
	hs.flushBatchToDB()
	log.Println("party-historian shutting down.")
	return nil
}

// ensureSchema creates the rooms and room_actions tables if missing.
func (hs *HistorianService) ensureSchema() error {
	q := `
		CREATE TABLE IF NOT EXISTS rooms (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL DEFAULT 'active',
			first_seen TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_seen TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS room_actions (
			id BIGSERIAL PRIMARY KEY,
			room_id TEXT NOT NULL REFERENCES rooms(id),
			action_index INT NOT NULL,
			actor_id UUID NOT NULL,
			action_type TEXT NOT NULL,
			payload JSONB,
			occurred_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS room_actions_room_idx ON room_actions (room_id, action_index);
	`
	_, err := hs.pool.Exec(hs.ctx, q)
	return err
}

// readRedisLoop continuously uses BLPop to retrieve records from the Redis queue.
func (hs *HistorianService) readRedisLoop() {
	ticker := time.NewTicker(hs.flushDelay)
	defer ticker.Stop()

	for {
		select {
		case <-hs.ctx.Done():
			return

		case <-ticker.C:
			hs.flushBatchToDB()

		default:
			// BLPop with a short timeout so context cancellation is handled.
			res, err := hs.redisClient.BLPop(hs.ctx, 3*time.Second, hs.queueName).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				if hs.ctx.Err() != nil {
					return
				}
				log.Printf("[ERROR] BLPop: %v\n", err)
				continue
			}
			if len(res) < 2 {
				continue
			}

			var record history.ActionRecord
			if err := json.Unmarshal([]byte(res[1]), &record); err != nil {
				log.Printf("invalid action record: %v\n", err)
				continue
			}

			hs.lastActivity.Store(record.RoomID, time.Now())
			hs.appendToBatch(record)
		}
	}
}

// appendToBatch adds a record to the in-memory batch and flushes at the threshold.
func (hs *HistorianService) appendToBatch(record history.ActionRecord) {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()

	hs.batch = append(hs.batch, record)
	if len(hs.batch) >= hs.batchSize {
		hs.flushBatchLocked()
	}
}

// flushBatchToDB flushes the current batch in a single transaction.
func (hs *HistorianService) flushBatchToDB() {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	hs.flushBatchLocked()
}

func (hs *HistorianService) flushBatchLocked() {
	if len(hs.batch) == 0 {
		return
	}
	batchCopy := make([]history.ActionRecord, len(hs.batch))
	copy(batchCopy, hs.batch)
	hs.batch = hs.batch[:0]

	ctx := context.Background()
	err := beginTxFunc(ctx, hs.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range batchCopy {
			if err := insertActionTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insertActionTx: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("[ERROR] flush batch: %v\n", err)
	} else {
		log.Printf("Flushed %d actions to DB.\n", len(batchCopy))
	}
}

// inactivityLoop periodically marks rooms abandoned after the inactivity threshold.
func (hs *HistorianService) inactivityLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-hs.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()
			hs.lastActivity.Range(func(key, val interface{}) bool {
				roomID, ok1 := key.(string)
				last, ok2 := val.(time.Time)
				if ok1 && ok2 && now.Sub(last) > hs.inactivity {
					hs.markRoomAbandoned(roomID)
					hs.lastActivity.Delete(roomID)
				}
				return true
			})
		}
	}
}

// markRoomAbandoned marks a room 'abandoned' in the database if still active.
func (hs *HistorianService) markRoomAbandoned(roomID string) {
	ctx := context.Background()
	err := beginTxFunc(ctx, hs.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			UPDATE rooms
			SET status = 'abandoned'
			WHERE id = $1 AND status = 'active'
		`
		_, e := tx.Exec(ctx, q, roomID)
		return e
	})
	if err != nil {
		log.Printf("failed to mark room %s abandoned: %v", roomID, err)
	} else {
		log.Printf("Marked room %s as 'abandoned' due to inactivity.", roomID)
	}
}

// insertActionTx inserts one action record and upserts its room row.
func insertActionTx(ctx context.Context, tx pgx.Tx, rec history.ActionRecord) error {
	upsertRoomQ := `
		INSERT INTO rooms (id, status, last_seen)
		VALUES ($1, 'active', NOW())
		ON CONFLICT (id)
		DO UPDATE SET status = 'active', last_seen = NOW()
	`
	if _, err := tx.Exec(ctx, upsertRoomQ, rec.RoomID); err != nil {
		return err
	}

	var payload []byte
	if rec.Payload != nil {
		var err error
		payload, err = json.Marshal(rec.Payload)
		if err != nil {
			return err
		}
	}

	actionInsertQ := `
		INSERT INTO room_actions (
			room_id, action_index, actor_id, action_type, payload, occurred_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.Exec(ctx, actionInsertQ,
		rec.RoomID, rec.ActionIndex, rec.ActorID, rec.ActionType,
		payload, time.UnixMilli(rec.Timestamp),
	)
	return err
}

// beginTxFunc starts a transaction, runs f, and commits or rolls back.
func beginTxFunc(ctx context.Context, pool *pgxpool.Pool, txOptions pgx.TxOptions, f func(tx pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}
	if err := f(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx rollback error: %v; original error: %w", rbErr, err)
		}
		return err
	}
	return tx.Commit(ctx)
}

// Stop gracefully stops the historian service.
func (hs *HistorianService) Stop() {
	hs.cancelFn()
}

func main() {
	hs := NewHistorianService()
	go func() {
		if err := hs.Run(); err != nil {
			log.Fatalf("historian: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	hs.Stop()
	log.Println("Historian shutdown complete.")
}

// getEnv retrieves an environment variable's value or returns a default.
func getEnv(key, defVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defVal
}

// getEnvInt retrieves an integer from an environment variable or returns a default.
func getEnvInt(key string, defVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defVal
	}
	return i
}
