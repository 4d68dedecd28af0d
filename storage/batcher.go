package storage

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"twitch-chat-overlay/metrics"
)

// BatchConfig задаёт параметры батчинга для вставки строк чата.
type BatchConfig struct {
	MaxBatch      int
	FlushEvery    time.Duration
	ChanBuffer    int
	StatsLogEvery time.Duration
	FlushTimeout  time.Duration
}

// Batcher асинхронно вставляет строки чата через pgx.Batch.
type Batcher struct {
	input   chan Line
	config  BatchConfig
	sender  batchSender
	dropped atomic.Uint64
	done    chan struct{}
}

type batchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// NewBatcher создаёт батчер и запускает фоновые флаши.
func NewBatcher(ctx context.Context, pool *pgxpool.Pool, cfg BatchConfig) *Batcher {
	return newBatcher(ctx, pool, cfg)
}

// Enqueue пытается добавить строку в очередь; при переполнении возвращает false.
func (b *Batcher) Enqueue(line Line) bool {
	select {
	case b.input <- line:
		return true
	default:
		metrics.Inc(metrics.RecordsDropped)
		dropped := b.dropped.Add(1)
		if dropped%100 == 0 {
			log.WithField("dropped_total", dropped).Warn("батчер: очередь заполнена, строки отбрасываются")
		}
		return false
	}
}

// Dropped возвращает число строк, отброшенных из-за переполнения.
func (b *Batcher) Dropped() uint64 {
	return b.dropped.Load()
}

// Done закрывается после финального флаша при отмене контекста.
func (b *Batcher) Done() <-chan struct{} {
	return b.done
}

func (b *Batcher) run(ctx context.Context) {
	defer close(b.done)

	flushTicker := time.NewTicker(b.config.FlushEvery)
	statsTicker := time.NewTicker(b.config.StatsLogEvery)
	defer flushTicker.Stop()
	defer statsTicker.Stop()

	var (
		batch            = &pgx.Batch{}
		pending          = 0
		totalInserted    uint64
		intervalInserted uint64
	)

	flush := func() {
		if pending == 0 {
			return
		}

		dbCtx, cancel := context.WithTimeout(context.Background(), b.config.FlushTimeout)
		defer cancel()

		br := b.sender.SendBatch(dbCtx, batch)
		if err := br.Close(); err != nil {
			log.WithError(err).WithField("rows", pending).Error("батчер: ошибка флаша")
		}
		metrics.Inc(metrics.BatchFlushes)

		totalInserted += uint64(pending)
		intervalInserted += uint64(pending)

		batch = &pgx.Batch{}
		pending = 0
	}

	for {
		select {
		case <-ctx.Done():
			// Дочитываем то, что уже в очереди, чтобы не терять строки при остановке.
			for drained := false; !drained; {
				select {
				case line := <-b.input:
					batch.Queue(insertLineSQL, line.args()...)
					pending++
				default:
					drained = true
				}
			}
			flush()
			log.WithField("inserted_total", totalInserted).Info("батчер: контекст отменён")
			return
		case <-flushTicker.C:
			flush()
		case <-statsTicker.C:
			log.WithFields(log.Fields{
				"inserted":       intervalInserted,
				"interval":       b.config.StatsLogEvery,
				"inserted_total": totalInserted,
				"dropped_total":  b.dropped.Load(),
			}).Info("батчер: статистика")
			intervalInserted = 0
		case line := <-b.input:
			batch.Queue(insertLineSQL, line.args()...)
			pending++
			if pending >= b.config.MaxBatch {
				flush()
			}
		}
	}
}

func newBatcher(ctx context.Context, sender batchSender, cfg BatchConfig) *Batcher {
	b := &Batcher{
		input:  make(chan Line, cfg.ChanBuffer),
		config: cfg,
		sender: sender,
		done:   make(chan struct{}),
	}

	go b.run(ctx)

	return b
}
