package journal

/*
Файл journal.go реализует журнал событий пайплайна аудитов (Audit Trail).

Ключевые особенности архитектуры:
- Non-blocking Logging: события уходят через неблокирующий канал из Hot Path
  пайплайна. Задержки записи в БД не влияют на Response Time аудита.
- Batching & Efficiency: накопление событий в памяти и пакетная запись
  (Bulk Insert) в PostgreSQL по таймеру или при достижении лимита (100 событий).
- Drain Pattern & Graceful Shutdown: при остановке буфер вычитывается полностью.
  sync.WaitGroup и закрытие канала гарантируют Final Flush — без потерь
  при перезагрузке сервиса.
*/

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// StorageInterface определяет, куда физически будут сохраняться события
type StorageInterface interface {
	// WriteBatch сохраняет пачку событий за один раз
	WriteBatch(ctx context.Context, events []Event) error
}

type Recorder interface {
	Log(event Event)
}

type Journal struct {
	ch     chan Event
	repo   StorageInterface
	logger *zap.Logger
	wg     sync.WaitGroup

	// Защита от Log после остановки
	isClosed int32
}

func New(repo StorageInterface, logger *zap.Logger) *Journal {
	return &Journal{
		ch:     make(chan Event, 10000), // Очередь на 10к событий
		repo:   repo,
		logger: logger.With(zap.String("mod", "journal")),
	}
}

func (j *Journal) Start() {
	j.wg.Add(1)
	go j.worker()
}

// Stop «запирает» вход в канал и ждет, пока воркер всё допишет.
func (j *Journal) Stop() {
	atomic.StoreInt32(&j.isClosed, 1)

	// Даем крошечную паузу, чтобы текущие Log успели проскочить
	time.Sleep(10 * time.Millisecond)

	// Drain Pattern: завершение воркера — только через закрытие входного канала
	j.logger.Info("stopping journal: closing channel and flushing buffer...")
	close(j.ch)
	j.wg.Wait()
	j.logger.Info("journal stopped gracefully")
}

func (j *Journal) Log(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if atomic.LoadInt32(&j.isClosed) == 1 {
		j.logger.Warn("journal event dropped: journal is stopping", zap.String("id", event.ID))
		return
	}

	// Load Shedding: переполненный буфер не блокирует пайплайн,
	// событие уходит хотя бы в структурный лог
	select {
	case j.ch <- event:
	default:
		j.logger.Error("journal_buffer_overflow",
			zap.String("report_id", event.ReportID),
			zap.String("trace_id", event.TraceID),
		)
	}
}

func (j *Journal) worker() {
	defer j.wg.Done()

	batch := make([]Event, 0, 100)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	flush := func() {
		if len(batch) > 0 {
			// Background: основной контекст на shutdown может быть уже закрыт
			if err := j.repo.WriteBatch(context.Background(), batch); err != nil {
				j.logger.Error("journal flush failed", zap.Error(err))
			}
			batch = batch[:0]
		}
	}

	for {
		select {
		case event, ok := <-j.ch:
			if !ok {
				// Канал закрыт в Stop(): воркер сначала вычитал остатки,
				// теперь финальный сброс и выход
				flush()
				j.logger.Info("journal worker finished")
				return
			}
			batch = append(batch, event)
			if len(batch) >= 100 {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
