package ratelimit

import (
	"sync"
	"time"
)

// Limiter представляет rate limiter на основе токен-бакета (token bucket).
// Явный компонент-инстанс: создается на namespace (login, general)
// и внедряется в обработчики, никакого глобального состояния.
type Limiter struct {
	buckets  map[string]*bucket
	cleanupC chan struct{}
	stopOnce sync.Once
	rate     int
	window   time.Duration
	mu       sync.Mutex
}

// bucket представляет bucket для конкретного ключа (обычно IP)
type bucket struct {
	lastRefill time.Time
	tokens     int
}

// New создает новый rate limiter
// rate - максимальное количество запросов в окно
// window - временное окно (например, 1 минута)
func New(rate int, window time.Duration) *Limiter {
	l := &Limiter{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		window:   window,
		cleanupC: make(chan struct{}),
	}

	// Запускаем периодическую очистку старых buckets
	go l.cleanup()

	return l
}

// Allow проверяет, разрешен ли запрос для данного ключа.
// Поиск-или-создание bucket'а и списание токена выполняются атомарно
// под одной блокировкой: два конкурентных первых запроса по одному ключу
// не создадут два bucket'а и не потеряют списание. Никогда не блокирует
// надолго и не выполняет I/O.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()

	b, exists := l.buckets[key]
	if !exists {
		b = &bucket{
			tokens:     l.rate,
			lastRefill: now,
		}
		l.buckets[key] = b
	}

	// Пополняем токены, если окно прошло
	if now.Sub(b.lastRefill) >= l.window {
		b.tokens = l.rate
		b.lastRefill = now
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}

	return false
}

// Clear сбрасывает все buckets (используется для изоляции тестов)
func (l *Limiter) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.buckets = make(map[string]*bucket)
}

// Stop останавливает cleanup goroutine
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.cleanupC)
	})
}

// cleanup периодически удаляет неактивные buckets для экономии памяти
func (l *Limiter) cleanup() {
	ticker := time.NewTicker(l.window * 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanupOldBuckets()
		case <-l.cleanupC:
			return
		}
	}
}

// cleanupOldBuckets удаляет buckets, которые не обновлялись дольше 2*window.
// К этому моменту bucket все равно был бы пополнен до rate, так что
// удаление не дает дополнительных запросов.
func (l *Limiter) cleanupOldBuckets() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, b := range l.buckets {
		if now.Sub(b.lastRefill) > l.window*2 {
			delete(l.buckets, key)
		}
	}
}
