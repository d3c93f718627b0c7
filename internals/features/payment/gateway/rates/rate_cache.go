package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

// Fallback statis terakhir kalau fetch gagal dan belum ada rate tersimpan.
const StaticFallbackUSDToIDR = 16500.0

const DefaultTTL = time.Hour

/* =========================================================
   Clock & Fetcher (injectable biar gampang dites)
========================================================= */

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func RealClock() Clock { return realClock{} }

type Fetcher interface {
	FetchUSDToIDR(ctx context.Context) (float64, error)
}

// HTTPFetcher ambil kurs dari API publik (open.er-api.com)
type HTTPFetcher struct {
	URL    string
	Client *http.Client
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		URL:    "https://open.er-api.com/v6/latest/USD",
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (f *HTTPFetcher) FetchUSDToIDR(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate API status %d", resp.StatusCode)
	}

	var body struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, err
	}
	rate, ok := body.Rates["IDR"]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("rate IDR tidak ada di respons")
	}
	return rate, nil
}

/* =========================================================
   Cache kurs (TTL 1 jam, refresh lazy, degradasi:
   last-known-good → fallback statis)
========================================================= */

type Cache struct {
	mu sync.Mutex

	fetcher Fetcher
	clock   Clock
	ttl     time.Duration

	rate      float64
	fetchedAt time.Time
	hasValue  bool
}

func NewCache(fetcher Fetcher, clock Clock, ttl time.Duration) *Cache {
	if fetcher == nil {
		fetcher = NewHTTPFetcher()
	}
	if clock == nil {
		clock = RealClock()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{fetcher: fetcher, clock: clock, ttl: ttl}
}

// Get balikin kurs USD→IDR; refresh lazy saat kadaluarsa.
// Tidak pernah gagal: fetch error → pakai nilai lama, atau fallback statis.
func (c *Cache) Get(ctx context.Context) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if c.hasValue && now.Sub(c.fetchedAt) < c.ttl {
		return c.rate
	}

	rate, err := c.fetcher.FetchUSDToIDR(ctx)
	if err != nil {
		if c.hasValue {
			log.Printf("[WARN] Gagal refresh kurs, pakai last-known-good %.2f: %v", c.rate, err)
			return c.rate
		}
		log.Printf("[WARN] Gagal fetch kurs, pakai fallback statis %.2f: %v", StaticFallbackUSDToIDR, err)
		return StaticFallbackUSDToIDR
	}

	c.rate = rate
	c.fetchedAt = now
	c.hasValue = true
	return c.rate
}

// Refresh paksa ambil kurs baru (mis. dari endpoint admin/debug).
func (c *Cache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rate, err := c.fetcher.FetchUSDToIDR(ctx)
	if err != nil {
		return err
	}
	c.rate = rate
	c.fetchedAt = c.clock.Now()
	c.hasValue = true
	return nil
}
