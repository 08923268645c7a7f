package weather

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/AnshRaj112/catchlog-backend/internal/conditions"
)

const sampleResponse = `{
	"weather": [{"id": 500, "main": "Rain", "description": "light rain"}],
	"main": {"temp": 18.4, "humidity": 71},
	"wind": {"speed": 2.5, "deg": 200},
	"clouds": {"all": 40},
	"rain": {"1h": 0.8}
}`

func TestClient_Current(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = map[string]string{
			"lat":   r.URL.Query().Get("lat"),
			"lon":   r.URL.Query().Get("lon"),
			"units": r.URL.Query().Get("units"),
			"appid": r.URL.Query().Get("appid"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	c := NewClient("secret", srv.URL, time.Second)
	w, err := c.Current(context.Background(), 52.23, 21.01)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery["lat"] != "52.23" || gotQuery["lon"] != "21.01" || gotQuery["units"] != "metric" || gotQuery["appid"] != "secret" {
		t.Errorf("unexpected query %v", gotQuery)
	}
	if w.Main.Temp != 18.4 {
		t.Errorf("expected temp 18.4, got %v", w.Main.Temp)
	}
	if w.Wind.Speed != 9 {
		t.Errorf("expected wind 9 km/h, got %v", w.Wind.Speed)
	}
	if w.Clouds.All != 40 || w.Precipitation() != 0.8 {
		t.Errorf("unexpected clouds/rain: %v %v", w.Clouds.All, w.Precipitation())
	}
	if w.Code() != 500 || w.Description() != "light rain" {
		t.Errorf("unexpected condition %d %q", w.Code(), w.Description())
	}
}

func TestClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"cod":401}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	if _, err := NewClient("bad", srv.URL, time.Second).Current(context.Background(), 1, 1); err == nil {
		t.Error("expected error on non-200 response")
	}
	if _, err := NewClient("", srv.URL, time.Second).Current(context.Background(), 1, 1); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := NewClient("key", srv.URL, 50*time.Millisecond).Current(context.Background(), 1, 1)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("request was not bounded by the timeout")
	}
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *mapCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *mapCache) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

type countingFetcher struct {
	calls int
}

func (f *countingFetcher) Current(ctx context.Context, lat, lng float64) (*conditions.Weather, error) {
	f.calls++
	return &conditions.Weather{Main: conditions.MainReading{Temp: 20}}, nil
}

func TestCachedProvider(t *testing.T) {
	ctx := context.Background()
	next := &countingFetcher{}
	p := NewCachedProvider(next, &mapCache{data: map[string][]byte{}}, 0)

	for i := 0; i < 3; i++ {
		w, err := p.Current(ctx, 52.2301, 21.0102)
		if err != nil || w.Main.Temp != 20 {
			t.Fatalf("unexpected result %v %v", w, err)
		}
	}
	if next.calls != 1 {
		t.Errorf("expected one provider call, got %d", next.calls)
	}

	_, _ = p.Current(ctx, 40, 21)
	if next.calls != 2 {
		t.Errorf("expected a distant coordinate to miss the cache, got %d calls", next.calls)
	}
}
