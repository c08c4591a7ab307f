package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// gatherCounter scrapes the default registry and returns the counter value
// for the named metric with the given label pairs, or -1 if absent.
func gatherCounter(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
	metric:
		for _, m := range fam.GetMetric() {
			for _, pair := range m.GetLabel() {
				if want, ok := labels[pair.GetName()]; ok && want != pair.GetValue() {
					continue metric
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return -1
}

func TestChatRequestsTotal_Registered(t *testing.T) {
	ChatRequestsTotal.WithLabelValues("friend", "success").Inc()
	ChatRequestsTotal.WithLabelValues("friend", "success").Inc()

	got := gatherCounter(t, "robot_chat_requests_total",
		map[string]string{"personality": "friend", "status": "success"})
	if got < 2 {
		t.Errorf("expected at least 2 chat requests recorded, got %v", got)
	}
}

func TestCacheEvents_Registered(t *testing.T) {
	CacheEvents.WithLabelValues("chat", "hit").Inc()

	got := gatherCounter(t, "robot_cache_events_total",
		map[string]string{"cache": "chat", "event": "hit"})
	if got < 1 {
		t.Errorf("expected cache hit recorded, got %v", got)
	}
}

func TestTTSRequestsTotal_Registered(t *testing.T) {
	TTSRequestsTotal.WithLabelValues("elevenlabs", "success").Inc()

	got := gatherCounter(t, "robot_tts_requests_total",
		map[string]string{"vendor": "elevenlabs", "status": "success"})
	if got < 1 {
		t.Errorf("expected tts request recorded, got %v", got)
	}
}
