package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObservability_NilAndNoopAreSafe(t *testing.T) {
	var nilObs *Observability
	for _, o := range []*Observability{nilObs, NewNoop()} {
		assert.NotPanics(t, func() {
			o.RecordCustomer(context.Background(), "sent", time.Second)
			o.RecordBatch(context.Background(), 3, time.Second)
			o.Shutdown()
		})
	}
}

func TestObservability_Records(t *testing.T) {
	o := New("intel-notifier-test")
	defer o.Shutdown()

	assert.NotPanics(t, func() {
		o.RecordCustomer(context.Background(), "no_news", 15*time.Millisecond)
		o.RecordBatch(context.Background(), 1, 20*time.Millisecond)
	})
}
