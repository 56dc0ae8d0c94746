package customer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordOrder_SegmentThresholds(t *testing.T) {
	tests := []struct {
		name        string
		startOrders int
		startSeg    Segment
		want        Segment
	}{
		{name: "stays new below three", startOrders: 1, startSeg: SegmentNew, want: SegmentNew},
		{name: "third order makes regular", startOrders: 2, startSeg: SegmentNew, want: SegmentRegular},
		{name: "stays regular below ten", startOrders: 8, startSeg: SegmentRegular, want: SegmentRegular},
		{name: "tenth order makes vip", startOrders: 9, startSeg: SegmentRegular, want: SegmentVIP},
		{name: "vip stays vip", startOrders: 15, startSeg: SegmentVIP, want: SegmentVIP},
		{name: "hand-tagged vip follows the count", startOrders: 4, startSeg: SegmentVIP, want: SegmentRegular},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Customer{ID: "c1", Segment: tt.startSeg, TotalOrders: tt.startOrders}

			c.RecordOrder(time.Now())

			assert.Equal(t, tt.want, c.Segment)
			assert.Equal(t, tt.startOrders+1, c.TotalOrders)
		})
	}
}

func TestRecordOrder_StampsLastOrder(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	c := &Customer{ID: "c1", Segment: SegmentNew}

	c.RecordOrder(now)

	assert.Equal(t, now, c.LastOrderAt)
	assert.Equal(t, 1, c.TotalOrders)
}
