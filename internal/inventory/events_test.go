package inventory

import (
	"bytes"
	"context"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLogDispatcher_WritesEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&log.JSONFormatter{})

	LogDispatcher{Logger: logger}.Dispatch(context.Background(),
		StockChanged{ItemID: 7, Change: -2, NewQuantity: 3, Reason: ReasonSale},
		ItemPurged{ItemID: 7, SalesRemoved: 4},
	)

	out := buf.String()
	assert.Contains(t, out, `"event":"stock.changed"`)
	assert.Contains(t, out, `"event":"item.purged"`)
	assert.Contains(t, out, `"NewQuantity":3`)
}

func TestInsufficientStockError_Is(t *testing.T) {
	err := error(&InsufficientStockError{Available: 4})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.NotErrorIs(t, err, ErrItemNotFound)
	assert.Equal(t, "Insufficient stock. Only 4 items available", err.Error())
}
