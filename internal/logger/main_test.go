package logger_test

import (
	"testing"

	"go.uber.org/goleak"
)

// Delivery queues, flush tickers and the store janitor must all stop on Close.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
