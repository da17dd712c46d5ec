package storetest

import (
	"testing"

	"github.com/streamingfast/cfstore/store"
)

type DriverCleanupFunc func()
type DriverFactory func() (*store.Client, DriverCleanupFunc)

// TestAll runs the whole conformance suite against clients produced by
// `driverFactory`, one fresh client per test.
func TestAll(t *testing.T, driverName string, driverFactory DriverFactory) {
	for _, rt := range clientTests {
		t.Run(driverName+"/"+rt.name, func(t *testing.T) {
			client, closer := driverFactory()
			defer closer()
			rt.test(t, client)
		})
	}
}
