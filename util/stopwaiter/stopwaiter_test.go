// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

package stopwaiter

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/micalabs/mica/util/testhelpers"
)

const testStopDelayWarningTimeout = 350 * time.Millisecond

type TestStruct struct{}

func TestStopWaiterStopAndWait(t *testing.T) {
	var iterations atomic.Int64
	sw := StopWaiter{}
	sw.Start(context.Background(), TestStruct{})
	err := sw.CallIteratively(func(ctx context.Context) time.Duration {
		iterations.Add(1)
		return 10 * time.Millisecond
	})
	testhelpers.RequireImpl(t, err)
	time.Sleep(100 * time.Millisecond)
	sw.StopAndWait()
	if iterations.Load() == 0 {
		testhelpers.FailImpl(t, "iterative call never ran")
	}
	after := iterations.Load()
	time.Sleep(50 * time.Millisecond)
	if iterations.Load() != after {
		testhelpers.FailImpl(t, "iterative call ran after StopAndWait returned")
	}
}

func TestStopWaiterStopAndWaitTimeout(t *testing.T) {
	logHandler := testhelpers.InitTestLog(t, log.LevelTrace)
	sw := StopWaiter{}
	sw.Start(context.Background(), TestStruct{})
	sw.LaunchThread(func(ctx context.Context) {
		for {
			select {
			case <-ctx.Done():
				return
			default:
				time.Sleep(testStopDelayWarningTimeout + 150*time.Millisecond)
			}
		}
	})
	time.Sleep(50 * time.Millisecond)
	err := sw.stopAndWaitImpl(testStopDelayWarningTimeout)
	testhelpers.RequireImpl(t, err)
	if !logHandler.WasLogged("taking too long to stop") {
		testhelpers.FailImpl(t, "Failed to log about hanging on StopAndWait")
	}
}

func TestStopWaiterBeforeStart(t *testing.T) {
	sw := StopWaiterSafe{}
	if _, err := sw.GetContext(); err == nil {
		testhelpers.FailImpl(t, "GetContext before Start should fail")
	}
	testhelpers.RequireImpl(t, sw.StopAndWait())
}
