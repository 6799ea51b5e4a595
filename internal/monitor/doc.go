// Package monitor follows a single order until it reaches a terminal state.
//
// Poller.Run is a blocking loop:
//
//	Idle ──Run──▶ Polling ──terminal status──▶ Terminal
//	                 │
//	                 └──ctx cancelled──▶ Cancelled
//
// Each tick checks for cancellation, fetches the order status and compares
// it with the last observed value. Only a change produces a StatusChanged
// notification; the comparison is an exact string match, so "placed" and
// "PLACED" are different statuses. Terminal detection is case-insensitive
// against the configured set (delivered, cancelled, failed by default).
//
// A failed fetch calls TickFailed and the loop carries on. The wait between
// ticks selects on the context, so cancelling stops the loop immediately
// and no further request is made. A request already in flight is allowed
// to finish: its context is detached from the caller's and bounded by the
// request timeout instead. Cancellation is a normal stop and returns a nil
// error with Result.Reason set to StopCancelled.
package monitor
