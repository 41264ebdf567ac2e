// Package backup drives a controller backup run: log in, trigger the
// asynchronous backup, wait for the file to be written and copy it into the
// bucket.
//
// The waiting and copying stages retry with a fixed delay and a bounded
// number of attempts. Both stages use the same size check (IsComplete), so a
// file the poller accepts is never rejected by the transfer for being short,
// and the other way round.
//
// All sleeps go through a clock.Clock so tests can run without waiting.
package backup
