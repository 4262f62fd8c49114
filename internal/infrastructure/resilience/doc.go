/*
Package resilience provides the daemon's failure policies.

# Reconnect backoff

NewBackoff wraps cenkalti/backoff's exponential policy with a floor, a
ceiling and an optional attempt limit:

	policy := resilience.NewBackoff(resilience.BackoffSettings{
		Min:         500 * time.Millisecond,
		Max:         30 * time.Second,
		MaxAttempts: 0, // forever
	})
	if d := policy.NextBackOff(); d == resilience.Stop { ... }

# Circuit breaker

Breaker counts failures of a guarded call. Rename passes run through one per
connection; once it opens, the connection is considered dead and the daemon
reconnects.

	breaker := resilience.New("rename", resilience.Settings{
		ReadyToTrip: resilience.ConsecutiveFailures(5),
	})
	err := breaker.Execute(func() error { return engine.Render(ctx, tracker, ids) })

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           v
	                                         Open
*/
package resilience
