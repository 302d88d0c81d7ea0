// Package state stores one-time OAuth state values.
//
// The authorization request carries a state value that must come back
// unchanged on the callback. A Store issues that value, remembers it for a
// limited time, and accepts it exactly once:
//
//	s, err := store.Issue(ctx)
//	http.Redirect(w, r, provider.AuthCodeURL(s), http.StatusFound)
//
//	// callback
//	if err := store.Consume(ctx, r.URL.Query().Get("state")); err != nil {
//		// reject: unknown, expired or replayed
//	}
//
// Two backends are provided. Memory keeps states in process and suits a
// single instance. Redis shares states across instances and uses GETDEL so
// concurrent callbacks cannot both succeed. New picks Redis when
// Config.RedisURL is set.
//
// States default to random UUIDv4 strings with a ten minute TTL.
package state
