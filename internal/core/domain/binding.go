package domain

// Binding is the ephemeral association between a browser session handle and
// an account. It lives in the cache, not the durable store: the forward entry
// maps handle -> account, the live counter accumulates clicks since the last
// bind, and a reverse entry maps account -> handle so that at most one
// session holds an account at a time.
type Binding struct {
	SessionHandle string
	AccountID     string
	LiveClicks    int64
}
