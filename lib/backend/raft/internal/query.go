package internal

// Query is a read-only lookup sent via SyncRead.
type Query struct {
	Prefix []byte
	Key    []byte
}

// QueryResult is the result of a Query.
type QueryResult struct {
	Ok    bool
	Value []byte
}
