package ingest

// DepthStreamFrame is the diff-depth WebSocket payload
// {e, E, s, U, u, b, a, pu?}. pu is present only on futures frames
// and, per venue documentation, absent on the first frame of a
// session.
type DepthStreamFrame struct {
	EventType             string      `json:"e"`
	EventTimeMs           int64       `json:"E"`
	Symbol                string      `json:"s"`
	FirstUpdateID         int64       `json:"U"`
	FinalUpdateID         int64       `json:"u"`
	Bids                  [][2]string `json:"b"`
	Asks                  [][2]string `json:"a"`
	PreviousFinalUpdateID *int64      `json:"pu,omitempty"`
}

// RESTDepthResponse is the REST depth snapshot payload
// {lastUpdateId, bids, asks}.
type RESTDepthResponse struct {
	LastUpdateID int64       `json:"lastUpdateId"`
	Bids         [][2]string `json:"bids"`
	Asks         [][2]string `json:"asks"`
}
