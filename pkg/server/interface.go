/*
Package server implements msgpack IPC for word segmentation.

The server reads a stream of msgpack encoded requests from stdin and writes
one msgpack response per request to stdout. Requests are processed
synchronously with timing info included in segment responses.

# IPC

Each message carries an ID that is echoed back, an action and the fields that
action needs. A missing action means "segment":

	{"id": "req_001", "t": "thisisatest"}

The response holds the words and their aggregate log10 score:

	{"id": "req_001", "w": ["this", "is", "a", "test"], "s": -10.92, "c": 4, "t": 145}

A previous word can be passed with "p" so the first word is scored against it:

	{"id": "req_002", "t": "york", "p": "new"}

Scoring, prefix lookups and model stats use their own actions:

	{"id": "req_003", "action": "score", "w": "york", "p": "new"}
	{"id": "req_004", "action": "prefixes", "t": "thisisatest"}
	{"id": "req_005", "action": "info"}
	{"id": "req_006", "action": "health"}

Failed requests get an ErrorResponse. Codes follow HTTP: 400 for a bad
request, 413 for text above the configured input cap and 422 when the search
ran out of budget.

# Cache

Segment results are kept in an LRU keyed by the cleaned text and previous
word, so repeated requests skip the search entirely.
*/
package server

// Actions understood by the server
const (
	ActionSegment  = "segment"
	ActionScore    = "score"
	ActionPrefixes = "prefixes"
	ActionInfo     = "info"
	ActionHealth   = "health"
)

// Request is the single request shape for every action
type Request struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action,omitempty"`
	Text   string `msgpack:"t,omitempty"`
	Prev   string `msgpack:"p,omitempty"`
	Word   string `msgpack:"w,omitempty"`
	Limit  int    `msgpack:"l,omitempty"`
}

// SegmentResponse - segmentation result
type SegmentResponse struct {
	ID        string   `msgpack:"id"`
	Words     []string `msgpack:"w"`
	Score     float64  `msgpack:"s"`
	Count     int      `msgpack:"c"`
	Cached    bool     `msgpack:"h,omitempty"`
	TimeTaken int64    `msgpack:"t"`
}

// ScoreResponse - conditional score of one word
type ScoreResponse struct {
	ID       string  `msgpack:"id"`
	Word     string  `msgpack:"w"`
	Prev     string  `msgpack:"p,omitempty"`
	Score    float64 `msgpack:"s"`
	LogScore float64 `msgpack:"l"`
}

// PrefixEntry - dictionary word with its count
type PrefixEntry struct {
	Word  string  `msgpack:"w"`
	Count float64 `msgpack:"n"`
}

// PrefixResponse - dictionary words that start the text
type PrefixResponse struct {
	ID       string        `msgpack:"id"`
	Prefixes []PrefixEntry `msgpack:"x"`
	Count    int           `msgpack:"c"`
}

// InfoResponse - loaded model and segmenter settings
type InfoResponse struct {
	ID          string  `msgpack:"id"`
	Unigrams    int     `msgpack:"unigrams"`
	Bigrams     int     `msgpack:"bigrams"`
	MaxWordLen  int     `msgpack:"max_word_len"`
	Total       float64 `msgpack:"total"`
	Limit       int     `msgpack:"limit"`
	StartMarker string  `msgpack:"start_marker"`
	CacheSize   int     `msgpack:"cache_size"`
	Requests    int     `msgpack:"requests"`
}

// StatusResponse - ready and health replies
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// ErrorResponse holds basic error information for failed requests
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
