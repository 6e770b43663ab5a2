// Package trace provides a compact binary snapshot of one parse, used to
// pin the resolver's output in golden tests. A snapshot holds a parse's
// sorted candidate stack, resolved tag list, and log, CBOR-encoded as a
// portable fixture that's cheaper to diff than regenerating XML text by
// hand for every nesting-limit/attribute-filter edge case.
package trace

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/aledsdavies/tagforge/internal/events"
	"github.com/aledsdavies/tagforge/internal/logx"
)

// Snapshot is the serializable record of one parse.
type Snapshot struct {
	Text      string
	Candidate []events.Tag
	Resolved  []events.Tag
	Debug     []logx.Record
	Warning   []logx.Record
	Error     []logx.Record
}

// New builds a Snapshot from a completed parse's intermediate values.
func New(text string, candidate, resolved []events.Tag, log *logx.Log) Snapshot {
	return Snapshot{
		Text:      text,
		Candidate: candidate,
		Resolved:  resolved,
		Debug:     log.Records(logx.Debug),
		Warning:   log.Records(logx.Warning),
		Error:     log.Records(logx.Error),
	}
}

// Encode serializes s to CBOR.
func Encode(s Snapshot) ([]byte, error) {
	return cbor.Marshal(s)
}

// Decode deserializes a CBOR-encoded Snapshot.
func Decode(data []byte) (Snapshot, error) {
	var s Snapshot
	err := cbor.Unmarshal(data, &s)
	return s, err
}
