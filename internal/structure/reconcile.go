package structure

import (
	"github.com/bibworks/bibzot/internal/citation"
)

// Notes attached to stub records so a later manual pass can find them.
const (
	noteCallFailed      = "structuring failed; raw citation placed in title"
	noteIncompleteBatch = "backend returned incomplete batch; raw citation preserved in title"
)

// reconcile aligns a batch's returned items with the entries that were
// sent, positionally. Every input entry yields exactly one output item:
// missing tail items become stubs carrying the raw entry text, surplus
// items are dropped. Entries that ended up as stubs are also reported so
// the caller can write a failure report.
func reconcile(entries []string, items []citation.Item) (out []citation.Item, failed []string) {
	out = make([]citation.Item, 0, len(entries))

	n := len(items)
	if n > len(entries) {
		n = len(entries)
	}
	out = append(out, items[:n]...)

	for _, entry := range entries[n:] {
		out = append(out, citation.Stub(entry, noteIncompleteBatch))
		failed = append(failed, entry)
	}
	return out, failed
}

// stubBatch converts every entry of a failed batch into a stub record.
func stubBatch(entries []string) []citation.Item {
	out := make([]citation.Item, 0, len(entries))
	for _, entry := range entries {
		out = append(out, citation.Stub(entry, noteCallFailed))
	}
	return out
}
