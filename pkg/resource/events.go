package resource

// EventKind identifies the mutation a model notification reports.
type EventKind string

const (
	// EventSet fires after Set changes a working attribute.
	EventSet EventKind = "set"
	// EventSaved fires after a successful Save synced original.
	EventSaved EventKind = "saved"
	// EventReverted fires after Revert restored the working state.
	EventReverted EventKind = "reverted"
	// EventDeleted fires after a successful Delete.
	EventDeleted EventKind = "deleted"
	// EventFetched fires after Fetch replaced both attribute sets.
	EventFetched EventKind = "fetched"
)

// Event describes one model mutation delivered to subscribers.
type Event struct {
	Kind EventKind
	// Field names the attribute for EventSet; empty otherwise.
	Field string
}

// Listener receives change events. Listeners run synchronously on the
// mutating call, in registration order.
type Listener func(Event)
