package model

// Slot names one of the two competing sides.
type Slot string

// Slots, spelled as the Battle Control API expects them in paths.
const (
	SlotOne Slot = "slot_one"
	SlotTwo Slot = "slot_two"
)

// CommandKind enumerates outbound Battle Control API operations.
type CommandKind int

// Command kinds.
const (
	CommandStart CommandKind = iota
	CommandEnd
	CommandImportSlots
	CommandAddScore
	CommandSyncSlots
)

// String returns a short label for logs and metrics.
func (k CommandKind) String() string {
	switch k {
	case CommandStart:
		return "start"
	case CommandEnd:
		return "end"
	case CommandImportSlots:
		return "import_slots"
	case CommandAddScore:
		return "add_score"
	case CommandSyncSlots:
		return "sync_slots"
	default:
		return "unknown"
	}
}

// SlotNames is the result of a slot binding pull. Seq echoes the request.
type SlotNames struct {
	Seq uint64
	One string
	Two string
	OK  bool
}

// Command is one queued outbound call. Only the fields relevant to Kind are set.
type Command struct {
	Kind   CommandKind
	Reason string // start/end
	One    string // import
	Two    string // import
	Slot   Slot   // add score
	Amount int64  // add score

	// Seq tags a SyncSlots request; Reply receives the result and must be
	// buffered.
	Seq   uint64
	Reply chan<- SlotNames
}
