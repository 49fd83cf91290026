// ABOUTME: Declared failure policy for every service operation
// ABOUTME: Decides which failures notify and whether transport errors surface or default

package services

// Op names a service operation.
type Op string

const (
	OpGetAll        Op = "getAll"
	OpGetByID       Op = "getById"
	OpCreate        Op = "create"
	OpUpdate        Op = "update"
	OpDelete        Op = "delete"
	OpBulkUpdate    Op = "bulkUpdate"
	OpBulkDelete    Op = "bulkDelete"
	OpUpdateStage   Op = "updateStage"
	OpMarkCompleted Op = "markCompleted"
	OpByReference   Op = "getByReference"
	OpSearch        Op = "search"
	OpExport        Op = "export"
)

func (o Op) verb() string {
	switch o {
	case OpCreate:
		return "create"
	case OpUpdate, OpBulkUpdate:
		return "update"
	case OpDelete, OpBulkDelete:
		return "delete"
	case OpUpdateStage:
		return "update stage of"
	case OpMarkCompleted:
		return "complete"
	case OpExport:
		return "export"
	}
	return "load"
}

// Policy is how one operation treats each failure class.
type Policy struct {
	// NotifyClient sends the client's message when it reports success=false.
	NotifyClient bool
	// NotifyRecords sends each non-empty per-record failure message.
	NotifyRecords bool
	// TransportNotice, when set, is sent on a transport error. It is a
	// format string; %[1]s is the lower-case noun and %[2]s the plural.
	TransportNotice string
	// RaiseTransport returns transport errors to the caller unchanged
	// instead of resolving to the operation's empty result.
	RaiseTransport bool
}

var policies = map[Op]Policy{
	OpGetAll:        {NotifyClient: true, TransportNotice: "Failed to load %[2]s"},
	OpGetByID:       {NotifyClient: true, RaiseTransport: true},
	OpCreate:        {NotifyClient: true, NotifyRecords: true, RaiseTransport: true},
	OpUpdate:        {NotifyClient: true, NotifyRecords: true, RaiseTransport: true},
	OpDelete:        {NotifyClient: true, NotifyRecords: true, TransportNotice: "Failed to delete %[1]s"},
	OpBulkUpdate:    {NotifyClient: true, NotifyRecords: true},
	OpBulkDelete:    {NotifyClient: true, NotifyRecords: true},
	OpUpdateStage:   {NotifyClient: true, RaiseTransport: true},
	OpMarkCompleted: {NotifyClient: true, RaiseTransport: true},
	OpByReference:   {},
	OpSearch:        {},
	OpExport:        {RaiseTransport: true},
}

// PolicyFor returns the declared policy for op. Unknown operations get the
// zero policy: silent, transport errors swallowed.
func PolicyFor(op Op) Policy {
	return policies[op]
}
