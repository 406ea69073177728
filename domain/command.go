package domain

// Command is an intent applied to the shared pad state.
// Commands are consumed by a single worker goroutine, which is the
// serialization point for every document mutation and broadcast.
type Command interface {
	Name() string
}

// EditCommand replaces the whole document and re-attributes the reported
// lines to UserID. The changed-line set is client-computed and trusted.
type EditCommand struct {
	UserID       string
	Content      string
	ChangedLines []int
}

func (EditCommand) Name() string { return "edit" }

// AnnounceCommand broadcasts the current roster to every connection,
// plus the attribution mapping when Attribution is set. Disconnects
// re-announce the roster only.
type AnnounceCommand struct {
	Attribution bool
}

func (AnnounceCommand) Name() string { return "announce" }
