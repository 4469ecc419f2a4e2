package batch

// Stats summarises a Copy.
type Stats struct {
	// Copied is the number of entries written to the sink.
	Copied int

	// Skipped is the number of entries the sink declined or that turned
	// out to be symlinks.
	Skipped int

	// Bytes is the total original size of the copied entries.
	Bytes uint64
}
