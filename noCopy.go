package dynquery

// noCopy triggers the copylocks check of go vet. A Query must not be
// copied: its groups and change listeners point into its elements.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
