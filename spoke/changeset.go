package spoke

import "sync"

// ChangeSet collects the entities whose component changed. Storages publish
// into it through Notify, a query reads it.
//
// While frozen, the visible set does not change: notifications are parked and
// become visible with the next call to Unfreeze. Has and Buffer do not take the
// lock and must only be used while the set is frozen or by the goroutine that
// also publishes into it.
type ChangeSet struct {
	mu      sync.Mutex
	frozen  bool
	visible EntityList
	pending EntityList
}

func (c *ChangeSet) Notify(entity EntityId) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen {
		c.pending.Insert(entity)
		return
	}

	c.visible.Insert(entity)
}

func (c *ChangeSet) Freeze() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.frozen = true
}

// Unfreeze makes the set accept notifications again and publishes all
// notifications parked while it was frozen.
func (c *ChangeSet) Unfreeze() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.frozen = false

	for _, entity := range c.pending.Entities() {
		c.visible.Insert(entity)
	}

	c.pending.Clear()
}

// Clear drops all visible entities. Parked notifications are kept.
func (c *ChangeSet) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.visible.Clear()
}

func (c *ChangeSet) IsFrozen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.frozen
}

func (c *ChangeSet) Has(entity EntityId) bool {
	return c.visible.Has(entity)
}

func (c *ChangeSet) Len() int {
	return c.visible.Len()
}

func (c *ChangeSet) Buffer() EntitiesBuffer {
	return c.visible.Buffer()
}
