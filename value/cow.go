package value

// DynCowArray is a copy-on-write DynArray view: a borrowed array is never
// mutated in place, and ToMut lazily clones exactly once the first time a
// caller needs a handle it can write through. Partial-write paths that
// usually only read stay zero-copy this way.
type DynCowArray struct {
	arr   DynArray
	owned bool
}

// Borrowed wraps arr as a shared, read-only view.
func Borrowed(arr DynArray) DynCowArray { return DynCowArray{arr: arr, owned: false} }

// Owned wraps arr as an already-exclusive view; ToMut never clones it.
func Owned(arr DynArray) DynCowArray { return DynCowArray{arr: arr, owned: true} }

// Value returns the wrapped array without forcing ownership.
func (c DynCowArray) Value() DynArray { return c.arr }

// IsOwned reports whether c currently holds an exclusive copy.
func (c DynCowArray) IsOwned() bool { return c.owned }

// ToMut returns a pointer to an exclusively owned copy of c's array,
// cloning on first use if c was borrowed.
func (c *DynCowArray) ToMut() *DynArray {
	if !c.owned {
		c.arr = c.arr.Clone()
		c.owned = true
	}
	return &c.arr
}
