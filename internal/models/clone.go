package models

import "encoding/json"

// cloneJSON deep-copies a record through a serialize/deserialize round trip.
// It fails closed: any value that cannot survive the round trip returns an
// error instead of a partial copy.
func cloneJSON[T any](src *T) (*T, error) {
	raw, err := json.Marshal(src)
	if err != nil {
		return nil, err
	}
	dst := new(T)
	if err := json.Unmarshal(raw, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// Clone returns an owned deep copy of the bill. Mutations always go through
// a clone so retained references to the fetched snapshot stay intact.
func (b *Bill) Clone() (*Bill, error) {
	return cloneJSON(b)
}

// Clone returns an owned deep copy of the group.
func (g *Group) Clone() (*Group, error) {
	return cloneJSON(g)
}
