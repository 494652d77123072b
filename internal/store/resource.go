package store

import "time"

// Status is the loading lifecycle of a fetched collection.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Resource wraps a fetched collection with its loading lifecycle so
// consumers can render loading/error states without ad hoc flags. Every
// collection held by the store uses this shape uniformly.
type Resource[T any] struct {
	Data        T
	Status      Status
	Err         string
	LastUpdated time.Time
}

// IsLoading reports whether a fetch is in flight.
func (r Resource[T]) IsLoading() bool {
	return r.Status == StatusLoading
}

// HasError reports whether the last fetch failed.
func (r Resource[T]) HasError() bool {
	return r.Status == StatusError
}

func (r *Resource[T]) setLoading() {
	r.Status = StatusLoading
	r.Err = ""
}

func (r *Resource[T]) setSuccess(data T) {
	r.Data = data
	r.Status = StatusSuccess
	r.Err = ""
	r.LastUpdated = time.Now()
}

func (r *Resource[T]) setError(err error) {
	r.Status = StatusError
	r.Err = err.Error()
}

func (r *Resource[T]) reset() {
	*r = Resource[T]{Status: StatusIdle}
}

// snapshot copies a slice-backed resource so callers get their own backing
// array. Mutating a snapshot never reaches the store's state.
func snapshot[E any](r Resource[[]E]) Resource[[]E] {
	out := r
	out.Data = append([]E(nil), r.Data...)
	return out
}
