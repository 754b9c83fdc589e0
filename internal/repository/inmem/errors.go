package inmem

import "github.com/LahcenOub/tinmel-lms-sub000/internal/repository"

// errUniqueViolation makes the in-memory store's access key collisions
// detectable by the same repository.IsUniqueViolation check as Postgres.
var errUniqueViolation = repository.ErrUniqueViolation
