// Package store defines the persistence interfaces used by the service
// layer, keeping storage details behind small per-entity contracts. Concrete
// implementations live under internal/platform.
package store
