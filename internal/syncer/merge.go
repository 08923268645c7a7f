package syncer

import "github.com/AnshRaj112/catchlog-backend/internal/models"

// Resolver decides which side wins when a record id exists both locally
// and remotely.
type Resolver interface {
	PreferRemote(local, remote models.Record) bool
}

// LastWriteWins keeps the record with the later LastModified time. Local
// wins ties.
type LastWriteWins struct{}

func (LastWriteWins) PreferRemote(local, remote models.Record) bool {
	return remote.LastModified().After(local.LastModified())
}

// MergeByID unions local and remote by record id. Records present on one
// side only are kept unchanged; conflicts are settled whole-record by r.
// Local order is preserved and remote-only records follow in remote order.
func MergeByID[T models.Record](local, remote []T, r Resolver) []T {
	if r == nil {
		r = LastWriteWins{}
	}

	merged := make([]T, 0, len(local)+len(remote))
	index := make(map[string]int, len(local)+len(remote))

	put := func(item T) {
		if i, ok := index[item.GetID()]; ok {
			merged[i] = item
			return
		}
		index[item.GetID()] = len(merged)
		merged = append(merged, item)
	}

	for _, item := range local {
		put(item)
	}
	for _, item := range remote {
		i, ok := index[item.GetID()]
		if !ok {
			put(item)
			continue
		}
		if r.PreferRemote(merged[i], item) {
			merged[i] = item
		}
	}
	return merged
}
