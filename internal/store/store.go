// Package store holds one repository per resource table. Each store
// exposes paginated list (items + separate total count), get-by-id,
// create with server-assigned id and timestamp, merge-semantics update,
// and delete. Missing rows surface as gorm.ErrRecordNotFound.
package store

// NormalizePage clamps pagination parameters: limit defaults to 10 and is
// capped at 100, offset is never negative.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// FileRemover deletes the backing file for a stored relative path.
// Implemented by storage.Disk.
type FileRemover interface {
	Remove(relPath string) error
}
