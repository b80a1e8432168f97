package storage

// Persistence

type WriteResult struct {
	key         string // domain hash for files, brand id for rows
	location    string
	fingerprint string
}

func NewWriteResult(
	key string,
	location string,
	fingerprint string,
) WriteResult {
	return WriteResult{
		key:         key,
		location:    location,
		fingerprint: fingerprint,
	}
}

func (w *WriteResult) Key() string {
	return w.key
}

func (w *WriteResult) Location() string {
	return w.location
}

func (w *WriteResult) Fingerprint() string {
	return w.fingerprint
}
