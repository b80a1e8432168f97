package storage

import (
	"context"

	"github.com/rohmanhakim/store-insights/internal/insight"
)

/*
Responsibilities
- Persist insight documents after a run completes
- Keep one record per storefront domain
- Never feed back into extraction

Output Characteristics
- Deterministic keys derived from the domain
- Idempotent writes
- Overwrite-safe reruns
*/

// Sink persists a finished document. Implementations record their own
// failures to the metadata sink before returning them.
type Sink interface {
	Write(ctx context.Context, doc insight.Document) (WriteResult, error)
}
