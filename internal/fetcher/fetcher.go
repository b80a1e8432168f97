package fetcher

import (
	"context"
)

type Fetcher interface {
	Fetch(ctx context.Context, fetchParam FetchParam) FetchResult
}
