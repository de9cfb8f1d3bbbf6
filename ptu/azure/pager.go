package azure

import (
	"context"
	"iter"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
)

//pages turns a pager into a sequence of pages, the sequence stops after the first error
func pages[T any](ctx context.Context, p *runtime.Pager[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for p.More() {
			page, err := p.NextPage(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}

			if !yield(page, nil) {
				return
			}
		}
	}
}

//i64 widens the SDK's 32 bit counters
func i64(v *int32) *int64 {
	if v == nil {
		return nil
	}

	n := int64(*v)
	return &n
}

func str(v *string) string {
	if v == nil {
		return ""
	}

	return *v
}
