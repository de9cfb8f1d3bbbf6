package azure

import (
	"context"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
)

type fakeCred struct{}

func (fakeCred) GetToken(context.Context, policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: "fake", ExpiresOn: time.Now().Add(time.Hour)}, nil
}

//fakePager serves the pages in order, failing with err once they run out if set
func fakePager[T any](pgs []T, err error) *runtime.Pager[T] {
	i := 0
	return runtime.NewPager(runtime.PagingHandler[T]{
		More: func(T) bool {
			return i < len(pgs) || err != nil
		},
		Fetcher: func(ctx context.Context, _ *T) (T, error) {
			if i >= len(pgs) {
				var zero T
				return zero, err
			}

			i++
			return pgs[i-1], nil
		},
	})
}

func p32(v int32) *int32  { return &v }
func ps(v string) *string { return &v }
