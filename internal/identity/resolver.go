package identity

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/karlseguin/ccache/v2"
)

// NameResolver - external collaborator resolving a display name for an
// address. Implementations may hit the network; an empty name with a nil
// error means no name is registered.
type NameResolver interface {
	ResolveName(ctx context.Context, address common.Address) (string, error)
}

// StaticResolver - config-driven resolver used by the reference shell.
type StaticResolver map[common.Address]string

// ResolveName -
func (r StaticResolver) ResolveName(_ context.Context, address common.Address) (string, error) {
	return r[address], nil
}

// CachedResolver - wraps a resolver with a TTL cache so repeated renders of
// the same address don't re-resolve.
type CachedResolver struct {
	inner NameResolver
	cache *ccache.Cache
	ttl   time.Duration
}

// NewCachedResolver -
func NewCachedResolver(inner NameResolver, ttl time.Duration) *CachedResolver {
	return &CachedResolver{
		inner: inner,
		cache: ccache.New(ccache.Configure().MaxSize(1000)),
		ttl:   ttl,
	}
}

// ResolveName -
func (r *CachedResolver) ResolveName(ctx context.Context, address common.Address) (string, error) {
	item, err := r.cache.Fetch(address.Hex(), r.ttl, func() (interface{}, error) {
		return r.inner.ResolveName(ctx, address)
	})
	if err != nil {
		return "", err
	}
	return item.Value().(string), nil
}
