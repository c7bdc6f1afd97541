package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"farmconnect/internal/models"
	"farmconnect/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryCart mimics the upsert against the unique (userId, itemId) index.
// When race is set, the first two callers both observe the line as absent
// before either writes, so exactly one of them loses with ErrDuplicate.
type memoryCart struct {
	mu      sync.Mutex
	lines   map[string]*models.CartItem
	race    bool
	barrier sync.WaitGroup
	first   atomic.Int32
	calls   atomic.Int32
}

func newMemoryCart(race bool) *memoryCart {
	m := &memoryCart{lines: map[string]*models.CartItem{}, race: race}
	m.barrier.Add(2)
	return m
}

func (m *memoryCart) stub() *cartRepoStub {
	return &cartRepoStub{addFn: m.add}
}

func (m *memoryCart) add(_ context.Context, item *models.CartItem) (*models.CartItem, error) {
	m.calls.Add(1)
	key := item.UserID + "/" + item.ItemID

	m.mu.Lock()
	_, seen := m.lines[key]
	m.mu.Unlock()

	if !seen && m.race && m.first.Add(1) <= 2 {
		m.barrier.Done()
		m.barrier.Wait()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.lines[key]; ok {
		if !seen {
			return nil, repository.ErrDuplicate
		}
		cur.Quantity += item.Quantity
		out := *cur
		return &out, nil
	}
	stored := *item
	stored.ID = primitive.NewObjectID()
	m.lines[key] = &stored
	out := stored
	return &out, nil
}

func cartInput(qty int) models.CartItemInput {
	return models.CartItemInput{ItemID: "post-1", PostType: models.PostTypeFarm, Title: "Cassava", Price: 3, Quantity: qty}
}

func TestCartService_AddIncrementsExistingLine(t *testing.T) {
	mem := newMemoryCart(false)
	svc := NewCartService(mem.stub())
	ctx := context.Background()

	first, err := svc.Add(ctx, "u1", cartInput(2))
	require.NoError(t, err)
	assert.Equal(t, 2, first.Quantity)

	second, err := svc.Add(ctx, "u1", cartInput(5))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 7, second.Quantity)
	assert.Len(t, mem.lines, 1)
}

func TestCartService_AddDefaultsQuantityToOne(t *testing.T) {
	mem := newMemoryCart(false)
	svc := NewCartService(mem.stub())

	item, err := svc.Add(context.Background(), "u1", cartInput(0))
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
}

func TestCartService_ConcurrentFirstAddSumsQuantity(t *testing.T) {
	mem := newMemoryCart(true)
	svc := NewCartService(mem.stub())
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, qty := range []int{1, 2} {
		wg.Add(1)
		go func(i, qty int) {
			defer wg.Done()
			_, errs[i] = svc.Add(ctx, "u1", cartInput(qty))
		}(i, qty)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	require.Len(t, mem.lines, 1)
	assert.Equal(t, 3, mem.lines["u1/post-1"].Quantity)
	assert.Equal(t, int32(3), mem.calls.Load(), "the losing insert is retried once")
}

func TestCartService_AddValidation(t *testing.T) {
	called := false
	svc := NewCartService(&cartRepoStub{addFn: func(_ context.Context, _ *models.CartItem) (*models.CartItem, error) {
		called = true
		return nil, nil
	}})

	_, err := svc.Add(context.Background(), "u1", models.CartItemInput{PostType: "auction", Price: -1, Quantity: -2})
	appErr := assertValidationError(t, err)
	assert.Len(t, appErr.Fields, 5)
	assert.False(t, called)
}

func TestCartService_UpdateRejectsZeroQuantity(t *testing.T) {
	called := false
	svc := NewCartService(&cartRepoStub{updateFn: func(_ context.Context, _ primitive.ObjectID, _ string, _ models.CartItemUpdate) (*models.CartItem, error) {
		called = true
		return nil, nil
	}})

	_, err := svc.Update(context.Background(), primitive.NewObjectID(), "u1", models.CartItemUpdate{Quantity: ptr(0)})
	assertValidationError(t, err)
	assert.False(t, called)
}

func TestCartService_ListSummarizes(t *testing.T) {
	svc := NewCartService(&cartRepoStub{listFn: func(_ context.Context, userID string) ([]*models.CartItem, error) {
		return []*models.CartItem{
			{UserID: userID, Price: 2, Quantity: 3},
			{UserID: userID, Price: 1.5, Quantity: 2},
		}, nil
	}})

	items, sum, err := svc.List(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, models.CartSummary{TotalItems: 2, TotalQuantity: 5, Subtotal: 9}, sum)
}

func TestCartService_GetIsOwnerScoped(t *testing.T) {
	owned := primitive.NewObjectID()
	svc := NewCartService(&cartRepoStub{getFn: func(_ context.Context, id primitive.ObjectID, userID string) (*models.CartItem, error) {
		if id == owned && userID == "owner" {
			return &models.CartItem{ID: id, UserID: userID}, nil
		}
		return nil, models.NewNotFoundError("Cart item", id.Hex())
	}})

	_, err := svc.Get(context.Background(), owned, "someone-else")
	assertAppErrorKind(t, err, models.KindNotFound)

	item, err := svc.Get(context.Background(), owned, "owner")
	require.NoError(t, err)
	assert.Equal(t, owned, item.ID)
}
