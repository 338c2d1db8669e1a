// AngelaMos | 2026
// order_test.go

package order

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avocado-market/avocado-api/internal/access"
	"github.com/avocado-market/avocado-api/internal/cart"
	"github.com/avocado-market/avocado-api/internal/core"
	"github.com/avocado-market/avocado-api/internal/events"
	"github.com/avocado-market/avocado-api/internal/middleware"
)

type memRepo struct {
	mu      sync.Mutex
	orders  map[int64]*cart.Cart
	reviews map[int64]*Review
}

func newMemRepo(orders ...cart.Cart) *memRepo {
	m := &memRepo{orders: map[int64]*cart.Cart{}, reviews: map[int64]*Review{}}
	for i := range orders {
		o := orders[i]
		m.orders[o.ID] = &o
	}
	return m
}

func (m *memRepo) filter(match func(*cart.Cart) bool) []cart.Cart {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []cart.Cart{}
	for _, o := range m.orders {
		if match(o) {
			out = append(out, *o)
		}
	}
	return out
}

func (m *memRepo) ListUnclaimed(context.Context) ([]cart.Cart, error) {
	return m.filter(func(o *cart.Cart) bool {
		return o.Status == cart.StatusNew && o.DeliveryPersonID == nil
	}), nil
}

func (m *memRepo) ListByCourier(_ context.Context, courierID int64) ([]cart.Cart, error) {
	return m.filter(func(o *cart.Cart) bool {
		return o.DeliveryPersonID != nil && *o.DeliveryPersonID == courierID
	}), nil
}

func (m *memRepo) GetByID(_ context.Context, id int64) (*cart.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("get order: %w", core.ErrNotFound)
	}
	cp := *o
	return &cp, nil
}

func (m *memRepo) Claim(_ context.Context, id, courierID int64) (*cart.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("claim order: %w", core.ErrNotFound)
	}
	if o.Status != cart.StatusNew || o.DeliveryPersonID != nil {
		return nil, fmt.Errorf("claim order: %w", core.ErrConflict)
	}
	now := time.Now()
	o.DeliveryPersonID, o.Status, o.ClaimedAt = &courierID, cart.StatusProcessing, &now
	cp := *o
	return &cp, nil
}

func (m *memRepo) Deliver(_ context.Context, id, courierID int64) (*cart.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("deliver order: %w", core.ErrNotFound)
	}
	if o.Status != cart.StatusProcessing || o.DeliveryPersonID == nil || *o.DeliveryPersonID != courierID {
		return nil, fmt.Errorf("deliver order: %w", core.ErrConflict)
	}
	now := time.Now()
	o.Status, o.DeliveredAt = cart.StatusDelivered, &now
	cp := *o
	return &cp, nil
}

func (m *memRepo) CreateReview(_ context.Context, r *Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[r.OrderID]; ok {
		return fmt.Errorf("create review: %w", core.ErrDuplicateKey)
	}
	r.ID = int64(len(m.reviews) + 1)
	r.CreatedAt = time.Now()
	cp := *r
	m.reviews[r.OrderID] = &cp
	return nil
}

func (m *memRepo) ReviewByOrder(_ context.Context, orderID int64) (*Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[orderID]
	if !ok {
		return nil, fmt.Errorf("get review: %w", core.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (m *memRepo) ReviewsByCourier(_ context.Context, courierID int64) ([]Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Review{}
	for _, r := range m.reviews {
		if r.DeliveryPersonID == courierID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memRepo) RatingSummary(ctx context.Context, courierID int64) (*RatingSummary, error) {
	reviews, _ := m.ReviewsByCourier(ctx, courierID)
	if len(reviews) == 0 {
		return &RatingSummary{}, nil
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(reviews))
	return &RatingSummary{Count: len(reviews), Average: &avg}, nil
}

type noItems struct{}

func (noItems) Items(context.Context, int64) ([]cart.Item, error) { return []cart.Item{}, nil }

type recorder struct {
	mu     sync.Mutex
	events []events.OrderEvent
}

func (r *recorder) Publish(_ context.Context, ev events.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func placed(id, userID int64) cart.Cart {
	return cart.Cart{
		ID: id, UserID: userID, Kind: cart.KindOrder, Status: cart.StatusNew,
		IsDeleted: true, CreatedAt: time.Now(),
	}
}

func TestClaimIsExclusive(t *testing.T) {
	repo := newMemRepo(placed(1, 10))
	pub := &recorder{}
	svc := NewService(repo, noItems{}, pub)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, 5)
	for courier := int64(20); courier < 25; courier++ {
		wg.Add(1)
		go func(courier int64) {
			defer wg.Done()
			_, err := svc.Claim(ctx, 1, courier)
			results <- err
		}(courier)
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, errAlreadyClaimed)
	}
	assert.Equal(t, 1, wins)
	assert.Len(t, pub.events, 1)

	_, err := svc.Claim(ctx, 99, 20)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeliveryAndReviewScenario(t *testing.T) {
	repo := newMemRepo(placed(1, 10))
	pub := &recorder{}
	svc := NewService(repo, noItems{}, pub)
	ctx := context.Background()
	comment := "quick and friendly"

	_, err := svc.Deliver(ctx, 1, 30)
	assert.ErrorIs(t, err, errNotDeliverable)

	_, err = svc.Review(ctx, 10, CreateReviewRequest{OrderID: 1, Rating: 5})
	assert.ErrorIs(t, err, errNotDelivered)

	claimed, err := svc.Claim(ctx, 1, 30)
	require.NoError(t, err)
	assert.Equal(t, cart.StatusProcessing, claimed.Status)
	assert.Equal(t, int64(30), *claimed.DeliveryPersonID)

	_, err = svc.Deliver(ctx, 1, 31)
	assert.ErrorIs(t, err, errNotDeliverable)

	delivered, err := svc.Deliver(ctx, 1, 30)
	require.NoError(t, err)
	assert.Equal(t, cart.StatusDelivered, delivered.Status)

	_, err = svc.Review(ctx, 11, CreateReviewRequest{OrderID: 1, Rating: 5})
	assert.ErrorIs(t, err, errNotYourOrder)

	review, err := svc.Review(ctx, 10, CreateReviewRequest{OrderID: 1, Rating: 5, Comment: &comment})
	require.NoError(t, err)
	assert.Equal(t, int64(30), review.DeliveryPersonID)

	_, err = svc.Review(ctx, 10, CreateReviewRequest{OrderID: 1, Rating: 4})
	assert.ErrorIs(t, err, errAlreadyRated)

	got, err := svc.ReviewByOrder(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Rating)

	summary, err := svc.CourierReviews(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count)
	require.NotNil(t, summary.AverageRating)
	assert.InDelta(t, 5.0, *summary.AverageRating, 0.001)

	require.Len(t, pub.events, 2)
	assert.Equal(t, events.OrderClaimed, pub.events[0].Type)
	assert.Equal(t, events.OrderDelivered, pub.events[1].Type)
}

type profiles map[int64]*access.Profile

func (p profiles) Resolve(_ context.Context, id int64) (*access.Profile, error) {
	if prof, ok := p[id]; ok {
		return prof, nil
	}
	return nil, core.ErrNotFound
}

func as(id int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(
				middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{UserID: id}),
			))
		})
	}
}

func TestOrderHandlers(t *testing.T) {
	repo := newMemRepo(placed(1, 10), placed(2, 11))
	svc := NewService(repo, noItems{}, nil)
	guard := access.NewGuard(profiles{
		10: {UserID: 10, RoleID: 3},
		11: {UserID: 11, RoleID: 3},
		30: {UserID: 30, RoleID: 2, Permissions: []string{"order:claim", "order:deliver"}},
		31: {UserID: 31, RoleID: 2, Permissions: []string{"order:claim", "order:deliver"}},
	})

	call := func(caller int64, method, path, body string) int {
		r := chi.NewRouter()
		NewHandler(svc, guard, nil).RegisterRoutes(r, as(caller))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
		return rec.Code
	}

	assert.Equal(t, http.StatusForbidden, call(10, http.MethodGet, "/orders/unclaimed", ""))
	assert.Equal(t, http.StatusOK, call(30, http.MethodGet, "/orders/unclaimed", ""))
	assert.Equal(t, http.StatusOK, call(30, http.MethodPost, "/orders/1/claim", ""))
	assert.Equal(t, http.StatusConflict, call(31, http.MethodPost, "/orders/1/claim", ""))
	assert.Equal(t, http.StatusNotFound, call(31, http.MethodPost, "/orders/42/claim", ""))

	assert.Equal(t, http.StatusOK, call(10, http.MethodGet, "/orders/1", ""))
	assert.Equal(t, http.StatusOK, call(30, http.MethodGet, "/orders/1", ""))
	assert.Equal(t, http.StatusForbidden, call(11, http.MethodGet, "/orders/1", ""))

	assert.Equal(t, http.StatusConflict, call(31, http.MethodPost, "/orders/1/deliver", ""))
	assert.Equal(t, http.StatusOK, call(30, http.MethodPost, "/orders/1/deliver", ""))

	assert.Equal(t, http.StatusBadRequest, call(10, http.MethodPost, "/reviews", `{"orderId":1,"rating":6}`))
	assert.Equal(t, http.StatusCreated, call(10, http.MethodPost, "/reviews", `{"orderId":1,"rating":5}`))
	assert.Equal(t, http.StatusConflict, call(10, http.MethodPost, "/reviews", `{"orderId":1,"rating":5}`))
	assert.Equal(t, http.StatusOK, call(11, http.MethodGet, "/reviews/order/1", ""))
	assert.Equal(t, http.StatusNotFound, call(11, http.MethodGet, "/reviews/order/2", ""))
}

func TestFeedBroadcastsEvents(t *testing.T) {
	feed := NewFeed([]string{"http://shop.test"})
	srv := httptest.NewServer(feed)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	source := make(chan events.OrderEvent, 1)
	go feed.Run(ctx, source)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://shop.test"}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return feed.Clients() == 1 }, time.Second, 10*time.Millisecond)

	source <- events.OrderEvent{Type: events.OrderPlaced, OrderID: 9, UserID: 3, Status: cart.StatusNew}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev events.OrderEvent
	require.NoError(t, json.Unmarshal(msg, &ev))
	assert.Equal(t, int64(9), ev.OrderID)
	assert.Equal(t, events.OrderPlaced, ev.Type)
}

func TestFeedRejectsForeignOrigin(t *testing.T) {
	srv := httptest.NewServer(NewFeed([]string{"http://shop.test"}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.test"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestFeedRefusesClientsAfterShutdown(t *testing.T) {
	feed := NewFeed([]string{"http://shop.test"})
	srv := httptest.NewServer(feed)
	t.Cleanup(srv.Close)

	source := make(chan events.OrderEvent)
	done := make(chan struct{})
	go func() {
		feed.Run(context.Background(), source)
		close(done)
	}()
	close(source)
	<-done

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://shop.test"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Zero(t, feed.Clients())

	assert.False(t, feed.register(&feedClient{send: make(chan []byte, 1)}))
	assert.Zero(t, feed.Clients())
}

func TestRepositoryClaimLostRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := NewRepository(sqlx.NewDb(db, "pgx"))

	mock.ExpectQuery(regexp.QuoteMeta("AND status = 'NEW' AND delivery_person_id IS NULL")).
		WithArgs(int64(1), int64(30)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err = repo.Claim(context.Background(), 1, 30)
	assert.ErrorIs(t, err, core.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
