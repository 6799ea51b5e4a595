package swiggy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/five82/tiffin/internal/creds"
)

// SessionHolder supplies credentials and accepts refreshed ones.
// *state.Store implements it.
type SessionHolder interface {
	Credentials() creds.Set
	Commit(ctx context.Context, next creds.Set) bool
}

// OrderTracker is the slice of the API the status poller needs.
type OrderTracker interface {
	OrderStatus(ctx context.Context, orderID string) (OrderStatus, error)
}

// API is everything the command layer calls.
type API interface {
	OrderTracker
	Search(ctx context.Context, query string) ([]Restaurant, error)
	Menu(ctx context.Context, restaurantID string) ([]MenuItem, error)
	PlaceOrder(ctx context.Context, order PlaceOrderRequest) (PlacedOrder, error)
	ActiveOrders(ctx context.Context) ([]OrderSummary, error)
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Client issues typed calls through an Executor and commits refreshed
// credentials to the session holder after every call, whatever the outcome.
type Client struct {
	exec    *Executor
	session SessionHolder
	coords  Coordinates
	bearer  bool
}

// NewClient wires an executor to a session holder. bearer controls whether
// order placement sends an Authorization header.
func NewClient(exec *Executor, session SessionHolder, coords Coordinates, bearer bool) (*Client, error) {
	if exec == nil {
		return nil, fmt.Errorf("executor is nil")
	}
	if session == nil {
		return nil, fmt.Errorf("session holder is nil")
	}
	return &Client{exec: exec, session: session, coords: coords, bearer: bearer}, nil
}

// Coordinates returns the delivery location used for requests.
func (c *Client) Coordinates() Coordinates {
	return c.coords
}

// Search lists restaurants matching query near the configured location.
func (c *Client) Search(ctx context.Context, query string) ([]Restaurant, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is empty")
	}
	values := c.locationQuery()
	values.Set("search", query)
	req := Request{Path: "/restaurants/list/v5", Query: values}
	outcome, err := c.call(ctx, req)
	if err != nil {
		return nil, err
	}
	restaurants, err := decodeRestaurants(outcome.Payload)
	if err != nil {
		return nil, decodeError(err, req)
	}
	return restaurants, nil
}

// Menu fetches a restaurant's full menu.
func (c *Client) Menu(ctx context.Context, restaurantID string) ([]MenuItem, error) {
	restaurantID = strings.TrimSpace(restaurantID)
	if restaurantID == "" {
		return nil, fmt.Errorf("restaurant id is empty")
	}
	values := url.Values{}
	values.Set("page-type", "REGULAR_MENU")
	values.Set("complete-menu", "true")
	values.Set("lat", c.coords.latString())
	values.Set("lng", c.coords.lngString())
	values.Set("restaurantId", restaurantID)
	req := Request{Path: "/menu/pl", Query: values}
	outcome, err := c.call(ctx, req)
	if err != nil {
		return nil, err
	}
	items, err := decodeMenu(outcome.Payload)
	if err != nil {
		return nil, decodeError(err, req)
	}
	return items, nil
}

// OrderStatus fetches the current state of one order.
func (c *Client) OrderStatus(ctx context.Context, orderID string) (OrderStatus, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return OrderStatus{}, fmt.Errorf("order id is empty")
	}
	req := Request{Path: "/orders/" + orderID, Query: c.locationQuery()}
	outcome, err := c.call(ctx, req)
	if err != nil {
		return OrderStatus{}, err
	}
	status, err := decodeOrderStatus(outcome.Payload)
	if err != nil {
		return OrderStatus{}, decodeError(err, req)
	}
	if status.OrderID == "" {
		status.OrderID = orderID
	}
	return status, nil
}

// PlaceOrder submits an order. Payment mode is passed through untouched.
func (c *Client) PlaceOrder(ctx context.Context, order PlaceOrderRequest) (PlacedOrder, error) {
	order.RestaurantID = strings.TrimSpace(order.RestaurantID)
	if order.RestaurantID == "" {
		return PlacedOrder{}, fmt.Errorf("restaurant id is empty")
	}
	if len(order.Items) == 0 {
		return PlacedOrder{}, fmt.Errorf("order has no items")
	}
	if order.Lat == "" {
		order.Lat = c.coords.latString()
	}
	if order.Lng == "" {
		order.Lng = c.coords.lngString()
	}
	if order.PaymentMode == "" {
		order.PaymentMode = DefaultPaymentMode
	}
	req := Request{Method: http.MethodPost, Path: "/checkout/place-order", Body: order, Bearer: c.bearer}
	outcome, err := c.call(ctx, req)
	if err != nil {
		return PlacedOrder{}, err
	}
	placed, err := decodePlacedOrder(outcome.Payload)
	if err != nil {
		return PlacedOrder{}, decodeError(err, req)
	}
	return placed, nil
}

// ActiveOrders lists the account's current orders.
func (c *Client) ActiveOrders(ctx context.Context) ([]OrderSummary, error) {
	req := Request{Path: "/orders/list", Query: c.locationQuery()}
	outcome, err := c.call(ctx, req)
	if err != nil {
		return nil, err
	}
	orders, err := decodeOrders(outcome.Payload)
	if err != nil {
		return nil, decodeError(err, req)
	}
	return orders, nil
}

// DefaultPaymentMode is sent when the caller does not choose one.
const DefaultPaymentMode = "UPI"

func (c *Client) call(ctx context.Context, req Request) (Outcome, error) {
	outcome, next := c.exec.Execute(ctx, c.session.Credentials(), req)
	c.session.Commit(ctx, next)
	if !outcome.OK() {
		return outcome, outcome.Error()
	}
	return outcome, nil
}

func (c *Client) locationQuery() url.Values {
	values := url.Values{}
	values.Set("lat", c.coords.latString())
	values.Set("lng", c.coords.lngString())
	return values
}
